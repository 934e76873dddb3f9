package usecase

import (
	"net/mail"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

const defaultPhoneRegion = "BR"

// NormalizePhone parses a phone in national or international form and
// returns it in E.164.
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", entity.ValidationError{Field: "phone", Message: "is required"}
	}
	num, err := phonenumbers.Parse(raw, defaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", entity.ValidationError{Field: "phone", Message: "must be a valid phone number"}
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// WhatsAppNumber is the E.164 number without the leading plus, as the
// Evolution API expects it.
func WhatsAppNumber(e164 string) string {
	return strings.TrimPrefix(e164, "+")
}

func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", entity.ValidationError{Field: "email", Message: "is invalid"}
	}
	return strings.ToLower(addr.Address), nil
}

type ContactInput struct {
	Name  string
	Phone string
	Email string
}

// validateContact collects every contact problem at once and returns the
// normalised phone and email.
func validateContact(in ContactInput) (string, string, []entity.ValidationError) {
	var errs []entity.ValidationError

	name := strings.TrimSpace(in.Name)
	if name == "" {
		errs = append(errs, entity.ValidationError{Field: "name", Message: "is required"})
	} else if len(name) > 200 {
		errs = append(errs, entity.ValidationError{Field: "name", Message: "must not exceed 200 characters"})
	}

	phone, err := NormalizePhone(in.Phone)
	if err != nil {
		errs = append(errs, err.(entity.ValidationError))
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		errs = append(errs, err.(entity.ValidationError))
	}

	return phone, email, errs
}

func validationFailed(errs []entity.ValidationError) error {
	msg := "validation failed: "
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+" ("+e.Message+")")
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: msg + strings.Join(parts, ", "),
		Err:     errs[0],
	}
}
