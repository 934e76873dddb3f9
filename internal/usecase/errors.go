package usecase

import (
	"errors"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeNoEligibleUser     = "NO_ELIGIBLE_USER"
	CodeInvalidStatus      = "INVALID_STATUS"
	CodeTerminalStatus     = "TERMINAL_STATUS"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeConflict           = "CONFLICT"
	CodeDatabase           = "DATABASE_ERROR"
	CodeIntegration        = "INTEGRATION_ERROR"
)

// DomainError is a business failure the caller can act on.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError wraps an infrastructure failure (database, broker, HTTP).
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error { return e.Err }

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func databaseError(msg string, err error) error {
	return &TechnicalError{Code: CodeDatabase, Message: msg, Err: err}
}

// domainError classifies entity errors into a DomainError. Anything it does
// not recognise is treated as a database failure.
func domainError(err error, fallback string) error {
	if err == nil {
		return nil
	}
	var (
		de *DomainError
		te *TechnicalError
		ve entity.ValidationError
	)
	switch {
	case errors.As(err, &de), errors.As(err, &te):
		return err
	case errors.As(err, &ve):
		return &DomainError{Code: CodeValidation, Message: ve.Error(), Err: err}
	case errors.Is(err, entity.ErrNotFound):
		return &DomainError{Code: CodeNotFound, Message: err.Error(), Err: err}
	case errors.Is(err, entity.ErrNoEligibleUser):
		return &DomainError{Code: CodeNoEligibleUser, Message: err.Error(), Err: err}
	case errors.Is(err, entity.ErrInvalidStatus):
		return &DomainError{Code: CodeInvalidStatus, Message: err.Error(), Err: err}
	case errors.Is(err, entity.ErrTerminalStatus):
		return &DomainError{Code: CodeTerminalStatus, Message: err.Error(), Err: err}
	case errors.Is(err, entity.ErrForbidden):
		return &DomainError{Code: CodeForbidden, Message: err.Error(), Err: err}
	case errors.Is(err, entity.ErrInvalidCredentials):
		return &DomainError{Code: CodeInvalidCredentials, Message: err.Error(), Err: err}
	case errors.Is(err, entity.ErrSlugTaken), errors.Is(err, entity.ErrLeadConflict):
		return &DomainError{Code: CodeConflict, Message: err.Error(), Err: err}
	}
	return databaseError(fallback, err)
}
