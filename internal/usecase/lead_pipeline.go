package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

// maxLeadWriteAttempts bounds how often a lead edit is re-read and re-applied
// after losing a race with another writer.
const maxLeadWriteAttempts = 3

type LeadUseCase struct {
	Leads  LeadRepository
	Users  UserRepository
	Logger *zap.Logger
}

func NewLeadUseCase(leads LeadRepository, users UserRepository, logger *zap.Logger) *LeadUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadUseCase{Leads: leads, Users: users, Logger: logger}
}

func (uc *LeadUseCase) Get(ctx context.Context, s entity.Session, id string) (*entity.Lead, error) {
	lead, err := uc.Leads.FindByID(ctx, id)
	if err != nil {
		return nil, domainError(err, "failed to load lead")
	}
	if !s.CanAccessLead(lead) {
		return nil, domainError(entity.ErrForbidden, "")
	}
	return lead, nil
}

// List returns leads matching filter. Sellers are always scoped to their own leads.
func (uc *LeadUseCase) List(ctx context.Context, s entity.Session, filter LeadFilter) ([]*entity.Lead, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domainError(entity.ErrInvalidStatus, "")
	}
	if !s.IsAdmin() {
		filter.AssignedUserID = s.UserID
		filter.Unassigned = false
	}
	leads, err := uc.Leads.List(ctx, filter)
	if err != nil {
		return nil, databaseError("failed to list leads", err)
	}
	return leads, nil
}

// Search fuzzy-matches query against name, phone and email, best match first.
func (uc *LeadUseCase) Search(ctx context.Context, s entity.Session, query string) ([]*entity.Lead, error) {
	leads, err := uc.List(ctx, s, LeadFilter{})
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return leads, nil
	}
	haystack := make([]string, len(leads))
	for i, l := range leads {
		haystack[i] = strings.Join([]string{l.Name, l.Phone, l.Email}, " ")
	}
	matches := fuzzy.Find(query, haystack)
	found := make([]*entity.Lead, 0, len(matches))
	for _, m := range matches {
		found = append(found, leads[m.Index])
	}
	return found, nil
}

func (uc *LeadUseCase) History(ctx context.Context, s entity.Session, leadID string) ([]*entity.LeadHistory, error) {
	if _, err := uc.Get(ctx, s, leadID); err != nil {
		return nil, err
	}
	history, err := uc.Leads.History(ctx, leadID)
	if err != nil {
		return nil, databaseError("failed to load lead history", err)
	}
	return history, nil
}

// Transition moves a lead to another pipeline status.
func (uc *LeadUseCase) Transition(ctx context.Context, s entity.Session, leadID, status, note string) (*entity.Lead, error) {
	to, err := entity.ParseStatus(status)
	if err != nil {
		return nil, domainError(err, "")
	}
	return uc.change(ctx, s, leadID, func(l *entity.Lead) (*entity.LeadHistory, error) {
		return l.TransitionTo(to, s.UserID, note)
	})
}

// Reopen brings a lead in fechado or perdido back to an open status.
func (uc *LeadUseCase) Reopen(ctx context.Context, s entity.Session, leadID, status, note string) (*entity.Lead, error) {
	to, err := entity.ParseStatus(status)
	if err != nil {
		return nil, domainError(err, "")
	}
	return uc.change(ctx, s, leadID, func(l *entity.Lead) (*entity.LeadHistory, error) {
		return l.Reopen(to, s.UserID, note)
	})
}

func (uc *LeadUseCase) UpdateNotes(ctx context.Context, s entity.Session, leadID, text string) (*entity.Lead, error) {
	return uc.change(ctx, s, leadID, func(l *entity.Lead) (*entity.LeadHistory, error) {
		return l.SetNotes(text, s.UserID), nil
	})
}

// AssignManual hands an unassigned lead to a seller. The daily limit is not
// enforced, but the seller's counter still goes up.
func (uc *LeadUseCase) AssignManual(ctx context.Context, s entity.Session, leadID, userID string) (*entity.Lead, error) {
	if err := requireAdmin(s); err != nil {
		return nil, err
	}
	seller, err := uc.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, domainError(err, "failed to load user")
	}
	if seller.Role != entity.RoleUser {
		return nil, domainError(entity.ValidationError{Field: "user_id", Message: "must be a seller"}, "")
	}

	var lead *entity.Lead
	for attempt := 1; ; attempt++ {
		lead, err = uc.Leads.FindByID(ctx, leadID)
		if err != nil {
			return nil, domainError(err, "failed to load lead")
		}
		if lead.IsAssigned() {
			return nil, &DomainError{Code: CodeConflict, Message: "lead já atribuído a um vendedor"}
		}
		err = uc.assign(ctx, s, lead, seller)
		if errors.Is(err, entity.ErrLeadConflict) && attempt < maxLeadWriteAttempts {
			continue
		}
		if err != nil {
			return nil, domainError(err, "failed to assign lead")
		}
		break
	}

	uc.Logger.Info("lead atribuído manualmente",
		zap.String("lead_id", lead.ID),
		zap.String("user_id", seller.ID),
		zap.String("actor", s.UserID),
	)
	return lead, nil
}

// assign reserves a slot on the seller and stores the assignment. The
// reservation is released when the lead write fails.
func (uc *LeadUseCase) assign(ctx context.Context, s entity.Session, lead *entity.Lead, seller *entity.User) error {
	txn := NewTransaction(uc.Logger)
	txn.AddOperation("reserve_lead", func(ctx context.Context) error {
		_, err := uc.Users.ReserveLead(ctx, seller.ID, false)
		return err
	}, func(ctx context.Context) error {
		return uc.Users.ReleaseLead(ctx, seller.ID)
	})
	txn.AddOperation("update_lead", func(ctx context.Context) error {
		history := lead.AssignTo(seller.ID, s.UserID)
		return uc.Leads.Update(ctx, lead, history)
	}, nil)
	return txn.Execute(ctx)
}

// change loads the lead, applies fn and stores the lead with the history
// row fn produced. A nil history row means nothing changed. When another
// writer got there first, fn is applied again to the fresh row, so its
// checks (terminal status, access) always see the stored state.
func (uc *LeadUseCase) change(ctx context.Context, s entity.Session, leadID string, fn func(*entity.Lead) (*entity.LeadHistory, error)) (*entity.Lead, error) {
	for attempt := 1; ; attempt++ {
		lead, err := uc.Get(ctx, s, leadID)
		if err != nil {
			return nil, err
		}
		history, err := fn(lead)
		if err != nil {
			return nil, domainError(err, "")
		}
		if history == nil {
			return lead, nil
		}
		err = uc.Leads.Update(ctx, lead, history)
		if errors.Is(err, entity.ErrLeadConflict) && attempt < maxLeadWriteAttempts {
			continue
		}
		if err != nil {
			return nil, domainError(err, "failed to update lead")
		}
		return lead, nil
	}
}
