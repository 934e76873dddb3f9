package usecase

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

const (
	roundRobinCursorKey   = "distribution:cursor:round-robin"
	availabilityCursorKey = "distribution:cursor:availability"
	maxReserveAttempts    = 3
)

// Assignment is the result of running the distribution policy.
type Assignment struct {
	User     *entity.User
	Method   entity.DistributionMethod
	Fallback bool
}

type Distributor struct {
	Users  UserRepository
	Cursor DistributionCursor
	Logger *zap.Logger
}

func NewDistributor(users UserRepository, cursor DistributionCursor, logger *zap.Logger) *Distributor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Distributor{Users: users, Cursor: cursor, Logger: logger}
}

// Assign picks a seller under the configured policy and reserves one unit of
// their daily capacity. When the guarded reservation loses a race the
// sellers are re-read and the pick is retried.
func (d *Distributor) Assign(ctx context.Context, settings entity.Settings) (*Assignment, error) {
	for attempt := 1; attempt <= maxReserveAttempts; attempt++ {
		sellers, err := d.Users.ListSellers(ctx)
		if err != nil {
			return nil, databaseError("failed to list sellers", err)
		}

		candidates := eligible(sellers, settings.VerifyWhatsAppActive, settings.RespectDailyLimit)
		fallback := false
		if len(candidates) == 0 && settings.FallbackEnabled && settings.RespectDailyLimit {
			candidates = eligible(sellers, settings.VerifyWhatsAppActive, false)
			fallback = true
		}
		if len(candidates) == 0 {
			return nil, entity.ErrNoEligibleUser
		}

		pick, err := d.pick(ctx, settings.DistributionMethod, candidates)
		if err != nil {
			return nil, err
		}

		respectLimit := settings.RespectDailyLimit && !fallback
		ok, err := d.Users.ReserveLead(ctx, pick.ID, respectLimit)
		if err != nil {
			return nil, databaseError("failed to reserve lead", err)
		}
		if ok {
			pick.LeadsReceivedToday++
			return &Assignment{User: pick, Method: settings.DistributionMethod, Fallback: fallback}, nil
		}
		d.Logger.Warn("reserva perdeu corrida, tentando novamente",
			zap.String("user_id", pick.ID),
			zap.Int("attempt", attempt),
		)
	}
	return nil, entity.ErrNoEligibleUser
}

// Release returns a reserved unit when the lead it was meant for is dropped.
func (d *Distributor) Release(ctx context.Context, userID string) error {
	return d.Users.ReleaseLead(ctx, userID)
}

func eligible(users []*entity.User, verifyOnline, respectLimit bool) []*entity.User {
	var out []*entity.User
	for _, u := range users {
		if u.Role != entity.RoleUser {
			continue
		}
		if verifyOnline && u.WhatsAppStatus != entity.WhatsAppOnline {
			continue
		}
		if respectLimit && !u.UnderDailyLimit() {
			continue
		}
		out = append(out, u)
	}
	return out
}

func (d *Distributor) pick(ctx context.Context, method entity.DistributionMethod, candidates []*entity.User) (*entity.User, error) {
	switch method {
	case entity.DistributionPriority:
		return byPriority(candidates), nil
	case entity.DistributionAvailability:
		tied := mostAvailable(candidates)
		if len(tied) == 1 {
			return tied[0], nil
		}
		return d.roundRobin(ctx, availabilityCursorKey, tied)
	case entity.DistributionRoundRobin, "":
		return d.roundRobin(ctx, roundRobinCursorKey, candidates)
	}
	return nil, domainError(entity.ValidationError{Field: "distribution_method", Message: "unknown method"}, "")
}

func (d *Distributor) roundRobin(ctx context.Context, key string, candidates []*entity.User) (*entity.User, error) {
	n, err := d.Cursor.Next(ctx, key)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to advance distribution cursor", Err: err}
	}
	idx := (n - 1) % int64(len(candidates))
	if idx < 0 {
		idx += int64(len(candidates))
	}
	return candidates[idx], nil
}

// byPriority: highest priority, then fewest leads today, then list order.
func byPriority(candidates []*entity.User) *entity.User {
	sorted := append([]*entity.User(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].LeadsReceivedToday < sorted[j].LeadsReceivedToday
	})
	return sorted[0]
}

func mostAvailable(candidates []*entity.User) []*entity.User {
	best := -1
	var tied []*entity.User
	for _, u := range candidates {
		switch c := u.RemainingCapacity(); {
		case c > best:
			best = c
			tied = []*entity.User{u}
		case c == best:
			tied = append(tied, u)
		}
	}
	return tied
}

// IsNoEligibleUser reports whether err means nobody could take the lead.
func IsNoEligibleUser(err error) bool {
	return errors.Is(err, entity.ErrNoEligibleUser)
}
