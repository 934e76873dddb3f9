package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type QuizRepository interface {
	// Create fails with entity.ErrSlugTaken when the slug already exists.
	Create(ctx context.Context, q *entity.Quiz) error
	// Save replaces the quiz with its steps and questions.
	Save(ctx context.Context, q *entity.Quiz) error
	FindByID(ctx context.Context, id string) (*entity.Quiz, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Quiz, error)
	// Revision reads only the publish flag and updated_at of the quiz with slug.
	Revision(ctx context.Context, slug string) (QuizRevision, error)
	List(ctx context.Context) ([]*entity.Quiz, error)
	Delete(ctx context.Context, id string) error
}

// QuizRevision identifies the stored state of a quiz without loading its steps.
type QuizRevision struct {
	IsPublished bool
	UpdatedAt   time.Time
}

type LeadFilter struct {
	Status         entity.KanbanStatus
	AssignedUserID string
	Unassigned     bool
}

type LeadRepository interface {
	Create(ctx context.Context, l *entity.Lead, history ...*entity.LeadHistory) error
	// Update persists the lead and appends the history rows in one transaction.
	Update(ctx context.Context, l *entity.Lead, history ...*entity.LeadHistory) error
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]*entity.Lead, error)
	History(ctx context.Context, leadID string) ([]*entity.LeadHistory, error)
	// FindStale lists leads in status whose last update is older than before.
	FindStale(ctx context.Context, status entity.KanbanStatus, before time.Time) ([]*entity.Lead, error)
	CountByStatus(ctx context.Context, assignedUserID string) (map[entity.KanbanStatus]int, error)
	CountByUser(ctx context.Context) (map[string]int, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByPhone(ctx context.Context, phone string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	// ListSellers returns role=user accounts ordered by (created_at, id).
	ListSellers(ctx context.Context) ([]*entity.User, error)
	// ReserveLead atomically bumps leads_received_today. With respectLimit it
	// only succeeds while the user is under the daily limit.
	ReserveLead(ctx context.Context, userID string, respectLimit bool) (bool, error)
	// ReleaseLead undoes a reservation whose lead could not be stored.
	ReleaseLead(ctx context.Context, userID string) error
	SetWhatsAppStatus(ctx context.Context, id string, status entity.WhatsAppStatus) error
	ResetDailyCounters(ctx context.Context) (int64, error)
}

type TemplateRepository interface {
	// Create and Update clear is_default on every other template when t is the default.
	Create(ctx context.Context, t *entity.MessageTemplate) error
	Update(ctx context.Context, t *entity.MessageTemplate) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*entity.MessageTemplate, error)
	FindDefault(ctx context.Context) (*entity.MessageTemplate, error)
	List(ctx context.Context) ([]*entity.MessageTemplate, error)
}

type SettingsRepository interface {
	// Get returns entity.DefaultSettings when nothing was saved yet.
	Get(ctx context.Context) (entity.Settings, error)
	Save(ctx context.Context, s entity.Settings) error
}

type RemarketingRepository interface {
	Create(ctx context.Context, r *entity.RemarketingRule) error
	Update(ctx context.Context, r *entity.RemarketingRule) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*entity.RemarketingRule, error)
	List(ctx context.Context) ([]*entity.RemarketingRule, error)
	ListActive(ctx context.Context) ([]*entity.RemarketingRule, error)
	// ClaimDispatch records (lead, rule) and reports false when it already existed.
	ClaimDispatch(ctx context.Context, leadID, ruleID string) (bool, error)
	ReleaseDispatch(ctx context.Context, leadID, ruleID string) error
}

type MessageLogRepository interface {
	Create(ctx context.Context, m *entity.MessageLog) error
	ListByLead(ctx context.Context, leadID string) ([]*entity.MessageLog, error)
	FindByExternalID(ctx context.Context, externalID string) (*entity.MessageLog, error)
	UpdateStatus(ctx context.Context, id string, status entity.MessageStatus) error
}

// DistributionCursor is the shared, durable round-robin counter.
type DistributionCursor interface {
	// Next increments the counter under key and returns the new value (first call returns 1).
	Next(ctx context.Context, key string) (int64, error)
}

// OTPStore keeps one pending login code per phone.
type OTPStore interface {
	Put(ctx context.Context, phone, code string, ttl time.Duration) error
	// Get fails with entity.ErrNotFound when no code is pending or it expired.
	Get(ctx context.Context, phone string) (code string, attempts int, err error)
	IncrementAttempts(ctx context.Context, phone string) (int, error)
	Delete(ctx context.Context, phone string) error
}

type WhatsAppGateway interface {
	SendText(ctx context.Context, instance, phone, text string) (string, error)
	ConnectionState(ctx context.Context, instance string) (entity.WhatsAppStatus, error)
	Connect(ctx context.Context, instance string) (string, error)
}

type LeadEventPublisher interface {
	PublishLeadEvent(ctx context.Context, event entity.LeadEvent) error
}

// AlertSender notifies the operator by email.
type AlertSender interface {
	SendUnassignedLeadAlert(lead *entity.Lead) error
	SendWhatsAppOfflineAlert(user *entity.User) error
}

type TokenIssuer interface {
	Issue(session entity.Session) (token string, expiresAt time.Time, err error)
}

// QuizCache holds published quizzes by slug for the public path.
type QuizCache interface {
	Get(slug string) (*entity.Quiz, bool)
	Add(q *entity.Quiz)
	Remove(slug string)
}

type noopQuizCache struct{}

func (noopQuizCache) Get(string) (*entity.Quiz, bool) { return nil, false }
func (noopQuizCache) Add(*entity.Quiz)                {}
func (noopQuizCache) Remove(string)                   {}
