package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type UserInput struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	DailyLeadLimit int    `json:"daily_lead_limit"`
	Priority       int    `json:"priority"`
}

type UserUseCase struct {
	Users    UserRepository
	Settings SettingsRepository
	Alerts   AlertSender
	Logger   *zap.Logger
}

func NewUserUseCase(users UserRepository, settings SettingsRepository, alerts AlertSender, logger *zap.Logger) *UserUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserUseCase{Users: users, Settings: settings, Alerts: alerts, Logger: logger}
}

func (uc *UserUseCase) Create(ctx context.Context, s entity.Session, in UserInput) (*entity.User, error) {
	if err := requireAdmin(s); err != nil {
		return nil, err
	}
	phone, err := NormalizePhone(in.Phone)
	if err != nil {
		return nil, domainError(err, "")
	}
	user, err := entity.NewSeller(in.Name, phone, in.DailyLeadLimit, in.Priority)
	if err != nil {
		return nil, domainError(err, "")
	}
	if err := uc.Users.Create(ctx, user); err != nil {
		return nil, domainError(err, "failed to create user")
	}
	return user, nil
}

func (uc *UserUseCase) Update(ctx context.Context, s entity.Session, id string, in UserInput) (*entity.User, error) {
	if err := requireAdmin(s); err != nil {
		return nil, err
	}
	user, err := uc.Users.FindByID(ctx, id)
	if err != nil {
		return nil, domainError(err, "failed to load user")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domainError(entity.ValidationError{Field: "name", Message: "is required"}, "")
	}
	if user.Role == entity.RoleUser || in.Phone != "" {
		phone, err := NormalizePhone(in.Phone)
		if err != nil {
			return nil, domainError(err, "")
		}
		user.Phone = phone
	}
	user.Name = name
	if in.DailyLeadLimit > 0 {
		user.DailyLeadLimit = in.DailyLeadLimit
	}
	user.Priority = in.Priority
	if err := uc.Users.Update(ctx, user); err != nil {
		return nil, domainError(err, "failed to update user")
	}
	return user, nil
}

func (uc *UserUseCase) Delete(ctx context.Context, s entity.Session, id string) error {
	if err := requireAdmin(s); err != nil {
		return err
	}
	if id == s.UserID {
		return domainError(entity.ValidationError{Field: "id", Message: "cannot delete yourself"}, "")
	}
	if err := uc.Users.Delete(ctx, id); err != nil {
		return domainError(err, "failed to delete user")
	}
	return nil
}

func (uc *UserUseCase) Get(ctx context.Context, s entity.Session, id string) (*entity.User, error) {
	if !s.IsAdmin() && s.UserID != id {
		return nil, domainError(entity.ErrForbidden, "")
	}
	user, err := uc.Users.FindByID(ctx, id)
	if err != nil {
		return nil, domainError(err, "failed to load user")
	}
	return user, nil
}

func (uc *UserUseCase) List(ctx context.Context, s entity.Session) ([]*entity.User, error) {
	if err := requireAdmin(s); err != nil {
		return nil, err
	}
	users, err := uc.Users.List(ctx)
	if err != nil {
		return nil, databaseError("failed to list users", err)
	}
	return users, nil
}

// SetWhatsAppStatus stores a seller's connection state. Sellers may only
// change their own. Going offline alerts the operator when enabled.
func (uc *UserUseCase) SetWhatsAppStatus(ctx context.Context, s entity.Session, id, status string) (*entity.User, error) {
	st, err := entity.ParseWhatsAppStatus(status)
	if err != nil {
		return nil, domainError(err, "")
	}
	user, err := uc.Get(ctx, s, id)
	if err != nil {
		return nil, err
	}
	if err := uc.applyWhatsAppStatus(ctx, user, st); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *UserUseCase) applyWhatsAppStatus(ctx context.Context, user *entity.User, st entity.WhatsAppStatus) error {
	previous := user.WhatsAppStatus
	if previous == st {
		return nil
	}
	if err := uc.Users.SetWhatsAppStatus(ctx, user.ID, st); err != nil {
		return domainError(err, "failed to update whatsapp status")
	}
	user.WhatsAppStatus = st

	if st != entity.WhatsAppOffline || previous != entity.WhatsAppOnline || uc.Alerts == nil {
		return nil
	}
	settings, err := uc.Settings.Get(ctx)
	if err != nil {
		uc.Logger.Warn("falha ao carregar configurações", zap.Error(err))
		return nil
	}
	if settings.NotifyWhatsAppOffline {
		if err := uc.Alerts.SendWhatsAppOfflineAlert(user); err != nil {
			uc.Logger.Error("falha ao enviar alerta de whatsapp offline", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return nil
}

// ResetDailyCounters zeroes leads_received_today for everyone.
func (uc *UserUseCase) ResetDailyCounters(ctx context.Context) (int64, error) {
	n, err := uc.Users.ResetDailyCounters(ctx)
	if err != nil {
		return 0, databaseError("failed to reset daily counters", err)
	}
	return n, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func (uc *UserUseCase) EnsureAdmin(ctx context.Context, name, email, password string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domainError(entity.ValidationError{Field: "email", Message: "admin email and password are required"}, "")
	}
	existing, err := uc.Users.FindByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return nil, databaseError("failed to load admin", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, &TechnicalError{Code: "HASH_ERROR", Message: "failed to hash password", Err: err}
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrador"
	}
	admin := &entity.User{
		ID:             uuid.New().String(),
		Name:           name,
		Email:          email,
		PasswordHash:   string(hash),
		Role:           entity.RoleAdmin,
		WhatsAppStatus: entity.WhatsAppOffline,
		DailyLeadLimit: entity.DefaultDailyLeadLimit,
		CreatedAt:      time.Now(),
	}
	if err := uc.Users.Create(ctx, admin); err != nil {
		return nil, databaseError("failed to create admin", err)
	}
	uc.Logger.Info("admin criado", zap.String("email", email))
	return admin, nil
}
