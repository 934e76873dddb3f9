package usecase

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

const (
	otpDigits      = 6
	otpMaxAttempts = 3
	defaultOTPTTL  = 5 * time.Minute
)

type AuthOutput struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *entity.User `json:"user"`
}

type AuthUseCase struct {
	Users       UserRepository
	OTP         OTPStore
	Gateway     WhatsAppGateway
	Tokens      TokenIssuer
	OTPInstance string
	OTPTTL      time.Duration
	Logger      *zap.Logger
}

func NewAuthUseCase(
	users UserRepository,
	otp OTPStore,
	gateway WhatsAppGateway,
	tokens TokenIssuer,
	otpInstance string,
	otpTTL time.Duration,
	logger *zap.Logger,
) *AuthUseCase {
	if otpTTL <= 0 {
		otpTTL = defaultOTPTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthUseCase{
		Users:       users,
		OTP:         otp,
		Gateway:     gateway,
		Tokens:      tokens,
		OTPInstance: otpInstance,
		OTPTTL:      otpTTL,
		Logger:      logger,
	}
}

// LoginAdmin checks email and password of an admin account.
func (uc *AuthUseCase) LoginAdmin(ctx context.Context, email, password string) (*AuthOutput, error) {
	user, err := uc.Users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, entity.ErrNotFound) {
		return nil, domainError(entity.ErrInvalidCredentials, "")
	}
	if err != nil {
		return nil, databaseError("failed to load user", err)
	}
	if !user.IsAdmin() || user.PasswordHash == "" {
		return nil, domainError(entity.ErrInvalidCredentials, "")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domainError(entity.ErrInvalidCredentials, "")
	}
	return uc.issue(user)
}

// RequestOTP sends a one-time login code to a seller over WhatsApp.
func (uc *AuthUseCase) RequestOTP(ctx context.Context, rawPhone string) error {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return domainError(err, "")
	}
	user, err := uc.Users.FindByPhone(ctx, phone)
	if err != nil {
		return domainError(err, "failed to load user")
	}
	if user.Role != entity.RoleUser {
		return domainError(entity.ErrUserNotFound, "")
	}

	code, err := generateOTP()
	if err != nil {
		return &TechnicalError{Code: "OTP_ERROR", Message: "failed to generate code", Err: err}
	}
	if err := uc.OTP.Put(ctx, phone, code, uc.OTPTTL); err != nil {
		return &TechnicalError{Code: CodeDatabase, Message: "failed to store code", Err: err}
	}

	text := fmt.Sprintf("Seu código de acesso é %s. Ele expira em %d minutos.", code, int(uc.OTPTTL.Minutes()))
	if _, err := uc.Gateway.SendText(ctx, uc.OTPInstance, WhatsAppNumber(phone), text); err != nil {
		_ = uc.OTP.Delete(ctx, phone)
		return &TechnicalError{Code: CodeIntegration, Message: "failed to deliver code", Err: err}
	}
	uc.Logger.Info("código OTP enviado", zap.String("user_id", user.ID))
	return nil
}

// VerifyOTP exchanges a valid code for a token. A code survives at most
// three wrong guesses.
func (uc *AuthUseCase) VerifyOTP(ctx context.Context, rawPhone, code string) (*AuthOutput, error) {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return nil, domainError(err, "")
	}
	stored, attempts, err := uc.OTP.Get(ctx, phone)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, domainError(entity.ErrInvalidCredentials, "")
	}
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to load code", Err: err}
	}
	if attempts >= otpMaxAttempts {
		_ = uc.OTP.Delete(ctx, phone)
		return nil, domainError(entity.ErrInvalidCredentials, "")
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(code))) != 1 {
		n, err := uc.OTP.IncrementAttempts(ctx, phone)
		if err == nil && n >= otpMaxAttempts {
			_ = uc.OTP.Delete(ctx, phone)
		}
		return nil, domainError(entity.ErrInvalidCredentials, "")
	}

	_ = uc.OTP.Delete(ctx, phone)
	user, err := uc.Users.FindByPhone(ctx, phone)
	if err != nil {
		return nil, domainError(err, "failed to load user")
	}
	return uc.issue(user)
}

func (uc *AuthUseCase) issue(user *entity.User) (*AuthOutput, error) {
	token, exp, err := uc.Tokens.Issue(entity.Session{UserID: user.ID, Role: user.Role})
	if err != nil {
		return nil, &TechnicalError{Code: "TOKEN_ERROR", Message: "failed to issue token", Err: err}
	}
	return &AuthOutput{Token: token, ExpiresAt: exp, User: user}, nil
}

func generateOTP() (string, error) {
	limit := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}
