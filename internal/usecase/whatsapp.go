package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type WhatsAppSession struct {
	Status entity.WhatsAppStatus `json:"status"`
	QRCode string                `json:"qr_code,omitempty"`
}

// WhatsAppUseCase manages the Evolution instance each seller sends from.
type WhatsAppUseCase struct {
	Gateway WhatsAppGateway
	Users   *UserUseCase
	Logger  *zap.Logger
}

func NewWhatsAppUseCase(gateway WhatsAppGateway, users *UserUseCase, logger *zap.Logger) *WhatsAppUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsAppUseCase{Gateway: gateway, Users: users, Logger: logger}
}

// Status asks Evolution for the session state and stores it on the user.
func (uc *WhatsAppUseCase) Status(ctx context.Context, s entity.Session) (*WhatsAppSession, error) {
	user, err := uc.Users.Get(ctx, s, s.UserID)
	if err != nil {
		return nil, err
	}
	st, err := uc.Gateway.ConnectionState(ctx, user.WhatsAppInstance())
	if err != nil {
		return nil, &TechnicalError{Code: CodeIntegration, Message: "failed to query whatsapp instance", Err: err}
	}
	if err := uc.Users.applyWhatsAppStatus(ctx, user, st); err != nil {
		return nil, err
	}
	return &WhatsAppSession{Status: st}, nil
}

// Connect starts pairing and returns the QR code to scan.
func (uc *WhatsAppUseCase) Connect(ctx context.Context, s entity.Session) (*WhatsAppSession, error) {
	user, err := uc.Users.Get(ctx, s, s.UserID)
	if err != nil {
		return nil, err
	}
	qr, err := uc.Gateway.Connect(ctx, user.WhatsAppInstance())
	if err != nil {
		return nil, &TechnicalError{Code: CodeIntegration, Message: "failed to connect whatsapp instance", Err: err}
	}
	if err := uc.Users.applyWhatsAppStatus(ctx, user, entity.WhatsAppConnecting); err != nil {
		return nil, err
	}
	uc.Logger.Info("whatsapp aguardando leitura do QR code", zap.String("user_id", user.ID))
	return &WhatsAppSession{Status: entity.WhatsAppConnecting, QRCode: qr}, nil
}

// ApplyConnectionUpdate handles a connection webhook for an instance.
func (uc *WhatsAppUseCase) ApplyConnectionUpdate(ctx context.Context, instance string, st entity.WhatsAppStatus) error {
	users, err := uc.Users.Users.List(ctx)
	if err != nil {
		return databaseError("failed to list users", err)
	}
	for _, u := range users {
		if u.WhatsAppInstance() == instance {
			return uc.Users.applyWhatsAppStatus(ctx, u, st)
		}
	}
	uc.Logger.Debug("instância desconhecida", zap.String("instance", instance))
	return nil
}
