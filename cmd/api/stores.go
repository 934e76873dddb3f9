package main

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/config"
	"github.com/xavierca1/quizlead-crm/internal/infra/database"
	"github.com/xavierca1/quizlead-crm/internal/infra/http/handlers"
	"github.com/xavierca1/quizlead-crm/internal/infra/memory"
	"github.com/xavierca1/quizlead-crm/internal/infra/redisstore"
	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

// stores groups every persistence port the use cases need.
type stores struct {
	quizzes   usecase.QuizRepository
	leads     usecase.LeadRepository
	users     usecase.UserRepository
	templates usecase.TemplateRepository
	settings  usecase.SettingsRepository
	rules     usecase.RemarketingRepository
	logs      usecase.MessageLogRepository
	cursor    usecase.DistributionCursor
	otp       usecase.OTPStore

	db    *sql.DB
	redis handlers.Pinger
	close func()
}

func memoryStores() *stores {
	return &stores{
		quizzes:   memory.NewQuizStore(),
		leads:     memory.NewLeadStore(),
		users:     memory.NewUserStore(),
		templates: memory.NewTemplateStore(),
		settings:  memory.NewSettingsStore(),
		rules:     memory.NewRemarketingStore(),
		logs:      memory.NewMessageLogStore(),
		cursor:    memory.NewCursor(),
		otp:       memory.NewOTPStore(),
		close:     func() {},
	}
}

// postgresStores keeps the relational data in Postgres and the cursor plus
// OTP codes in Redis.
func postgresStores(cfg *config.Config, logger *zap.Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required (or set USE_MEMORY_STORE=true)")
	}
	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("✅ conectado ao Postgres")

	rdb, err := redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("✅ conectado ao Redis", zap.String("addr", cfg.RedisAddr))

	return &stores{
		quizzes:   database.NewQuizRepository(db),
		leads:     database.NewLeadRepository(db),
		users:     database.NewUserRepository(db),
		templates: database.NewTemplateRepository(db),
		settings:  database.NewSettingsRepository(db),
		rules:     database.NewRemarketingRepository(db),
		logs:      database.NewMessageLogRepository(db),
		cursor:    redisstore.NewCursor(rdb),
		otp:       redisstore.NewOTPStore(rdb),
		db:        db,
		redis: handlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}),
		close: func() {
			_ = rdb.Close()
			_ = db.Close()
		},
	}, nil
}
