package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/config"
	"github.com/xavierca1/quizlead-crm/internal/entity"
	"github.com/xavierca1/quizlead-crm/internal/infra/auth"
	"github.com/xavierca1/quizlead-crm/internal/infra/cache"
	"github.com/xavierca1/quizlead-crm/internal/infra/http/handlers"
	"github.com/xavierca1/quizlead-crm/internal/infra/http/middleware"
	"github.com/xavierca1/quizlead-crm/internal/infra/integration/whatsapp"
	"github.com/xavierca1/quizlead-crm/internal/infra/mail"
	"github.com/xavierca1/quizlead-crm/internal/infra/queue"
	"github.com/xavierca1/quizlead-crm/internal/infra/worker"
	"github.com/xavierca1/quizlead-crm/internal/logging"
	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logging.New("quizlead-crm", cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("falha ao iniciar logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Armazenamento
	var st *stores
	if cfg.UseMemoryStore {
		logger.Warn("⚠️ USE_MEMORY_STORE ativo: dados não persistem entre reinícios")
		st = memoryStores()
	} else {
		st, err = postgresStores(cfg, logger)
		if err != nil {
			logger.Fatal("❌ falha ao conectar no armazenamento", zap.Error(err))
		}
	}
	defer st.close()

	// 2. Gateways e Adapters
	gateway := whatsapp.NewClient(cfg.EvolutionURL, cfg.EvolutionAPIKey, logger.Named("evolution"))
	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	if cfg.JWTSecret == "" {
		logger.Warn("⚠️ JWT_SECRET vazio: login desabilitado")
	}

	var alerts usecase.AlertSender
	if cfg.MailEnabled() {
		alerts = mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom, cfg.AlertEmail, cfg.PublicBaseURL)
	} else {
		logger.Warn("⚠️ MAIL_HOST/ALERT_EMAIL não configurados: alertas por email desativados")
	}

	// 3. UseCases
	quizUC := usecase.NewQuizUseCase(st.quizzes, cache.NewQuizCache(cfg.QuizCacheSize, cfg.QuizCacheTTL), logger)
	userUC := usecase.NewUserUseCase(st.users, st.settings, alerts, logger)
	leadUC := usecase.NewLeadUseCase(st.leads, st.users, logger)
	messagingUC := usecase.NewMessagingUseCase(
		st.leads, st.users, st.templates, st.settings, st.logs,
		gateway, alerts, cfg.EvolutionDefaultInstance, logger,
	)
	messagingUC.OnSent = func(status entity.MessageStatus) {
		middleware.RecordWhatsAppMessage(string(status))
	}
	remarketingUC := usecase.NewRemarketingUseCase(st.rules, st.leads, st.templates, st.settings, messagingUC, logger)
	authUC := usecase.NewAuthUseCase(st.users, st.otp, gateway, tokens, cfg.EvolutionOTPInstance, cfg.OTPTTL, logger)
	whatsappUC := usecase.NewWhatsAppUseCase(gateway, userUC, logger)

	// 4. Eventos de lead: RabbitMQ quando configurado, senão em processo
	var (
		publisher usecase.LeadEventPublisher
		rabbitMQ  handlers.Pinger
	)
	if cfg.RabbitMQURL != "" && !cfg.UseMemoryStore {
		rmq, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			logger.Fatal("❌ falha ao conectar no RabbitMQ", zap.Error(err))
		}
		defer rmq.Close()

		publisher = queue.NewProducer(rmq.Ch)
		rabbitMQ = handlers.PingFunc(func(context.Context) error {
			if !rmq.Healthy() {
				return errors.New("connection closed")
			}
			return nil
		})

		consumer := queue.NewWorker(rmq.Ch, messagingUC, logger.Named("lead-events"))
		consumer.OnProcessed = middleware.RecordLeadEvent
		go func() {
			if err := consumer.Start(ctx, queue.QueueName); err != nil {
				logger.Error("❌ consumidor de eventos parou", zap.Error(err))
			}
		}()
		logger.Info("✅ conectado ao RabbitMQ")
	} else {
		publisher = queue.NewInlinePublisher(messagingUC, logger)
	}

	distributor := usecase.NewDistributor(st.users, st.cursor, logger)
	submissionUC := usecase.NewSubmissionUseCase(quizUC, st.leads, st.settings, distributor, publisher, logger)

	if cfg.AdminEmail != "" {
		if _, err := userUC.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Fatal("❌ falha ao criar admin", zap.Error(err))
		}
	}

	// 5. Workers
	go worker.NewRemarketingWorker(remarketingUC, cfg.RemarketingInterval, logger.Named("remarketing")).Start(ctx)
	go worker.NewDailyResetWorker(userUC, cfg.Location(), logger.Named("daily-reset")).Start(ctx)

	// 6. Handlers e Router
	trustedProxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.Fatal("❌ TRUSTED_PROXIES inválido", zap.Error(err))
	}

	router := &handlers.Router{
		Public:      handlers.NewPublicQuizHandler(quizUC, submissionUC, logger),
		Auth:        handlers.NewAuthHandler(authUC, logger),
		Quizzes:     handlers.NewQuizHandler(quizUC, logger),
		Leads:       handlers.NewLeadHandler(leadUC, messagingUC, logger),
		Users:       handlers.NewUserHandler(userUC, logger),
		Templates:   handlers.NewTemplateHandler(usecase.NewTemplateUseCase(st.templates), logger),
		Settings:    handlers.NewSettingsHandler(usecase.NewSettingsUseCase(st.settings), logger),
		Remarketing: handlers.NewRemarketingHandler(remarketingUC, logger),
		Dashboard:   handlers.NewDashboardHandler(usecase.NewDashboardUseCase(st.leads, st.users), logger),
		WhatsApp:    handlers.NewWhatsAppHandler(whatsappUC, logger),
		Webhook:     handlers.NewWebhookHandler(whatsappUC, messagingUC, cfg.EvolutionWebhookSecret, logger),
		Health:      handlers.NewHealthHandler(st.db, st.redis, rabbitMQ),

		Tokens:         tokens,
		AllowedOrigins: cfg.CORSOrigins,
		PublicLimit:    cfg.PublicRateLimit,
		TrustedProxies: trustedProxies,
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("falha no shutdown", zap.Error(err))
		}
	}()

	logger.Info("🔥 QuizLead CRM rodando", zap.String("port", cfg.Port), zap.Bool("memory_store", cfg.UseMemoryStore))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("❌ servidor parou", zap.Error(err))
	}
}
