package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/thejerf/suture/v4"

	"github.com/xavierca1/leaddesk/internal/config"
	"github.com/xavierca1/leaddesk/internal/entity"
	"github.com/xavierca1/leaddesk/internal/infra/auth"
	"github.com/xavierca1/leaddesk/internal/infra/database"
	"github.com/xavierca1/leaddesk/internal/infra/http/handlers"
	"github.com/xavierca1/leaddesk/internal/infra/http/middleware"
	"github.com/xavierca1/leaddesk/internal/infra/integration/whatsapp"
	"github.com/xavierca1/leaddesk/internal/infra/mail"
	"github.com/xavierca1/leaddesk/internal/infra/queue"
	"github.com/xavierca1/leaddesk/internal/infra/realtime"
	"github.com/xavierca1/leaddesk/internal/infra/worker"
	"github.com/xavierca1/leaddesk/internal/logging"
	"github.com/xavierca1/leaddesk/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Configuração inválida")
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Falha ao conectar no Postgres")
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("❌ Falha ao aplicar migrations")
	}

	// 1. Repositórios
	leadRepo := database.NewLeadRepository(db)
	ledger := database.NewNotificationRepository(db)
	settingRepo := database.NewSettingRepository(db)

	// 2. Adapters externos
	mailSender := mail.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	waClient := whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.AdapterTimeout)
	hub := realtime.NewHub()
	metrics := middleware.PromRecorder{}

	jwtManager, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Falha ao configurar JWT")
	}
	authenticator := auth.NewAuthenticator(cfg.AdminEmail, cfg.AdminPasswordHash, jwtManager)

	// 3. UseCases
	resolver := usecase.NewSettingsResolver(settingRepo, usecase.SettingsDefaults{
		NotifyEmails:          cfg.AdminNotifyEmails,
		NotifyWhatsAppNumbers: cfg.AdminWhatsAppNumbers,
		WhatsApp: usecase.WhatsAppConfig{
			Provider:      entity.WhatsAppProvider(cfg.WhatsAppProvider),
			AccessToken:   cfg.WhatsAppAccessToken,
			PhoneNumberID: cfg.WhatsAppPhoneNumberID,
		},
		RateLimitPerHour: cfg.LeadRateLimit,
		AdminBaseURL:     cfg.AdminBaseURL,
	})

	emailChannel := usecase.NewEmailChannel(mailSender, cfg.SMTPConfigured())
	waChannel := usecase.NewWhatsAppChannel(waClient)

	notifyUC := usecase.NewNotifyLeadUseCase(
		leadRepo, ledger, resolver,
		[]usecase.ChannelAdapter{emailChannel, waChannel},
		hub, metrics, cfg.AdapterTimeout,
	)
	replyUC := usecase.NewReplyLeadUseCase(leadRepo, ledger, resolver, waChannel, emailChannel, cfg.AdapterTimeout)
	updateUC := usecase.NewUpdateLeadUseCase(leadRepo)
	queryUC := usecase.NewQueryLeadUseCase(leadRepo, ledger)
	settingsUC := usecase.NewSettingsUseCase(settingRepo, resolver)

	// 4. Supervisor: HTTP, hub e o worker de notificação
	sup := suture.New("leaddesk", suture.Spec{
		EventHook: func(e suture.Event) {
			log.Warn().Fields(e.Map()).Msg("⚠️ " + e.String())
		},
	})
	sup.Add(hub)

	var dispatcher usecase.Dispatcher
	var broker handlers.BrokerStatus

	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Falha ao conectar no RabbitMQ")
		}
		defer rabbitMQ.Close()

		dispatcher = queue.NewProducer(rabbitMQ.Ch)
		broker = rabbitMQ
		sup.Add(queue.NewWorker(rabbitMQ.Ch, notifyUC))
		log.Info().Msg("🐇 Notificações via RabbitMQ")
	} else {
		pool := worker.NewDispatcher(notifyUC, cfg.DispatchWorkers, 256)
		dispatcher = pool
		sup.Add(pool)
		log.Info().Int("workers", cfg.DispatchWorkers).Msg("⚙️ Notificações via pool em processo")
	}

	captureUC := usecase.NewCaptureLeadUseCase(leadRepo, dispatcher, hub, metrics)

	// 5. Handlers e router
	router := handlers.NewRouter(handlers.RouterConfig{
		Lead:             handlers.NewLeadHandler(captureUC, queryUC, updateUC, notifyUC, replyUC),
		Notifications:    handlers.NewNotificationHandler(queryUC),
		Settings:         handlers.NewSettingsHandler(settingsUC),
		Auth:             handlers.NewAuthHandler(authenticator),
		Health:           handlers.NewHealthHandler(db, broker),
		Realtime:         handlers.NewRealtimeHandler(hub, jwtManager),
		Tokens:           jwtManager,
		SettingsProvider: resolver,
		RateLimit:        cfg.LeadRateLimit,
		RateWindow:       cfg.LeadRateWindow,
		CORSOrigins:      cfg.CORSOrigins,
		TrustProxy:       cfg.TrustProxy,
	})

	sup.Add(newHTTPServer(":"+cfg.Port, router))

	log.Info().Str("port", cfg.Port).Msg("🔥 LeadDesk rodando")
	if err := sup.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("❌ Supervisor encerrado com erro")
	}
	log.Info().Msg("👋 LeadDesk encerrado")
}
