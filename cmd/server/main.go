package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/salon/api/handler"
	"github.com/fastygo/salon/internal/config"
	"github.com/fastygo/salon/internal/hub"
	"github.com/fastygo/salon/internal/infrastructure/buffer"
	kafkaInfra "github.com/fastygo/salon/internal/infrastructure/kafka"
	"github.com/fastygo/salon/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/salon/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/salon/internal/infrastructure/redis"
	"github.com/fastygo/salon/internal/mail"
	"github.com/fastygo/salon/internal/middleware"
	"github.com/fastygo/salon/internal/router"
	"github.com/fastygo/salon/internal/services"
	"github.com/fastygo/salon/internal/services/lifecycle"
	"github.com/fastygo/salon/pkg/clock"
	"github.com/fastygo/salon/pkg/httpcontext"
	"github.com/fastygo/salon/pkg/logger"
	"github.com/fastygo/salon/pkg/token"
	"github.com/fastygo/salon/repository/postgres"
	redisRepo "github.com/fastygo/salon/repository/redis"
	"github.com/fastygo/salon/usecase"
	appointmentUC "github.com/fastygo/salon/usecase/appointment"
	authUC "github.com/fastygo/salon/usecase/auth"
	bookingUC "github.com/fastygo/salon/usecase/booking"
	"github.com/fastygo/salon/usecase/notify"
	profileUC "github.com/fastygo/salon/usecase/profile"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, cancel := manager.Listen(context.Background())
	defer cancel()

	if cfg.JWT.Secret == "" {
		zapLogger.Warn("JWT_SECRET is empty, staff sign-in is disabled")
	}

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pgInfra.Close(pool, zapLogger)
		return nil
	})

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	outbox, err := buffer.Open(cfg.Buffer.Path, "")
	if err != nil {
		zapLogger.Fatal("failed to open mail outbox", zap.Error(err))
	}
	manager.Register("outbox", func(ctx context.Context) error {
		return outbox.Close()
	})

	liveHub := hub.New(cfg.Hub.BufferSize, zapLogger.Named("hub"))

	mon := monitor.New(monitor.Probes{
		Postgres: pool,
		Redis:    monitor.RedisPinger{Client: redisClient},
		Outbox:   outbox,
		Hub:      liveHub,
	}, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	appointmentRepo := postgres.NewAppointmentRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)

	var sender mail.Sender
	if cfg.SMTP.Enabled() {
		sender = mail.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		zapLogger.Warn("SMTP_HOST is empty, outbound email is logged only")
		sender = mail.NewLogSender(zapLogger.Named("mail"))
	}
	mailRelay := services.NewMailRelay(sender, outbox, zapLogger.Named("mail"))

	retryProcessor := services.NewMailRetryProcessor(outbox, sender, notificationRepo, zapLogger.Named("outbox"), services.RetryConfig{
		Interval:   cfg.Buffer.SyncInterval,
		BatchSize:  cfg.Buffer.BatchSize,
		MaxRetries: cfg.Buffer.MaxRetry,
		Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
	})
	retryProcessor.Start()
	manager.Register("mail_retry", func(ctx context.Context) error {
		retryProcessor.Stop(ctx)
		return nil
	})

	var publisher usecase.EventPublisher
	if kafkaPublisher := kafkaInfra.NewPublisher(cfg.Kafka); kafkaPublisher != nil {
		publisher = kafkaPublisher
		manager.Register("kafka", func(ctx context.Context) error {
			return kafkaPublisher.Close()
		})
		zapLogger.Info("event relay enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	systemClock := clock.NewSystem()
	dispatcher := notify.New(liveHub, mailRelay, publisher, notificationRepo, systemClock, zapLogger.Named("notify"), notify.Options{
		StaffEmail:   cfg.Notify.StaffEmail,
		StatusEmails: cfg.Notify.StatusEmails,
		Timeout:      cfg.Notify.DispatchTimeout,
	})
	manager.Register("dispatcher", func(ctx context.Context) error {
		done := make(chan struct{})
		go func() {
			dispatcher.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	bookingUseCase := bookingUC.New(appointmentRepo, catalogRepo, dispatcher, systemClock, zapLogger)
	appointmentUseCase := appointmentUC.New(appointmentRepo, notificationRepo, dispatcher, systemClock, zapLogger)
	authUseCase := authUC.New(userRepo, sessionRepo, token.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer), cfg.JWT.SessionTTL, systemClock, zapLogger)
	profileUseCase := profileUC.New(userRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:         apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile:      apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Appointments: apiHandler.NewAppointmentHandler(bookingUseCase, appointmentUseCase, ctxAdapter, zapLogger),
		Events:       apiHandler.NewEventsHandler(liveHub, cfg.Hub.Heartbeat, ctxAdapter, zapLogger),
		Health:       apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(authUseCase, cfg.Context.RequestTimeout, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      middleware.AccessLog(zapLogger.Named("http"))(r.Handler),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	// Registered last so it runs first: close live streams, then stop accepting requests.
	manager.Register("http_server", func(ctx context.Context) error {
		liveHub.Close()
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
