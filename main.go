package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eventsdhaka/discovery/config"
	"github.com/eventsdhaka/discovery/internal/consumer"
	"github.com/eventsdhaka/discovery/internal/handler"
	"github.com/eventsdhaka/discovery/internal/mailer"
	"github.com/eventsdhaka/discovery/internal/middleware"
	"github.com/eventsdhaka/discovery/internal/reminder"
	"github.com/eventsdhaka/discovery/internal/repository"
	"github.com/eventsdhaka/discovery/internal/service"
	"github.com/eventsdhaka/discovery/internal/trending"
	"github.com/eventsdhaka/discovery/pkg/cache"
	"github.com/eventsdhaka/discovery/pkg/database"
	"github.com/eventsdhaka/discovery/pkg/logger"
	"github.com/eventsdhaka/discovery/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogPretty)
	loc := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	// The bus is optional: without it domain events are not published and
	// dispatch is only triggered over HTTP.
	var (
		publisher         service.Publisher
		reminderPublisher reminder.Publisher
	)
	mqPublisher, err := rabbitmq.NewPublisher(cfg.RabbitURL, log)
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq unavailable, domain events disabled")
	} else {
		defer mqPublisher.Close()
		publisher, reminderPublisher = mqPublisher, mqPublisher
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	saveRepo := repository.NewSaveRepository(db, reminderRepo)
	reportRepo := repository.NewReportRepository(db)
	clickRepo := repository.NewClickRepository(db)

	// Services
	scorer := trending.NewScorer(repository.Popularity{ClickRepository: clickRepo, SaveRepository: saveRepo})
	eventSvc := service.NewEventService(eventRepo, userRepo, clickRepo, scorer, publisher, loc, cfg.SiteHost, log)
	saveSvc := service.NewSaveService(saveRepo, eventRepo)
	reminderSvc := service.NewReminderService(reminderRepo, eventRepo)
	reportSvc := service.NewReportService(reportRepo, eventRepo, publisher, log)

	mail := mailer.New(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom, cfg.SiteHost, log)
	lock := cache.NewLock(redisClient, "lock:reminder-dispatch", uuid.NewString(), cfg.DispatchLockTTL)
	dispatcher := reminder.NewDispatcher(reminderRepo, mail, lock, reminderPublisher, loc, cfg.DispatchBatchSize, log)

	// RabbitMQ consumer: dispatch triggers from other services
	var dispatchConsumer *consumer.DispatchConsumer
	if mqPublisher != nil {
		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, "discovery.reminders", consumer.RoutingKey, log)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq consumer unavailable")
		} else {
			defer mqConsumer.Close()
			msgs, err := mqConsumer.Consume()
			if err != nil {
				log.Fatal().Err(err).Msg("failed to start consuming")
			}
			dispatchConsumer = consumer.NewDispatchConsumer(dispatcher, log)
			dispatchConsumer.Start(ctx, msgs)
		}
	}

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler(log)
	if e.IPExtractor, err = middleware.IPExtractor(cfg.TrustedProxies); err != nil {
		log.Fatal().Err(err).Msg("invalid TRUSTED_PROXIES")
	}
	e.Use(middleware.Correlation())
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Info().
				Str("correlation_id", middleware.CorrelationID(c)).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		status := map[string]string{"status": "ok", "service": "discovery", "database": "ok", "redis": "ok"}
		code := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
			status["database"], status["status"], code = "down", "degraded", http.StatusServiceUnavailable
		}
		if err := cache.HealthCheck(c.Request().Context(), redisClient); err != nil {
			status["redis"], status["status"], code = "down", "degraded", http.StatusServiceUnavailable
		}
		return c.JSON(code, status)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	limiter := middleware.NewRateLimiter(redisClient, cfg.RateLimitWindow, log)
	api := e.Group("/api/v1", middleware.Identity(userRepo))
	handler.NewEventHandler(eventSvc, reportSvc).RegisterRoutes(api.Group("/events"), limiter)
	handler.NewSaveHandler(saveSvc).RegisterRoutes(api, limiter)
	handler.NewReminderHandler(reminderSvc, dispatcher, log).RegisterRoutes(api.Group("/reminders"), limiter, cfg.CronSecret)
	handler.NewReportHandler(reportSvc).RegisterRoutes(api, limiter)
	handler.NewSubmissionHandler(eventSvc).RegisterRoutes(api, limiter)

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("discovery service starting")
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if dispatchConsumer != nil {
		dispatchConsumer.Stop()
	}
}
