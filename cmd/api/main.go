package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	bolt "go.etcd.io/bbolt"

	"commondays/config"
	_ "commondays/docs"
	"commondays/internal/actor"
	"commondays/internal/adapters/auth"
	"commondays/internal/adapters/email"
	httpdelivery "commondays/internal/delivery/http"
	"commondays/internal/delivery/http/controllers"
	"commondays/internal/delivery/http/middleware"
	"commondays/internal/domain"
	boltrepo "commondays/internal/repository/bolt"
	"commondays/internal/repository/postgres"
	"commondays/internal/services"
)

const serviceTimeout = 5 * time.Second

// @title commondays API
// @version 1.0
// @description Day-level mutual availability coordination.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	var (
		eventRepo domain.EventRepository
		guestRepo domain.GuestRepository
	)

	switch cfg.StoreBackend {
	case "postgres":
		db, err := sql.Open("postgres", cfg.DBUrl)
		if err != nil {
			logger.Error("could not open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Error("could not reach database", "error", err)
			os.Exit(1)
		}
		eventRepo = postgres.NewEventRepository(db)
		guestRepo = postgres.NewGuestRepository(db)
	case "bolt":
		db, err := bolt.Open(cfg.BoltPath, 0600, &bolt.Options{Timeout: time.Second})
		if err != nil {
			logger.Error("could not open bolt store", "path", cfg.BoltPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()
		eventRepo, err = boltrepo.NewEventRepository(db)
		if err != nil {
			logger.Error("could not initialize event bucket", "error", err)
			os.Exit(1)
		}
		guestRepo, err = boltrepo.NewGuestRepository(db)
		if err != nil {
			logger.Error("could not initialize guest bucket", "error", err)
			os.Exit(1)
		}
	default:
		logger.Error("unknown store backend", "backend", cfg.StoreBackend)
		os.Exit(1)
	}

	keys := actor.NewKeys()
	guestService := services.NewGuestService(guestRepo, keys, serviceTimeout)
	eventService := services.NewEventService(eventRepo, guestService, keys, cfg.PublicBaseURL, cfg.FanoutTimeout, serviceTimeout)
	aggregator := services.NewAggregator(eventService, cfg.AggregateMaxStaleness, logger)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFrom,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretKey,
			InsecureSkipVerify: cfg.SESInsecureTLS,
		},
	})
	if err != nil {
		logger.Error("could not initialize mailer", "error", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())

	var verifier domain.TokenVerifier
	if cfg.AuthSecret != "" {
		verifier = auth.NewJWTVerifier(cfg.AuthSecret)
	} else {
		logger.Warn("AUTH_SECRET not set, bearer token check disabled")
	}

	eventController := controllers.NewEventController(logger, eventService, aggregator, emailService)
	guestController := controllers.NewGuestController(logger, guestService, aggregator)

	mux := httpdelivery.NewRouter(eventController, guestController, verifier)
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("start and listen", "address", srv.Addr, "backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if closer, ok := aggregator.(interface{ Close() }); ok {
		closer.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}
