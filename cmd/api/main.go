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

	"calmerge/config"
	_ "calmerge/docs"
	"calmerge/internal/adapters/auth"
	"calmerge/internal/adapters/email"
	"calmerge/internal/adapters/summarizer"
	delivery "calmerge/internal/delivery/http"
	"calmerge/internal/delivery/http/controllers"
	"calmerge/internal/delivery/http/middleware"
	"calmerge/internal/domain"
	"calmerge/internal/repository/postgres"
	"calmerge/internal/services"
)

const serviceTimeout = 5 * time.Second

// @title CalMerge API
// @version 1.0
// @description Calendar event management with overlap detection and merge resolution.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	auditRepo := postgres.NewAuditLogRepository(db)
	uow := postgres.NewMergeUnitOfWork(db)

	hasher := auth.NewBcryptHasher(10)
	tokens := auth.NewJWTManager(cfg.JWTSecret)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.SESRegion,
			AccessKeyID:     cfg.Email.SESAccessKeyID,
			SecretAccessKey: cfg.Email.SESSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "error", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())

	summaryService := buildSummarizer(cfg)
	var worker *summarizer.Worker
	if summaryService != nil && cfg.Summarizer.QueueSize > 0 {
		worker = summarizer.NewWorker(summaryService, auditRepo, cfg.Summarizer.QueueSize, cfg.Summarizer.Timeout, logger)
		worker.Start()
		defer worker.Stop()
	}

	userService := services.NewUserService(userRepo, hasher, tokens, cfg.JWTExpiry, emailService)
	eventService := services.NewEventService(eventRepo, userRepo, serviceTimeout)
	mergeService := services.NewMergeService(userRepo, eventRepo, auditRepo, uow,
		summaryService, queueOrNil(worker), emailService, logger, serviceTimeout)

	userController := controllers.NewUserController(logger, userService)
	eventController := controllers.NewEventController(logger, eventService)
	mergeController := controllers.NewMergeController(logger, mergeService)

	authWrap := middleware.RequireAuth(tokens, logger)
	mux := delivery.NewRouter(userController, eventController, mergeController, authWrap)

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSOrigins, mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildSummarizer(cfg *config.Config) domain.Summarizer {
	if cfg.Summarizer.URL == "" {
		return nil
	}
	client := &http.Client{Timeout: cfg.Summarizer.Timeout}
	return summarizer.NewHTTPSummarizer(client, cfg.Summarizer.URL)
}

func queueOrNil(w *summarizer.Worker) domain.SummaryQueue {
	if w == nil {
		return nil
	}
	return w
}
