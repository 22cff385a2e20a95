// @title Event Registration API
// @version 1.0
// @description Create events, register attendees within capacity, and manage registrations.
// @host localhost:8080
// @BasePath /
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventregistration/config"
	"eventregistration/docs"
	"eventregistration/internal/adapters/email"
	delivery "eventregistration/internal/delivery/http"
	"eventregistration/internal/delivery/http/controllers"
	"eventregistration/internal/repository/postgres"
	"eventregistration/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := config.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("connected to postgres")

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		logger.Info("schema applied")
	}

	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return err
	}
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SES: email.SESConfig{
			Region:             cfg.Mail.SES.Region,
			AccessKeyID:        cfg.Mail.SES.AccessKeyID,
			SecretAccessKey:    cfg.Mail.SES.SecretAccessKey,
			InsecureSkipVerify: cfg.Mail.SES.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return err
	}

	eventRepo := postgres.NewEventRepository(db)
	attendeeRepo := postgres.NewAttendeeRepository(db)
	emailSvc := services.NewEmailService(mailer, renderer)
	eventSvc := services.NewEventService(eventRepo, attendeeRepo, cfg.RequestTimeout)
	attendeeSvc := services.NewAttendeeService(eventRepo, attendeeRepo, emailSvc, logger, cfg.RequestTimeout, cfg.StrictCapacity)

	mux := delivery.NewRouter(
		controllers.NewEventController(logger, eventSvc, attendeeSvc),
		controllers.NewAttendeeController(logger, attendeeSvc),
		controllers.NewHealthController(logger, db),
	)
	docs.SwaggerInfo.Host = "localhost:" + cfg.Port

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      delivery.NewHandler(mux, logger, cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment, "strict_capacity", cfg.StrictCapacity)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
