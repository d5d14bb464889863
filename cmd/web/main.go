package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/edusurvey/edusurvey/internal/app"
	"github.com/edusurvey/edusurvey/internal/config"
	"github.com/edusurvey/edusurvey/internal/logger"
	"github.com/edusurvey/edusurvey/internal/notify"
	"github.com/edusurvey/edusurvey/internal/server"
	"github.com/edusurvey/edusurvey/internal/session"
)

var version = "dev" // Will be set during build with -ldflags

// noticeBacklog bounds the toasts kept until the next page render
const noticeBacklog = 20

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	notices := notify.NewQueue(noticeBacklog)

	a, err := app.New(cfg, log, app.Options{Notifier: notices})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Pages render a loading indicator until this resolves
	a.Session.Start(ctx)

	if cfg.Session.Revalidate != "" {
		revalidator, err := session.StartRevalidation(a.Session, cfg.Session.Revalidate, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule session revalidation")
		}
		defer revalidator.Stop()
	}

	srv := server.New(cfg, a.Session, a.Client, notices, log, version)

	log.Info().Str("version", version).Msg("Starting EduSurvey web UI...")

	if err := srv.Start(ctx); err != nil {
		log.Error().Err(err).Msg("Web UI stopped with error")
		os.Exit(1)
	}
}
