// Package app wires configuration, credentials, the API client and the
// session store into one process-wide application.
package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/edusurvey/edusurvey/internal/client"
	"github.com/edusurvey/edusurvey/internal/config"
	"github.com/edusurvey/edusurvey/internal/credentials"
	"github.com/edusurvey/edusurvey/internal/notify"
	"github.com/edusurvey/edusurvey/internal/session"
)

// App holds the shared components of a front end
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Creds   credentials.Store
	Client  *client.Client
	Session *session.Store
}

// Options adjust how the application is assembled
type Options struct {
	// Notifier receives session notifications; defaults to discarding them
	Notifier notify.Notifier
	// Creds replaces the configured credential backend
	Creds credentials.Store
	// Ephemeral keeps the token in memory only
	Ephemeral bool
}

// New assembles the application. The session starts in Initializing; the
// caller decides whether to initialize it in the background or block.
func New(cfg *config.Config, log zerolog.Logger, opts Options) (*App, error) {
	creds := opts.Creds
	switch {
	case creds != nil:
	case opts.Ephemeral:
		creds = credentials.NewMemoryStore("")
	default:
		var err error
		creds, err = credentials.Open(cfg.Credentials)
		if err != nil {
			return nil, fmt.Errorf("failed to open credential store: %w", err)
		}
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Discard{}
	}

	apiClient := client.New(cfg.API.BaseURL,
		client.WithTimeout(cfg.API.Timeout),
		client.WithLogger(log.With().Str("component", "api").Logger()),
	)

	store := session.New(apiClient, creds,
		session.WithNotifier(notifier),
		session.WithLogger(log.With().Str("component", "session").Logger()),
	)

	log.Debug().
		Str("api", cfg.API.BaseURL).
		Str("backend", backendName(cfg, opts)).
		Msg("Application assembled")

	return &App{
		Config:  cfg,
		Logger:  log,
		Creds:   creds,
		Client:  apiClient,
		Session: store,
	}, nil
}

func backendName(cfg *config.Config, opts Options) string {
	switch {
	case opts.Creds != nil:
		return "custom"
	case opts.Ephemeral:
		return "memory"
	default:
		return cfg.Credentials.Backend
	}
}

// Close releases the credential store
func (a *App) Close() error {
	return credentials.Close(a.Creds)
}
