package session

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// revalidateTimeout bounds a single scheduled revalidation call
const revalidateTimeout = 30 * time.Second

// Revalidator periodically re-checks the credential of an authenticated session
type Revalidator struct {
	cron   *cron.Cron
	store  *Store
	logger zerolog.Logger
}

// StartRevalidation schedules store.Revalidate on the cron spec (e.g. "@every 5m")
func StartRevalidation(store *Store, spec string, log zerolog.Logger) (*Revalidator, error) {
	r := &Revalidator{
		cron:   cron.New(),
		store:  store,
		logger: log,
	}

	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return nil, fmt.Errorf("invalid revalidation schedule %q: %w", spec, err)
	}

	r.cron.Start()
	log.Info().Str("schedule", spec).Msg("Session revalidation scheduled")

	return r, nil
}

func (r *Revalidator) run() {
	ctx, cancel := context.WithTimeout(context.Background(), revalidateTimeout)
	defer cancel()

	if err := r.store.Revalidate(ctx); err != nil {
		r.logger.Debug().Err(err).Msg("Scheduled revalidation finished with error")
	}
}

// Stop stops the schedule and waits for a running check to finish
func (r *Revalidator) Stop() {
	<-r.cron.Stop().Done()
}
