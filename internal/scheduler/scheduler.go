// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/noah-isme/planner-go-api/internal/observability"
)

const jobTimeout = time.Minute

// StatusRefresher rewrites persisted semester statuses for a user.
type StatusRefresher interface {
	RefreshStatuses(ctx context.Context, userID string) (int, error)
}

// Scheduler wraps a cron runner.
type Scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

// New builds a scheduler evaluating standard five-field specs in loc.
func New(loc *time.Location, logger zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
}

// AddStatusRefresh registers the semester status refresh for userID.
func (s *Scheduler) AddStatusRefresh(spec, userID string, refresher StatusRefresher) error {
	_, err := s.cron.AddFunc(spec, s.statusRefreshJob(userID, refresher))
	if err != nil {
		return err
	}
	s.logger.Info().Str("job", "semester_status_refresh").Str("spec", spec).Msg("job registered")
	return nil
}

func (s *Scheduler) statusRefreshJob(userID string, refresher StatusRefresher) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		started := time.Now()
		changed, err := refresher.RefreshStatuses(ctx, userID)
		if err != nil {
			s.logger.Error().Err(err).Str("job", "semester_status_refresh").Msg("job failed")
			return
		}

		observability.StatusRefreshed().Add(float64(changed))
		s.logger.Info().
			Str("job", "semester_status_refresh").
			Int("changed", changed).
			Dur("elapsed", time.Since(started)).
			Msg("job completed")
	}
}

// Start runs the registered jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("scheduler stop timed out")
	}
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
