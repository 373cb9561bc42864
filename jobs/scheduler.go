package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	PurgeResetTokensSchedule = "@hourly"
	LimiterCleanupSchedule   = "@every 10m"

	limiterIdle = 30 * time.Minute
	jobTimeout  = time.Minute
)

// ResetTokenPurger clears expired password reset tokens.
type ResetTokenPurger interface {
	PurgeExpiredResetTokens(ctx context.Context) (int64, error)
}

// LimiterCleaner forgets idle rate limiter entries.
type LimiterCleaner interface {
	Cleanup(idle time.Duration) int
}

// Scheduler runs periodic maintenance in the background.
type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Logger
}

func NewScheduler(log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		log:  log,
	}
}

func (s *Scheduler) Register(purger ResetTokenPurger, limiter LimiterCleaner) error {
	if _, err := s.cron.AddFunc(PurgeResetTokensSchedule, func() { s.purgeResetTokens(purger) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(LimiterCleanupSchedule, func() { s.cleanupLimiter(limiter) }); err != nil {
		return err
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.WithField("jobs", len(s.cron.Entries())).Info("Scheduler started")
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Scheduler stopped before running jobs finished")
	}
}

func (s *Scheduler) purgeResetTokens(purger ResetTokenPurger) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	purged, err := purger.PurgeExpiredResetTokens(ctx)
	if err != nil {
		s.log.WithError(err).Error("Failed to purge expired reset tokens")
		return
	}
	if purged > 0 {
		s.log.WithField("purged", purged).Info("Purged expired reset tokens")
	}
}

func (s *Scheduler) cleanupLimiter(limiter LimiterCleaner) {
	if removed := limiter.Cleanup(limiterIdle); removed > 0 {
		s.log.WithField("removed", removed).Debug("Cleaned up rate limiter entries")
	}
}
