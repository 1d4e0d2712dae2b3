package sweep

import (
	"context"
	"log/slog"
	"time"
)

// SessionRetrier re-requests payment sessions that could not be created
// when their obligation was recorded.
type SessionRetrier interface {
	RetryPendingSessions(ctx context.Context) (int, error)
}

// Scheduler runs the sweep once a day at Hour:00 UTC.
type Scheduler struct {
	Sweep   Service
	Retrier SessionRetrier
	Hour    int
	Log     *slog.Logger
	Now     func() time.Time
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// NextRun is the first Hour:00 UTC strictly after t.
func NextRun(t time.Time, hour int) time.Time {
	t = t.UTC()
	next := time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	for {
		next := NextRun(s.now(), s.Hour)
		s.Log.Info("overdue sweep scheduled", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		s.Tick(ctx)
	}
}

// Tick performs one scheduled pass. Failures are logged and left for the
// next day.
func (s *Scheduler) Tick(ctx context.Context) {
	if _, err := s.Sweep.Run(ctx, s.now()); err != nil {
		s.Log.Error("overdue sweep failed", "err", err)
	}
	if s.Retrier == nil {
		return
	}
	if _, err := s.Retrier.RetryPendingSessions(ctx); err != nil {
		s.Log.Error("payment session retry failed", "err", err)
	}
}
