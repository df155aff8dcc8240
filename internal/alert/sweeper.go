package alert

import (
	"context"
	"log/slog"
	"time"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/metrics"
)

// Sweeper periodically archives alerts whose end date has passed.
type Sweeper struct {
	repo     Repository
	interval time.Duration
	now      func() time.Time
}

// NewSweeper creates a new Sweeper.
func NewSweeper(repo Repository, interval time.Duration) *Sweeper {
	return &Sweeper{
		repo:     repo,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start runs the sweep loop. It blocks until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	slog.Info("alert sweeper started", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("alert sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				slog.Error("alert sweeper: failed to list alerts", "error", err)
			}
		}
	}
}

// Sweep archives every expired alert once and returns the archived ids.
// Failures on individual alerts are logged and skipped.
func (s *Sweeper) Sweep(ctx context.Context) ([]string, error) {
	alerts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var archived []string
	for _, a := range alerts {
		if ctx.Err() != nil {
			break
		}
		if !a.ExpiredAt(now) {
			continue
		}
		if err := s.repo.Archive(ctx, a.ID); err != nil {
			slog.Error("alert sweeper: failed to archive alert", "alert", a.ID, "error", err)
			continue
		}
		slog.Info("alert sweeper: alert archived", "alert", a.ID, "name", a.Name, "endDate", a.EndDate)
		archived = append(archived, a.ID)
	}

	metrics.RecordAlertsArchived(len(archived))
	return archived, nil
}
