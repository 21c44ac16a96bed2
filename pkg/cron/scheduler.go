// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/po-export/pkg/storage"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron      *cron.Cron
	store     storage.Storage
	retention time.Duration
	logger    *slog.Logger
}

// NewScheduler creates a new job scheduler. Stored export artifacts older
// than the retention window are pruned daily.
func NewScheduler(store storage.Storage, retention time.Duration, logger *slog.Logger) *Scheduler {
	// Standard 5-field format, seconds disabled.
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:      c,
		store:     store,
		retention: retention,
		logger:    logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	// Artifact retention sweep: runs daily at 3:00 AM.
	_, err := s.cron.AddFunc("0 3 * * *", s.pruneExpiredArtifacts)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the retention sweep (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.pruneExpiredArtifacts()
}

// pruneExpiredArtifacts deletes stored exports older than the retention window.
func (s *Scheduler) pruneExpiredArtifacts() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.retention)
	removed, err := s.store.PruneOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("artifact retention sweep failed", slog.Any("error", err))
		return
	}

	s.logger.Info("artifact retention sweep finished",
		slog.Int("removed", removed),
		slog.Time("cutoff", cutoff),
	)
}
