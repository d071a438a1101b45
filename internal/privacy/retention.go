// Package privacy enforces how long assessments are kept.
package privacy

import (
	"context"
	"log/slog"
	"time"
)

// Purger deletes assessments created before a cutoff
type Purger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionService periodically deletes assessments older than the
// retention window. A zero window keeps everything.
type RetentionService struct {
	store     Purger
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewRetentionService creates a retention service for store
func NewRetentionService(store Purger, retention time.Duration, logger *slog.Logger) *RetentionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetentionService{
		store:     store,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// Enabled reports whether a retention window is configured
func (s *RetentionService) Enabled() bool {
	return s.retention > 0
}

// Purge deletes everything older than the retention window once
func (s *RetentionService) Purge(ctx context.Context) (int64, error) {
	if !s.Enabled() {
		return 0, nil
	}

	cutoff := s.now().Add(-s.retention)
	n, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		s.logger.Info("Assessment retention purge completed",
			"cutoff", cutoff.UTC().Format(time.RFC3339),
			"deleted", n,
		)
	}
	return n, nil
}

// Run purges immediately and then every interval until ctx is cancelled
func (s *RetentionService) Run(ctx context.Context, interval time.Duration) {
	if !s.Enabled() {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Purge(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("Assessment retention purge failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Info describes the active retention policy
func (s *RetentionService) Info() map[string]interface{} {
	return map[string]interface{}{
		"retention_enabled": s.Enabled(),
		"retention_days":    int(s.retention / (24 * time.Hour)),
	}
}
