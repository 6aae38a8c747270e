package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ruslanbektulqinov01/todo-api/repository"
)

// JanitorConfig controls how frequently expired sessions are swept.
type JanitorConfig struct {
	Interval  time.Duration
	BatchSize int
}

// SessionJanitor periodically removes expired sessions from stores
// that cannot expire keys on their own (the file backend). It never
// touches live sessions and has no effect on request handling.
type SessionJanitor struct {
	sessions repository.SessionRepository
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      JanitorConfig
}

func NewSessionJanitor(sessions repository.SessionRepository, logger *zap.Logger, cfg JanitorConfig) *SessionJanitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	j := &SessionJanitor{
		sessions: sessions,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := j.Sweep(ctx); err != nil {
			j.logger.Error("session sweep failed", zap.Error(err))
		}
	})

	return j
}

// Start launches the cron scheduler.
func (j *SessionJanitor) Start() {
	if j == nil || j.cron == nil {
		return
	}
	j.cron.Start()
	j.logger.Info("session janitor started")
}

// Stop gracefully stops the scheduler.
func (j *SessionJanitor) Stop(ctx context.Context) {
	if j == nil || j.cron == nil {
		return
	}
	stopCtx := j.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	j.logger.Info("session janitor stopped")
}

// Sweep removes one batch of expired sessions.
func (j *SessionJanitor) Sweep(ctx context.Context) error {
	removed, err := j.sessions.DeleteExpired(ctx, j.cfg.BatchSize)
	if err != nil {
		return err
	}
	if removed > 0 {
		j.logger.Info("expired sessions removed", zap.Int("count", removed))
	}
	return nil
}
