package worker

import (
	"context"
	"log/slog"
	"time"

	"election-service/internal/server/service"
)

// Scheduler ticks the lifecycle sweep, the finalize dispatcher and the
// seal repair sweep. Every step is an idempotent conditional update or
// an idempotent job, so several schedulers may run at once.
type Scheduler struct {
	lifecycle *service.LifecycleService
	interval  time.Duration
}

func NewScheduler(lifecycle *service.LifecycleService, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{lifecycle: lifecycle, interval: interval}
}

// Run blocks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("lifecycle scheduler started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("lifecycle scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if err := s.lifecycle.Sweep(ctx); err != nil {
		slog.Error("lifecycle sweep failed", "error", err)
	}
	if _, err := s.lifecycle.DispatchFinalizations(ctx); err != nil {
		slog.Error("finalize dispatch failed", "error", err)
	}
	if _, err := s.lifecycle.DispatchSealRepairs(ctx); err != nil {
		slog.Error("seal repair dispatch failed", "error", err)
	}
}
