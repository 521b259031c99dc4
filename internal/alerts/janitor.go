package alerts

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Evictor removes alerts older than a maximum age.
type Evictor interface {
	EvictOlderThan(ctx context.Context, maxAge time.Duration) (int, error)
}

// Janitor evicts stale alerts on a fixed interval.
type Janitor struct {
	evictor  Evictor
	maxAge   time.Duration
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewJanitor creates a Janitor. A nil clock uses real time.
func NewJanitor(evictor Evictor, maxAge, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *Janitor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Janitor{
		evictor:  evictor,
		maxAge:   maxAge,
		interval: interval,
		clock:    clock,
		logger:   logger,
	}
}

// Run evicts once immediately and then on every tick until ctx is cancelled.
// Eviction errors are logged and retried on the next tick.
func (j *Janitor) Run(ctx context.Context) error {
	j.logger.Info("eviction janitor started", "max_age", j.maxAge, "interval", j.interval)

	ticker := j.clock.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("eviction janitor stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	if _, err := j.evictor.EvictOlderThan(ctx, j.maxAge); err != nil && ctx.Err() == nil {
		j.logger.Error("evicting stale alerts failed", "error", err)
	}
}
