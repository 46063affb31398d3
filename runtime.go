package flowent

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// RuntimeConfig configures the wall-clock tick driver.
type RuntimeConfig struct {
	TickRate time.Duration // interval between ticks (default 60 FPS)
	Logger   *zap.Logger   // nil disables logging
}

// Runtime drives a Ticker from the wall clock. It measures the real elapsed
// time between ticks, so subscribers see variable deltas exactly as a host
// frame loop would deliver them, and a late tick is followed by a
// correspondingly larger delta rather than lost time.
type Runtime struct {
	*Ticker

	tickRate time.Duration
	logger   *zap.Logger

	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewRuntime creates a wall-clock tick driver.
func NewRuntime(cfg RuntimeConfig) *Runtime {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 16667 * time.Microsecond // 60 FPS
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Runtime{
		Ticker:   NewTicker(),
		tickRate: cfg.TickRate,
		logger:   cfg.Logger,
	}
}

// Start launches the tick loop.
func (r *Runtime) Start(ctx context.Context) error {
	if r.stopped != nil {
		return errors.New("flowent: runtime already started")
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.stopped = make(chan struct{})
	r.logger.Debug("runtime started", zap.Duration("tickRate", r.tickRate))
	go r.tickLoop(ctx)
	return nil
}

// Stop cancels the tick loop and waits for it to exit.
func (r *Runtime) Stop() error {
	if r.cancel == nil {
		return errors.New("flowent: runtime not started")
	}
	r.cancel()
	<-r.stopped
	r.logger.Debug("runtime stopped")
	return nil
}

func (r *Runtime) tickLoop(ctx context.Context) {
	defer close(r.stopped)

	ticker := time.NewTicker(r.tickRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			delta := now.Sub(last).Seconds()
			last = now
			r.safeTick(delta)
		}
	}
}

// safeTick shields the loop from panicking subscribers; one bad update
// callback must not take the whole driver down.
func (r *Runtime) safeTick(delta float64) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tick panicked", zap.Any("panic", rec))
		}
	}()
	r.Tick(delta)
}
