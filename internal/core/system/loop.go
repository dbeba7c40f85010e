package system

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/forestsim/internal/core/observability/log"
)

// Stepper advances the simulation by exactly one fixed step.
type Stepper interface {
	Tick() error
}

// RenderFunc draws the latest completed state. Returning ErrStop ends the
// loop without an error.
type RenderFunc func() error

// LoopConfig controls the fixed-timestep driver.
type LoopConfig struct {
	// TickRate is the number of simulation steps per second of wall time.
	TickRate int
	// FrameRate is how often the loop wakes up to step and render. Zero
	// means the same as TickRate.
	FrameRate int
	// MaxCatchUp caps the steps run in one frame. Backlog beyond it is
	// dropped so a slow frame cannot snowball.
	MaxCatchUp int
}

func DefaultLoopConfig() LoopConfig {
	return LoopConfig{TickRate: 30, FrameRate: 60, MaxCatchUp: 5}
}

func (c LoopConfig) tickInterval() time.Duration { return time.Second / time.Duration(c.TickRate) }

func (c LoopConfig) frameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return c.tickInterval()
	}
	return time.Second / time.Duration(c.FrameRate)
}

// LoopMetrics counts what the loop has done so far.
type LoopMetrics struct {
	Ticks      uint64
	Frames     uint64
	Dropped    uint64
	TickErrors uint64
}

// Loop runs a Stepper at a fixed rate independent of how often frames are
// rendered. Steps and renders happen on the goroutine that calls Run.
type Loop struct {
	cfg    LoopConfig
	step   Stepper
	render RenderFunc
	logger log.Log
	now    func() time.Time

	running atomic.Bool

	mu      sync.Mutex
	acc     time.Duration
	metrics LoopMetrics
}

type LoopOption func(*Loop)

// WithRenderer sets the per-frame callback.
func WithRenderer(fn RenderFunc) LoopOption { return func(l *Loop) { l.render = fn } }

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) LoopOption { return func(l *Loop) { l.now = now } }

func NewLoop(cfg LoopConfig, step Stepper, logger log.Log, opts ...LoopOption) (*Loop, error) {
	if step == nil {
		return nil, ErrNilStepper
	}
	if cfg.TickRate <= 0 || cfg.FrameRate < 0 {
		return nil, ErrInvalidRate
	}
	if cfg.MaxCatchUp <= 0 {
		cfg.MaxCatchUp = DefaultLoopConfig().MaxCatchUp
	}
	if logger == nil {
		logger = log.NewNop()
	}

	l := &Loop{
		cfg:    cfg,
		step:   step,
		logger: logger.With(log.String("component", "loop")),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Run drives the loop until ctx is cancelled or the renderer asks to stop.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer l.running.Store(false)

	l.logger.Info("Loop started",
		log.Int("tick_rate", l.cfg.TickRate),
		log.Duration("frame_interval", l.cfg.frameInterval()))

	ticker := time.NewTicker(l.cfg.frameInterval())
	defer ticker.Stop()

	last := l.now()
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Loop stopped", log.Uint64("ticks", l.Metrics().Ticks))
			return nil
		case <-ticker.C:
			now := l.now()
			l.Advance(now.Sub(last))
			last = now

			if err := l.frame(); err != nil {
				if errors.Is(err, ErrStop) {
					l.logger.Info("Loop stopped by renderer", log.Uint64("ticks", l.Metrics().Ticks))
					return nil
				}
				return err
			}
		}
	}
}

// Advance adds elapsed wall time and runs every step that has come due, up
// to MaxCatchUp. It returns the number of steps run. A failing step is
// logged and counted; later steps still run.
func (l *Loop) Advance(elapsed time.Duration) int {
	interval := l.cfg.tickInterval()

	l.mu.Lock()
	defer l.mu.Unlock()

	if elapsed > 0 {
		l.acc += elapsed
	}
	ran := 0
	for l.acc >= interval {
		if ran == l.cfg.MaxCatchUp {
			behind := uint64(l.acc / interval)
			l.metrics.Dropped += behind
			l.acc %= interval
			l.logger.Warn("Loop fell behind, dropping steps", log.Uint64("dropped", behind))
			break
		}
		if err := l.step.Tick(); err != nil {
			l.metrics.TickErrors++
			l.logger.Warn("Step failed", log.Error(err))
		}
		l.acc -= interval
		l.metrics.Ticks++
		ran++
	}
	return ran
}

func (l *Loop) frame() error {
	l.mu.Lock()
	l.metrics.Frames++
	l.mu.Unlock()
	if l.render == nil {
		return nil
	}
	return l.render()
}

func (l *Loop) Metrics() LoopMetrics {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.metrics
}

func (l *Loop) Running() bool { return l.running.Load() }
