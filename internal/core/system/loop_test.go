package system

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStepper struct {
	ticks atomic.Int64
	err   error
}

func (s *countingStepper) Tick() error {
	s.ticks.Add(1)
	return s.err
}

func TestNewLoop_Validates(t *testing.T) {
	_, err := NewLoop(DefaultLoopConfig(), nil, nil)
	assert.ErrorIs(t, err, ErrNilStepper)

	_, err = NewLoop(LoopConfig{TickRate: 0}, &countingStepper{}, nil)
	assert.ErrorIs(t, err, ErrInvalidRate)

	l, err := NewLoop(LoopConfig{TickRate: 30}, &countingStepper{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, l.cfg.MaxCatchUp)
	assert.Equal(t, l.cfg.tickInterval(), l.cfg.frameInterval())
}

func TestLoop_AdvanceAccumulates(t *testing.T) {
	s := &countingStepper{}
	l, err := NewLoop(LoopConfig{TickRate: 10, MaxCatchUp: 100}, s, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, l.Advance(60*time.Millisecond))
	assert.Equal(t, 1, l.Advance(60*time.Millisecond), "120ms covers one 100ms step")
	assert.Equal(t, 3, l.Advance(300*time.Millisecond))
	assert.Equal(t, int64(4), s.ticks.Load())
	assert.Equal(t, 0, l.Advance(-time.Second), "negative elapsed is ignored")
}

func TestLoop_AdvanceDropsBacklog(t *testing.T) {
	s := &countingStepper{}
	l, err := NewLoop(LoopConfig{TickRate: 10, MaxCatchUp: 3}, s, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, l.Advance(1050*time.Millisecond))
	m := l.Metrics()
	assert.Equal(t, uint64(3), m.Ticks)
	assert.Equal(t, uint64(7), m.Dropped)

	// the 50ms remainder is kept
	assert.Equal(t, 1, l.Advance(50*time.Millisecond))
}

func TestLoop_StepErrorsAreCounted(t *testing.T) {
	s := &countingStepper{err: errors.New("handler failed")}
	l, err := NewLoop(LoopConfig{TickRate: 10}, s, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, l.Advance(200*time.Millisecond))
	assert.Equal(t, uint64(2), l.Metrics().TickErrors)
}

func TestLoop_RunUntilCancelled(t *testing.T) {
	s := &countingStepper{}
	l, err := NewLoop(LoopConfig{TickRate: 500, FrameRate: 500}, s, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Eventually(t, func() bool { return s.ticks.Load() >= 5 }, 2*time.Second, time.Millisecond)
	assert.ErrorIs(t, l.Run(ctx), ErrLoopRunning)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.False(t, l.Running())
	assert.Greater(t, l.Metrics().Frames, uint64(0))
}

func TestLoop_RendererStopsLoop(t *testing.T) {
	s := &countingStepper{}
	frames := 0
	l, err := NewLoop(LoopConfig{TickRate: 200, FrameRate: 200}, s, nil, WithRenderer(func() error {
		frames++
		if frames == 3 {
			return ErrStop
		}
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, 3, frames)
}

func TestLoop_RendererErrorPropagates(t *testing.T) {
	boom := errors.New("screen lost")
	l, err := NewLoop(LoopConfig{TickRate: 200}, &countingStepper{}, nil, WithRenderer(func() error { return boom }))
	require.NoError(t, err)
	assert.ErrorIs(t, l.Run(context.Background()), boom)
}

func TestLoop_UsesInjectedClock(t *testing.T) {
	s := &countingStepper{}
	var fake atomic.Int64
	base := time.Unix(0, 0)
	l, err := NewLoop(LoopConfig{TickRate: 10, FrameRate: 1000, MaxCatchUp: 100}, s, nil,
		WithClock(func() time.Time { return base.Add(time.Duration(fake.Add(int64(time.Second)))) }),
		WithRenderer(func() error {
			if s.ticks.Load() >= 20 {
				return ErrStop
			}
			return nil
		}))
	require.NoError(t, err)

	require.NoError(t, l.Run(context.Background()))
	// every frame the fake clock jumps a full second, i.e. ten steps
	assert.Equal(t, int64(20), s.ticks.Load())
}
