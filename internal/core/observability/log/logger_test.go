package log

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type role string

func (r role) String() string { return string(r) }

func TestLogger_FieldsReachBackend(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := newFromCore(core)

	child := l.With(String("component", "world"))
	child.Info("tick",
		Int64("tick", 7),
		Float32("x", 1.5),
		Stringer("role", role("prey")),
		Duration("took", time.Millisecond),
		Error(errors.New("boom")),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "tick", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "world", ctx["component"])
	assert.Equal(t, int64(7), ctx["tick"])
	assert.Equal(t, float32(1.5), ctx["x"])
	assert.Equal(t, "prey", ctx["role"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestLogger_Enabled(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	l := newFromCore(core)

	assert.False(t, l.Enabled(LevelDebug))
	assert.True(t, l.Enabled(LevelError))

	l.Info("dropped")
	l.Warn("kept")
	assert.Equal(t, 1, logs.Len())
}

func TestNop(t *testing.T) {
	l := NewNop()
	assert.False(t, l.Enabled(LevelError))
	l.Error("nothing")
	assert.NotNil(t, l.With(Bool("k", true)))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
