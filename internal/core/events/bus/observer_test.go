package bus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/zeusync/forestsim/internal/core/observability/log"
)

type recordedEntry struct {
	level  log.Level
	msg    string
	fields []log.Field
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []recordedEntry
}

func newRecordingLogger() *recordingLogger { return &recordingLogger{} }

func (l *recordingLogger) add(level log.Level, msg string, fields []log.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, recordedEntry{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) Debug(msg string, f ...log.Field)    { l.add(log.LevelDebug, msg, f) }
func (l *recordingLogger) Info(msg string, f ...log.Field)     { l.add(log.LevelInfo, msg, f) }
func (l *recordingLogger) Warn(msg string, f ...log.Field)     { l.add(log.LevelWarn, msg, f) }
func (l *recordingLogger) Error(msg string, f ...log.Field)    { l.add(log.LevelError, msg, f) }
func (l *recordingLogger) With(...log.Field) log.Log           { return l }
func (l *recordingLogger) WithContext(context.Context) log.Log { return l }
func (l *recordingLogger) Enabled(log.Level) bool              { return true }
func (l *recordingLogger) Sync() error                         { return nil }

func (l *recordingLogger) find(msg string) (recordedEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.msg == msg {
			return e, true
		}
	}
	return recordedEntry{}, false
}

func fieldValue(e recordedEntry, key string) (any, bool) {
	for _, f := range e.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func TestLogObserverReportsFailedDelivery(t *testing.T) {
	b := New()
	logger := newRecordingLogger()
	b.AddObserver(NewLogObserver(logger))

	boom := errors.New("boom")
	_, _ = b.Subscribe("ok", func(Event) error { return nil })
	_, _ = b.Subscribe("bad", func(Event) error { return boom })

	_ = b.Publish(NewEvent("ok", "src", nil))
	if _, found := logger.find("Event delivery failed"); found {
		t.Fatalf("successful delivery was reported as a failure")
	}

	if err := b.Publish(NewEvent("bad", "src", nil)); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	e, found := logger.find("Event delivery failed")
	if !found {
		t.Fatalf("failed delivery not logged")
	}
	if e.level != log.LevelWarn {
		t.Fatalf("expected warn level, got %v", e.level)
	}
	if v, _ := fieldValue(e, "event"); v != "bad" {
		t.Fatalf("expected event=bad, got %v", v)
	}
}

func TestLogObserverSummary(t *testing.T) {
	b := New()
	logger := newRecordingLogger()
	obs := NewLogObserver(logger)
	b.AddObserver(obs)

	_, _ = b.Subscribe("tick", func(Event) error { return nil })
	for i := 0; i < 3; i++ {
		_ = b.Publish(NewEvent("tick", "src", nil))
	}
	_ = b.Publish(NewEvent("nobody", "src", nil))

	counts := obs.Counts()
	if counts["tick"] != 3 || counts["nobody"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}

	obs.LogSummary(b)
	e, found := logger.find("Event bus summary")
	if !found {
		t.Fatalf("summary not logged")
	}
	if v, _ := fieldValue(e, "published"); v != uint64(4) {
		t.Fatalf("expected published=4, got %v", v)
	}
	if v, _ := fieldValue(e, "delivered_handlers"); v != uint64(3) {
		t.Fatalf("expected delivered_handlers=3, got %v", v)
	}
	if v, _ := fieldValue(e, "tick"); v != uint64(3) {
		t.Fatalf("expected tick=3, got %v", v)
	}
}
