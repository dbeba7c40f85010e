package sim

import (
	"sync"

	"github.com/zeusync/forestsim/internal/core/events/bus"
	"github.com/zeusync/forestsim/internal/core/observability/log"
)

// World owns the population and advances it. Tick is the only mutator; reads
// from other goroutines never observe a half-finished tick.
type World struct {
	mu       sync.RWMutex
	cfg      Config
	env      Environment
	agents   []*Agent
	snapshot Snapshot
	tick     int64

	events bus.EventBus
	logger log.Log
}

// NewWorld validates cfg and spawns its population. A nil bus gets a private
// one; a nil logger discards output.
func NewWorld(cfg Config, events bus.EventBus, logger log.Log) (*World, error) {
	agents, err := Initialize(cfg)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = bus.New()
	}
	if logger == nil {
		logger = log.NewNop()
	}

	w := &World{
		cfg:    cfg,
		env:    cfg.Environment(cfg.NewRand()),
		agents: agents,
		events: events,
		logger: logger.With(log.String("component", "world")),
	}
	w.logger.Info("World created",
		log.Int("agents", len(agents)),
		log.Float32("arena_width", cfg.Arena.Width),
		log.Float32("arena_height", cfg.Arena.Height),
		log.Int("tick_rate", cfg.TickRate))
	return w, nil
}

func (w *World) Config() Config       { return w.cfg }
func (w *World) Events() bus.EventBus { return w.events }

func (w *World) TickCount() int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tick
}

// Views returns the renderer view of every agent as of the last completed tick.
func (w *World) Views() []View {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.viewsLocked()
}

// Frame returns the tick number and the views of that same tick.
func (w *World) Frame() Frame {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Frame{Tick: w.tick, Agents: w.viewsLocked()}
}

// Snapshot returns a copy of the observable state as of the last completed tick.
func (w *World) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return TakeSnapshot(w.agents)
}

// Tick advances the world one step and then publishes what happened.
// Events are published after the tick is complete.
func (w *World) Tick() error {
	pending := w.advance()
	if len(pending) == 0 {
		return nil
	}
	return w.events.PublishBatch(pending...)
}

func (w *World) advance() []bus.Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tick++
	tick := w.tick
	wantTargets := w.events.HasSubscribers(EventTargetAcquired) || w.events.HasSubscribers(EventTargetLost)
	wantBoundary := w.events.HasSubscribers(EventBoundary)
	debug := w.logger.Enabled(log.LevelDebug)

	var pending []bus.Event
	w.snapshot = takeSnapshotInto(w.snapshot, w.agents)
	step(w.agents, w.snapshot, w.env, func(a *Agent, r stepResult) {
		if r.sensed != a.tracking {
			a.tracking = r.sensed
			ev := TargetEvent{Tick: tick, Agent: a.id, Role: a.role, Offset: a.target}
			typ := EventTargetLost
			if r.sensed {
				typ = EventTargetAcquired
			}
			if wantTargets {
				pending = append(pending, bus.NewEvent(typ, eventSource, ev))
			}
			if debug {
				w.logger.Debug("Target changed",
					log.String("event", typ),
					log.Int64("tick", tick),
					log.Stringer("agent", a.id),
					log.Stringer("role", a.role),
					log.Stringer("offset", a.target))
			}
		}
		if r.wall != WallNone && wantBoundary {
			pending = append(pending, bus.NewEvent(EventBoundary, eventSource, BoundaryEvent{
				Tick: tick, Agent: a.id, Role: a.role, Wall: r.wall, Position: a.position,
			}))
		}
	})

	if w.events.HasSubscribers(EventTick) {
		pending = append(pending, bus.NewEvent(EventTick, eventSource, Frame{Tick: tick, Agents: w.viewsLocked()}))
	}
	return pending
}

func (w *World) viewsLocked() []View {
	out := make([]View, len(w.agents))
	for i, a := range w.agents {
		out[i] = a.View()
	}
	return out
}
