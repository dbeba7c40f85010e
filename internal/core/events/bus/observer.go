package bus

import (
	"sync"

	"github.com/zeusync/forestsim/internal/core/observability/log"
)

// LogObserver reports failed deliveries and keeps per-type publish counts.
// Registering it also turns on the bus-wide EventBusMetrics.
type LogObserver struct {
	logger log.Log

	mu     sync.Mutex
	counts map[string]uint64
}

func NewLogObserver(logger log.Log) *LogObserver {
	if logger == nil {
		logger = log.NewNop()
	}
	return &LogObserver{
		logger: logger.With(log.String("component", "bus")),
		counts: make(map[string]uint64),
	}
}

func (o *LogObserver) OnPublish(eventType string, _ Event) {
	o.mu.Lock()
	o.counts[eventType]++
	o.mu.Unlock()
}

func (o *LogObserver) OnDelivered(eventType string, handlers int, err error, durationMicros int64) {
	if err == nil {
		return
	}
	o.logger.Warn("Event delivery failed",
		log.String("event", eventType),
		log.Int("handlers", handlers),
		log.Int64("duration_us", durationMicros),
		log.Error(err))
}

// Counts returns a copy of the number of publishes seen per event type.
func (o *LogObserver) Counts() map[string]uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]uint64, len(o.counts))
	for k, v := range o.counts {
		out[k] = v
	}
	return out
}

// LogSummary writes the bus metrics and per-type counts at Info level.
func (o *LogObserver) LogSummary(b EventBus) {
	m := b.GetMetrics()
	fields := []log.Field{
		log.Uint64("published", m.Published),
		log.Uint64("delivered_handlers", m.DeliveredHandlers),
		log.Uint64("errors", m.Errors),
		log.Uint64("subscribers_active", m.SubscribersActive),
	}
	for typ, n := range o.Counts() {
		fields = append(fields, log.Uint64(typ, n))
	}
	o.logger.Info("Event bus summary", fields...)
}
