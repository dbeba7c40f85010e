package sim

import (
	"github.com/google/uuid"

	"github.com/zeusync/forestsim/internal/core/systems/physics"
)

// Event types published by World on its bus.
const (
	EventTargetAcquired = "sim.target_acquired"
	EventTargetLost     = "sim.target_lost"
	EventBoundary       = "sim.boundary"
	EventTick           = "sim.tick"
)

const eventSource = "world"

// TargetEvent is the payload of EventTargetAcquired and EventTargetLost.
// Offset is zero for a loss.
type TargetEvent struct {
	Tick   int64
	Agent  uuid.UUID
	Role   Role
	Offset physics.Vector2
}

// BoundaryEvent is the payload of EventBoundary.
type BoundaryEvent struct {
	Tick     int64
	Agent    uuid.UUID
	Role     Role
	Wall     Wall
	Position physics.Vector2
}

// Frame is the payload of EventTick: every agent's view after a completed tick.
type Frame struct {
	Tick   int64  `json:"tick"`
	Agents []View `json:"agents"`
}
