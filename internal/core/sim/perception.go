package sim

import (
	"github.com/google/uuid"

	"github.com/zeusync/forestsim/internal/core/systems/physics"
)

// Observation is what one agent exposes to the others' senses.
type Observation struct {
	ID       uuid.UUID
	Role     Role
	Position physics.Vector2
}

// Snapshot is a frozen copy of every agent's observable state, taken before
// any agent moves in a tick. It shares no memory with the live agents.
type Snapshot []Observation

func TakeSnapshot(agents []*Agent) Snapshot {
	return takeSnapshotInto(nil, agents)
}

func takeSnapshotInto(buf Snapshot, agents []*Agent) Snapshot {
	buf = buf[:0]
	for _, a := range agents {
		buf = append(buf, Observation{ID: a.id, Role: a.role, Position: a.position})
	}
	return buf
}

// SenseTargets finds the nearest agent whose role this agent targets and
// keeps its offset as the current target if it is both within sensory range
// and inside the forward vision cone. Only the snapshot is read.
func (a *Agent) SenseTargets(snapshot Snapshot) (physics.Vector2, bool) {
	a.target, a.hasTarget = physics.Zero, false

	var (
		nearest physics.Vector2
		minDist float32
		found   bool
	)
	for _, o := range snapshot {
		if o.ID == a.id || !a.stats.Targets.Has(o.Role) {
			continue
		}
		offset := o.Position.Sub(a.position)
		if d := offset.Magnitude(); !found || d < minDist {
			nearest, minDist, found = offset, d, true
		}
	}
	if !found || minDist >= a.stats.SensoryRange {
		return physics.Zero, false
	}

	// a degenerate offset or heading has no angle and never passes the cone test
	angle, ok := nearest.AngleBetween(a.Heading())
	if !ok || angle >= a.stats.SensoryAngle {
		return physics.Zero, false
	}

	a.target, a.hasTarget = nearest, true
	return nearest, true
}
