package sim

import (
	"github.com/google/uuid"

	"github.com/zeusync/forestsim/internal/core/systems/physics"
)

// Agent is one simulated animal. Role and the role constants never change
// after construction; the kinematic state changes once per tick.
type Agent struct {
	id    uuid.UUID
	role  Role
	stats RoleStats

	position     physics.Vector2
	velocity     physics.Vector2
	acceleration physics.Vector2
	rotation     float32

	// target is the offset to the nearest sensed agent this tick. It is
	// consumed by Steer and cleared by Integrate.
	target    physics.Vector2
	hasTarget bool

	// tracking remembers whether the previous tick had a target, so the world
	// can report acquisitions and losses.
	tracking bool
}

// NewAgent builds an agent at stats.Spawn with zero velocity and heading.
func NewAgent(role Role, stats RoleStats) *Agent {
	return &Agent{
		id:       uuid.New(),
		role:     role,
		stats:    stats,
		position: stats.Spawn,
	}
}

func (a *Agent) ID() uuid.UUID                 { return a.id }
func (a *Agent) Role() Role                    { return a.role }
func (a *Agent) Stats() RoleStats              { return a.stats }
func (a *Agent) Position() physics.Vector2     { return a.position }
func (a *Agent) Velocity() physics.Vector2     { return a.velocity }
func (a *Agent) Acceleration() physics.Vector2 { return a.acceleration }
func (a *Agent) Rotation() float32             { return a.rotation }
func (a *Agent) Scale() [2]float32             { return a.stats.Scale }

// Target returns the offset to the currently sensed agent, if any.
func (a *Agent) Target() (physics.Vector2, bool) { return a.target, a.hasTarget }

// Heading is the unit vector the agent is facing.
func (a *Agent) Heading() physics.Vector2 { return physics.FromAngle(a.rotation) }

// View is the read-only slice of agent state a renderer needs.
type View struct {
	ID       uuid.UUID       `json:"id"`
	Role     Role            `json:"role"`
	Position physics.Vector2 `json:"position"`
	Rotation float32         `json:"rotation"`
	Scale    [2]float32      `json:"scale"`
}

func (a *Agent) View() View {
	return View{
		ID:       a.id,
		Role:     a.role,
		Position: a.position,
		Rotation: a.rotation,
		Scale:    a.stats.Scale,
	}
}

// Integrate applies the pending acceleration: velocity, then position, then
// heading. Forces and the sensed target do not carry over to the next tick.
// A zero velocity leaves the previous heading in place.
func (a *Agent) Integrate() {
	a.velocity = a.velocity.Add(a.acceleration)
	a.position = a.position.Add(a.velocity)
	a.acceleration = physics.Zero
	a.target, a.hasTarget = physics.Zero, false
	if !a.velocity.IsZero() {
		a.rotation = a.velocity.Angle()
	}
}
