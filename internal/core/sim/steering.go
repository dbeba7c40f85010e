package sim

import "github.com/zeusync/forestsim/internal/core/systems/physics"

// DesiredHeading is the direction the agent wants to go, before it is scaled
// to max speed. Predators chase a sensed target or head for the rally point;
// prey flee a sensed target or wander.
func (a *Agent) DesiredHeading(env Environment) physics.Vector2 {
	switch a.role {
	case Predator:
		if a.hasTarget {
			return a.target
		}
		return env.RallyPoint.Sub(a.position)
	case Prey:
		if a.hasTarget {
			return physics.Scale(-1, a.target)
		}
		return physics.RandomFrom(env.Rand)
	default:
		return physics.Zero
	}
}

// Steer sets the acceleration for this tick: a correction of at most
// MaxForce from the current velocity toward the desired velocity. Inside a
// boundary margin the wall push replaces role behaviour. The returned Wall is
// WallNone when role behaviour was used.
func (a *Agent) Steer(env Environment) Wall {
	var desired physics.Vector2
	wall := env.Arena.Wall(a.position)
	switch wall {
	case WallLeft:
		desired = physics.Vec2(a.stats.MaxSpeed, a.velocity.Y)
	case WallRight:
		desired = physics.Vec2(-a.stats.MaxSpeed, a.velocity.Y)
	case WallTop:
		desired = physics.Vec2(a.velocity.X, a.stats.MaxSpeed)
	case WallBottom:
		desired = physics.Vec2(a.velocity.X, -a.stats.MaxSpeed)
	default:
		desired = a.DesiredHeading(env).Normalized().Scale(a.stats.MaxSpeed)
	}

	a.acceleration = desired.Sub(a.velocity).Normalized().Scale(a.stats.MaxForce)
	return wall
}
