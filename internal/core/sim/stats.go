package sim

import (
	"math"

	"github.com/zeusync/forestsim/internal/core/systems/physics"
)

// RoleStats are the per-role constants an agent is built from.
type RoleStats struct {
	Targets      RoleSet
	Scale        [2]float32
	SensoryRange float32
	// SensoryAngle is the half-angle of the forward vision cone, in radians.
	SensoryAngle float32
	MaxSpeed     float32
	MaxForce     float32
	Spawn        physics.Vector2
}

var defaultStats = map[Role]RoleStats{
	Predator: {
		Targets:      NewRoleSet(Prey),
		Scale:        [2]float32{0.5, 0.5},
		SensoryRange: 150,
		SensoryAngle: math.Pi,
		MaxSpeed:     6,
		MaxForce:     2,
		Spawn:        physics.Vec2(200, 200),
	},
	Prey: {
		Targets:      NewRoleSet(Predator),
		Scale:        [2]float32{0.3, 0.3},
		SensoryRange: 150,
		SensoryAngle: math.Pi,
		MaxSpeed:     5,
		MaxForce:     5,
		Spawn:        physics.Vec2(1000, 600),
	},
}

// DefaultStats returns the built-in constants for role.
func DefaultStats(role Role) (RoleStats, bool) {
	s, ok := defaultStats[role]
	return s, ok
}

// RoleOverride replaces selected RoleStats fields. Nil fields keep the default.
type RoleOverride struct {
	Targets      []Role           `yaml:"targets,omitempty"`
	Scale        *[2]float32      `yaml:"scale,omitempty"`
	SensoryRange *float32         `yaml:"sensory_range,omitempty"`
	SensoryAngle *float32         `yaml:"sensory_angle,omitempty"`
	MaxSpeed     *float32         `yaml:"max_speed,omitempty"`
	MaxForce     *float32         `yaml:"max_force,omitempty"`
	Spawn        *physics.Vector2 `yaml:"spawn,omitempty"`
}

func (o RoleOverride) apply(s RoleStats) RoleStats {
	if o.Targets != nil {
		s.Targets = NewRoleSet(o.Targets...)
	}
	if o.Scale != nil {
		s.Scale = *o.Scale
	}
	if o.SensoryRange != nil {
		s.SensoryRange = *o.SensoryRange
	}
	if o.SensoryAngle != nil {
		s.SensoryAngle = *o.SensoryAngle
	}
	if o.MaxSpeed != nil {
		s.MaxSpeed = *o.MaxSpeed
	}
	if o.MaxForce != nil {
		s.MaxForce = *o.MaxForce
	}
	if o.Spawn != nil {
		s.Spawn = *o.Spawn
	}
	return s
}
