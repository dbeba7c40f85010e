package sim

import (
	"fmt"
	"strings"
)

// Role is the closed set of agent kinds.
type Role uint8

const (
	Predator Role = iota
	Prey
)

// Roles lists every Role in declaration order.
var Roles = [...]Role{Predator, Prey}

func (r Role) String() string {
	switch r {
	case Predator:
		return "predator"
	case Prey:
		return "prey"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

func (r Role) Valid() bool { return r == Predator || r == Prey }

// ParseRole accepts role names case-insensitively. "eagle" and "rat" are
// kept as aliases for predator and prey.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "predator", "eagle":
		return Predator, nil
	case "prey", "rat":
		return Prey, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RoleSet is a set of roles. The zero value is empty.
type RoleSet uint8

func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s = s.With(r)
	}
	return s
}

func (s RoleSet) With(r Role) RoleSet { return s | 1<<r }
func (s RoleSet) Has(r Role) bool     { return s&(1<<r) != 0 }

func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(Roles))
	for _, r := range Roles {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s RoleSet) String() string {
	names := make([]string, 0, len(Roles))
	for _, r := range s.Slice() {
		names = append(names, r.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}
