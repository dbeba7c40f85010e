package sim

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/forestsim/internal/core/systems/physics"
)

// Arena is the rectangle agents live in. Edge is the margin on the right,
// top and bottom; LeftEdge is the wider left margin reserved for UI.
type Arena struct {
	Width    float32 `yaml:"width"`
	Height   float32 `yaml:"height"`
	Edge     float32 `yaml:"edge"`
	LeftEdge float32 `yaml:"left_edge"`
}

// Wall identifies which boundary margin a position is in.
type Wall uint8

const (
	WallNone Wall = iota
	WallLeft
	WallRight
	WallTop
	WallBottom
)

func (w Wall) String() string {
	switch w {
	case WallLeft:
		return "left"
	case WallRight:
		return "right"
	case WallTop:
		return "top"
	case WallBottom:
		return "bottom"
	default:
		return "none"
	}
}

// Wall reports the margin p is in, checked left, right, top, bottom in that
// order. WallNone means p is inside the safe zone.
func (a Arena) Wall(p physics.Vector2) Wall {
	switch {
	case p.X < a.LeftEdge:
		return WallLeft
	case p.X > a.Width-a.Edge:
		return WallRight
	case p.Y < a.Edge:
		return WallTop
	case p.Y > a.Height-a.Edge:
		return WallBottom
	default:
		return WallNone
	}
}

// SafeZone returns the top-left corner and size of the region agents are
// steered to stay in.
func (a Arena) SafeZone() (origin physics.Vector2, width, height float32) {
	return physics.Vec2(a.LeftEdge, a.Edge), a.Width - a.Edge - a.LeftEdge, a.Height - 2*a.Edge
}

type Config struct {
	Arena      Arena                 `yaml:"arena"`
	RallyPoint physics.Vector2       `yaml:"rally_point"`
	TickRate   int                   `yaml:"tick_rate"`
	Seed       string                `yaml:"seed"`
	Population []Role                `yaml:"population"`
	Roles      map[Role]RoleOverride `yaml:"roles,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Arena: Arena{
			Width:    1200,
			Height:   900,
			Edge:     25,
			LeftEdge: 125,
		},
		RallyPoint: physics.Vec2(1000, 600),
		TickRate:   30,
		Population: []Role{Predator, Prey},
	}
}

// LoadConfig decodes YAML from r over DefaultConfig and validates the result.
// An empty document yields the defaults.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}

func (c Config) Validate() error {
	a := c.Arena
	switch {
	case !finite(a.Width, a.Height, a.Edge, a.LeftEdge):
		return fmt.Errorf("%w: arena values must be finite", ErrInvalidConfig)
	case !finite(c.RallyPoint.X, c.RallyPoint.Y):
		return fmt.Errorf("%w: rally_point must be finite", ErrInvalidConfig)
	case a.Width <= 0 || a.Height <= 0:
		return fmt.Errorf("%w: arena must have positive size, got %vx%v", ErrInvalidConfig, a.Width, a.Height)
	case a.Edge < 0 || a.LeftEdge < 0:
		return fmt.Errorf("%w: edge margins must not be negative", ErrInvalidConfig)
	case a.LeftEdge+a.Edge >= a.Width || 2*a.Edge >= a.Height:
		return fmt.Errorf("%w: edge margins leave no safe zone", ErrInvalidConfig)
	case c.TickRate <= 0:
		return fmt.Errorf("%w: tick_rate must be positive, got %d", ErrInvalidConfig, c.TickRate)
	case len(c.Population) == 0:
		return fmt.Errorf("%w: population is empty", ErrInvalidConfig)
	}
	for _, r := range c.Population {
		if !r.Valid() {
			return fmt.Errorf("%w: population: %w", ErrInvalidConfig, ErrUnknownRole)
		}
	}
	for r := range c.Roles {
		if !r.Valid() {
			return fmt.Errorf("%w: roles: %w", ErrInvalidConfig, ErrUnknownRole)
		}
		s := c.Stats(r)
		if !finite(s.Scale[0], s.Scale[1], s.SensoryRange, s.SensoryAngle, s.MaxSpeed, s.MaxForce, s.Spawn.X, s.Spawn.Y) {
			return fmt.Errorf("%w: %s stats must be finite", ErrInvalidConfig, r)
		}
		if s.MaxSpeed <= 0 || s.MaxForce <= 0 || s.SensoryRange < 0 || s.SensoryAngle < 0 {
			return fmt.Errorf("%w: %s stats must be positive", ErrInvalidConfig, r)
		}
	}
	return nil
}

// finite reports whether none of vs is NaN or infinite. Comparisons against
// NaN are always false, so range checks alone would let it through.
func finite(vs ...float32) bool {
	for _, v := range vs {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Stats returns the constants for role with any configured override applied.
func (c Config) Stats(role Role) RoleStats {
	s, _ := DefaultStats(role)
	if o, ok := c.Roles[role]; ok {
		s = o.apply(s)
	}
	return s
}

// TickInterval is the simulated time covered by one tick.
func (c Config) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.TickRate)
}

// NewRand returns the random source for wander steering. A non-empty Seed
// always produces the same sequence.
func (c Config) NewRand() *rand.Rand {
	if c.Seed == "" {
		now := uint64(time.Now().UnixNano())
		return rand.New(rand.NewPCG(now, now>>1))
	}
	h := xxhash.Sum64String(c.Seed)
	return rand.New(rand.NewPCG(h, h^0x9e3779b97f4a7c15))
}

// Environment is what an agent needs from the world while steering.
type Environment struct {
	Arena      Arena
	RallyPoint physics.Vector2
	Rand       *rand.Rand
}

func (c Config) Environment(r *rand.Rand) Environment {
	return Environment{Arena: c.Arena, RallyPoint: c.RallyPoint, Rand: r}
}
