package sim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/forestsim/internal/core/systems/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Arena{Width: 1200, Height: 900, Edge: 25, LeftEdge: 125}, cfg.Arena)
	assert.Equal(t, physics.Vec2(1000, 600), cfg.RallyPoint)
	assert.Equal(t, []Role{Predator, Prey}, cfg.Population)
	assert.Equal(t, time.Second/30, cfg.TickInterval())

	origin, w, h := cfg.Arena.SafeZone()
	assert.Equal(t, physics.Vec2(125, 25), origin)
	assert.Equal(t, float32(1050), w)
	assert.Equal(t, float32(850), h)
}

func TestLoadConfig_Overrides(t *testing.T) {
	doc := `
arena:
  width: 800
  height: 600
  edge: 10
  left_edge: 50
rally_point: {x: 400, y: 300}
tick_rate: 60
seed: forest
population: [predator, prey, rat]
roles:
  prey:
    max_speed: 7
    spawn: {x: 500, y: 500}
`
	cfg, err := LoadConfig(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, Arena{Width: 800, Height: 600, Edge: 10, LeftEdge: 50}, cfg.Arena)
	assert.Equal(t, physics.Vec2(400, 300), cfg.RallyPoint)
	assert.Equal(t, 60, cfg.TickRate)
	assert.Equal(t, []Role{Predator, Prey, Prey}, cfg.Population)

	prey := cfg.Stats(Prey)
	assert.Equal(t, float32(7), prey.MaxSpeed)
	assert.Equal(t, physics.Vec2(500, 500), prey.Spawn)
	assert.Equal(t, float32(5), prey.MaxForce, "fields without override keep defaults")
	assert.True(t, prey.Targets.Has(Predator))

	pred := cfg.Stats(Predator)
	def, _ := DefaultStats(Predator)
	assert.Equal(t, def, pred)
}

func TestLoadConfig_EmptyDocumentIsDefault(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown role":   "population: [wolf]",
		"bad yaml":       "arena: [",
		"zero tick rate": "tick_rate: 0",
		"no safe zone":   "arena: {width: 100, height: 900, edge: 25, left_edge: 125}",
		"empty":          "population: []",
		"bad stats":      "roles: {predator: {max_force: -1}}",
		"nan speed":      "roles: {predator: {max_speed: .nan}}",
		"nan range":      "roles: {prey: {sensory_range: .nan}}",
		"inf force":      "roles: {prey: {max_force: .inf}}",
		"nan spawn":      "roles: {prey: {spawn: {x: .nan, y: 10}}}",
		"nan scale":      "roles: {prey: {scale: [.nan, 1]}}",
		"inf width":      "arena: {width: .inf}",
		"nan height":     "arena: {height: .nan}",
		"nan edge":       "arena: {edge: .nan}",
		"inf left edge":  "arena: {left_edge: -.inf}",
		"nan rally":      "rally_point: {x: .nan, y: 600}",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(strings.NewReader(doc))
			require.Error(t, err)
		})
	}

	_, err := LoadConfig(strings.NewReader("tick_rate: -3"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadConfig(strings.NewReader("roles: {predator: {max_speed: .nan}}\narena: {width: .inf}"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tick_rate: 15\n"), 0o600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.TickRate)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_SeededRandIsReproducible(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = "same"
	a, b := cfg.NewRand(), cfg.NewRand()
	first := a.Uint64()
	require.Equal(t, first, b.Uint64())
	for i := 0; i < 8; i++ {
		require.Equal(t, a.Uint64(), b.Uint64())
	}

	cfg.Seed = "other"
	assert.NotEqual(t, first, cfg.NewRand().Uint64())
}

func TestArena_WallPriority(t *testing.T) {
	a := DefaultConfig().Arena
	cases := []struct {
		pos  physics.Vector2
		want Wall
	}{
		{physics.Vec2(600, 450), WallNone},
		{physics.Vec2(124, 450), WallLeft},
		{physics.Vec2(124, 5), WallLeft},
		{physics.Vec2(124, 899), WallLeft},
		{physics.Vec2(1176, 450), WallRight},
		{physics.Vec2(1176, 5), WallRight},
		{physics.Vec2(600, 24), WallTop},
		{physics.Vec2(600, 890), WallBottom},
		{physics.Vec2(125, 25), WallNone},
		{physics.Vec2(1175, 875), WallNone},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, a.Wall(c.pos), "pos %v", c.pos)
	}
}
