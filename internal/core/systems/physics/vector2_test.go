package physics

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-5

func sampleVectors() []Vector2 {
	r := rand.New(rand.NewPCG(7, 11))
	out := []Vector2{Zero, Vec2(1, 0), Vec2(0, -1), Vec2(3, 4), Vec2(-1000, 600)}
	for i := 0; i < 32; i++ {
		out = append(out, Vec2(r.Float32()*2000-1000, r.Float32()*2000-1000))
	}
	return out
}

func TestVector2_ArithmeticLaws(t *testing.T) {
	vs := sampleVectors()
	for _, a := range vs {
		for _, b := range vs {
			assert.Equal(t, a.Add(b), b.Add(a), "add must commute for %v %v", a, b)
			assert.Equal(t, a.Sub(b), b.Sub(a).Scale(-1), "sub must anti-commute for %v %v", a, b)
		}
		for _, k := range []float32{-2.5, -1, 0, 0.5, 6} {
			assert.Equal(t, a.Scale(k), Scale(k, a))
		}
	}
}

func TestVector2_Dot(t *testing.T) {
	assert.Equal(t, float32(11), Vec2(1, 2).Dot(Vec2(3, 4)))
	assert.Equal(t, float32(0), Vec2(1, 0).Dot(Vec2(0, 5)))
}

func TestVector2_Magnitude(t *testing.T) {
	assert.Equal(t, float32(5), Vec2(3, 4).Magnitude())
	assert.Equal(t, float32(0), Zero.Magnitude())
	assert.InDelta(t, 894.427, Vec2(800, 400).Distance(Zero), 1e-3)
}

func TestVector2_Normalized(t *testing.T) {
	for _, v := range sampleVectors() {
		n := v.Normalized()
		if v.IsZero() {
			assert.Equal(t, Zero, n)
			continue
		}
		assert.InDelta(t, 1.0, float64(n.Magnitude()), tolerance)
	}
}

func TestFromAngle_Snapping(t *testing.T) {
	up := FromAngle(math.Pi / 2)
	assert.Equal(t, float32(0), up.X)
	assert.Equal(t, float32(1), up.Y)

	left := FromAngle(math.Pi)
	assert.Equal(t, float32(-1), left.X)
	assert.Equal(t, float32(0), left.Y)

	assert.Equal(t, Vec2(1, 0), FromAngle(0))
}

func TestVector2_AngleRoundTrip(t *testing.T) {
	for theta := -3.1; theta < 3.1; theta += 0.05 {
		got := FromAngle(float32(theta)).Angle()
		assert.InDelta(t, theta, float64(got), tolerance, "theta=%f", theta)
	}
}

func TestVector2_AngleIsFourQuadrant(t *testing.T) {
	assert.InDelta(t, math.Pi, float64(Vec2(-1, 0).Angle()), tolerance)
	assert.InDelta(t, -3*math.Pi/4, float64(Vec2(-1, -1).Angle()), tolerance)
	assert.InDelta(t, 3*math.Pi/4, float64(Vec2(-1, 1).Angle()), tolerance)
}

func TestVector2_AngleBetween(t *testing.T) {
	angle, ok := Vec2(1, 0).AngleBetween(Vec2(0, 3))
	require.True(t, ok)
	assert.InDelta(t, math.Pi/2, float64(angle), tolerance)

	angle, ok = Vec2(2, 2).AngleBetween(Vec2(5, 5))
	require.True(t, ok)
	assert.InDelta(t, 0, float64(angle), 1e-3)

	angle, ok = Vec2(1, 0).AngleBetween(Vec2(-4, 0))
	require.True(t, ok)
	assert.InDelta(t, math.Pi, float64(angle), tolerance)

	_, ok = Zero.AngleBetween(Vec2(1, 1))
	assert.False(t, ok)
	_, ok = Vec2(1, 1).AngleBetween(Zero)
	assert.False(t, ok)
}

func TestRandom_Range(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		for _, v := range []Vector2{Random(), RandomFrom(r)} {
			assert.GreaterOrEqual(t, v.X, float32(-1))
			assert.Less(t, v.X, float32(1))
			assert.GreaterOrEqual(t, v.Y, float32(-1))
			assert.Less(t, v.Y, float32(1))
		}
	}
}

func TestRandomFrom_Reproducible(t *testing.T) {
	a := rand.New(rand.NewPCG(42, 42))
	b := rand.New(rand.NewPCG(42, 42))
	for i := 0; i < 10; i++ {
		require.Equal(t, RandomFrom(a), RandomFrom(b))
	}
}
