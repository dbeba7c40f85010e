package physics

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// snapEpsilon is the band around zero that FromAngle collapses to an exact 0.
const snapEpsilon = 1e-6

// Vector2 is a 2D vector. It is a plain value and safe to copy.
type Vector2 struct {
	X float32 `json:"x" yaml:"x"`
	Y float32 `json:"y" yaml:"y"`
}

// Zero is the zero vector.
var Zero = Vector2{}

// Vec2 builds a Vector2 from its components.
func Vec2(x, y float32) Vector2 { return Vector2{X: x, Y: y} }

func (v Vector2) Add(o Vector2) Vector2 { return Vector2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vector2) Sub(o Vector2) Vector2 { return Vector2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vector2) Dot(o Vector2) float32 { return v.X*o.X + v.Y*o.Y }

// Scale multiplies both components by k.
func (v Vector2) Scale(k float32) Vector2 { return Vector2{X: v.X * k, Y: v.Y * k} }

// Scale is the scalar-first form of Vector2.Scale; both orders give identical results.
func Scale(k float32, v Vector2) Vector2 { return Vector2{X: k * v.X, Y: k * v.Y} }

func (v Vector2) Neg() Vector2 { return Vector2{X: -v.X, Y: -v.Y} }

func (v Vector2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Magnitude returns the Euclidean norm.
func (v Vector2) Magnitude() float32 {
	return float32(math.Sqrt(float64(v.X)*float64(v.X) + float64(v.Y)*float64(v.Y)))
}

// Distance returns the Euclidean distance between v and o.
func (v Vector2) Distance(o Vector2) float32 { return o.Sub(v).Magnitude() }

// Normalized returns v scaled to unit length. The zero vector normalizes to
// the zero vector instead of dividing by zero.
func (v Vector2) Normalized() Vector2 {
	m := v.Magnitude()
	if m == 0 {
		return Zero
	}
	return Vector2{X: v.X / m, Y: v.Y / m}
}

// Angle returns the heading of v in radians, in (-π, π].
// It is a four-quadrant arctangent; the zero vector has heading 0.
func (v Vector2) Angle() float32 {
	return float32(math.Atan2(float64(v.Y), float64(v.X)))
}

// AngleBetween returns the unsigned angle between v and o in [0, π].
// ok is false when either vector has zero magnitude and no angle is defined.
func (v Vector2) AngleBetween(o Vector2) (angle float32, ok bool) {
	mv, mo := v.Magnitude(), o.Magnitude()
	if mv == 0 || mo == 0 {
		return 0, false
	}
	cos := float64(v.Dot(o)) / (float64(mv) * float64(mo))
	// rounding can push the ratio just outside acos's domain
	cos = math.Max(-1, math.Min(1, cos))
	return float32(math.Acos(cos)), true
}

func (v Vector2) String() string { return fmt.Sprintf("(%.3f, %.3f)", v.X, v.Y) }

// FromAngle returns the unit vector (cos θ, sin θ). Components within 1e-6 of
// zero are snapped to exactly zero.
func FromAngle(theta float32) Vector2 {
	s, c := math.Sincos(float64(theta))
	return Vector2{X: snap(float32(c)), Y: snap(float32(s))}
}

// Random returns a vector with both components uniform in [-1, 1).
func Random() Vector2 {
	return Vector2{X: rand.Float32()*2 - 1, Y: rand.Float32()*2 - 1}
}

// RandomFrom is Random drawing from r, for reproducible runs.
func RandomFrom(r *rand.Rand) Vector2 {
	if r == nil {
		return Random()
	}
	return Vector2{X: r.Float32()*2 - 1, Y: r.Float32()*2 - 1}
}

func snap(f float32) float32 {
	if f < snapEpsilon && f > -snapEpsilon {
		return 0
	}
	return f
}
