// Package pytree builds the Pythagoras tree ornament: oriented squares that
// branch into two smaller squares sharing a corner with their parent.
package pytree

import (
	"fmt"
	"math"

	"github.com/taigrr/pytree/pkg/math3d"
)

// Square is a square with a center, a half side length and an orientation
// normal. The corners are computed once at construction and cached, so any
// movement has to go through Translate.
type Square struct {
	Origin   math3d.Vec2
	HalfSize float64
	// Normal is unit length unless the square was built from a zero normal,
	// in which case it stays the zero vector.
	Normal math3d.Vec2

	// P1..P4 are the corners in cyclic order: top-left, top-right,
	// bottom-right and bottom-left before rotation.
	P1, P2, P3, P4 math3d.Vec2
}

// NewSquare creates a square centered at origin. The normal is normalized and
// the corners are the local offsets (±h, ±h) rotated by atan2(normal.X, normal.Y).
func NewSquare(origin math3d.Vec2, halfSize float64, normal math3d.Vec2) Square {
	n := normal.Normalize()
	angle := math.Atan2(n.X, n.Y)
	h := halfSize

	return Square{
		Origin:   origin,
		HalfSize: halfSize,
		Normal:   n,
		P1:       origin.Add(math3d.V2(-h, -h).RotateCW(angle)),
		P2:       origin.Add(math3d.V2(h, -h).RotateCW(angle)),
		P3:       origin.Add(math3d.V2(h, h).RotateCW(angle)),
		P4:       origin.Add(math3d.V2(-h, h).RotateCW(angle)),
	}
}

// Translate moves the square and all of its cached corners by v.
func (s *Square) Translate(v math3d.Vec2) {
	s.Origin.AddInPlace(v)
	s.P1.AddInPlace(v)
	s.P2.AddInPlace(v)
	s.P3.AddInPlace(v)
	s.P4.AddInPlace(v)
}

// Corners returns P1..P4 in drawing order.
func (s Square) Corners() [4]math3d.Vec2 {
	return [4]math3d.Vec2{s.P1, s.P2, s.P3, s.P4}
}

// Children returns the two squares grown from s with the given scale.
//
// The left child is turned by +rad and moved so its P4 sits on s.P1, the right
// child is turned by -rad and moved so its P3 sits on s.P2, where
// rad = acos(0.5*h / (h*scale)). For scale < 0.5 the acos argument leaves
// [-1, 1] and the children are NaN; callers clamp with ClampScale.
func (s Square) Children(scale float64) (left, right Square) {
	newHalf := s.HalfSize * scale
	rad := math.Acos((s.HalfSize * 0.5) / newHalf)

	left = NewSquare(s.Origin, newHalf, s.Normal.RotateCW(rad).Normalize())
	left.Translate(s.P1.Sub(left.P4))
	// a + (b - a) can be one ulp away from b; pin the shared corner.
	left.P4 = s.P1

	right = NewSquare(s.Origin, newHalf, s.Normal.RotateCW(-rad).Normalize())
	right.Translate(s.P2.Sub(right.P3))
	right.P3 = s.P2

	return left, right
}

func (s Square) String() string {
	return fmt.Sprintf("square{origin=(%.3f, %.3f) half=%.3f normal=(%.3f, %.3f)}",
		s.Origin.X, s.Origin.Y, s.HalfSize, s.Normal.X, s.Normal.Y)
}
