package pytree

import "math"

// MinScale is the smallest branch scale with defined geometry. Below it the
// branch angle acos(0.5/scale) has no real value.
const MinScale = 0.5

// ClampScale raises scale to MinScale.
func ClampScale(scale float64) float64 {
	return math.Max(scale, MinScale)
}

// Subdivide grows the tree from root for steps rounds. Depth 0 holds root and
// depth d (1 <= d <= steps) holds 2^d squares.
//
// scale is not checked; pass it through ClampScale first.
func Subdivide(root Square, steps int, scale float64) *Levels {
	levels := NewLevels()
	levels.Append(0, root)
	subdivide(root, steps, scale, levels, 1)
	return levels
}

// subdivide appends the children of s at depth and hands deeper levels to the
// children. Every call writes into the same levels.
func subdivide(s Square, steps int, scale float64, levels *Levels, depth int) {
	if depth > steps {
		return
	}

	left, right := s.Children(scale)
	levels.Append(depth, left, right)

	subdivide(left, steps, scale, levels, depth+1)
	subdivide(right, steps, scale, levels, depth+1)
}
