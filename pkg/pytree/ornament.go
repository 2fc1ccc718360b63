package pytree

import (
	"math"

	"github.com/taigrr/pytree/pkg/math3d"
)

// Ornament is a tree placed on a canvas. The canvas is six sizes wide and four
// sizes tall and the root square stands centered on its bottom edge.
type Ornament struct {
	Size  int
	Steps int
	Scale float64

	Width, Height int
	Root          Square
}

// NewOrnament lays out an ornament for a root square of side size. scale is
// clamped to MinScale and negative steps are treated as zero.
func NewOrnament(size, steps int, scale float64) *Ornament {
	if steps < 0 {
		steps = 0
	}
	width := size * 6
	height := size * 4

	start := math3d.V2(
		math.Round(float64(width)*0.5),
		float64(height)-math.Round(float64(size)*0.5)-1,
	)

	return &Ornament{
		Size:   size,
		Steps:  steps,
		Scale:  ClampScale(scale),
		Width:  width,
		Height: height,
		Root:   NewSquare(start, float64(size)*0.5, math3d.V2(0, 1)),
	}
}

// Generate subdivides the root square.
func (o *Ornament) Generate() *Levels {
	return Subdivide(o.Root, o.Steps, o.Scale)
}
