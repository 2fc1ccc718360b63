package render

import (
	"math"

	"github.com/taigrr/pytree/pkg/math3d"
	"github.com/taigrr/pytree/pkg/pytree"
)

// DepthColor is the fill color for squares at level. The red channel ramps up
// with depth as round(210 * (level+2) / (steps+1)) and saturates at 255; green
// and blue stay at 128.
func DepthColor(level, steps int) Color {
	if steps < 0 {
		steps = 0
	}
	red := math.Round(210 * float64(level+2) / float64(steps+1))
	red = math.Min(math.Max(red, 0), 255)
	return RGB(uint8(red), 128, 128)
}

// DrawOrnament paints every square of levels, shallow levels first and each
// level from its last square to its first.
func DrawOrnament(fb *Framebuffer, levels *pytree.Levels, steps int) {
	paintSquares(levels, steps, func(quad [4]math3d.Vec2, c Color) {
		FillQuad(fb, quad, c)
	})
}

// paintSquares calls fill for every square in paint order.
func paintSquares(levels *pytree.Levels, steps int, fill func(quad [4]math3d.Vec2, c Color)) {
	levels.EachReverse(func(depth int, sq pytree.Square) {
		fill(sq.Corners(), DepthColor(depth, steps))
	})
}

// Render generates o and draws it on a canvas of the ornament's size filled
// with bg.
func Render(o *pytree.Ornament, bg Color) (*Framebuffer, *pytree.Levels) {
	levels := o.Generate()

	fb := NewFramebuffer(o.Width, o.Height)
	fb.BG = bg
	fb.Clear()
	DrawOrnament(fb, levels, o.Steps)
	return fb, levels
}
