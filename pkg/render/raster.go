package render

import (
	"math"
	"slices"

	"github.com/taigrr/pytree/pkg/math3d"
)

// FillPolygon fills a simple polygon with the even-odd rule. A pixel is
// covered when its center (x+0.5, y+0.5) lies inside the outline.
func FillPolygon(fb *Framebuffer, pts []math3d.Vec2, c Color) {
	if len(pts) < 3 {
		return
	}

	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	if math.IsNaN(minY) || math.IsNaN(maxY) {
		return
	}

	y0 := max(0, int(math.Floor(minY)))
	y1 := min(fb.Height-1, int(math.Ceil(maxY)))

	xs := make([]float64, 0, len(pts))
	for y := y0; y <= y1; y++ {
		sy := float64(y) + 0.5

		xs = xs[:0]
		for i := range pts {
			a := pts[i]
			b := pts[(i+1)%len(pts)]
			// Half-open so a vertex shared by two edges is counted once.
			if (a.Y <= sy) == (b.Y <= sy) {
				continue
			}
			if a.Y > b.Y {
				a, b = b, a
			}
			t := (sy - a.Y) / (b.Y - a.Y)
			xs = append(xs, a.X+t*(b.X-a.X))
		}
		slices.Sort(xs)

		for i := 0; i+1 < len(xs); i += 2 {
			// Pixel x is covered when xs[i] <= x+0.5 < xs[i+1].
			start := max(0, int(math.Ceil(xs[i]-0.5)))
			end := min(fb.Width-1, int(math.Ceil(xs[i+1]-0.5))-1)
			for x := start; x <= end; x++ {
				fb.Pixels[y*fb.Width+x] = c
			}
		}
	}
}

// FillQuad fills the quadrilateral with corners in cyclic order.
func FillQuad(fb *Framebuffer, quad [4]math3d.Vec2, c Color) {
	FillPolygon(fb, quad[:], c)
}
