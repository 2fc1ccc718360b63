package render

import (
	"math"
	"testing"

	"github.com/taigrr/pytree/pkg/math3d"
	"github.com/taigrr/pytree/pkg/pytree"
)

func countColor(fb *Framebuffer, c Color) int {
	n := 0
	for _, p := range fb.Pixels {
		if p == c {
			n++
		}
	}
	return n
}

func TestFillQuadAxisAligned(t *testing.T) {
	fb := NewFramebuffer(10, 10)
	FillQuad(fb, [4]math3d.Vec2{
		math3d.V2(2, 2), math3d.V2(6, 2), math3d.V2(6, 5), math3d.V2(2, 5),
	}, ColorRed)

	if got := countColor(fb, ColorRed); got != 12 {
		t.Errorf("filled %d pixels, want 12 (4x3)", got)
	}
	tests := []struct {
		x, y int
		want Color
	}{
		{2, 2, ColorRed},
		{5, 4, ColorRed},
		{6, 2, ColorTransparent},
		{2, 5, ColorTransparent},
		{1, 3, ColorTransparent},
	}
	for _, tt := range tests {
		if got := fb.GetPixel(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestFillPolygonWindingIndependent(t *testing.T) {
	cw := NewFramebuffer(20, 20)
	ccw := NewFramebuffer(20, 20)
	sq := pytree.NewSquare(math3d.V2(10, 10), 5, math3d.FromDegrees(30))
	c := sq.Corners()

	FillQuad(cw, c, ColorGreen)
	FillQuad(ccw, [4]math3d.Vec2{c[3], c[2], c[1], c[0]}, ColorGreen)

	for i := range cw.Pixels {
		if cw.Pixels[i] != ccw.Pixels[i] {
			t.Fatalf("pixel %d differs between windings", i)
		}
	}
	// A rotated 10x10 square covers about 100 pixels.
	if n := countColor(cw, ColorGreen); n < 90 || n > 110 {
		t.Errorf("rotated square covers %d pixels, want about 100", n)
	}
}

func TestFillPolygonClipsAndIgnoresDegenerate(t *testing.T) {
	fb := NewFramebuffer(5, 5)
	FillPolygon(fb, []math3d.Vec2{math3d.V2(-10, -10), math3d.V2(20, -10), math3d.V2(20, 20), math3d.V2(-10, 20)}, ColorBlue)
	if got := countColor(fb, ColorBlue); got != 25 {
		t.Errorf("covering polygon filled %d pixels, want 25", got)
	}

	empty := NewFramebuffer(5, 5)
	FillPolygon(empty, []math3d.Vec2{math3d.V2(1, 1), math3d.V2(3, 3)}, ColorRed)
	nan := math.NaN()
	FillPolygon(empty, []math3d.Vec2{math3d.V2(nan, nan), math3d.V2(nan, 1), math3d.V2(1, nan)}, ColorRed)
	if got := countColor(empty, ColorRed); got != 0 {
		t.Errorf("degenerate polygons filled %d pixels", got)
	}
}

func TestDepthColor(t *testing.T) {
	tests := []struct {
		level, steps int
		want         Color
	}{
		{0, 8, RGB(47, 128, 128)},
		{3, 8, RGB(117, 128, 128)},
		{0, 0, RGB(255, 128, 128)},
		{8, 8, RGB(233, 128, 128)},
		{9, 8, RGB(255, 128, 128)},
	}
	for _, tt := range tests {
		if got := DepthColor(tt.level, tt.steps); got != tt.want {
			t.Errorf("DepthColor(%d, %d) = %v, want %v", tt.level, tt.steps, got, tt.want)
		}
	}
}

func TestRenderOrnament(t *testing.T) {
	o := pytree.NewOrnament(20, 2, 0.7)
	fb, levels := Render(o, ColorBlack)

	if fb.Width != 120 || fb.Height != 80 {
		t.Fatalf("canvas = %dx%d, want 120x80", fb.Width, fb.Height)
	}
	if levels.Len() != 7 {
		t.Errorf("levels hold %d squares, want 7", levels.Len())
	}
	if got := fb.GetPixel(0, 0); got != ColorBlack {
		t.Errorf("background pixel = %v, want black", got)
	}
	// Root center: (60, 69).
	if got, want := fb.GetPixel(60, 69), DepthColor(0, 2); got != want {
		t.Errorf("root pixel = %v, want %v", got, want)
	}

	// Each child's center is painted in the depth 1 color.
	for _, sq := range levels.At(1) {
		x, y := int(sq.Origin.X), int(sq.Origin.Y)
		if got := fb.GetPixel(x, y); got == ColorBlack {
			t.Errorf("child center (%d,%d) left unpainted", x, y)
		}
	}
}

func TestPaintSquaresOrder(t *testing.T) {
	levels := pytree.NewLevels()
	sq := func(x float64) pytree.Square {
		return pytree.NewSquare(math3d.V2(x, 0), 1, math3d.V2(0, 1))
	}
	levels.Append(0, sq(0))
	levels.Append(1, sq(10), sq(20), sq(30))
	levels.Append(2, sq(40), sq(50))

	var got []float64
	var colors []Color
	paintSquares(levels, 2, func(quad [4]math3d.Vec2, c Color) {
		got = append(got, (quad[0].X+quad[2].X)/2)
		colors = append(colors, c)
	})

	// Depths ascending, each depth from its last square to its first.
	want := []float64{0, 30, 20, 10, 50, 40}
	if len(got) != len(want) {
		t.Fatalf("painted %d squares, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paint order = %v, want %v", got, want)
			break
		}
	}
	if colors[0] != DepthColor(0, 2) || colors[1] != DepthColor(1, 2) || colors[5] != DepthColor(2, 2) {
		t.Errorf("colors = %v", colors)
	}
}

func TestDrawOrnamentDeeperPaintsOver(t *testing.T) {
	fb := NewFramebuffer(20, 20)
	levels := pytree.NewLevels()
	levels.Append(0, pytree.NewSquare(math3d.V2(8, 10), 5, math3d.V2(0, 1)))
	levels.Append(1, pytree.NewSquare(math3d.V2(12, 10), 5, math3d.V2(0, 1)))
	DrawOrnament(fb, levels, 1)

	if got := fb.GetPixel(10, 10); got != DepthColor(1, 1) {
		t.Errorf("overlap = %v, want depth 1 color %v", got, DepthColor(1, 1))
	}
	if got := fb.GetPixel(4, 10); got != DepthColor(0, 1) {
		t.Errorf("parent only = %v, want depth 0 color %v", got, DepthColor(0, 1))
	}
}
