package pytree

import (
	"math"
	"testing"

	"github.com/taigrr/pytree/pkg/math3d"
)

const tolerance = 1e-9

func testRoot() Square {
	return NewSquare(math3d.V2(0, 0), 10, math3d.V2(0, 1))
}

func near(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func nearVec(a, b math3d.Vec2) bool {
	return near(a.X, b.X) && near(a.Y, b.Y)
}

func TestNewSquareCorners(t *testing.T) {
	sq := testRoot()

	want := [4]math3d.Vec2{
		math3d.V2(-10, -10),
		math3d.V2(10, -10),
		math3d.V2(10, 10),
		math3d.V2(-10, 10),
	}
	for i, c := range sq.Corners() {
		if !nearVec(c, want[i]) {
			t.Errorf("corner %d = %v, want %v", i+1, c, want[i])
		}
	}
}

func TestNewSquareNormalizes(t *testing.T) {
	sq := NewSquare(math3d.V2(5, 5), 2, math3d.V2(3, 4))
	if !near(sq.Normal.Len(), 1) {
		t.Errorf("normal length = %v, want 1", sq.Normal.Len())
	}

	// Side lengths survive the rotation.
	c := sq.Corners()
	for i := range c {
		side := c[i].Distance(c[(i+1)%4])
		if !near(side, 4) {
			t.Errorf("side %d length = %v, want 4", i, side)
		}
	}
	if !nearVec(c[0].Lerp(c[2], 0.5), sq.Origin) {
		t.Errorf("diagonal midpoint = %v, want origin %v", c[0].Lerp(c[2], 0.5), sq.Origin)
	}
}

func TestNewSquareZeroNormal(t *testing.T) {
	sq := NewSquare(math3d.V2(1, 1), 1, math3d.Zero2())
	if sq.Normal != math3d.Zero2() {
		t.Errorf("normal = %v, want zero vector", sq.Normal)
	}
	if !nearVec(sq.P1, math3d.V2(0, 0)) || !nearVec(sq.P3, math3d.V2(2, 2)) {
		t.Errorf("degenerate orientation should lay corners axis aligned, got %v %v", sq.P1, sq.P3)
	}
}

func TestSquareTranslate(t *testing.T) {
	sq := testRoot()
	sq.Translate(math3d.V2(3, -2))

	if sq.Origin != math3d.V2(3, -2) {
		t.Errorf("origin = %v, want (3,-2)", sq.Origin)
	}
	if !nearVec(sq.P1, math3d.V2(-7, -12)) || !nearVec(sq.P3, math3d.V2(13, 8)) {
		t.Errorf("corners not translated: %v %v", sq.P1, sq.P3)
	}
}

func TestSubdivideStepsZero(t *testing.T) {
	root := testRoot()
	levels := Subdivide(root, 0, 0.7)

	if levels.Depths() != 1 {
		t.Fatalf("Depths = %d, want 1", levels.Depths())
	}
	got := levels.At(0)
	if len(got) != 1 || got[0] != root {
		t.Errorf("depth 0 = %v, want [root]", got)
	}
}

func TestSubdivideOneStep(t *testing.T) {
	levels := Subdivide(testRoot(), 1, 0.7)

	if levels.Depths() != 2 {
		t.Fatalf("Depths = %d, want 2", levels.Depths())
	}
	children := levels.At(1)
	if len(children) != 2 {
		t.Fatalf("depth 1 has %d squares, want 2", len(children))
	}
	left, right := children[0], children[1]
	for _, c := range children {
		if !near(c.HalfSize, 7) {
			t.Errorf("child half size = %v, want 7", c.HalfSize)
		}
	}

	// Normals mirror each other about (0, 1).
	if !near(left.Normal.X, -right.Normal.X) || !near(left.Normal.Y, right.Normal.Y) {
		t.Errorf("normals not symmetric: %v %v", left.Normal, right.Normal)
	}
	rad := math.Acos(5.0 / 7.0)
	if !nearVec(left.Normal, math3d.V2(math.Sin(rad), math.Cos(rad))) {
		t.Errorf("left normal = %v", left.Normal)
	}
}

func TestSubdivideCounts(t *testing.T) {
	const steps = 6
	levels := Subdivide(testRoot(), steps, 0.75)

	if levels.Depths() != steps+1 {
		t.Fatalf("Depths = %d, want %d", levels.Depths(), steps+1)
	}
	if got := levels.At(steps + 1); got != nil {
		t.Errorf("depth %d should be empty, got %d squares", steps+1, len(got))
	}
	total := 0
	for d := 0; d <= steps; d++ {
		want := 1 << d
		if got := len(levels.At(d)); got != want {
			t.Errorf("depth %d has %d squares, want %d", d, got, want)
		}
		total += want
	}
	if levels.Len() != total {
		t.Errorf("Len = %d, want %d", levels.Len(), total)
	}
}

func TestSubdivideInvariants(t *testing.T) {
	for _, scale := range []float64{0.5, 0.6, 0.7, 0.9, 1.3} {
		levels := Subdivide(testRoot(), 5, scale)

		levels.Each(func(depth int, sq Square) {
			if !near(sq.Normal.Len(), 1) {
				t.Errorf("scale %v depth %d: normal length %v", scale, depth, sq.Normal.Len())
			}
		})

		for d := 0; d+1 < levels.Depths(); d++ {
			parents := levels.At(d)
			children := levels.At(d + 1)
			for i, p := range parents {
				a, b := children[2*i], children[2*i+1]
				if a.P4 != p.P1 {
					t.Errorf("scale %v depth %d #%d: left P4 %v != parent P1 %v", scale, d, i, a.P4, p.P1)
				}
				if b.P3 != p.P2 {
					t.Errorf("scale %v depth %d #%d: right P3 %v != parent P2 %v", scale, d, i, b.P3, p.P2)
				}
				if !near(a.HalfSize, p.HalfSize*scale) {
					t.Errorf("scale %v depth %d #%d: child half size %v", scale, d, i, a.HalfSize)
				}
			}
		}
	}
}

func TestSubdivideDeterministic(t *testing.T) {
	a := Subdivide(testRoot(), 8, 0.71)
	b := Subdivide(testRoot(), 8, 0.71)

	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("fingerprints differ between identical runs")
	}
	for d := 0; d < a.Depths(); d++ {
		x, y := a.At(d), b.At(d)
		for i := range x {
			if x[i] != y[i] {
				t.Fatalf("depth %d #%d differs: %v vs %v", d, i, x[i], y[i])
			}
		}
	}

	if c := Subdivide(testRoot(), 8, 0.72); c.Fingerprint() == a.Fingerprint() {
		t.Error("different scale produced the same fingerprint")
	}
}

func TestSubdivideMinScale(t *testing.T) {
	levels := Subdivide(testRoot(), 1, MinScale)
	left, right := levels.At(1)[0], levels.At(1)[1]

	for _, c := range []Square{left, right} {
		if math.IsNaN(c.P1.X) || math.IsNaN(c.Normal.X) {
			t.Fatalf("NaN at scale %v: %v", MinScale, c)
		}
		if !nearVec(c.Normal, math3d.V2(0, 1)) {
			t.Errorf("normal = %v, want parent orientation (0,1)", c.Normal)
		}
	}
	if !nearVec(left.Origin, math3d.V2(-5, -15)) {
		t.Errorf("left origin = %v, want (-5,-15)", left.Origin)
	}
	if !nearVec(right.Origin, math3d.V2(5, -15)) {
		t.Errorf("right origin = %v, want (5,-15)", right.Origin)
	}
}

func TestSubdivideBelowMinScaleIsNaN(t *testing.T) {
	levels := Subdivide(testRoot(), 1, 0.4)
	if !math.IsNaN(levels.At(1)[0].Normal.X) {
		t.Error("expected NaN geometry for an unclamped scale below MinScale")
	}
	if ClampScale(0.4) != MinScale || ClampScale(0.8) != 0.8 {
		t.Error("ClampScale should raise values below MinScale only")
	}
}

func BenchmarkSubdivide(b *testing.B) {
	root := testRoot()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Subdivide(root, 12, 0.7)
	}
}
