package models

import (
	"fmt"

	"github.com/taigrr/pytree/pkg/math3d"
	"github.com/taigrr/pytree/pkg/pytree"
	"github.com/taigrr/pytree/pkg/render"
)

// ExportOptions controls how squares are placed in 3D.
type ExportOptions struct {
	// LayerHeight lifts depth d to z = d * LayerHeight. Zero keeps the
	// ornament flat.
	LayerHeight float64
	// FlipY negates y so a tree grown in image coordinates stands upright
	// in a y-up scene.
	FlipY bool
}

// DefaultExportOptions returns a flat, upright export.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{FlipY: true}
}

// FromLevels builds a mesh with two triangles per square. Material d holds
// the depth-d fill color.
func FromLevels(name string, levels *pytree.Levels, steps int, opts ExportOptions) *Mesh {
	mesh := NewMesh(name)
	mesh.Materials = make([]Material, levels.Depths())
	for d := range mesh.Materials {
		c := render.DepthColor(d, steps)
		mesh.Materials[d] = Material{
			Name: fmt.Sprintf("depth-%d", d),
			BaseColor: [4]float64{
				float64(c.R) / 255,
				float64(c.G) / 255,
				float64(c.B) / 255,
				float64(c.A) / 255,
			},
		}
	}

	ySign := 1.0
	if opts.FlipY {
		ySign = -1
	}
	lift := func(p math3d.Vec2, depth int) math3d.Vec3 {
		return math3d.V3(p.X, ySign*p.Y, float64(depth)*opts.LayerHeight)
	}

	levels.Each(func(depth int, sq pytree.Square) {
		c := sq.Corners()
		a, b, cc, d := lift(c[0], depth), lift(c[1], depth), lift(c[2], depth), lift(c[3], depth)
		if opts.FlipY {
			// Mirroring reverses the winding; keep faces pointing at +z.
			b, d = d, b
		}
		mesh.AddQuad(a, b, cc, d, depth)
	})

	mesh.CalculateNormals()
	mesh.CalculateBounds()
	return mesh
}
