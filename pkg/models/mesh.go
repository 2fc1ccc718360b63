// Package models converts ornaments to triangle meshes and reads and writes
// them as STL, OBJ and binary glTF.
package models

import (
	"github.com/taigrr/pytree/pkg/math3d"
)

// Mesh represents a triangle mesh with per-face materials.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
}

// Face represents a triangle face with vertex indices and material reference.
type Face struct {
	V        [3]int // Indices into Mesh.Vertices
	Material int    // Index into Mesh.Materials (-1 for no material)
}

// Material is a flat color.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA in 0-1 range
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]MeshVertex, 0),
		Faces:    make([]Face, 0),
	}
}

// AddQuad appends the quadrilateral a b c d as the triangles (a b c) and
// (a c d), all with the given material.
func (m *Mesh) AddQuad(a, b, c, d math3d.Vec3, material int) {
	base := len(m.Vertices)
	for _, p := range [4]math3d.Vec3{a, b, c, d} {
		m.Vertices = append(m.Vertices, MeshVertex{Position: p})
	}
	m.Faces = append(m.Faces,
		Face{V: [3]int{base, base + 1, base + 2}, Material: material},
		Face{V: [3]int{base, base + 2, base + 3}, Material: material},
	)
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceNormal returns the unit normal of face i from its winding.
func (m *Mesh) FaceNormal(i int) math3d.Vec3 {
	f := m.Faces[i]
	v0 := m.Vertices[f.V[0]].Position
	v1 := m.Vertices[f.V[1]].Position
	v2 := m.Vertices[f.V[2]].Position
	return v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
}

// CalculateNormals assigns each face's normal to its vertices. Quads built by
// AddQuad do not share vertices with other quads, so this is flat shading.
func (m *Mesh) CalculateNormals() {
	for i, f := range m.Faces {
		normal := m.FaceNormal(i)
		m.Vertices[f.V[0]].Normal = normal
		m.Vertices[f.V[1]].Normal = normal
		m.Vertices[f.V[2]].Normal = normal
	}
}

// MaterialFaceCounts returns how many faces use each material. Faces without
// a valid material are not counted.
func (m *Mesh) MaterialFaceCounts() []int {
	counts := make([]int, len(m.Materials))
	for _, f := range m.Faces {
		if f.Material >= 0 && f.Material < len(counts) {
			counts[f.Material]++
		}
	}
	return counts
}
