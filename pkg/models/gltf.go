package models

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/pytree/pkg/math3d"
)

// NewGLTFDocument converts the mesh to a glTF document with one node, one
// mesh, and one primitive per material. Positions and normals are shared by
// all primitives.
func NewGLTFDocument(m *Mesh) *gltf.Document {
	doc := gltf.NewDocument()

	positions := make([][3]float32, len(m.Vertices))
	normals := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = toFloat32(v.Position)
		normals[i] = toFloat32(v.Normal)
	}
	posAccessor := modeler.WritePosition(doc, positions)
	normAccessor := modeler.WriteNormal(doc, normals)

	for _, mat := range m.Materials {
		metallic, roughness := 0.0, 1.0
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name:        mat.Name,
			DoubleSided: true,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float64{mat.BaseColor[0], mat.BaseColor[1], mat.BaseColor[2], mat.BaseColor[3]},
				MetallicFactor:  &metallic,
				RoughnessFactor: &roughness,
			},
		})
	}

	// Faces without a material go into a trailing primitive.
	groups := make([][]uint32, len(m.Materials)+1)
	for _, f := range m.Faces {
		g := len(m.Materials)
		if f.Material >= 0 && f.Material < len(m.Materials) {
			g = f.Material
		}
		groups[g] = append(groups[g], uint32(f.V[0]), uint32(f.V[1]), uint32(f.V[2]))
	}

	gm := &gltf.Mesh{Name: m.Name}
	for g, indices := range groups {
		if len(indices) == 0 {
			continue
		}
		prim := &gltf.Primitive{
			Indices: gltf.Index(modeler.WriteIndices(doc, indices)),
			Attributes: map[string]int{
				gltf.POSITION: posAccessor,
				gltf.NORMAL:   normAccessor,
			},
			Mode: gltf.PrimitiveTriangles,
		}
		if g < len(m.Materials) {
			prim.Material = gltf.Index(g)
		}
		gm.Primitives = append(gm.Primitives, prim)
	}

	doc.Meshes = append(doc.Meshes, gm)
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: m.Name, Mesh: gltf.Index(len(doc.Meshes) - 1)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	return doc
}

func toFloat32(v math3d.Vec3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

// WriteGLB writes the mesh as binary glTF.
func WriteGLB(w io.Writer, m *Mesh) error {
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(NewGLTFDocument(m)); err != nil {
		return fmt.Errorf("encode glb: %w", err)
	}
	return nil
}

// LoadGLB loads a .glb or .gltf file. Triangle primitives of every mesh are
// merged into one Mesh; node transforms are ignored since exported ornaments
// carry none.
func LoadGLB(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return meshFromDocument(doc, path)
}

func meshFromDocument(doc *gltf.Document, name string) (*Mesh, error) {
	mesh := NewMesh(name)

	for _, mat := range doc.Materials {
		m := Material{Name: mat.Name, BaseColor: [4]float64{1, 1, 1, 1}}
		if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
			m.BaseColor = *pbr.BaseColorFactor
		}
		mesh.Materials = append(mesh.Materials, m)
	}

	bases := make(map[[2]int]int)
	for _, gm := range doc.Meshes {
		if len(mesh.Name) == 0 {
			mesh.Name = gm.Name
		}
		for _, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
				continue
			}
			if err := appendPrimitive(doc, prim, mesh, bases); err != nil {
				return nil, fmt.Errorf("mesh %q: %w", gm.Name, err)
			}
		}
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// appendPrimitive adds the triangles of prim to mesh. Primitives that share
// the same position and normal accessors share vertices; bases maps those
// accessor pairs to the index of their first vertex in mesh.
func appendPrimitive(doc *gltf.Document, prim *gltf.Primitive, mesh *Mesh, bases map[[2]int]int) error {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil
	}
	positions, err := readVec3Accessor(doc, posIdx)
	if err != nil {
		return fmt.Errorf("read positions: %w", err)
	}

	normIdx, hasNormals := prim.Attributes[gltf.NORMAL]
	if !hasNormals {
		normIdx = -1
	}
	key := [2]int{posIdx, normIdx}
	base, seen := bases[key]
	if !seen {
		var normals []math3d.Vec3
		if hasNormals {
			if normals, err = readVec3Accessor(doc, normIdx); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}
		base = len(mesh.Vertices)
		bases[key] = base
		for i, p := range positions {
			v := MeshVertex{Position: p}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}
	}

	material := -1
	if prim.Material != nil {
		material = *prim.Material
	}

	var indices []int
	if prim.Indices != nil {
		if indices, err = readIndices(doc, *prim.Indices); err != nil {
			return fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]int, len(positions))
		for i := range indices {
			indices[i] = i
		}
	}

	for i := 0; i+2 < len(indices); i += 3 {
		face := Face{Material: material}
		for k := 0; k < 3; k++ {
			if indices[i+k] < 0 || indices[i+k] >= len(positions) {
				return fmt.Errorf("index %d out of range", indices[i+k])
			}
			face.V[k] = base + indices[i+k]
		}
		mesh.Faces = append(mesh.Faces, face)
	}
	return nil
}

// accessorBytes returns the buffer bytes of an accessor and its element stride.
func accessorBytes(doc *gltf.Document, accessorIdx, elemSize int) ([]byte, int, *gltf.Accessor, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, 0, nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	acc := doc.Accessors[accessorIdx]
	if acc.BufferView == nil {
		return nil, 0, nil, fmt.Errorf("accessor %d has no buffer view", accessorIdx)
	}
	bv := doc.BufferViews[*acc.BufferView]
	buf := doc.Buffers[bv.Buffer]
	if buf.Data == nil {
		return nil, 0, nil, fmt.Errorf("buffer %d has no data", bv.Buffer)
	}

	stride := bv.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := bv.ByteOffset + acc.ByteOffset
	end := start
	if acc.Count > 0 {
		end = start + (acc.Count-1)*stride + elemSize
	}
	if end > len(buf.Data) {
		return nil, 0, nil, fmt.Errorf("accessor %d exceeds buffer", accessorIdx)
	}
	return buf.Data[start:end], stride, acc, nil
}

func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	data, stride, acc, err := accessorBytes(doc, accessorIdx, 12)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltf.AccessorVec3 || acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v / %v", acc.Type, acc.ComponentType)
	}

	result := make([]math3d.Vec3, acc.Count)
	for i := range result {
		b := data[i*stride:]
		result[i] = math3d.V3(
			float64(math.Float32frombits(binary.LittleEndian.Uint32(b[0:]))),
			float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))),
			float64(math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))),
		)
	}
	return result, nil
}

func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	var size int
	switch ct := doc.Accessors[accessorIdx].ComponentType; ct {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index component type: %v", ct)
	}

	data, stride, acc, err := accessorBytes(doc, accessorIdx, size)
	if err != nil {
		return nil, err
	}
	result := make([]int, acc.Count)
	for i := range result {
		b := data[i*stride:]
		switch size {
		case 1:
			result[i] = int(b[0])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(b))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return result, nil
}
