package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/taigrr/pytree/pkg/math3d"
)

// WriteOBJ writes the mesh as Wavefront OBJ. Faces are grouped by material
// with usemtl; the material colors are written as comments since no .mtl
// file is produced.
func WriteOBJ(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# pytree\no %s\n", objName(m.Name))
	for _, mat := range m.Materials {
		fmt.Fprintf(bw, "# %s kd %.4f %.4f %.4f\n", mat.Name, mat.BaseColor[0], mat.BaseColor[1], mat.BaseColor[2])
	}
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %s %s %s\n", objFloat(v.Position.X), objFloat(v.Position.Y), objFloat(v.Position.Z))
	}
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "vn %s %s %s\n", objFloat(v.Normal.X), objFloat(v.Normal.Y), objFloat(v.Normal.Z))
	}

	current := -2
	for _, f := range m.Faces {
		if f.Material != current {
			current = f.Material
			if current >= 0 && current < len(m.Materials) {
				fmt.Fprintf(bw, "usemtl %s\n", m.Materials[current].Name)
			}
		}
		// OBJ indices are 1-based.
		a, b, c := f.V[0]+1, f.V[1]+1, f.V[2]+1
		fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write OBJ: %w", err)
	}
	return nil
}

func objName(name string) string {
	if name == "" {
		return "pytree"
	}
	return strings.Join(strings.Fields(name), "_")
}

func objFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// OBJLoader loads Wavefront OBJ files. Only positions, normals, faces and
// usemtl groups are read; polygons are fanned into triangles.
type OBJLoader struct {
	// CalculateNormals fills in normals when the file has none.
	CalculateNormals bool
}

// NewOBJLoader creates a new OBJ loader with default settings.
func NewOBJLoader() *OBJLoader {
	return &OBJLoader{CalculateNormals: true}
}

// LoadFile loads an OBJ file from disk.
func (l *OBJLoader) LoadFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open OBJ file: %w", err)
	}
	defer f.Close()

	return l.Load(f, path)
}

// Load parses an OBJ from a reader.
func (l *OBJLoader) Load(r io.Reader, name string) (*Mesh, error) {
	mesh := NewMesh(name)

	var positions, normals []math3d.Vec3

	type vertexKey struct{ pos, normal int }
	vertexMap := make(map[vertexKey]int)
	materials := make(map[string]int)
	material := -1
	hasNormals := false

	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "o":
			if len(fields) > 1 {
				mesh.Name = fields[1]
			}
		case "v", "vn":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: %s needs x y z", lineNum, fields[0])
			}
			v, err := parseVec3(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			if fields[0] == "v" {
				positions = append(positions, v)
			} else {
				normals = append(normals, v)
			}
		case "usemtl":
			if len(fields) < 2 {
				material = -1
				continue
			}
			idx, ok := materials[fields[1]]
			if !ok {
				idx = len(mesh.Materials)
				materials[fields[1]] = idx
				mesh.Materials = append(mesh.Materials, Material{
					Name:      fields[1],
					BaseColor: [4]float64{1, 1, 1, 1},
				})
			}
			material = idx
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNum)
			}
			corners := make([]int, 0, len(fields)-1)
			for _, fv := range fields[1:] {
				pos, normal, err := parseFaceVertex(fv)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}
				pos = resolveIndex(pos, len(positions))
				normal = resolveIndex(normal, len(normals))
				if pos < 0 || pos >= len(positions) {
					return nil, fmt.Errorf("line %d: vertex index out of range", lineNum)
				}

				key := vertexKey{pos, normal}
				idx, ok := vertexMap[key]
				if !ok {
					v := MeshVertex{Position: positions[pos]}
					if normal >= 0 && normal < len(normals) {
						v.Normal = normals[normal]
						hasNormals = true
					}
					idx = len(mesh.Vertices)
					mesh.Vertices = append(mesh.Vertices, v)
					vertexMap[key] = idx
				}
				corners = append(corners, idx)
			}
			for i := 1; i+1 < len(corners); i++ {
				mesh.Faces = append(mesh.Faces, Face{
					V:        [3]int{corners[0], corners[i], corners[i+1]},
					Material: material,
				})
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read OBJ: %w", err)
	}

	if l.CalculateNormals && !hasNormals {
		mesh.CalculateNormals()
	}
	mesh.CalculateBounds()
	return mesh, nil
}

// parseFaceVertex parses "v", "v/vt", "v//vn" or "v/vt/vn". Indices are
// returned as written (1-based or negative); missing ones are 0.
func parseFaceVertex(s string) (pos, normal int, err error) {
	parts := strings.Split(s, "/")
	pos, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid face vertex %q: %w", s, err)
	}
	if len(parts) >= 3 && parts[2] != "" {
		normal, err = strconv.Atoi(parts[2])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid face normal %q: %w", s, err)
		}
	}
	return pos, normal, nil
}

// resolveIndex converts an OBJ index (1-based, negative counts from the end)
// to a 0-based one. 0 means absent and maps to -1.
func resolveIndex(idx, count int) int {
	switch {
	case idx > 0:
		return idx - 1
	case idx < 0:
		return count + idx
	default:
		return -1
	}
}

// LoadOBJ loads an OBJ file with default settings.
func LoadOBJ(path string) (*Mesh, error) {
	return NewOBJLoader().LoadFile(path)
}
