package models

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/taigrr/pytree/pkg/math3d"
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50
)

// WriteSTL writes the mesh as binary STL. STL has no materials; every facet
// carries its computed normal.
func WriteSTL(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)

	header := make([]byte, stlHeaderSize)
	// The header must not start with "solid" or readers take it for ASCII.
	copy(header, "pytree binary stl: "+m.Name)
	if _, err := bw.Write(header); err != nil {
		return fmt.Errorf("write STL header: %w", err)
	}

	if uint64(len(m.Faces)) > math.MaxUint32 {
		return fmt.Errorf("too many triangles for STL: %d", len(m.Faces))
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(m.Faces))); err != nil {
		return fmt.Errorf("write STL triangle count: %w", err)
	}

	var rec [stlTriangleSize]byte
	for i, f := range m.Faces {
		putVec3(rec[0:], m.FaceNormal(i))
		for v := 0; v < 3; v++ {
			putVec3(rec[12+12*v:], m.Vertices[f.V[v]].Position)
		}
		// rec[48:50] is the attribute byte count, always zero.
		if _, err := bw.Write(rec[:]); err != nil {
			return fmt.Errorf("write STL triangle %d: %w", i, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush STL: %w", err)
	}
	return nil
}

func putVec3(b []byte, v math3d.Vec3) {
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(float32(v.X)))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(float32(v.Y)))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(float32(v.Z)))
}

// STLLoader loads STL files in both ASCII and binary formats.
type STLLoader struct {
	// Weld merges vertices with identical positions.
	Weld bool
}

// NewSTLLoader creates a new STL loader with default settings.
func NewSTLLoader() *STLLoader {
	return &STLLoader{Weld: true}
}

// LoadFile loads an STL file from disk.
func (l *STLLoader) LoadFile(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read STL file: %w", err)
	}
	return l.LoadBytes(data, path)
}

// Load parses STL from a reader.
// The whole content is read into memory to detect the format.
func (l *STLLoader) Load(r io.Reader, name string) (*Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read STL data: %w", err)
	}
	return l.LoadBytes(data, name)
}

// LoadBytes parses STL from a byte slice.
func (l *STLLoader) LoadBytes(data []byte, name string) (*Mesh, error) {
	if isBinarySTL(data) {
		return l.loadBinary(data, name)
	}
	return l.loadASCII(data, name)
}

// isBinarySTL reports whether data is binary STL. ASCII files start with
// "solid", but so do some binary headers, so the size is checked as well.
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	triCount := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	sizeMatches := uint64(len(data)) == stlHeaderSize+4+uint64(triCount)*stlTriangleSize

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("solid")) {
		return sizeMatches
	}
	return true
}

type vertexWelder struct {
	mesh  *Mesh
	index map[math3d.Vec3]int
}

func (w *vertexWelder) add(pos, normal math3d.Vec3) int {
	if w.index != nil {
		if idx, ok := w.index[pos]; ok {
			return idx
		}
	}
	idx := len(w.mesh.Vertices)
	w.mesh.Vertices = append(w.mesh.Vertices, MeshVertex{Position: pos, Normal: normal})
	if w.index != nil {
		w.index[pos] = idx
	}
	return idx
}

func (l *STLLoader) welder(m *Mesh) *vertexWelder {
	w := &vertexWelder{mesh: m}
	if l.Weld {
		w.index = make(map[math3d.Vec3]int)
	}
	return w
}

func (l *STLLoader) loadBinary(data []byte, name string) (*Mesh, error) {
	triCount := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	expected := stlHeaderSize + 4 + uint64(triCount)*stlTriangleSize
	if uint64(len(data)) < expected {
		return nil, fmt.Errorf("binary STL truncated: expected %d bytes, got %d", expected, len(data))
	}

	mesh := NewMesh(name)
	weld := l.welder(mesh)

	offset := stlHeaderSize + 4
	for i := uint32(0); i < triCount; i++ {
		normal := readVec3LE(data[offset:])
		offset += 12

		var face Face
		face.Material = -1
		for v := 0; v < 3; v++ {
			face.V[v] = weld.add(readVec3LE(data[offset:]), normal)
			offset += 12
		}
		offset += 2

		mesh.Faces = append(mesh.Faces, face)
	}

	mesh.CalculateBounds()
	return mesh, nil
}

func readVec3LE(b []byte) math3d.Vec3 {
	return math3d.V3(
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[0:]))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))),
	)
}

func (l *STLLoader) loadASCII(data []byte, name string) (*Mesh, error) {
	mesh := NewMesh(name)
	weld := l.welder(mesh)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0

	var normal math3d.Vec3
	var verts []int
	inLoop := false

	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "solid":
			if len(fields) > 1 {
				mesh.Name = fields[1]
			}
		case "facet":
			if len(fields) >= 5 && strings.EqualFold(fields[1], "normal") {
				n, err := parseVec3(fields[2:5])
				if err != nil {
					return nil, fmt.Errorf("line %d: facet normal: %w", lineNum, err)
				}
				normal = n.Normalize()
			}
			verts = verts[:0]
		case "outer":
			inLoop = true
		case "vertex":
			if !inLoop {
				return nil, fmt.Errorf("line %d: vertex outside loop", lineNum)
			}
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs x y z", lineNum)
			}
			pos, err := parseVec3(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", lineNum, err)
			}
			verts = append(verts, weld.add(pos, normal))
		case "endloop":
			inLoop = false
		case "endfacet":
			if len(verts) >= 3 {
				mesh.Faces = append(mesh.Faces, Face{
					V:        [3]int{verts[0], verts[1], verts[2]},
					Material: -1,
				})
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ASCII STL: %w", err)
	}

	mesh.CalculateBounds()
	return mesh, nil
}

func parseVec3(fields []string) (math3d.Vec3, error) {
	var xyz [3]float64
	for i, f := range fields[:3] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return math3d.Vec3{}, err
		}
		xyz[i] = v
	}
	return math3d.V3(xyz[0], xyz[1], xyz[2]), nil
}

// LoadSTL loads an STL file with default settings.
func LoadSTL(path string) (*Mesh, error) {
	return NewSTLLoader().LoadFile(path)
}
