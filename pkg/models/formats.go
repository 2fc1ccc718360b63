package models

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions other than .stl,
// .obj, .glb and .gltf.
var ErrUnsupportedFormat = errors.New("unsupported model format")

type writeFunc func(io.Writer, *Mesh) error

func writerFor(path string) (writeFunc, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".stl":
		return WriteSTL, nil
	case ".obj":
		return WriteOBJ, nil
	case ".glb", ".gltf":
		return WriteGLB, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// SaveFile writes the mesh to path in the format named by its extension.
// Both .glb and .gltf produce binary glTF.
func SaveFile(m *Mesh, path string) (err error) {
	write, err := writerFor(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return write(f, m)
}

// Load reads a mesh from path, picking the loader from the extension.
func Load(path string) (*Mesh, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".stl":
		return LoadSTL(path)
	case ".obj":
		return LoadOBJ(path)
	case ".glb", ".gltf":
		return LoadGLB(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
