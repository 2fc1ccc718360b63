// Package preset loads ornament settings from YAML.
package preset

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"fortio.org/log"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/pytree/pkg/pytree"
	"github.com/taigrr/pytree/pkg/render"
)

const (
	// MaxSize bounds the root square side. The canvas is 6*size by 4*size
	// pixels, so MaxSize gives at most 24M pixels (about 96 MB of RGBA).
	MaxSize = 1000

	// MaxSteps bounds the recursion depth. An ornament holds 2^(steps+1)-1
	// squares of 104 bytes each; at MaxSteps that is 524287 squares, about
	// 55 MB, and about 135 MB more once exported as a mesh.
	MaxSteps = 18
)

var (
	ErrInvalidSize  = fmt.Errorf("size must be between 1 and %d", MaxSize)
	ErrInvalidSteps = fmt.Errorf("steps must be between 0 and %d", MaxSteps)
	ErrInvalidScale = errors.New("scale must be a finite number")
	ErrInvalidColor = errors.New("color must be R,G,B or R,G,B,A with components 0-255")
)

// Preset holds everything needed to build and export an ornament.
type Preset struct {
	Size  int     `yaml:"size"`
	Steps int     `yaml:"steps"`
	Scale float64 `yaml:"scale"`
	// Background is "R,G,B" or "R,G,B,A". Empty means transparent.
	Background string `yaml:"background"`
	// LayerHeight is the z distance between depths in exported meshes.
	LayerHeight float64 `yaml:"layer_height"`
}

// Default returns the settings used when no preset or flag says otherwise.
func Default() Preset {
	return Preset{
		Size:  80,
		Steps: 8,
		Scale: 0.7,
	}
}

// LoadYAML reads a preset. Keys missing from the document keep their
// Default values; unknown keys are an error.
func LoadYAML(r io.Reader) (Preset, error) {
	p := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Preset{}, fmt.Errorf("decode preset: %w", err)
	}
	return p, nil
}

// LoadFile reads a preset from a YAML file.
func LoadFile(path string) (Preset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Preset{}, fmt.Errorf("open preset: %w", err)
	}
	defer f.Close()

	p, err := LoadYAML(f)
	if err != nil {
		return Preset{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Validate checks the preset and clamps a scale below pytree.MinScale, which
// would otherwise produce NaN corners.
func (p *Preset) Validate() error {
	if p.Size <= 0 || p.Size > MaxSize {
		return fmt.Errorf("%w: %d", ErrInvalidSize, p.Size)
	}
	if p.Steps < 0 || p.Steps > MaxSteps {
		return fmt.Errorf("%w: %d", ErrInvalidSteps, p.Steps)
	}
	if math.IsNaN(p.Scale) || math.IsInf(p.Scale, 0) {
		return fmt.Errorf("%w: %g", ErrInvalidScale, p.Scale)
	}
	if _, err := p.BackgroundColor(); err != nil {
		return err
	}
	if clamped := pytree.ClampScale(p.Scale); clamped != p.Scale {
		log.Warnf("scale %g is below %g, using %g", p.Scale, pytree.MinScale, clamped)
		p.Scale = clamped
	}
	return nil
}

// BackgroundColor parses Background, transparent when empty.
func (p Preset) BackgroundColor() (render.Color, error) {
	if strings.TrimSpace(p.Background) == "" {
		return render.ColorTransparent, nil
	}
	return ParseColor(p.Background)
}

// ParseColor parses "R,G,B" (opaque) or "R,G,B,A".
func ParseColor(s string) (render.Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return render.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	rgba := [4]uint8{0, 0, 0, 255}
	for i, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
		if err != nil {
			return render.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		rgba[i] = uint8(v)
	}
	return render.RGBA(rgba[0], rgba[1], rgba[2], rgba[3]), nil
}
