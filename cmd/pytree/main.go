// pytree - Pythagoras tree ornament generator
// Renders the ornament to PNG, exports it as a layered 3D mesh, or shows it
// in the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/log"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/pytree/pkg/models"
	"github.com/taigrr/pytree/pkg/preset"
	"github.com/taigrr/pytree/pkg/pytree"
	"github.com/taigrr/pytree/pkg/render"
)

var (
	size        int
	steps       int
	scale       float64
	bgColor     string
	configPath  string
	logLevel    string
	outPath     string
	layerHeight float64
)

func main() {
	cmd := newRootCmd()
	if err := fang.Execute(context.Background(), cmd); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	def := preset.Default()

	cmd := &cobra.Command{
		Use:   "pytree",
		Short: "Pythagoras tree ornament generator",
		Long: `pytree - Pythagoras tree ornament generator

Grows a Pythagoras tree from a single square and renders every depth
with its own shade of red. Settings come from flags or a YAML preset;
flags given on the command line win over the preset.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ValidateLevel(logLevel)
			if err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			log.SetLogLevel(lvl)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolvePreset(cmd)
			if err != nil {
				return err
			}
			return runRender(p, outPath)
		},
	}

	pf := cmd.PersistentFlags()
	pf.IntVar(&size, "size", def.Size, "Side length of the root square in pixels")
	pf.IntVar(&steps, "steps", def.Steps, fmt.Sprintf("Recursion depth (0-%d)", preset.MaxSteps))
	pf.Float64Var(&scale, "scale", def.Scale, "Child to parent size ratio (at least 0.5)")
	pf.StringVar(&bgColor, "bg", "", "Background color (R,G,B or R,G,B,A), transparent if empty")
	pf.StringVar(&configPath, "config", "", "YAML preset file")
	pf.StringVar(&logLevel, "log-level", "info", "Log level (debug, verbose, info, warning, error)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "pytree.png", "Output PNG path")

	exportCmd := &cobra.Command{
		Use:   "export <file.stl|file.obj|file.glb>",
		Short: "Export the ornament as a 3D mesh",
		Long:  "Export the ornament as a mesh with two triangles per square. The format follows the file extension; each depth gets its own material where the format supports it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolvePreset(cmd)
			if err != nil {
				return err
			}
			return runExport(p, args[0])
		},
	}
	exportCmd.Flags().Float64Var(&layerHeight, "layer-height", def.LayerHeight, "Z distance between depths (0 keeps the mesh flat)")
	cmd.AddCommand(exportCmd)

	infoCmd := &cobra.Command{
		Use:   "info <file.stl|file.obj|file.glb>",
		Short: "Display mesh information",
		Long:  "Display information about an exported mesh including format, triangle count, vertex count, bounding box and faces per material.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.OutOrStdout(), args[0])
		},
	}
	cmd.AddCommand(infoCmd)

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the ornament in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolvePreset(cmd)
			if err != nil {
				return err
			}
			return runPreview(p)
		},
	}
	cmd.AddCommand(previewCmd)

	return cmd
}

// resolvePreset loads --config if given, applies the flags set on the
// command line and validates the result.
func resolvePreset(cmd *cobra.Command) (preset.Preset, error) {
	p := preset.Default()
	if configPath != "" {
		var err error
		if p, err = preset.LoadFile(configPath); err != nil {
			return preset.Preset{}, err
		}
		log.LogVf("Loaded preset %s: %+v", configPath, p)
	}

	flags := cmd.Flags()
	if configPath == "" || flags.Changed("size") {
		p.Size = size
	}
	if configPath == "" || flags.Changed("steps") {
		p.Steps = steps
	}
	if configPath == "" || flags.Changed("scale") {
		p.Scale = scale
	}
	if configPath == "" || flags.Changed("bg") {
		p.Background = bgColor
	}
	if f := flags.Lookup("layer-height"); f != nil && (configPath == "" || f.Changed) {
		p.LayerHeight = layerHeight
	}

	if err := p.Validate(); err != nil {
		return preset.Preset{}, fmt.Errorf("invalid settings: %w", err)
	}
	return p, nil
}

func logLevels(o *pytree.Ornament, levels *pytree.Levels) {
	log.Infof("Generated %d squares in %d depths (size %d, scale %g, fingerprint %016x)",
		levels.Len(), levels.Depths(), o.Size, o.Scale, levels.Fingerprint())
}

func renderOrnament(p preset.Preset) (*render.Framebuffer, error) {
	bg, err := p.BackgroundColor()
	if err != nil {
		return nil, err
	}
	o := pytree.NewOrnament(p.Size, p.Steps, p.Scale)
	fb, levels := render.Render(o, bg)
	logLevels(o, levels)
	return fb, nil
}

func runRender(p preset.Preset, path string) error {
	fb, err := renderOrnament(p)
	if err != nil {
		return err
	}
	if err := fb.SavePNG(path); err != nil {
		return fmt.Errorf("save png: %w", err)
	}
	log.Infof("Wrote %dx%d image to %s", fb.Width, fb.Height, path)
	return nil
}

func runExport(p preset.Preset, path string) error {
	o := pytree.NewOrnament(p.Size, p.Steps, p.Scale)
	levels := o.Generate()
	logLevels(o, levels)
	opts := models.DefaultExportOptions()
	opts.LayerHeight = p.LayerHeight

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	mesh := models.FromLevels(name, levels, o.Steps, opts)
	if err := models.SaveFile(mesh, path); err != nil {
		return fmt.Errorf("export mesh: %w", err)
	}
	log.Infof("Wrote %d triangles, %d vertices to %s", mesh.TriangleCount(), mesh.VertexCount(), path)
	return nil
}

func runPreview(p preset.Preset) error {
	fb, err := renderOrnament(p)
	if err != nil {
		return err
	}
	if err := render.Preview(fb.ToImage()); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}

func runInfo(w io.Writer, modelPath string) error {
	ext := strings.ToLower(filepath.Ext(modelPath))

	info, err := os.Stat(modelPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	mesh, err := models.Load(modelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	size := mesh.Size()
	center := mesh.Center()

	fmt.Fprintf(w, "File:       %s\n", filepath.Base(modelPath))
	fmt.Fprintf(w, "Format:     %s\n", strings.ToUpper(strings.TrimPrefix(ext, ".")))
	fmt.Fprintf(w, "Size:       %.2f KB\n", float64(info.Size())/1024)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Vertices:   %d\n", mesh.VertexCount())
	fmt.Fprintf(w, "Triangles:  %d\n", mesh.TriangleCount())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Bounds Min: (%.3f, %.3f, %.3f)\n", mesh.BoundsMin.X, mesh.BoundsMin.Y, mesh.BoundsMin.Z)
	fmt.Fprintf(w, "Bounds Max: (%.3f, %.3f, %.3f)\n", mesh.BoundsMax.X, mesh.BoundsMax.Y, mesh.BoundsMax.Z)
	fmt.Fprintf(w, "Dimensions: %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
	fmt.Fprintf(w, "Center:     (%.3f, %.3f, %.3f)\n", center.X, center.Y, center.Z)

	if len(mesh.Materials) > 0 {
		fmt.Fprintln(w)
		counts := mesh.MaterialFaceCounts()
		for i, mat := range mesh.Materials {
			fmt.Fprintf(w, "%-11s %d triangles\n", mat.Name+":", counts[i])
		}
	}

	return nil
}
