// Package render rasterizes ornaments into an RGBA framebuffer and writes
// them out as PNG or to the terminal.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
)

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b, 255}
}

// RGBA creates a color with explicit alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color{r, g, b, a}
}

// Common colors.
var (
	ColorTransparent = Color{}
	ColorBlack       = RGB(0, 0, 0)
	ColorWhite       = RGB(255, 255, 255)
	ColorRed         = RGB(255, 0, 0)
	ColorGreen       = RGB(0, 255, 0)
	ColorBlue        = RGB(0, 0, 255)
)

// NRGBA converts c to the standard library's non-premultiplied color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Framebuffer is a row-major pixel grid.
type Framebuffer struct {
	Width, Height int
	Pixels        []Color
	// BG is the color Clear fills with.
	BG Color
}

// NewFramebuffer creates a transparent framebuffer.
func NewFramebuffer(width, height int) *Framebuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// Clear fills the framebuffer with BG.
func (fb *Framebuffer) Clear() {
	for i := range fb.Pixels {
		fb.Pixels[i] = fb.BG
	}
}

// SetPixel sets the pixel at (x, y). Out of range writes are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the pixel at (x, y), or transparent when out of range.
func (fb *Framebuffer) GetPixel(x, y int) Color {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return ColorTransparent
	}
	return fb.Pixels[y*fb.Width+x]
}

// ToImage copies the framebuffer into an image.
func (fb *Framebuffer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetNRGBA(x, y, fb.Pixels[y*fb.Width+x].NRGBA())
		}
	}
	return img
}

// EncodePNG writes the framebuffer to w as PNG.
func (fb *Framebuffer) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, fb.ToImage()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG writes the framebuffer to a PNG file.
func (fb *Framebuffer) SavePNG(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return fb.EncodePNG(f)
}
