package render

import (
	"fmt"
	"image"

	"fortio.org/terminal/ansipixels"
	"golang.org/x/image/draw"
)

// Preview draws img once, scaled to fit the terminal, and returns. The
// terminal is restored before returning; the picture stays on screen.
func Preview(img image.Image) error {
	ap := ansipixels.NewAnsiPixels(0)
	if err := ap.Open(); err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	defer func() {
		ap.ShowCursor()
		ap.Out.Flush()
		ap.Restore()
	}()

	if ap.W <= 0 || ap.H <= 0 {
		return fmt.Errorf("invalid terminal size: %dx%d", ap.W, ap.H)
	}

	ap.HideCursor()
	ap.ClearScreen()
	if err := ap.ShowImage(previewImage(img), 1, 0, 0, ""); err != nil {
		return fmt.Errorf("show image: %w", err)
	}
	ap.MoveCursor(0, ap.H-1)
	return nil
}

// previewImage wraps img as a single-frame ansipixels image, converted to
// RGBA with its origin at (0, 0).
func previewImage(img image.Image) *ansipixels.Image {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return &ansipixels.Image{
		Format: "png",
		Width:  b.Dx(),
		Height: b.Dy(),
		Images: []*image.RGBA{rgba},
	}
}
