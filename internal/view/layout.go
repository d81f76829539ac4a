package view

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/ironsheep/face-detect-mcp/internal/detection"
)

// Layout is the display viewport. Images are fitted inside it, preserving
// aspect ratio and never enlarged. A zero axis is unbounded.
type Layout struct {
	MaxWidth  int
	MaxHeight int
}

// Render lays img out and returns the displayed image and its size.
func (l Layout) Render(img image.Image) (image.Image, detection.Dimensions) {
	b := img.Bounds()
	if b.Empty() {
		return img, detection.Dimensions{}
	}

	maxW, maxH := l.MaxWidth, l.MaxHeight
	if maxW <= 0 {
		maxW = b.Dx()
	}
	if maxH <= 0 {
		maxH = b.Dy()
	}
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return img, detection.DimensionsOf(img)
	}

	display := imaging.Fit(img, maxW, maxH, imaging.Lanczos)
	return display, detection.DimensionsOf(display)
}
