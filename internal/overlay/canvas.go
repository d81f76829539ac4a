package overlay

import (
	"image"

	"github.com/ironsheep/face-detect-mcp/internal/detection"
)

// Canvas is the overlay surface. The zero value is an empty 0x0 canvas.
// A Canvas is not safe for concurrent use.
type Canvas struct {
	surface *image.RGBA
}

// NewCanvas returns an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{surface: image.NewRGBA(image.Rectangle{})}
}

// Size returns the current surface dimensions.
func (c *Canvas) Size() detection.Dimensions {
	if c.surface == nil {
		return detection.Dimensions{}
	}
	return detection.DimensionsOf(c.surface)
}

// Image returns a copy of the surface.
func (c *Canvas) Image() *image.RGBA {
	if c.surface == nil {
		return image.NewRGBA(image.Rectangle{})
	}
	out := image.NewRGBA(c.surface.Rect)
	copy(out.Pix, c.surface.Pix)
	return out
}

// reset resizes the surface to dims and makes it fully transparent.
func (c *Canvas) reset(dims detection.Dimensions) {
	if dims.IsZero() {
		c.surface = image.NewRGBA(image.Rectangle{})
		return
	}
	if c.surface != nil && c.surface.Rect.Dx() == dims.Width && c.surface.Rect.Dy() == dims.Height {
		clear(c.surface.Pix)
		return
	}
	c.surface = image.NewRGBA(image.Rect(0, 0, dims.Width, dims.Height))
}
