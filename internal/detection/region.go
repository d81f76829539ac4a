package detection

import (
	"image"
	"math"
)

// Region is a detected face's bounding box in pixel coordinates.
//
// (X1, Y1) is the top-left corner and (X2, Y2) the bottom-right corner,
// exclusive. Backends may report a Region partly or wholly outside the
// image; the orchestrator clamps results to the display bounds.
type Region struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge (exclusive)
	Y2 int `json:"y2"` // Bottom edge (exclusive)

	// Confidence is the backend's score in 0.0 to 1.0, or 0 when the backend
	// does not report one.
	Confidence float64 `json:"confidence,omitempty"`
}

// Rect returns the region as a canonical image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// Width returns X2 - X1.
func (r Region) Width() int { return r.X2 - r.X1 }

// Height returns Y2 - Y1.
func (r Region) Height() int { return r.Y2 - r.Y1 }

// RegionFromRect converts an image.Rectangle.
func RegionFromRect(rect image.Rectangle, confidence float64) Region {
	return Region{X1: rect.Min.X, Y1: rect.Min.Y, X2: rect.Max.X, Y2: rect.Max.Y, Confidence: confidence}
}

// Dimensions is a width/height pair in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DimensionsOf returns the size of img's bounds.
func DimensionsOf(img image.Image) Dimensions {
	b := img.Bounds()
	return Dimensions{Width: b.Dx(), Height: b.Dy()}
}

// IsZero reports whether either axis is empty.
func (d Dimensions) IsZero() bool {
	return d.Width <= 0 || d.Height <= 0
}

// ScaleRegions maps regions from one pixel space into another, scaling each
// axis independently and rounding to the nearest pixel. The input is not
// modified; order is preserved. A zero source or target yields unscaled copies.
func ScaleRegions(regions []Region, from, to Dimensions) []Region {
	out := make([]Region, len(regions))
	if from.IsZero() || to.IsZero() {
		copy(out, regions)
		return out
	}

	sx := float64(to.Width) / float64(from.Width)
	sy := float64(to.Height) / float64(from.Height)

	for i, r := range regions {
		out[i] = Region{
			X1:         int(math.Round(float64(r.X1) * sx)),
			Y1:         int(math.Round(float64(r.Y1) * sy)),
			X2:         int(math.Round(float64(r.X2) * sx)),
			Y2:         int(math.Round(float64(r.Y2) * sy)),
			Confidence: r.Confidence,
		}
	}
	return out
}

// ClampRegions intersects each region with the rectangle (0,0)-bounds. A
// region wholly outside becomes the empty Region; entries are never dropped,
// so the result has the same length as the input. A zero bounds yields
// unclamped copies.
func ClampRegions(regions []Region, bounds Dimensions) []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	if bounds.IsZero() {
		return out
	}

	frame := image.Rect(0, 0, bounds.Width, bounds.Height)
	for i, r := range out {
		clipped := r.Rect().Intersect(frame)
		out[i] = RegionFromRect(clipped, r.Confidence)
	}
	return out
}
