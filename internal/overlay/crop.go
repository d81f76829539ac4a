package overlay

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/ironsheep/face-detect-mcp/internal/detection"
	"github.com/pkg/errors"
)

// CropRegion extracts region from img, clipped to the image, optionally
// rescaled by scale (1.0 keeps the size).
func CropRegion(img image.Image, region detection.Region, scale float64) (*image.NRGBA, error) {
	bounds := img.Bounds()
	rect := region.Rect().Intersect(bounds)
	if rect.Empty() {
		return nil, errors.Errorf("region (%d,%d)-(%d,%d) lies outside image bounds (%d,%d)-(%d,%d)",
			region.X1, region.Y1, region.X2, region.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	cropped := imaging.Crop(img, rect)

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, errors.Errorf("scale %.3f shrinks the crop to nothing", scale)
		}
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	return cropped, nil
}
