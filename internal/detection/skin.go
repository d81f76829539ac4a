package detection

import (
	"context"
	"image"
	"image/color"
	"sort"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// SkinDetector finds face candidates as connected blobs of skin-toned pixels.
//
// It needs no model file, which makes it the default backend. Accuracy is
// modest: any exposed skin of face-like proportions is reported.
//
// # Algorithm
//
//  1. Downscale so the longer side is at most MaxSide pixels
//  2. Gaussian blur to suppress sensor noise
//  3. Classify each pixel as skin using both a YCbCr chroma box and an HSV
//     hue/saturation window
//  4. Erode then dilate the mask to drop specks and close small holes
//  5. Flood-fill connected components and keep those with face-like area,
//     aspect ratio and fill ratio
//  6. Scale the surviving boxes back to the source image
type SkinDetector struct {
	loadGate

	// MaxSide is the working resolution.
	MaxSide int

	// MinAreaRatio is the smallest blob box, as a fraction of the image area.
	MinAreaRatio float64

	// MinAspect and MaxAspect bound width/height of a blob box.
	MinAspect float64
	MaxAspect float64

	// MinFill is the minimum fraction of skin pixels inside a blob box.
	MinFill float64
}

// NewSkinDetector returns a detector with defaults tuned for portraits.
func NewSkinDetector() *SkinDetector {
	return &SkinDetector{
		MaxSide:      320,
		MinAreaRatio: 0.004,
		MinAspect:    0.4,
		MaxAspect:    1.6,
		MinFill:      0.4,
	}
}

// Name implements Detector.
func (d *SkinDetector) Name() string { return "skin" }

// LoadModel implements Detector. There is no model to read.
func (d *SkinDetector) LoadModel(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.open()
	return nil
}

// Detect implements Detector.
func (d *SkinDetector) Detect(ctx context.Context, img image.Image) ([]Region, error) {
	if err := d.check(); err != nil {
		return nil, err
	}

	src := img.Bounds()
	if src.Empty() {
		return []Region{}, nil
	}

	work := image.Image(img)
	if d.MaxSide > 0 {
		work = imaging.Fit(img, d.MaxSide, d.MaxSide, imaging.Linear)
	}
	blurred := blur.Gaussian(work, 1.0)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mask := skinMask(blurred)
	cleaned := effect.Dilate(effect.Erode(mask, 1), 1)

	wb := cleaned.Bounds()
	width, height := wb.Dx(), wb.Dy()
	skin := make([][]bool, height)
	for y := 0; y < height; y++ {
		skin[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			skin[y][x] = cleaned.RGBAAt(x+wb.Min.X, y+wb.Min.Y).R > 127
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	minArea := d.MinAreaRatio * float64(width*height)
	boxes := make([]Region, 0)
	for _, blob := range labelComponents(skin, width, height) {
		box := blob.box()
		w, h := box.Dx(), box.Dy()
		if w == 0 || h == 0 || float64(w*h) < minArea {
			continue
		}
		aspect := float64(w) / float64(h)
		if aspect < d.MinAspect || aspect > d.MaxAspect {
			continue
		}
		fill := float64(len(blob)) / float64(w*h)
		if fill < d.MinFill {
			continue
		}
		boxes = append(boxes, RegionFromRect(box, fill))
	}

	sort.SliceStable(boxes, func(i, j int) bool {
		if boxes[i].Y1 != boxes[j].Y1 {
			return boxes[i].Y1 < boxes[j].Y1
		}
		return boxes[i].X1 < boxes[j].X1
	})

	regions := ScaleRegions(boxes, Dimensions{Width: width, Height: height}, Dimensions{Width: src.Dx(), Height: src.Dy()})
	for i := range regions {
		regions[i].X1 += src.Min.X
		regions[i].X2 += src.Min.X
		regions[i].Y1 += src.Min.Y
		regions[i].Y2 += src.Min.Y
	}
	return regions, nil
}

// skinMask marks skin pixels white on black.
func skinMask(img *image.RGBA) *image.Gray {
	b := img.Bounds()
	mask := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if isSkin(img.RGBAAt(x, y)) {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return mask
}

// isSkin applies the Chai & Ngan chroma box (77<=Cb<=127, 133<=Cr<=173)
// and an HSV window around warm hues.
func isSkin(c color.RGBA) bool {
	if c.A == 0 {
		return false
	}
	_, cb, cr := color.RGBToYCbCr(c.R, c.G, c.B)
	if cb < 77 || cb > 127 || cr < 133 || cr > 173 {
		return false
	}

	cc, ok := colorful.MakeColor(c)
	if !ok {
		return false
	}
	h, s, v := cc.Hsv()
	if h > 50 && h < 340 {
		return false
	}
	return s >= 0.1 && s <= 0.8 && v >= 0.2
}

type pixel struct{ x, y int }

type blob []pixel

func (b blob) box() image.Rectangle {
	minX, minY := b[0].x, b[0].y
	maxX, maxY := minX, minY
	for _, p := range b[1:] {
		if p.x < minX {
			minX = p.x
		}
		if p.x > maxX {
			maxX = p.x
		}
		if p.y < minY {
			minY = p.y
		}
		if p.y > maxY {
			maxY = p.y
		}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// labelComponents groups set pixels into 8-connected blobs, scanning in
// row-major order.
func labelComponents(mask [][]bool, width, height int) []blob {
	visited := make([][]bool, height)
	for y := 0; y < height; y++ {
		visited[y] = make([]bool, width)
	}

	blobs := make([]blob, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if mask[y][x] && !visited[y][x] {
				blobs = append(blobs, fillComponent(mask, visited, x, y, width, height))
			}
		}
	}
	return blobs
}

// fillComponent is an iterative flood fill; large blobs would overflow a
// recursive one.
func fillComponent(mask, visited [][]bool, startX, startY, width, height int) blob {
	var out blob
	stack := []pixel{{startX, startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.x < 0 || p.x >= width || p.y < 0 || p.y >= height {
			continue
		}
		if visited[p.y][p.x] || !mask[p.y][p.x] {
			continue
		}

		visited[p.y][p.x] = true
		out = append(out, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx != 0 || dy != 0 {
					stack = append(stack, pixel{p.x + dx, p.y + dy})
				}
			}
		}
	}
	return out
}
