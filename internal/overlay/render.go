package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"
	"strings"

	"github.com/ironsheep/face-detect-mcp/internal/detection"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Style controls how boxes are drawn.
type Style struct {
	// LineWidth is the box stroke in pixels. Values below one mean one.
	LineWidth int

	// Color, when set, is used for every box instead of the palette.
	Color *color.RGBA

	// Labels draws each box's 1-based index in its top-left corner.
	Labels bool
}

// DefaultStyle is a 2px palette-coloured box with labels.
var DefaultStyle = Style{LineWidth: 2, Labels: true}

// Renderer draws detection results onto a Canvas.
type Renderer struct {
	style Style
}

// NewRenderer returns a renderer using style.
func NewRenderer(style Style) *Renderer {
	if style.LineWidth < 1 {
		style.LineWidth = 1
	}
	return &Renderer{style: style}
}

// Render redraws canvas for regions at display size dims.
//
// The surface is resized to dims and cleared first. With no regions, or a
// zero dims, nothing is drawn. Regions are drawn in order and clipped to
// the surface.
func (r *Renderer) Render(canvas *Canvas, regions []detection.Region, dims detection.Dimensions) {
	canvas.reset(dims)
	if len(regions) == 0 || dims.IsZero() {
		return
	}

	for i, region := range regions {
		rect := region.Rect()
		if rect.Empty() {
			continue
		}
		c := r.ColorFor(i)
		drawBox(canvas.surface, rect, r.style.LineWidth, c)
		if r.style.Labels {
			drawLabel(canvas.surface, rect, strconv.Itoa(i+1), c)
		}
	}
}

// ColorFor returns the colour box i is drawn in.
func (r *Renderer) ColorFor(i int) color.RGBA {
	if r.style.Color != nil {
		return *r.style.Color
	}
	return PaletteColor(i)
}

// drawBox strokes rect's outline inward by width pixels, clipped to dst.
func drawBox(dst *image.RGBA, rect image.Rectangle, width int, c color.RGBA) {
	if width*2 > rect.Dx() || width*2 > rect.Dy() {
		width = int(math.Max(1, math.Min(float64(rect.Dx()), float64(rect.Dy()))/2))
	}

	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+width), // top
		image.Rect(rect.Min.X, rect.Max.Y-width, rect.Max.X, rect.Max.Y), // bottom
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+width, rect.Max.Y), // left
		image.Rect(rect.Max.X-width, rect.Min.Y, rect.Max.X, rect.Max.Y), // right
	}
	for _, e := range edges {
		clipped := e.Intersect(dst.Bounds())
		if !clipped.Empty() {
			draw.Draw(dst, clipped, src, image.Point{}, draw.Src)
		}
	}
}

// drawLabel writes text on a filled tab just inside rect's top-left corner.
func drawLabel(dst *image.RGBA, rect image.Rectangle, text string, c color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(color.RGBA{255, 255, 255, 255}), Face: face}

	w := d.MeasureString(text).Ceil() + 4
	h := face.Metrics().Height.Ceil() + 2
	tab := image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+w, rect.Min.Y+h).Intersect(dst.Bounds())
	if tab.Empty() {
		return
	}
	draw.Draw(dst, tab, image.NewUniform(c), image.Point{}, draw.Src)

	d.Dot = fixed.P(rect.Min.X+2, rect.Min.Y+face.Metrics().Ascent.Ceil()+1)
	d.DrawString(text)
}

// PaletteColor returns the i-th box colour. Hues step by the golden angle
// so neighbouring indices stay distinct; the sequence is fixed.
func PaletteColor(i int) color.RGBA {
	hue := math.Mod(float64(i)*137.508+120, 360)
	r, g, b := colorful.Hsv(hue, 0.85, 0.95).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// HexColor formats c as "#rrggbb", dropping alpha.
func HexColor(c color.RGBA) string {
	if c.A == 0 {
		return "#000000"
	}
	opaque := c
	if c.A != 255 {
		opaque = color.RGBA{
			R: uint8(uint16(c.R) * 255 / uint16(c.A)),
			G: uint8(uint16(c.G) * 255 / uint16(c.A)),
			B: uint8(uint16(c.B) * 255 / uint16(c.A)),
			A: 255,
		}
	}
	cc, _ := colorful.MakeColor(opaque)
	return cc.Hex()
}

// ParseColor parses "#RRGGBB" or "#RRGGBBAA".
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	alpha := uint8(255)
	switch len(hex) {
	case 6:
	case 8:
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return color.RGBA{}, errors.Wrapf(err, "invalid alpha in %q", s)
		}
		alpha = uint8(a)
		hex = hex[:6]
	default:
		return color.RGBA{}, errors.Errorf("invalid hex colour %q", s)
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.RGBA{}, errors.Wrapf(err, "invalid hex colour %q", s)
	}
	r, g, b := c.RGB255()
	// Stored premultiplied, as image/color expects.
	return color.RGBA{
		R: uint8(uint16(r) * uint16(alpha) / 255),
		G: uint8(uint16(g) * uint16(alpha) / 255),
		B: uint8(uint16(b) * uint16(alpha) / 255),
		A: alpha,
	}, nil
}
