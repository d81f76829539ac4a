package intake

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	placeholderWidth   = 640
	placeholderHeight  = 480
	placeholderCaption = "Upload a JPEG or PNG image to detect faces"
)

var (
	placeholderOnce sync.Once
	placeholder     *ImageSource
)

// Placeholder returns the default image shown before any upload and after
// a reset. The same value is returned on every call.
func Placeholder() *ImageSource {
	placeholderOnce.Do(func() {
		placeholder = renderPlaceholder()
	})
	return placeholder
}

func renderPlaceholder() *ImageSource {
	img := image.NewNRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))

	// Vertical grey gradient.
	for y := 0; y < placeholderHeight; y++ {
		v := uint8(236 - y*40/placeholderHeight)
		for x := 0; x < placeholderWidth; x++ {
			img.SetNRGBA(x, y, color.NRGBA{v, v, v, 255})
		}
	}

	// Head-and-shoulders silhouette.
	cx, cy := placeholderWidth/2, placeholderHeight/2-30
	silhouette := color.NRGBA{180, 180, 186, 255}
	for y := 0; y < placeholderHeight; y++ {
		for x := 0; x < placeholderWidth; x++ {
			dx, dy := x-cx, y-cy
			head := dx*dx*100/(60*60)+dy*dy*100/(75*75) <= 100
			sdx, sdy := x-cx, y-(cy+190)
			shoulders := y < cy+190 && sdx*sdx*100/(150*150)+sdy*sdy*100/(100*100) <= 100
			if head || shoulders {
				img.SetNRGBA(x, y, silhouette)
			}
		}
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.NRGBA{90, 90, 96, 255}),
		Face: basicfont.Face7x13,
	}
	textWidth := d.MeasureString(placeholderCaption).Ceil()
	d.Dot = fixed.P((placeholderWidth-textWidth)/2, placeholderHeight-24)
	d.DrawString(placeholderCaption)

	var buf bytes.Buffer
	// Encoding an in-memory NRGBA as PNG cannot fail.
	_ = imaging.Encode(&buf, img, imaging.PNG)
	sum := sha256.Sum256(buf.Bytes())

	return &ImageSource{
		Name:        "placeholder.png",
		MIMEType:    "image/png",
		Size:        int64(buf.Len()),
		Digest:      hex.EncodeToString(sum[:]),
		Image:       img,
		DataURI:     DataURI("image/png", buf.Bytes()),
		Placeholder: true,
	}
}
