package detection

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"testing"
)

var (
	skinTone   = color.RGBA{224, 172, 105, 255}
	background = color.RGBA{40, 60, 200, 255}
)

// createSceneImage fills a background and paints skin-toned rectangles.
func createSceneImage(width, height int, faces ...image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	for _, f := range faces {
		draw.Draw(img, f, image.NewUniform(skinTone), image.Point{}, draw.Src)
	}
	return img
}

func loadedSkinDetector(t *testing.T) *SkinDetector {
	t.Helper()
	d := NewSkinDetector()
	if err := d.LoadModel(context.Background()); err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}
	return d
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestIsSkin(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want bool
	}{
		{"light skin", skinTone, true},
		{"darker skin", color.RGBA{141, 85, 36, 255}, true},
		{"blue", background, false},
		{"white", color.RGBA{255, 255, 255, 255}, false},
		{"black", color.RGBA{0, 0, 0, 255}, false},
		{"green", color.RGBA{30, 200, 40, 255}, false},
		{"transparent", color.RGBA{224, 172, 105, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSkin(tt.c); got != tt.want {
				t.Errorf("isSkin(%v): got %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestSkinDetector_NotLoaded(t *testing.T) {
	d := NewSkinDetector()
	_, err := d.Detect(context.Background(), createSceneImage(100, 100))
	if err != ErrModelNotLoaded {
		t.Errorf("got %v, want ErrModelNotLoaded", err)
	}
}

func TestSkinDetector_NoFaces(t *testing.T) {
	d := loadedSkinDetector(t)

	regions, err := d.Detect(context.Background(), createSceneImage(320, 240))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if regions == nil {
		t.Error("Detect returned nil, want empty slice")
	}
	if len(regions) != 0 {
		t.Errorf("got %d regions, want 0", len(regions))
	}
}

func TestSkinDetector_OneFace(t *testing.T) {
	d := loadedSkinDetector(t)
	face := image.Rect(120, 60, 180, 140)

	regions, err := d.Detect(context.Background(), createSceneImage(320, 240, face))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(regions))
	}

	r := regions[0]
	if abs(r.X1-face.Min.X) > 4 || abs(r.Y1-face.Min.Y) > 4 || abs(r.X2-face.Max.X) > 4 || abs(r.Y2-face.Max.Y) > 4 {
		t.Errorf("region %+v too far from %v", r, face)
	}
}

func TestSkinDetector_OrderAndScale(t *testing.T) {
	d := loadedSkinDetector(t)
	// Larger than MaxSide, so detection runs downscaled and is mapped back.
	upper := image.Rect(400, 100, 520, 260)
	lower := image.Rect(100, 300, 220, 460)

	regions, err := d.Detect(context.Background(), createSceneImage(640, 480, lower, upper))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}

	// Sorted top to bottom regardless of paint order.
	for i, want := range []image.Rectangle{upper, lower} {
		r := regions[i]
		if abs(r.X1-want.Min.X) > 8 || abs(r.Y1-want.Min.Y) > 8 {
			t.Errorf("regions[%d] = %+v, want near %v", i, r, want)
		}
	}
}

func TestSkinDetector_IgnoresSpecksAndStrips(t *testing.T) {
	d := loadedSkinDetector(t)
	speck := image.Rect(10, 10, 13, 13)
	strip := image.Rect(0, 200, 320, 215)

	regions, err := d.Detect(context.Background(), createSceneImage(320, 240, speck, strip))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(regions) != 0 {
		t.Errorf("got %d regions, want 0: %+v", len(regions), regions)
	}
}

func TestSkinDetector_Cancelled(t *testing.T) {
	d := loadedSkinDetector(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.Detect(ctx, createSceneImage(100, 100)); err != context.Canceled {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestLabelComponents(t *testing.T) {
	mask := [][]bool{
		{true, true, false, false},
		{false, true, false, true},
		{false, false, false, true},
	}
	blobs := labelComponents(mask, 4, 3)
	if len(blobs) != 2 {
		t.Fatalf("got %d blobs, want 2", len(blobs))
	}
	if got := blobs[0].box(); got != image.Rect(0, 0, 2, 2) {
		t.Errorf("blob 0 box: got %v", got)
	}
	if got := blobs[1].box(); got != image.Rect(3, 1, 4, 3) {
		t.Errorf("blob 1 box: got %v", got)
	}
}
