//go:build gocv

package detection

import (
	"context"
	"image"
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// HaarDetector runs an OpenCV Haar cascade, typically
// haarcascade_frontalface_default.xml.
type HaarDetector struct {
	loadGate

	path string

	mu         sync.Mutex
	classifier gocv.CascadeClassifier
}

func newHaarDetector(path string) (Detector, error) {
	if path == "" {
		return nil, errors.New("haar backend needs FACE_MCP_MODEL_PATH pointing at a cascade file")
	}
	return &HaarDetector{path: path}, nil
}

// Name implements Detector.
func (d *HaarDetector) Name() string { return "haar" }

// LoadModel implements Detector.
func (d *HaarDetector) LoadModel(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(d.path) {
		classifier.Close()
		return errors.Errorf("failed to read cascade file %s", d.path)
	}
	d.classifier = classifier
	d.open()
	return nil
}

// Detect implements Detector. The classifier is not safe for concurrent
// use, so calls are serialised.
func (d *HaarDetector) Detect(ctx context.Context, img image.Image) ([]Region, error) {
	if err := d.check(); err != nil {
		return nil, err
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert image")
	}
	defer mat.Close()

	d.mu.Lock()
	rects := d.classifier.DetectMultiScale(mat)
	d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	origin := img.Bounds().Min
	regions := make([]Region, 0, len(rects))
	for _, r := range rects {
		regions = append(regions, RegionFromRect(r.Add(origin), 0))
	}
	return regions, nil
}

// Close releases the classifier.
func (d *HaarDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.isOpen() {
		return d.classifier.Close()
	}
	return nil
}
