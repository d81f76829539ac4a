//go:build dlib

package detection

import (
	"bytes"
	"context"
	"image"
	"sync"

	face "github.com/Kagami/go-face"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// DlibDetector uses dlib's HOG face detector through go-face. ModelPath is
// the directory holding shape_predictor_5_face_landmarks.dat and
// dlib_face_recognition_resnet_model_v1.dat.
type DlibDetector struct {
	loadGate

	dir string

	mu  sync.Mutex
	rec *face.Recognizer
}

func newDlibDetector(dir string) (Detector, error) {
	if dir == "" {
		return nil, errors.New("dlib backend needs FACE_MCP_MODEL_PATH pointing at the models directory")
	}
	return &DlibDetector{dir: dir}, nil
}

// Name implements Detector.
func (d *DlibDetector) Name() string { return "dlib" }

// LoadModel implements Detector.
func (d *DlibDetector) LoadModel(ctx context.Context) error {
	rec, err := face.NewRecognizer(d.dir)
	if err != nil {
		return errors.Wrapf(err, "failed to load models from %s", d.dir)
	}
	d.mu.Lock()
	d.rec = rec
	d.mu.Unlock()
	d.open()
	return nil
}

// Detect implements Detector. go-face only accepts encoded JPEG input.
func (d *DlibDetector) Detect(ctx context.Context, img image.Image) ([]Region, error) {
	if err := d.check(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(95)); err != nil {
		return nil, errors.Wrap(err, "failed to encode image for dlib")
	}

	d.mu.Lock()
	faces, err := d.rec.Recognize(buf.Bytes())
	d.mu.Unlock()
	if err != nil {
		return nil, errors.Wrap(err, "dlib detection failed")
	}

	origin := img.Bounds().Min
	regions := make([]Region, 0, len(faces))
	for _, f := range faces {
		regions = append(regions, RegionFromRect(f.Rectangle.Add(origin), 0))
	}
	return regions, nil
}

// Close releases the recognizer.
func (d *DlibDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rec != nil {
		d.rec.Close()
		d.rec = nil
	}
	return nil
}
