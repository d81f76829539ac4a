package detection

import (
	"context"
	"image"
	"sync/atomic"

	"github.com/pkg/errors"
)

var (
	// ErrModelNotLoaded is returned by Detect before LoadModel succeeded.
	ErrModelNotLoaded = errors.New("detection model not loaded")

	// ErrSuperseded is returned by Orchestrator.Run when a newer run started
	// before this one resolved. Its result must not be applied.
	ErrSuperseded = errors.New("detection superseded by a newer image")

	// ErrBackendUnavailable is returned when a backend was not compiled in.
	ErrBackendUnavailable = errors.New("detection backend not available in this build")
)

// Detector is the face-detection capability.
//
// LoadModel is called once at startup. Detect returns regions in the native
// pixel space of img, in a stable order. An empty, non-nil slice means no
// faces were found.
type Detector interface {
	Name() string
	LoadModel(ctx context.Context) error
	Detect(ctx context.Context, img image.Image) ([]Region, error)
}

// Options configures backend construction.
type Options struct {
	// ModelPath is the cascade file (haar) or model directory (dlib).
	ModelPath string

	// StubFaces is the number of faces the stub backend reports.
	StubFaces int
}

// New builds the named backend. Valid names are skin, stub, haar and dlib.
func New(name string, opts Options) (Detector, error) {
	switch name {
	case "", "skin":
		return NewSkinDetector(), nil
	case "stub":
		return NewStubDetector(GridRegions(opts.StubFaces, 64, 64)), nil
	case "haar":
		return newHaarDetector(opts.ModelPath)
	case "dlib":
		return newDlibDetector(opts.ModelPath)
	default:
		return nil, errors.Errorf("unknown detector %q", name)
	}
}

// loadGate tracks whether LoadModel has completed.
type loadGate struct {
	loaded atomic.Bool
}

func (g *loadGate) open()        { g.loaded.Store(true) }
func (g *loadGate) isOpen() bool { return g.loaded.Load() }

func (g *loadGate) check() error {
	if !g.isOpen() {
		return ErrModelNotLoaded
	}
	return nil
}
