package view

import (
	"fmt"
	"image"

	"github.com/ironsheep/face-detect-mcp/internal/detection"
	"github.com/ironsheep/face-detect-mcp/internal/intake"
)

// State is the workspace phase.
type State int

const (
	Default State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case Default:
		return "default"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Status line texts.
const (
	StatusWaiting   = "Waiting for image..."
	StatusDetecting = "Detecting Faces…"
	StatusNoFaces   = "No Faces Detected"
)

// StatusText returns the status line for a phase and face count.
func StatusText(s State, faces int) string {
	switch s {
	case Loading:
		return StatusDetecting
	case Ready:
		if faces == 0 {
			return StatusNoFaces
		}
		return fmt.Sprintf("Detected Faces: %d", faces)
	default:
		return StatusWaiting
	}
}

// Snapshot is a consistent copy of the workspace at one instant.
type Snapshot struct {
	State      State
	Generation uint64

	// Image is the displayed source; nil while an upload is still decoding.
	Image *intake.ImageSource

	// Display is the rendered size. Zero in Default and until the image
	// has been laid out.
	Display detection.Dimensions

	// Detections is meaningful only in Ready; empty otherwise.
	Detections []detection.Region

	// ValidationError is the last rejected upload, if any.
	ValidationError *intake.ValidationError

	// DetectionError is set in Ready when detection failed and was reported
	// as zero faces.
	DetectionError error

	Status string
}

// FaceCount returns len(Detections).
func (s Snapshot) FaceCount() int { return len(s.Detections) }

// workspace is the machine's single mutable value.
type workspace struct {
	phase      State
	generation uint64

	image   *intake.ImageSource
	display image.Image
	dims    detection.Dimensions

	detections    []detection.Region
	validationErr *intake.ValidationError
	detectionErr  error
}

func (w *workspace) snapshot() Snapshot {
	return Snapshot{
		State:           w.phase,
		Generation:      w.generation,
		Image:           w.image,
		Display:         w.dims,
		Detections:      append([]detection.Region{}, w.detections...),
		ValidationError: w.validationErr,
		DetectionError:  w.detectionErr,
		Status:          StatusText(w.phase, len(w.detections)),
	}
}
