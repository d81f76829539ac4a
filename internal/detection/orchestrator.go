package detection

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RenderedImage is the hand-off from the view once an image has been laid
// out and its display size is known.
type RenderedImage struct {
	// Generation is the view state version the image belongs to.
	Generation uint64

	// Source is the decoded image in its native pixel space.
	Source image.Image

	// Display is the size the image occupies on screen.
	Display Dimensions
}

// Result is the outcome of one detection run, in display space.
type Result struct {
	Generation uint64
	Display    Dimensions

	// Regions is never nil. It is empty when no faces were found or when
	// detection failed.
	Regions []Region

	// Err is the detection failure that was degraded to an empty result.
	Err error
}

// Orchestrator runs the detector against rendered images. Only the most
// recent run may produce a result; older runs are cancelled and resolve
// with ErrSuperseded. A run for an older generation than one already seen
// never supersedes a newer run; it is rejected immediately instead.
type Orchestrator struct {
	detector Detector
	timeout  time.Duration
	log      *logrus.Entry

	mu         sync.Mutex
	seq        uint64
	generation uint64
	cancel     context.CancelFunc
}

// NewOrchestrator wraps detector. A zero timeout means no per-call limit.
func NewOrchestrator(detector Detector, timeout time.Duration, log logrus.FieldLogger) *Orchestrator {
	return &Orchestrator{
		detector: detector,
		timeout:  timeout,
		log:      log.WithField("component", "detection"),
	}
}

// Detector returns the wrapped backend.
func (o *Orchestrator) Detector() Detector { return o.detector }

// LoadModel loads the backend's model. Failures are logged and returned;
// the orchestrator stays usable and later runs degrade until a load succeeds.
func (o *Orchestrator) LoadModel(ctx context.Context) error {
	start := time.Now()
	if err := o.detector.LoadModel(ctx); err != nil {
		o.log.WithError(err).WithField("backend", o.detector.Name()).Error("failed to load detection model")
		return errors.Wrap(err, "load model")
	}
	o.log.WithFields(logrus.Fields{
		"backend":  o.detector.Name(),
		"duration": time.Since(start),
	}).Info("detection model loaded")
	return nil
}

// Run detects faces in img.Source and maps them into img.Display space.
//
// A detector failure is not returned as an error: it is logged and the
// Result carries an empty region list with Err set. The only error Run
// returns is ErrSuperseded.
func (o *Orchestrator) Run(ctx context.Context, img RenderedImage) (*Result, error) {
	log := o.log.WithFields(logrus.Fields{
		"generation": img.Generation,
		"display":    img.Display,
	})

	runCtx, token, ok := o.begin(ctx, img.Generation)
	if !ok {
		log.Debug("rejecting detection for an outdated generation")
		return nil, ErrSuperseded
	}
	defer o.finish(token)

	var (
		regions []Region
		err     error
	)
	if img.Source == nil || img.Source.Bounds().Empty() {
		err = errors.New("rendered image is empty")
	} else {
		start := time.Now()
		regions, err = o.detector.Detect(runCtx, img.Source)
		log = log.WithField("duration", time.Since(start))
	}

	if !o.current(token) {
		log.Debug("discarding superseded detection result")
		return nil, ErrSuperseded
	}

	res := &Result{
		Generation: img.Generation,
		Display:    img.Display,
		Regions:    []Region{},
	}
	if err != nil {
		log.WithError(err).Warn("face detection failed, reporting no faces")
		res.Err = err
		return res, nil
	}

	regions = append([]Region(nil), regions...)
	origin := img.Source.Bounds().Min
	for i := range regions {
		regions[i].X1 -= origin.X
		regions[i].X2 -= origin.X
		regions[i].Y1 -= origin.Y
		regions[i].Y2 -= origin.Y
	}
	scaled := ScaleRegions(regions, DimensionsOf(img.Source), img.Display)
	res.Regions = ClampRegions(scaled, img.Display)
	log.WithField("faces", len(res.Regions)).Debug("face detection complete")
	return res, nil
}

func (o *Orchestrator) begin(ctx context.Context, generation uint64) (context.Context, uint64, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if generation < o.generation {
		return nil, 0, false
	}
	if o.cancel != nil {
		o.cancel()
	}
	o.generation = generation
	o.seq++

	var runCtx context.Context
	var cancel context.CancelFunc
	if o.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, o.timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	o.cancel = cancel
	return runCtx, o.seq, true
}

func (o *Orchestrator) finish(token uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if token == o.seq && o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}

func (o *Orchestrator) current(token uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return token == o.seq
}
