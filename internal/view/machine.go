package view

import (
	"context"
	"image"
	"sync"

	"github.com/ironsheep/face-detect-mcp/internal/detection"
	"github.com/ironsheep/face-detect-mcp/internal/intake"
	"github.com/ironsheep/face-detect-mcp/internal/overlay"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrNotReady is returned by operations that need a laid-out image.
var ErrNotReady = errors.New("no image is ready")

// RenderListener is notified once an accepted image has been laid out and
// its display size is known. It runs on the upload's goroutine; ctx is
// cancelled when the upload is superseded or the workspace is reset.
type RenderListener interface {
	ImageRendered(ctx context.Context, img detection.RenderedImage)
}

// RenderListenerFunc adapts a function to RenderListener.
type RenderListenerFunc func(ctx context.Context, img detection.RenderedImage)

// ImageRendered calls f.
func (f RenderListenerFunc) ImageRendered(ctx context.Context, img detection.RenderedImage) {
	f(ctx, img)
}

// Options configures a Machine.
type Options struct {
	Intake       *intake.Intake
	Orchestrator *detection.Orchestrator
	Layout       Layout
	Renderer     *overlay.Renderer
	Log          logrus.FieldLogger
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Machine owns the workspace. Every transition happens under one lock, so
// observers never see a phase paired with another phase's data.
type Machine struct {
	intake       *intake.Intake
	orchestrator *detection.Orchestrator
	layout       Layout
	renderer     *overlay.Renderer
	log          *logrus.Entry

	mu       sync.Mutex
	ws       workspace
	canvas   *overlay.Canvas
	cancel   context.CancelFunc
	listener RenderListener

	// notifyMu orders publication. It is taken before mu is released so
	// snapshots reach subscribers in transition order.
	notifyMu    sync.Mutex
	subscribers []subscriber
	nextID      int

	wg sync.WaitGroup
}

// New returns a Machine in Default showing the placeholder. Rendered
// images are handed to the orchestrator unless another listener is set.
func New(opts Options) *Machine {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = overlay.NewRenderer(overlay.DefaultStyle)
	}

	m := &Machine{
		intake:       opts.Intake,
		orchestrator: opts.Orchestrator,
		layout:       opts.Layout,
		renderer:     renderer,
		log:          log.WithField("component", "view"),
		canvas:       overlay.NewCanvas(),
		ws: workspace{
			phase: Default,
			image: intake.Placeholder(),
		},
	}
	m.listener = RenderListenerFunc(m.detect)
	return m
}

// SetRenderListener replaces the hand-off used after layout. A nil
// listener restores detection through the orchestrator.
func (m *Machine) SetRenderListener(l RenderListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l == nil {
		l = RenderListenerFunc(m.detect)
	}
	m.listener = l
}

// BoxColor returns the overlay colour of detection i as "#rrggbb".
func (m *Machine) BoxColor(i int) string {
	return overlay.HexColor(m.renderer.ColorFor(i))
}

// Snapshot returns the current workspace.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ws.snapshot()
}

// Subscribe registers fn to receive every published snapshot, in order.
// fn runs synchronously on the transitioning goroutine and must not call
// back into the Machine's mutating methods. The returned func unsubscribes.
func (m *Machine) Subscribe(fn func(Snapshot)) func() {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	m.nextID++
	id := m.nextID
	m.subscribers = append(m.subscribers, subscriber{id: id, fn: fn})
	return func() {
		m.notifyMu.Lock()
		defer m.notifyMu.Unlock()
		for i, s := range m.subscribers {
			if s.id == id {
				m.subscribers = append(m.subscribers[:i:i], m.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Submit validates u. A rejected upload leaves the workspace as it was,
// apart from the recorded validation error, and the error is returned.
// An accepted upload moves the workspace to Loading and returns at once;
// decoding, layout and detection continue in the background.
func (m *Machine) Submit(ctx context.Context, u intake.Upload) error {
	if err := m.intake.Validate(u); err != nil {
		var verr *intake.ValidationError
		if errors.As(err, &verr) {
			m.transition(func(ws *workspace) bool {
				ws.validationErr = verr
				return true
			})
		}
		return err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	var gen uint64
	m.transition(func(ws *workspace) bool {
		if m.cancel != nil {
			m.cancel()
		}
		m.cancel = cancel
		gen = ws.generation + 1
		*ws = workspace{phase: Loading, generation: gen}
		m.renderer.Render(m.canvas, nil, detection.Dimensions{})
		return true
	})

	m.log.WithFields(logrus.Fields{
		"generation": gen,
		"name":       u.Name,
		"size":       u.Size,
	}).Info("upload accepted")

	m.wg.Add(1)
	go m.load(runCtx, gen, u)
	return nil
}

func (m *Machine) load(ctx context.Context, gen uint64, u intake.Upload) {
	defer m.wg.Done()
	log := m.log.WithField("generation", gen)

	src, err := m.intake.Decode(ctx, u)
	if err != nil {
		var verr *intake.ValidationError
		if !errors.As(err, &verr) {
			if ctx.Err() != nil {
				log.WithError(err).Debug("upload abandoned")
				return
			}
			verr = intake.Unreadable()
		}
		m.transition(func(ws *workspace) bool {
			if ws.generation != gen {
				return false
			}
			*ws = workspace{
				phase:         Default,
				generation:    gen,
				image:         intake.Placeholder(),
				validationErr: verr,
			}
			m.renderer.Render(m.canvas, nil, detection.Dimensions{})
			return true
		})
		return
	}

	display, dims := m.layout.Render(src.Image)

	var listener RenderListener
	_, ok := m.transition(func(ws *workspace) bool {
		if ws.generation != gen {
			return false
		}
		ws.image = src
		ws.display = display
		ws.dims = dims
		listener = m.listener
		return true
	})
	if !ok {
		log.Debug("discarding layout of superseded upload")
		return
	}

	listener.ImageRendered(ctx, detection.RenderedImage{
		Generation: gen,
		Source:     src.Image,
		Display:    dims,
	})
}

func (m *Machine) detect(ctx context.Context, img detection.RenderedImage) {
	res, err := m.orchestrator.Run(ctx, img)
	if err != nil {
		return
	}
	m.ApplyDetection(res)
}

// ApplyDetection completes Loading with res. It reports false and changes
// nothing when res belongs to an older generation or the workspace is no
// longer loading.
func (m *Machine) ApplyDetection(res *detection.Result) bool {
	if res == nil {
		return false
	}
	snap, ok := m.transition(func(ws *workspace) bool {
		if ws.generation != res.Generation || ws.phase != Loading {
			return false
		}
		regions := res.Regions
		if res.Display != ws.dims {
			regions = detection.ScaleRegions(regions, res.Display, ws.dims)
		}
		regions = detection.ClampRegions(regions, ws.dims)
		ws.phase = Ready
		ws.detections = regions
		ws.detectionErr = res.Err
		m.renderer.Render(m.canvas, ws.detections, ws.dims)
		return true
	})
	if !ok {
		m.log.WithField("generation", res.Generation).Debug("discarding stale detection result")
		return false
	}
	m.log.WithFields(logrus.Fields{
		"generation": snap.Generation,
		"faces":      snap.FaceCount(),
	}).Info(snap.Status)
	return true
}

// Reset abandons any in-flight work and returns to Default.
func (m *Machine) Reset() {
	m.transition(func(ws *workspace) bool {
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		*ws = workspace{
			phase:      Default,
			generation: ws.generation + 1,
			image:      intake.Placeholder(),
		}
		m.renderer.Render(m.canvas, nil, detection.Dimensions{})
		return true
	})
	m.log.Info("workspace reset")
}

// Wait blocks until every background upload has finished.
func (m *Machine) Wait() {
	m.wg.Wait()
}

// Close resets the workspace and waits for background work to stop.
func (m *Machine) Close() {
	m.Reset()
	m.Wait()
}

// Overlay returns a copy of the overlay layer. It is empty outside Ready.
func (m *Machine) Overlay() *image.RGBA {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canvas.Image()
}

// Composite returns the displayed image with the overlay drawn on top. In
// Default it is the placeholder laid out in the viewport.
func (m *Machine) Composite() (*overlay.EncodedImage, error) {
	m.mu.Lock()
	phase := m.ws.phase
	display := m.ws.display
	src := m.ws.image
	layer := m.canvas.Image()
	m.mu.Unlock()

	switch {
	case display != nil:
		return overlay.EncodePNG(overlay.Composite(display, layer))
	case phase == Default && src != nil:
		placeholder, _ := m.layout.Render(src.Image)
		return overlay.EncodePNG(placeholder)
	default:
		return nil, errors.Wrap(ErrNotReady, "image is still loading")
	}
}

// CropFace returns detected face index cut from the displayed image and
// rescaled by scale.
func (m *Machine) CropFace(index int, scale float64) (*overlay.EncodedImage, error) {
	m.mu.Lock()
	phase := m.ws.phase
	display := m.ws.display
	detections := m.ws.detections
	m.mu.Unlock()

	if phase != Ready || display == nil {
		return nil, ErrNotReady
	}
	if index < 0 || index >= len(detections) {
		return nil, errors.Errorf("face index %d out of range, %d faces detected", index, len(detections))
	}

	cropped, err := overlay.CropRegion(display, detections[index], scale)
	if err != nil {
		return nil, err
	}
	return overlay.EncodePNG(cropped)
}

// transition applies fn to the workspace under the lock. When fn reports a
// change the resulting snapshot is published before the next transition
// can publish its own.
func (m *Machine) transition(fn func(ws *workspace) bool) (Snapshot, bool) {
	m.mu.Lock()
	if !fn(&m.ws) {
		snap := m.ws.snapshot()
		m.mu.Unlock()
		return snap, false
	}
	snap := m.ws.snapshot()
	m.notifyMu.Lock()
	m.mu.Unlock()
	defer m.notifyMu.Unlock()

	for _, s := range m.subscribers {
		s.fn(snap)
	}
	return snap, true
}
