package detection

import (
	"context"
	"image"
	"sync"
)

// StubFunc computes the response of the n-th Detect call (1-based).
type StubFunc func(ctx context.Context, call int, img image.Image) ([]Region, error)

// StubDetector is a deterministic backend. It answers every call with a
// fixed set of regions unless a StubFunc is installed.
type StubDetector struct {
	loadGate

	mu      sync.Mutex
	regions []Region
	fn      StubFunc
	loadErr error
	calls   int
}

// NewStubDetector returns a stub that reports regions on every call.
func NewStubDetector(regions []Region) *StubDetector {
	return &StubDetector{regions: append([]Region(nil), regions...)}
}

// NewStubDetectorFunc returns a stub driven by fn.
func NewStubDetectorFunc(fn StubFunc) *StubDetector {
	return &StubDetector{fn: fn}
}

// Name implements Detector.
func (s *StubDetector) Name() string { return "stub" }

// FailLoad makes the next LoadModel call fail with err.
func (s *StubDetector) FailLoad(err error) {
	s.mu.Lock()
	s.loadErr = err
	s.mu.Unlock()
}

// LoadModel implements Detector.
func (s *StubDetector) LoadModel(ctx context.Context) error {
	s.mu.Lock()
	err := s.loadErr
	s.loadErr = nil
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.open()
	return nil
}

// Calls returns how many times Detect ran past the load check.
func (s *StubDetector) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Detect implements Detector.
func (s *StubDetector) Detect(ctx context.Context, img image.Image) ([]Region, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.calls++
	call := s.calls
	fn := s.fn
	regions := append([]Region{}, s.regions...)
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, call, img)
	}
	return regions, nil
}

// GridRegions lays out n boxes of w x h pixels left to right, four per row,
// with a gap of half a box between them.
func GridRegions(n, w, h int) []Region {
	regions := make([]Region, 0, n)
	for i := 0; i < n; i++ {
		x := (i % 4) * (w + w/2)
		y := (i / 4) * (h + h/2)
		regions = append(regions, Region{X1: x, Y1: y, X2: x + w, Y2: y + h, Confidence: 1})
	}
	return regions
}
