package detection

import (
	"context"
	"image"
	"testing"

	"github.com/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		wantName string
		wantErr  error
	}{
		{"", "skin", nil},
		{"skin", "skin", nil},
		{"stub", "stub", nil},
		{"haar", "", ErrBackendUnavailable},
		{"dlib", "", ErrBackendUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.name, Options{ModelPath: "/models", StubFaces: 2})
			if tt.wantErr != nil {
				if errors.Cause(err) != tt.wantErr {
					t.Fatalf("err: got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if d.Name() != tt.wantName {
				t.Errorf("Name: got %s, want %s", d.Name(), tt.wantName)
			}
		})
	}
}

func TestNew_Unknown(t *testing.T) {
	if _, err := New("yolo", Options{}); err == nil {
		t.Error("New should reject unknown backends")
	}
}

func TestStubDetector_RequiresLoad(t *testing.T) {
	s := NewStubDetector(GridRegions(1, 10, 10))
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))

	if _, err := s.Detect(context.Background(), img); err != ErrModelNotLoaded {
		t.Fatalf("Detect before load: got %v, want ErrModelNotLoaded", err)
	}

	if err := s.LoadModel(context.Background()); err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}
	regions, err := s.Detect(context.Background(), img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(regions) != 1 {
		t.Errorf("got %d regions, want 1", len(regions))
	}
	if s.Calls() != 1 {
		t.Errorf("Calls: got %d, want 1", s.Calls())
	}
}

func TestStubDetector_FailLoad(t *testing.T) {
	s := NewStubDetector(nil)
	s.FailLoad(errors.New("network down"))

	if err := s.LoadModel(context.Background()); err == nil {
		t.Fatal("first LoadModel should fail")
	}
	if err := s.LoadModel(context.Background()); err != nil {
		t.Fatalf("second LoadModel should succeed: %v", err)
	}
}

func TestStubDetector_ReturnsCopies(t *testing.T) {
	s := NewStubDetector(GridRegions(2, 10, 10))
	_ = s.LoadModel(context.Background())
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))

	first, _ := s.Detect(context.Background(), img)
	first[0].X1 = 999

	second, _ := s.Detect(context.Background(), img)
	if second[0].X1 == 999 {
		t.Error("Detect leaked its internal slice")
	}
}

func TestStubDetector_Func(t *testing.T) {
	s := NewStubDetectorFunc(func(ctx context.Context, call int, img image.Image) ([]Region, error) {
		return GridRegions(call, 5, 5), nil
	})
	_ = s.LoadModel(context.Background())
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))

	for want := 1; want <= 3; want++ {
		regions, err := s.Detect(context.Background(), img)
		if err != nil {
			t.Fatalf("Detect failed: %v", err)
		}
		if len(regions) != want {
			t.Errorf("call %d: got %d regions, want %d", want, len(regions), want)
		}
	}
}
