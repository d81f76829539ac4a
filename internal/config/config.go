// Package config loads runtime settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// DefaultMaxUploadBytes is the largest accepted upload (5 MiB).
const DefaultMaxUploadBytes = 5 << 20

// Config holds every tunable of the server.
type Config struct {
	// LogLevel is a logrus level name.
	LogLevel string

	// Detector selects the detection backend: skin, stub, haar or dlib.
	Detector string

	// ModelPath points at the backend's model file or directory. Unused by
	// the skin and stub backends.
	ModelPath string

	// ViewportWidth and ViewportHeight bound the displayed image.
	ViewportWidth  int
	ViewportHeight int

	// MaxUploadBytes is the upload size limit.
	MaxUploadBytes int64

	// DetectTimeout bounds a single detection call. Zero disables it.
	DetectTimeout time.Duration

	// BoxColor overrides the per-face palette when set ("#RRGGBB" or "#RRGGBBAA").
	BoxColor string

	// StubFaces is the face count reported by the stub backend.
	StubFaces int
}

var detectors = map[string]bool{"skin": true, "stub": true, "haar": true, "dlib": true}

// Load reads the FACE_MCP_* environment variables. All problems are
// reported together.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		LogLevel:  get("FACE_MCP_LOG_LEVEL", "info"),
		Detector:  strings.ToLower(get("FACE_MCP_DETECTOR", "skin")),
		ModelPath: get("FACE_MCP_MODEL_PATH", ""),
		BoxColor:  get("FACE_MCP_BOX_COLOR", ""),
	}

	var result *multierror.Error

	if !detectors[cfg.Detector] {
		result = multierror.Append(result, errors.Errorf("FACE_MCP_DETECTOR: unknown backend %q", cfg.Detector))
	}

	w, h, err := parseViewport(get("FACE_MCP_VIEWPORT", "640x480"))
	if err != nil {
		result = multierror.Append(result, errors.Wrap(err, "FACE_MCP_VIEWPORT"))
	}
	cfg.ViewportWidth, cfg.ViewportHeight = w, h

	maxBytes, err := strconv.ParseInt(get("FACE_MCP_MAX_UPLOAD_BYTES", strconv.Itoa(DefaultMaxUploadBytes)), 10, 64)
	if err != nil || maxBytes <= 0 {
		result = multierror.Append(result, errors.New("FACE_MCP_MAX_UPLOAD_BYTES: must be a positive integer"))
	}
	cfg.MaxUploadBytes = maxBytes

	timeout, err := time.ParseDuration(get("FACE_MCP_DETECT_TIMEOUT", "30s"))
	if err != nil || timeout < 0 {
		result = multierror.Append(result, errors.New("FACE_MCP_DETECT_TIMEOUT: must be a non-negative duration"))
	}
	cfg.DetectTimeout = timeout

	stubFaces, err := strconv.Atoi(get("FACE_MCP_STUB_FACES", "0"))
	if err != nil || stubFaces < 0 {
		result = multierror.Append(result, errors.New("FACE_MCP_STUB_FACES: must be a non-negative integer"))
	}
	cfg.StubFaces = stubFaces

	if cfg.BoxColor != "" && !isHexColor(cfg.BoxColor) {
		result = multierror.Append(result, errors.Errorf("FACE_MCP_BOX_COLOR: %q is not a hex colour", cfg.BoxColor))
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseViewport parses "WIDTHxHEIGHT". "0x0" means unbounded.
func parseViewport(s string) (int, int, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("want WIDTHxHEIGHT, got %q", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil || w < 0 {
		return 0, 0, errors.Errorf("invalid width %q", parts[0])
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil || h < 0 {
		return 0, 0, errors.Errorf("invalid height %q", parts[1])
	}
	return w, h, nil
}

func isHexColor(s string) bool {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 && len(s) != 8 {
		return false
	}
	_, err := strconv.ParseUint(s, 16, 32)
	return err == nil
}
