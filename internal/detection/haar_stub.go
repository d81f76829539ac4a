//go:build !gocv

package detection

import "github.com/pkg/errors"

// newHaarDetector fails when built without the gocv tag.
func newHaarDetector(path string) (Detector, error) {
	return nil, errors.Wrap(ErrBackendUnavailable, "haar requires the gocv build tag")
}
