//go:build !dlib

package detection

import "github.com/pkg/errors"

// newDlibDetector fails when built without the dlib tag.
func newDlibDetector(dir string) (Detector, error) {
	return nil, errors.Wrap(ErrBackendUnavailable, "dlib requires the dlib build tag")
}
