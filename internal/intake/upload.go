package intake

import (
	"bytes"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Upload is a file selected by the user. Its content is read lazily, only
// after validation passed.
type Upload struct {
	// Name is the file name as selected, used for display and as a MIME hint.
	Name string

	// MIMEType is the declared media type, e.g. "image/png".
	MIMEType string

	// Size is the declared size in bytes.
	Size int64

	open func() (io.ReadCloser, error)
}

// Open returns a reader over the file content.
func (u Upload) Open() (io.ReadCloser, error) {
	if u.open == nil {
		return nil, errors.New("upload has no content")
	}
	return u.open()
}

// FromBytes wraps in-memory content. An empty mimeType is derived from name.
func FromBytes(name, mimeType string, data []byte) Upload {
	return Upload{
		Name:     name,
		MIMEType: resolveMIME(name, mimeType),
		Size:     int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// FromFile describes the file at path using its on-disk size. The file is
// opened only when the upload is decoded. An empty mimeType is derived from
// the extension.
func FromFile(path, mimeType string) (Upload, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return Upload{}, errors.Wrap(err, "failed to stat file")
	}
	if stat.IsDir() {
		return Upload{}, errors.Errorf("%s is a directory", path)
	}

	name := filepath.Base(path)
	return Upload{
		Name:     name,
		MIMEType: resolveMIME(name, mimeType),
		Size:     stat.Size(),
		open: func() (io.ReadCloser, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, errors.Wrap(err, "failed to open image")
			}
			return f, nil
		},
	}, nil
}

// resolveMIME normalises a declared type, falling back to the extension.
func resolveMIME(name, declared string) string {
	if declared == "" {
		declared = mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	}
	if declared == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(declared))
	}
	return mediaType
}
