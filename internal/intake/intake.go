package intake

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ImageSource is a displayable image: the built-in placeholder or a
// decoded upload. It is never modified after creation.
type ImageSource struct {
	Name     string
	MIMEType string
	Size     int64

	// Digest is the hex SHA-256 of the encoded bytes.
	Digest string

	// Image is the decoded, orientation-corrected image.
	Image image.Image

	// DataURI is "data:<mime>;base64,<original bytes>".
	DataURI string

	// Placeholder marks the built-in default image.
	Placeholder bool
}

// Intake validates and decodes uploads.
type Intake struct {
	maxBytes int64
	cache    *ImageCache
	log      *logrus.Entry
}

// New returns an Intake enforcing maxBytes. A non-positive maxBytes means
// DefaultMaxBytes.
func New(maxBytes int64, log logrus.FieldLogger) *Intake {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Intake{
		maxBytes: maxBytes,
		cache:    NewImageCache(8),
		log:      log.WithField("component", "intake"),
	}
}

// MaxBytes returns the size limit.
func (in *Intake) MaxBytes() int64 { return in.maxBytes }

// Validate checks the upload's declared type and size. It returns a
// *ValidationError on rejection and reads no content.
func (in *Intake) Validate(u Upload) error {
	if err := validate(u, in.maxBytes); err != nil {
		in.log.WithFields(logrus.Fields{
			"name": u.Name,
			"mime": u.MIMEType,
			"size": u.Size,
		}).WithError(err).Info("upload rejected")
		return err
	}
	return nil
}

// Decode validates u, reads it and decodes it. It blocks; callers that must
// stay responsive run it on their own goroutine. Unreadable or corrupt
// content is reported as a *ValidationError with ReasonUnreadable.
func (in *Intake) Decode(ctx context.Context, u Upload) (*ImageSource, error) {
	if err := in.Validate(u); err != nil {
		return nil, err
	}

	rc, err := u.Open()
	if err != nil {
		in.log.WithError(err).WithField("name", u.Name).Warn("failed to open upload")
		return nil, Unreadable()
	}
	defer rc.Close()

	// The declared size may lie; never read past the limit.
	data, err := io.ReadAll(io.LimitReader(rc, in.maxBytes+1))
	if err != nil {
		in.log.WithError(err).WithField("name", u.Name).Warn("failed to read upload")
		return nil, Unreadable()
	}
	if int64(len(data)) > in.maxBytes {
		return nil, &ValidationError{Reason: ReasonTooLarge, Message: tooLargeMessage(in.maxBytes)}
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "decode cancelled")
	}

	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	img, ok := in.cache.Get(digest)
	if !ok {
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			in.log.WithError(err).WithField("name", u.Name).Info("upload is not a decodable image")
			return nil, Unreadable()
		}
		in.cache.Put(digest, img)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "decode cancelled")
	}

	b := img.Bounds()
	in.log.WithFields(logrus.Fields{
		"name":   u.Name,
		"width":  b.Dx(),
		"height": b.Dy(),
		"cached": ok,
		"cache":  in.cache.Len(),
	}).Debug("upload decoded")

	return &ImageSource{
		Name:     u.Name,
		MIMEType: u.MIMEType,
		Size:     int64(len(data)),
		Digest:   digest,
		Image:    img,
		DataURI:  DataURI(u.MIMEType, data),
	}, nil
}

// DataURI encodes data as a base64 data URI.
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
