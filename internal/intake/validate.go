package intake

import "fmt"

// DefaultMaxBytes is the default upload limit, 5 MiB.
const DefaultMaxBytes = 5 << 20

// MessageUnsupportedType is shown for anything but JPEG or PNG.
const MessageUnsupportedType = "Please upload a JPEG or PNG image."

// Reason classifies a ValidationError.
type Reason string

const (
	ReasonUnsupportedType Reason = "unsupported type"
	ReasonTooLarge        Reason = "too large"
	ReasonUnreadable      Reason = "unreadable"
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// ValidationError rejects an upload. Message is user-facing text.
type ValidationError struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsAllowedType reports whether mimeType may be uploaded.
func IsAllowedType(mimeType string) bool {
	return allowedTypes[mimeType]
}

// validate checks declared metadata only. Type is checked before size.
func validate(u Upload, maxBytes int64) error {
	if !IsAllowedType(u.MIMEType) {
		return &ValidationError{Reason: ReasonUnsupportedType, Message: MessageUnsupportedType}
	}
	if u.Size > maxBytes {
		return &ValidationError{Reason: ReasonTooLarge, Message: tooLargeMessage(maxBytes)}
	}
	return nil
}

func tooLargeMessage(maxBytes int64) string {
	if maxBytes >= 1<<20 && maxBytes%(1<<20) == 0 {
		return fmt.Sprintf("Please upload an image smaller than %d MB.", maxBytes>>20)
	}
	return fmt.Sprintf("Please upload an image smaller than %d bytes.", maxBytes)
}

// Unreadable is the rejection for content that cannot be read or decoded.
func Unreadable() *ValidationError {
	return &ValidationError{
		Reason:  ReasonUnreadable,
		Message: "The selected file could not be read as an image.",
	}
}
