// Package intake accepts user-selected image files and turns them into
// displayable image sources.
//
// # Validation
//
// Only JPEG and PNG files are accepted, and only up to the configured size
// limit (5 MiB by default). The declared MIME type is authoritative; when a
// caller declares none, it is derived from the file extension. Validation
// reads nothing but the declared metadata, so an oversized file is rejected
// without being read.
//
// Rejections are *ValidationError values whose Message is meant to be shown
// to the user as-is.
//
// # Decoding
//
// Decode reads and decodes the file, honouring EXIF orientation, and
// produces an ImageSource carrying both the decoded image and a data URI of
// the original bytes. Decoded images are cached by content digest so that
// re-submitting identical bytes skips the decode.
//
// # Placeholder
//
// Placeholder returns the built-in image shown when nothing has been
// uploaded.
package intake
