// Package detection runs face detection and adapts its output to display
// space.
//
// # Backends
//
// The face detector itself is a collaborator behind the Detector interface:
//
//   - skin: pure-Go skin-tone blob heuristic (default, no model file)
//   - stub: deterministic regions, for tests and demos
//   - haar: OpenCV Haar cascade via gocv (build tag gocv)
//   - dlib: dlib HOG detector via go-face (build tag dlib)
//
// Every backend must be loaded once with LoadModel. Detect before a
// successful load fails with ErrModelNotLoaded.
//
// # Coordinate Spaces
//
// Backends report regions in the source image's native pixel space. The
// Orchestrator rescales them into the display space of the rendered image,
// each axis independently, because the overlay surface is sized to the
// displayed image and not to the file.
//
// # Staleness
//
// Orchestrator.Run may be called again before an earlier call resolves. The
// newer call cancels the older one's context (best effort) and the older
// call returns ErrSuperseded instead of a result. Every RenderedImage carries
// the view generation it was issued under; a run for a generation older than
// one already started is rejected at once and never cancels the newer run.
//
// # Failures
//
// A detector error never escapes Run. It is logged and degraded to a Result
// with no regions and Err set, so the caller can tell a failure from a true
// zero-face result if it wants to.
package detection
