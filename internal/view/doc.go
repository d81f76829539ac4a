// Package view holds the single-image face detection workspace: which image
// is displayed, whether detection is running, what was found, and what the
// status line says.
//
// # States
//
//	Default  placeholder shown, nothing detected (initial, and after Reset)
//	Loading  an upload is being decoded, laid out and run through detection
//	Ready    detection finished, with or without faces
//
// Transitions:
//
//	Default --Submit(valid)-->   Loading
//	Default --Submit(invalid)--> Default   (ValidationError attached)
//	Loading --detection done-->  Ready
//	Loading --decode failed-->   Default   (ValidationError "unreadable")
//	Ready   --Submit(valid)-->   Loading   (previous detections discarded)
//	any     --Reset-->           Default
//
// An invalid Submit never changes the displayed image or detections; it only
// attaches a ValidationError, which the next Submit or Reset clears.
//
// # Concurrency
//
// The whole state is one value guarded by one mutex, and every transition
// is a single critical section. Decoding and detection run on goroutines.
// Each carries the generation it was started under; when it finishes, its
// result is applied only if the generation is still current, so a slow
// detection for an old image can never overwrite a newer one.
//
// The render-complete signal is handed to a RenderListener rather than
// calling detection inline; the default listener runs the detection
// Orchestrator and feeds the result back into the machine.
package view
