package touch

import "errors"

// Errors returned by engine operations.
var (
	// ErrNilSurface indicates Attach was called without a surface.
	ErrNilSurface = errors.New("nil input surface")

	// ErrAlreadyAttached indicates the engine already serves a surface.
	ErrAlreadyAttached = errors.New("engine already attached")

	// ErrNotAttached indicates the engine serves no surface.
	ErrNotAttached = errors.New("engine not attached")

	// ErrHandlerPanic wraps a panic recovered from an input handler.
	ErrHandlerPanic = errors.New("panic in touch event handling")
)
