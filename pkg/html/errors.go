package html

import "errors"

var (
	// ErrInvalidState is returned for calls made at the wrong point of
	// the write protocol (WriteWait outside a handler, WriteContinue
	// when nothing is waiting) and for node references that were
	// invalidated by a reset. The engine state is unchanged.
	ErrInvalidState = errors.New("html: invalid state")

	// ErrEngineUnusable is returned by every operation after the engine
	// has been poisoned by an unrecoverable failure.
	ErrEngineUnusable = errors.New("html: engine unusable")
)
