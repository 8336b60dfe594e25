package generator

import "errors"

var (
	// ErrValidation is returned before any upstream call when caller input is blank.
	ErrValidation = errors.New("validation error")
	// ErrGenerationFailure covers upstream errors, empty payloads and payloads
	// that do not decode into a complete Document.
	ErrGenerationFailure = errors.New("generation failure")
	// ErrSessionNotOpen is returned when no session exists or the handle is stale.
	ErrSessionNotOpen = errors.New("session not open")
	// ErrRefinementFailure wraps upstream errors raised during a refinement turn.
	ErrRefinementFailure = errors.New("refinement failure")
)
