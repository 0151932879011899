package superposition

import "errors"

// Sentinel errors returned by register operations.
//
// Callers should use [errors.Is] to check error types:
//
//	if errors.Is(err, superposition.ErrCorrupted) {
//	    // stop using the register, rebuild it from the source of truth
//	}
var (
	// ErrConfiguration indicates the register could not be built.
	//
	// Common causes: nil factory, factory error, a factory that hands out
	// the same instance twice, or invalid drain options.
	//
	// This is a programming error.
	ErrConfiguration = errors.New("superposition: configuration")

	// ErrCorrupted indicates the two slots no longer converge.
	//
	// This happens when a mutator fails or panics part way through, or when
	// the drain wait exceeded the configured timeout because a reader never
	// left the back slot. The register is poisoned afterwards.
	//
	// Recovery: none. Discard the register.
	ErrCorrupted = errors.New("superposition: corrupted")

	// ErrMisuse indicates a violation of the usage contract.
	//
	// Overlapping mover calls are rejected without side effects. A Stage or
	// Read callback that changed the value poisons the register.
	//
	// This is a programming error.
	ErrMisuse = errors.New("superposition: misuse")
)
