package bench

import "errors"

// Error variables for harness operations.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config")
	ErrUnknownMode        = errors.New("unknown mode")
	ErrIncomplete         = errors.New("run stopped before the chain was complete")
	ErrDrainViolation     = errors.New("mutator ran while a reader was inside the slot")
)
