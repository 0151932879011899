package cli

import "errors"

// Error variables for argument parsing.
var (
	ErrFlagRequiresArg = errors.New("flag requires an argument")
	ErrUnknownFlag     = errors.New("unknown flag")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrUnexpectedArgs  = errors.New("unexpected arguments")
)
