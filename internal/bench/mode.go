package bench

import (
	"fmt"
	"strings"
)

// Mode selects which runners a benchmark executes.
type Mode string

// Modes.
const (
	ModeAll      Mode = "all"
	ModeDirect   Mode = "direct"
	ModeRegister Mode = "register"
)

// ParseMode parses a mode name. Empty means [ModeAll].
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAll, nil
	case ModeAll, ModeDirect, ModeRegister:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q (want all, direct or register)", ErrUnknownMode, s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}

// Runners returns the runners selected by m, direct first.
func (m Mode) Runners() ([]Runner, error) {
	switch m {
	case ModeAll:
		return []Runner{DirectRunner{}, RegisterRunner{}}, nil
	case ModeDirect, ModeRegister:
		r, err := NewRunner(m)
		if err != nil {
			return nil, err
		}

		return []Runner{r}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, string(m))
	}
}
