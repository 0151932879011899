package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command is one subcommand of the superposition binary.
type Command struct {
	// Flags holds the command's own flags. Global flags (-C, -c, -h) are
	// parsed by [Run] before the command is selected.
	Flags *flag.FlagSet

	// Usage follows "superposition" in help output. Its first word is the
	// command name, e.g. "stress [flags]".
	Usage string

	// Short is the one-liner shown in the command list.
	Short string

	// Long is shown by "superposition <cmd> --help". Short is used when empty.
	Long string

	// Examples are invocations printed under the help text, without the
	// binary name.
	Examples []string

	// NoArgs rejects positional arguments before Exec runs.
	NoArgs bool

	// Exec runs the command with the positional arguments left after flag
	// parsing.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name returns the command name.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")

	return name
}

// HelpLine returns the command's row in the global command list.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-22s %s", c.Usage, c.Short)
}

// PrintHelp writes usage, description, flags and examples to stdout.
func (c *Command) PrintHelp(o *IO) {
	o.Printf("Usage: superposition %s\n\n", c.Usage)

	if c.Long != "" {
		o.Println(c.Long)
	} else {
		o.Println(c.Short)
	}

	if c.Flags.HasFlags() {
		var buf strings.Builder

		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		o.Printf("\nFlags:\n%s", buf.String())
	}

	if len(c.Examples) > 0 {
		o.Println()
		o.Println("Examples:")

		for _, ex := range c.Examples {
			o.Println("  superposition " + ex)
		}
	}
}

// Run parses args into the command's flags and runs it. Returns the exit
// code: 0 on success, 1 on a usage error, a failed command, or warnings.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{}) // errors are printed below

	err := c.Flags.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		c.PrintHelp(o)

		return 0
	}

	if err == nil && c.NoArgs && c.Flags.NArg() > 0 {
		err = fmt.Errorf("%w: %s", ErrUnexpectedArgs, strings.Join(c.Flags.Args(), " "))
	}

	if err != nil {
		o.ErrPrintln("error:", err)
		o.ErrPrintln("Run 'superposition " + c.Name() + " --help' for usage.")

		return 1
	}

	err = c.Exec(ctx, o, c.Flags.Args())
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	return o.Finish()
}
