package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// StressCmd returns the stress command.
func StressCmd(a *app) *Command {
	fs := flag.NewFlagSet("stress", flag.ContinueOnError)
	bf := newBenchFlags(fs, flagsCommon|flagsStress)

	return &Command{
		Flags: fs,
		Usage: "stress [flags]",
		Short: "Hammer a register with short-lived readers",
		Long: `Publish blocks as fast as possible while waves of short-lived readers enter
and leave the register. Fails when a publish ever mutated a slot that still
had a reader inside.`,
		Examples: []string{
			"stress --stress-duration 30s --stress-readers 32",
		},
		NoArgs: true,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			overrides, err := bf.overrides()
			if err != nil {
				return err
			}

			cfg, err := a.loadConfig(overrides)
			if err != nil {
				return err
			}

			return a.execute(ctx, o, cfg, true)
		},
	}
}
