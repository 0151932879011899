package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// RunCmd returns the run command.
func RunCmd(a *app) *Command {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	bf := newBenchFlags(fs, flagsCommon|flagsRun)

	return &Command{
		Flags: fs,
		Usage: "run [flags]",
		Short: "Build hash chains and compare runners",
		Long: `Build a signed hash chain with each selected runner and print a timing table.

The direct runner appends and verifies on one goroutine. The register runner
publishes every block through a publish register while reader goroutines
verify each new block as it appears. Flags override config file values.`,
		Examples: []string{
			"run --mode register --readers 4 --chain-length 1000",
			"run --scheme rsa --block-size 50 --repeat 5 --report bench.md",
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

			return a.execute(ctx, o, cfg, false)
		},
	}
}
