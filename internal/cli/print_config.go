package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/mchalapuk/super-position-benchmark/internal/bench"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Examples: []string{
			"-c bench.toml print-config",
		},
		NoArgs: true,
		Exec: func(_ context.Context, o *IO, _ []string) error {
			cfg, err := a.loadConfig(bench.Overrides{})
			if err != nil {
				return err
			}

			printConfig(o, cfg)

			return nil
		},
	}
}

func printConfig(o *IO, cfg bench.Config) {
	o.Println("effective_cwd=" + cfg.EffectiveCwd)
	o.Printf("block_size=%d\n", cfg.BlockSize)
	o.Printf("chain_length=%d\n", cfg.ChainLength)
	o.Printf("keys=%d\n", cfg.Keys)
	o.Printf("readers=%d\n", cfg.Readers)
	o.Printf("repeat=%d\n", cfg.Repeat)
	o.Printf("mode=%s\n", cfg.Mode)
	o.Printf("scheme=%s\n", cfg.Scheme)
	o.Printf("poll_interval=%s\n", cfg.PollInterval)
	o.Printf("drain_timeout=%s\n", cfg.DrainTimeout)
	o.Printf("stress_duration=%s\n", cfg.StressDuration)
	o.Printf("stress_readers=%d\n", cfg.StressReaders)
	o.Printf("final_verify=%t\n", cfg.FinalVerify)

	if cfg.Seed != 0 {
		o.Printf("seed=%d\n", cfg.Seed)
	}

	if cfg.ReportAbs != "" {
		o.Println("report=" + cfg.ReportAbs)
	}

	if cfg.MetricsFileAbs != "" {
		o.Println("metrics_file=" + cfg.MetricsFileAbs)
	}

	o.Println("")
	o.Println("# sources")

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		o.Println("(defaults only)")

		return
	}

	if cfg.Sources.Global != "" {
		o.Println("global_config=" + cfg.Sources.Global)
	}

	if cfg.Sources.Project != "" {
		o.Println("project_config=" + cfg.Sources.Project)
	}
}
