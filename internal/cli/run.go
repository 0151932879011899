package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mchalapuk/super-position-benchmark/internal/bench"
	"github.com/mchalapuk/super-position-benchmark/internal/logging"
	"github.com/mchalapuk/super-position-benchmark/internal/metrics"
)

const (
	minArgs      = 2
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
)

// Run is the main entry point. Returns exit code.
//
// The first signal received on sigCh cancels the running command; runners
// stop at their next block boundary and the partial report is discarded.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	a := &app{
		in:     in,
		env:    env,
		logger: logging.New(errOut, logging.ProfileRuntime, env),
	}

	commands := []*Command{
		RunCmd(a),
		StressCmd(a),
		ShellCmd(a),
		PrintConfigCmd(a),
	}

	if len(args) < minArgs {
		printUsage(out, commands)

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut, commands)

		return 1
	}

	a.global = flags

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	if flags.help || len(flags.remaining) == 0 {
		printUsage(out, commands)

		return 0
	}

	name := flags.remaining[0]
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd.Run(ctx, NewIO(out, errOut), flags.remaining[1:])
		}
	}

	fprintln(errOut, "error:", fmt.Errorf("%w: %s", ErrUnknownCommand, name))
	printUsage(errOut, commands)

	return 1
}

// app carries what every command needs besides its own flags.
type app struct {
	in     io.Reader
	global globalFlags
	env    map[string]string
	logger zerolog.Logger
}

func (a *app) loadConfig(overrides bench.Overrides) (bench.Config, error) {
	return bench.LoadConfig(bench.LoadConfigInput{
		WorkDirOverride: a.global.workDir,
		ConfigPath:      a.global.configPath,
		Overrides:       overrides,
		Env:             a.env,
	})
}

// execute runs the harness for cfg, prints the markdown report and writes
// the metrics textfile when one is configured. A textfile that cannot be
// written is a warning, not a failure.
func (a *app) execute(ctx context.Context, o *IO, cfg bench.Config, stress bool) error {
	rec, err := metrics.NewRecorder()
	if err != nil {
		return err
	}

	run := bench.Execute
	if stress {
		run = bench.ExecuteStress
	}

	report, err := run(ctx, cfg, a.logger, rec.Hooks())
	if err != nil {
		return err
	}

	o.Printf("%s", report.Markdown())

	if cfg.MetricsFileAbs == "" {
		return nil
	}

	err = rec.WriteTextfile(cfg.MetricsFileAbs)
	if err != nil {
		o.Warn("metrics textfile", err)

		return nil
	}

	a.logger.Info().Str("path", cfg.MetricsFileAbs).Msg("metrics written")

	return nil
}

type globalFlags struct {
	workDir    string
	configPath string
	help       bool
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a global flag at args[idx]. Returns number of
// args consumed (0 if args[idx] is the command).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	switch arg {
	case "-h", "--help":
		flags.help = true

		return consumedOne, nil
	case "-C", "--cwd", "-c", "--config":
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", ErrFlagRequiresArg, arg)
		}

		if arg == "-C" || arg == "--cwd" {
			flags.workDir = args[idx+1]
		} else {
			flags.configPath = args[idx+1]
		}

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--cwd="); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	if after, ok := strings.CutPrefix(arg, "--config="); ok {
		flags.configPath = after

		return consumedOne, nil
	}

	if after, ok := strings.CutPrefix(arg, "-C"); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	if strings.HasPrefix(arg, "-") {
		return consumedNone, fmt.Errorf("%w: %s", ErrUnknownFlag, arg)
	}

	return consumedNone, nil
}

func printUsage(w io.Writer, commands []*Command) {
	fprintln(w, `superposition - publish register benchmark harness

Usage: superposition [flags] <command> [args]

Global flags:
  -C, --cwd <dir>        Run as if started in <dir>
  -c, --config <file>    Use specified config file (.json or .toml)
  -h, --help             Show help

Commands:`)

	for _, cmd := range commands {
		fprintln(w, cmd.HelpLine())
	}

	fprintln(w)
	fprintln(w, `Run 'superposition <command> --help' for command flags.`)
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}
