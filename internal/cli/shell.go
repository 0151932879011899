package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/mchalapuk/super-position-benchmark/internal/bench"
)

const shellPrompt = "superposition> "

var shellCommands = []string{
	"publish", "tip", "block", "verify", "stats", "reset",
	"set", "config", "run", "stress",
	"help", "exit", "quit", "q",
}

// Settings that shape the live ledger. Changing one starts a new session.
var sessionSettings = map[string]bool{
	"keys":          true,
	"scheme":        true,
	"block-size":    true,
	"drain-timeout": true,
	"seed":          true,
}

// ShellCmd returns the shell command.
func ShellCmd(a *app) *Command {
	fs := flag.NewFlagSet("shell", flag.ContinueOnError)
	bf := newBenchFlags(fs, flagsAll)

	return &Command{
		Flags: fs,
		Usage: "shell [flags]",
		Short: "Drive a live register interactively",
		Long: `Start an interactive shell over a live register holding a signed ledger.
Blocks are published one command at a time and every read goes through the
register. Settings start from config files and flags and can be changed
with 'set'. Type 'help' inside the shell for commands.`,
		Examples: []string{
			"shell --keys 3 --block-size 4",
			"shell < script.txt",
		},
		NoArgs: true,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			sh := &shell{app: a, o: o, flags: bf}

			return sh.run(ctx)
		},
	}
}

// lineReader is the input side of the shell. A terminal gets line editing
// and history; anything else is read line by line.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

type shell struct {
	app     *app
	o       *IO
	flags   *benchFlags
	session *bench.Session
}

func (sh *shell) run(ctx context.Context) error {
	lr := sh.app.lineReader()
	defer func() { _ = lr.Close() }()

	sh.o.Println("superposition shell. Type 'help' for available commands.")

	for {
		line, err := lr.Prompt(shellPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		lr.AppendHistory(line)

		quit, err := sh.exec(ctx, line)
		if err != nil {
			sh.o.ErrPrintln("error:", err)
		}

		if quit {
			return nil
		}

		err = ctx.Err()
		if err != nil {
			return err
		}
	}
}

// exec runs one shell line. Reports whether the shell should exit.
func (sh *shell) exec(ctx context.Context, line string) (bool, error) {
	parts := strings.Fields(line)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "exit", "quit", "q":
		return true, nil
	case "help", "?":
		sh.printHelp()

		return false, nil
	case "publish":
		return false, sh.cmdPublish(ctx, args)
	case "tip":
		return false, sh.cmdTip()
	case "block":
		return false, sh.cmdBlock(args)
	case "verify":
		return false, sh.cmdVerify(args)
	case "stats":
		return false, sh.cmdStats()
	case "reset":
		sh.session = nil
		sh.o.Println("session reset")

		return false, nil
	case "set":
		return false, sh.cmdSet(args)
	case "config":
		cfg, err := sh.config()
		if err != nil {
			return false, err
		}

		printConfig(sh.o, cfg)

		return false, nil
	case "run":
		return false, sh.cmdRun(ctx, args)
	case "stress":
		cfg, err := sh.config()
		if err != nil {
			return false, err
		}

		return false, sh.app.execute(ctx, sh.o, cfg, true)
	default:
		return false, fmt.Errorf("%w: %s (type 'help' for commands)", ErrUnknownCommand, cmd)
	}
}

func (sh *shell) config() (bench.Config, error) {
	overrides, err := sh.flags.overrides()
	if err != nil {
		return bench.Config{}, err
	}

	return sh.app.loadConfig(overrides)
}

// live returns the current session, starting one if needed.
func (sh *shell) live() (*bench.Session, error) {
	if sh.session != nil {
		return sh.session, nil
	}

	cfg, err := sh.config()
	if err != nil {
		return nil, err
	}

	s, err := bench.NewSession(cfg, sh.app.logger)
	if err != nil {
		return nil, err
	}

	sh.session = s
	sh.o.Println("session started:", s)

	return s, nil
}

func (sh *shell) cmdPublish(ctx context.Context, args []string) error {
	n, err := optionalInt(args, 1)
	if err != nil {
		return err
	}

	s, err := sh.live()
	if err != nil {
		return err
	}

	tip, err := s.Publish(ctx, n)
	if err != nil {
		return err
	}

	sh.o.Printf("length=%d block=%s tx=%s\n", tip.Len, tip.BlockDigest, tip.TxDigest)

	return nil
}

func (sh *shell) cmdTip() error {
	s, err := sh.live()
	if err != nil {
		return err
	}

	tip, err := s.Tip()
	if err != nil {
		return err
	}

	sh.o.Printf("length=%d block=%s tx=%s\n", tip.Len, tip.BlockDigest, tip.TxDigest)

	return nil
}

func (sh *shell) cmdBlock(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: block <index>")
	}

	i, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid index %q", args[0])
	}

	s, err := sh.live()
	if err != nil {
		return err
	}

	b, err := s.Block(i)
	if err != nil {
		return err
	}

	sh.o.Printf("block %d digest=%s prev=%s txs=%d\n", b.Index, b.Digest, b.PrevDigest, len(b.Transactions))

	for j, tx := range b.Transactions {
		sh.o.Printf("  tx %d digest=%s prev=%s signer=%s\n", j, tx.Digest, tx.PrevDigest, tx.Signer.Scheme())
	}

	return nil
}

func (sh *shell) cmdVerify(args []string) error {
	since, err := optionalInt(args, 0)
	if err != nil {
		return err
	}

	s, err := sh.live()
	if err != nil {
		return err
	}

	err = s.Verify(since)
	if err != nil {
		return err
	}

	tip, err := s.Tip()
	if err != nil {
		return err
	}

	sh.o.Printf("ok: blocks %d..%d verified\n", since, tip.Len)

	return nil
}

func (sh *shell) cmdStats() error {
	s, err := sh.live()
	if err != nil {
		return err
	}

	n, err := s.Len()
	if err != nil {
		return err
	}

	st := s.Stats()

	sh.o.Printf("publishes=%d front=%d\n", n, s.Front())
	sh.o.Printf("replays=%d drain_spins=%d drain_backoffs=%d\n", st.Replays, st.DrainSpins, st.DrainBackoffs)
	sh.o.Printf("reads=%d read_retries=%d peak_readers=%d\n", st.Reads, st.ReadRetries, st.PeakReaders)

	return nil
}

func (sh *shell) cmdSet(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: set <setting> <value>")
	}

	name := strings.ReplaceAll(args[0], "_", "-")

	fl := sh.flags.fs.Lookup(name)
	if fl == nil {
		return fmt.Errorf("unknown setting: %s", args[0])
	}

	old := fl.Value.String()

	err := sh.flags.fs.Set(name, args[1])
	if err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}

	// A value the config rejects is rolled back where it was typed.
	_, err = sh.config()
	if err != nil {
		_ = sh.flags.fs.Set(name, old)

		return err
	}

	if sessionSettings[name] && sh.session != nil {
		sh.session = nil
		sh.o.Println("session reset")
	}

	return nil
}

func (sh *shell) cmdRun(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return errors.New("usage: run [mode]")
	}

	overrides, err := sh.flags.overrides()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		mode, parseErr := bench.ParseMode(args[0])
		if parseErr != nil {
			return parseErr
		}

		overrides.Mode = &mode
	}

	cfg, err := sh.app.loadConfig(overrides)
	if err != nil {
		return err
	}

	return sh.app.execute(ctx, sh.o, cfg, false)
}

func (sh *shell) printHelp() {
	sh.o.Println(`Commands:
  publish [n]            Seal and publish n blocks (default 1)
  tip                    Show the published tip
  block <index>          Show a published block
  verify [since]         Verify the published ledger from block since
  stats                  Show register counters
  reset                  Drop the live ledger
  set <setting> <value>  Change a setting (same names as the flags)
  config                 Show the effective settings
  run [mode]             Run the benchmark with the current settings
  stress                 Run the stress test with the current settings
  help                   Show this help
  exit / quit / q        Exit`)
}

func optionalInt(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}

	if len(args) > 1 {
		return 0, fmt.Errorf("%w: %v", ErrUnexpectedArgs, args[1:])
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid count %q", args[0])
	}

	return n, nil
}

// lineReader picks liner when the shell reads from a terminal.
func (a *app) lineReader() lineReader {
	f, ok := a.in.(*os.File)
	if ok && isatty.IsTerminal(f.Fd()) {
		return newLinerReader(a.historyFile())
	}

	return &scanReader{sc: bufio.NewScanner(a.in)}
}

func (a *app) historyFile() string {
	if home := a.env["HOME"]; home != "" {
		return filepath.Join(home, ".superposition_history")
	}

	return ""
}

type linerReader struct {
	*liner.State

	history string
}

func newLinerReader(history string) *linerReader {
	st := liner.NewLiner()
	st.SetCtrlCAborts(true)
	st.SetCompleter(func(line string) []string {
		var completions []string

		lower := strings.ToLower(line)
		for _, cmd := range shellCommands {
			if strings.HasPrefix(cmd, lower) {
				completions = append(completions, cmd)
			}
		}

		return completions
	})

	if history != "" {
		if f, err := os.Open(history); err == nil {
			_, _ = st.ReadHistory(f)
			_ = f.Close()
		}
	}

	return &linerReader{State: st, history: history}
}

// Close saves history and restores the terminal.
func (r *linerReader) Close() error {
	if r.history != "" {
		if f, err := os.Create(r.history); err == nil {
			_, _ = r.WriteHistory(f)
			_ = f.Close()
		}
	}

	return r.State.Close()
}

type scanReader struct {
	sc *bufio.Scanner
}

func (r *scanReader) Prompt(string) (string, error) {
	if r.sc.Scan() {
		return r.sc.Text(), nil
	}

	err := r.sc.Err()
	if err != nil {
		return "", err
	}

	return "", io.EOF
}

func (r *scanReader) AppendHistory(string) {}

func (r *scanReader) Close() error { return nil }
