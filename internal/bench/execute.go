package bench

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mchalapuk/super-position-benchmark/pkg/ledger"
)

// setup generates the signer keys and the transaction stream of cfg.
func setup(cfg Config, logger zerolog.Logger) (*TxStream, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	start := time.Now()

	keys, err := ledger.GenerateKeys(cfg.Scheme, cfg.Keys, rand.Reader)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Stringer("scheme", cfg.Scheme).
		Int("keys", len(keys)).
		Uint64("seed", seed).
		Dur("took", time.Since(start)).
		Msg("keys generated")

	return NewTxStream(keys, seed, 0), nil
}

// Execute runs every runner selected by cfg.Mode cfg.Repeat times and writes
// the report to cfg.ReportAbs when set.
func Execute(ctx context.Context, cfg Config, logger zerolog.Logger, hooks Hooks) (*Report, error) {
	report := NewReport(cfg)
	logger = logger.With().Str("run_id", report.RunID.String()).Logger()

	runners, err := cfg.Mode.Runners()
	if err != nil {
		return nil, err
	}

	stream, err := setup(cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("mode", string(cfg.Mode)).
		Int("block_size", cfg.BlockSize).
		Int("chain_length", cfg.ChainLength).
		Int("readers", cfg.Readers).
		Int("repeat", cfg.Repeat).
		Msg("run started")

	for run := range cfg.Repeat {
		for _, runner := range runners {
			runLogger := logger.With().Str("mode", string(runner.Mode())).Int("run", run).Logger()

			res, runErr := runner.Run(ctx, Params{
				BlockSize:    cfg.BlockSize,
				ChainLength:  cfg.ChainLength,
				Readers:      cfg.Readers,
				PollInterval: cfg.PollInterval.Duration,
				DrainTimeout: cfg.DrainTimeout.Duration,
				FinalVerify:  cfg.FinalVerify,
				Stream:       stream,
				Logger:       runLogger,
				Hooks:        hooks,
			})
			if runErr != nil {
				runLogger.Error().Err(runErr).Msg("run failed")

				return report, fmt.Errorf("%s run %d: %w", runner.Mode(), run, runErr)
			}

			res.Run = run
			report.Results = append(report.Results, res)
			hooks.runFinished(res)

			runLogger.Info().
				Int("length", res.Length).
				Int("transactions", res.Transactions).
				Dur("elapsed", res.Elapsed).
				Dur("cpu", res.CPU.Total()).
				Msg("run finished")
		}
	}

	err = writeReportIfSet(cfg, report, logger)
	if err != nil {
		return report, err
	}

	return report, nil
}

// ExecuteStress runs [Stress] with the stress settings of cfg.
func ExecuteStress(ctx context.Context, cfg Config, logger zerolog.Logger, hooks Hooks) (*Report, error) {
	report := NewReport(cfg)
	logger = logger.With().Str("run_id", report.RunID.String()).Str("mode", "stress").Logger()

	stream, err := setup(cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Dur("duration", cfg.StressDuration.Duration).
		Int("readers", cfg.StressReaders).
		Int("block_size", cfg.BlockSize).
		Msg("stress started")

	res, err := Stress(ctx, StressParams{
		Duration:     cfg.StressDuration.Duration,
		BlockSize:    cfg.BlockSize,
		Readers:      cfg.StressReaders,
		DrainTimeout: cfg.DrainTimeout.Duration,
		Stream:       stream,
		Logger:       logger,
		Hooks:        hooks,
	})
	report.Stress = &res

	if err != nil {
		logger.Error().Err(err).Int64("overlaps", res.Overlaps).Msg("stress failed")

		return report, err
	}

	logger.Info().
		Int("length", res.Length).
		Uint64("spawned", res.Spawned).
		Uint64("polls", res.Polls).
		Dur("elapsed", res.Elapsed).
		Msg("stress finished")

	err = writeReportIfSet(cfg, report, logger)
	if err != nil {
		return report, err
	}

	return report, nil
}

func writeReportIfSet(cfg Config, report *Report, logger zerolog.Logger) error {
	if cfg.ReportAbs == "" {
		return nil
	}

	err := WriteReport(cfg.ReportAbs, report)
	if err != nil {
		return err
	}

	logger.Info().Str("path", cfg.ReportAbs).Msg("report written")

	return nil
}
