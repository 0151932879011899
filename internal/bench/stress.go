package bench

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mchalapuk/super-position-benchmark/pkg/ledger"
	"github.com/mchalapuk/super-position-benchmark/pkg/superposition"
)

// stressTailBlocks is how many trailing blocks a short-lived reader verifies.
const stressTailBlocks = 4

// readsPerStressReader is how many queries a short-lived reader runs before it
// exits.
const readsPerStressReader = 8

// probe is a ledger that records mutations overlapping with readers.
type probe struct {
	l        *ledger.Ledger
	inside   atomic.Int32
	overlaps *atomic.Int64
}

func newProbeFactory(overlaps *atomic.Int64) func() (*probe, error) {
	return func() (*probe, error) {
		return &probe{l: ledger.New(), overlaps: overlaps}, nil
	}
}

func (p *probe) Len() int { return p.l.Len() }

func (p *probe) Verify(since int) error { return p.l.Verify(since) }

// enter marks a query as running on p and returns the func that unmarks it.
func (p *probe) enter() func() {
	p.inside.Add(1)

	return func() { p.inside.Add(-1) }
}

func (p *probe) checkExclusive() {
	if p.inside.Load() != 0 {
		p.overlaps.Add(1)
	}
}

func (p *probe) appendBlock(block *ledger.Block) error {
	p.checkExclusive()
	defer p.checkExclusive()

	return p.l.Append(block)
}

// StressParams are the inputs of [Stress].
type StressParams struct {
	Duration     time.Duration
	BlockSize    int
	Readers      int
	DrainTimeout time.Duration
	Stream       *TxStream
	Logger       zerolog.Logger
	Hooks        Hooks
}

// StressResult describes a stress run.
type StressResult struct {
	Elapsed time.Duration
	Length  int
	// Spawned counts short-lived readers.
	Spawned  uint64
	Polls    uint64
	Overlaps int64
	Stats    superposition.Stats
}

// Stress races a mover publishing blocks as fast as it can against waves of
// short-lived readers for p.Duration. Each short-lived reader checks that the
// length it observes never goes back and verifies the trailing blocks. One
// long-lived auditor verifies every block incrementally.
//
// Returns an error wrapping [ErrDrainViolation] if a mutation ever overlapped
// a query on the same slot.
func Stress(ctx context.Context, p StressParams) (StressResult, error) {
	var overlaps atomic.Int64

	reg, err := superposition.New(newProbeFactory(&overlaps), superposition.WithDrainTimeout(p.DrainTimeout))
	if err != nil {
		return StressResult{}, err
	}

	p.Hooks.registerStarted(ModeRegister, reg.Stats)

	runCtx, cancel := context.WithTimeout(ctx, p.Duration)
	defer cancel()

	var spawned, polls atomic.Uint64

	start := time.Now()

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		return stressMover(gctx, reg.Mover(), p)
	})

	g.Go(func() error {
		return stressAuditor(gctx, reg.Reader(), &polls)
	})

	g.Go(func() error {
		return stressWaves(gctx, reg, p.Readers, &spawned, &polls)
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return StressResult{}, err
	}

	// The deadline ending the run is the normal way out. A canceled parent
	// is not.
	if ctx.Err() != nil {
		return StressResult{}, ctx.Err()
	}

	p.Logger.Debug().Int64("overlaps", overlaps.Load()).Uint64("spawned", spawned.Load()).Msg("stress roles stopped")

	res := StressResult{
		Elapsed:  time.Since(start),
		Spawned:  spawned.Load(),
		Polls:    polls.Load(),
		Overlaps: overlaps.Load(),
		Stats:    reg.Stats(),
	}

	res.Length, err = superposition.ReadValue(reg.Reader(), func(pr *probe) (int, error) {
		return pr.Len(), pr.Verify(0)
	})
	if err != nil {
		return res, err
	}

	if res.Overlaps != 0 {
		return res, fmt.Errorf("%w: %d times", ErrDrainViolation, res.Overlaps)
	}

	return res, nil
}

func stressMover(ctx context.Context, mover *superposition.Mover[*probe], p StressParams) error {
	b := ledger.NewBuilder(ledger.Digest{})

	for ctx.Err() == nil {
		tip, err := superposition.StageValue(mover, func(pr *probe) (ledger.Tip, error) {
			return pr.l.Tip(), nil
		})
		if err != nil {
			return err
		}

		err = p.Stream.fill(b, p.BlockSize)
		if err != nil {
			return err
		}

		block, err := b.Seal(tip)
		if err != nil {
			return err
		}

		err = mover.Publish(ctx, func(pr *probe) error { return pr.appendBlock(block) })
		if err != nil {
			return err
		}
	}

	return ctx.Err()
}

// stressAuditor verifies every published block exactly once.
func stressAuditor(ctx context.Context, reader *superposition.Reader[*probe], polls *atomic.Uint64) error {
	var v ledger.Verifier

	for ctx.Err() == nil {
		_, err := superposition.ReadValue(reader, func(pr *probe) (int, error) {
			defer pr.enter()()

			return v.Check(pr.l)
		})
		if err != nil {
			return fmt.Errorf("auditor: %w", err)
		}

		polls.Add(1)
	}

	return ctx.Err()
}

// stressWaves spawns waves of short-lived readers until ctx is done.
func stressWaves(ctx context.Context, reg *superposition.Register[*probe], readers int, spawned, polls *atomic.Uint64) error {
	var (
		mu       sync.Mutex
		firstErr error
	)

	for ctx.Err() == nil {
		var wave sync.WaitGroup

		for range readers {
			spawned.Add(1)

			wave.Go(func() {
				err := stressReader(reg.Reader(), polls)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			})
		}

		wave.Wait()

		if firstErr != nil {
			return firstErr
		}
	}

	return ctx.Err()
}

func stressReader(reader *superposition.Reader[*probe], polls *atomic.Uint64) error {
	last := 0

	for range readsPerStressReader {
		n, err := superposition.ReadValue(reader, func(pr *probe) (int, error) {
			defer pr.enter()()

			n := pr.Len()

			return n, pr.Verify(max(0, n-stressTailBlocks))
		})
		if err != nil {
			return fmt.Errorf("short-lived reader: %w", err)
		}

		polls.Add(1)

		if n < last {
			return fmt.Errorf("short-lived reader: %w: length %d after %d", ledger.ErrRegressed, n, last)
		}

		last = n
	}

	return nil
}
