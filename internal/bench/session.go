package bench

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mchalapuk/super-position-benchmark/pkg/ledger"
	"github.com/mchalapuk/super-position-benchmark/pkg/superposition"
)

// Session is a live register over a ledger that is driven step by step, as
// the interactive shell does. The caller acts as the mover; reads go through
// the register like any other reader.
//
// A Session is owned by one goroutine.
type Session struct {
	reg       *superposition.Register[*ledger.Ledger]
	mover     *superposition.Mover[*ledger.Ledger]
	reader    *superposition.Reader[*ledger.Ledger]
	stream    *TxStream
	builder   *ledger.Builder
	blockSize int
	logger    zerolog.Logger
}

// NewSession generates keys for cfg and returns a session over an empty
// ledger.
func NewSession(cfg Config, logger zerolog.Logger) (*Session, error) {
	stream, err := setup(cfg, logger)
	if err != nil {
		return nil, err
	}

	reg, err := superposition.New(ledger.Factory, superposition.WithDrainTimeout(cfg.DrainTimeout.Duration))
	if err != nil {
		return nil, err
	}

	return &Session{
		reg:       reg,
		mover:     reg.Mover(),
		reader:    reg.Reader(),
		stream:    stream,
		builder:   ledger.NewBuilder(ledger.Digest{}),
		blockSize: cfg.BlockSize,
		logger:    logger,
	}, nil
}

// Publish seals and publishes n blocks. It stops at the first error and
// returns the tip reached so far.
func (s *Session) Publish(ctx context.Context, n int) (ledger.Tip, error) {
	tip, err := s.Tip()
	if err != nil {
		return ledger.Tip{}, err
	}

	for range n {
		next, pubErr := publishNext(ctx, s.mover, s.builder, s.stream, s.blockSize)
		if pubErr != nil {
			s.builder = ledger.NewBuilder(tip.TxDigest)

			return tip, pubErr
		}

		tip = next

		s.logger.Debug().Int("length", tip.Len).Stringer("digest", tip.BlockDigest).Msg("block published")
	}

	return tip, nil
}

// Tip returns the tip of the published ledger.
func (s *Session) Tip() (ledger.Tip, error) {
	return superposition.ReadValue(s.reader, func(l *ledger.Ledger) (ledger.Tip, error) {
		return l.Tip(), nil
	})
}

// Block returns published block i.
func (s *Session) Block(i int) (*ledger.Block, error) {
	return superposition.ReadValue(s.reader, func(l *ledger.Ledger) (*ledger.Block, error) {
		return l.Block(i)
	})
}

// Verify re-verifies the published ledger from block since on.
func (s *Session) Verify(since int) error {
	return s.reader.Read(func(l *ledger.Ledger) error {
		return l.Verify(since)
	})
}

// Len returns the number of publishes so far.
func (s *Session) Len() (int, error) {
	return s.reg.Len()
}

// Front returns the index of the slot readers currently enter.
func (s *Session) Front() int {
	return s.reg.Front()
}

// Stats returns the register counters.
func (s *Session) Stats() superposition.Stats {
	return s.reg.Stats()
}

// String describes the session settings.
func (s *Session) String() string {
	return fmt.Sprintf("keys=%d block_size=%d", len(s.stream.keys), s.blockSize)
}
