package bench_test

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mchalapuk/super-position-benchmark/internal/bench"
	"github.com/mchalapuk/super-position-benchmark/pkg/ledger"
)

func newSession(t *testing.T) *bench.Session {
	t.Helper()

	cfg := bench.DefaultConfig()
	cfg.Keys = 3
	cfg.BlockSize = 2
	cfg.Seed = 7

	s, err := bench.NewSession(cfg, zerolog.Nop())
	require.NoError(t, err)

	return s
}

func Test_Session_Publishes_Verified_Blocks_When_Called_Repeatedly(t *testing.T) {
	t.Parallel()

	s := newSession(t)

	tip, err := s.Publish(t.Context(), 2)
	require.NoError(t, err)

	tip, err = s.Publish(t.Context(), 1)
	require.NoError(t, err)

	if tip.Len != 3 {
		t.Fatalf("tip.Len=%d, want 3", tip.Len)
	}

	got, err := s.Tip()
	require.NoError(t, err)
	require.Equal(t, tip, got)

	n, err := s.Len()
	require.NoError(t, err)
	require.Equal(t, 3, n)

	require.NoError(t, s.Verify(0))

	block, err := s.Block(2)
	require.NoError(t, err)

	if block.Index != 2 || len(block.Transactions) != 2 {
		t.Fatalf("block Index=%d txs=%d, want 2 and 2", block.Index, len(block.Transactions))
	}

	if s.Stats().Publishes != 3 {
		t.Fatalf("Publishes=%d, want 3", s.Stats().Publishes)
	}
}

func Test_Session_Block_Returns_ErrOutOfRange_When_Index_Past_Tip(t *testing.T) {
	t.Parallel()

	s := newSession(t)

	_, err := s.Block(0)
	if !errors.Is(err, ledger.ErrOutOfRange) {
		t.Fatalf("err=%v, want ErrOutOfRange", err)
	}

	err = s.Verify(1)
	if !errors.Is(err, ledger.ErrOutOfRange) {
		t.Fatalf("Verify(1) err=%v, want ErrOutOfRange", err)
	}
}
