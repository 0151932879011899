package bench_test

import (
	"crypto/rand"
	"testing"

	"github.com/mchalapuk/super-position-benchmark/internal/bench"
	"github.com/mchalapuk/super-position-benchmark/pkg/ledger"
)

func Test_TxStream_Repeats_Picks_When_Seed_And_Cycle_Match(t *testing.T) {
	t.Parallel()

	keys, err := ledger.GenerateKeys(ledger.SchemeEd25519, 5, rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKeys: %v", err)
	}

	const cycle = 16

	a := bench.NewTxStream(keys, 42, cycle)
	b := bench.NewTxStream(keys, 42, cycle)

	first := make([]*ledger.KeyPair, cycle)

	for i := range cycle {
		first[i] = a.Next()

		if got := b.Next(); got != first[i] {
			t.Fatalf("pick %d differs between streams with the same seed", i)
		}
	}

	// The stream cycles.
	for i := range cycle {
		if got := a.Next(); got != first[i] {
			t.Fatalf("pick %d of second cycle differs from first cycle", i)
		}
	}
}
