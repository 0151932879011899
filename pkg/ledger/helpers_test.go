package ledger_test

import (
	"crypto/rand"
	"testing"

	"github.com/mchalapuk/super-position-benchmark/pkg/ledger"
)

func mustKeys(t *testing.T, scheme ledger.Scheme, n int) []*ledger.KeyPair {
	t.Helper()

	keys, err := ledger.GenerateKeys(scheme, n, rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKeys(%s, %d): %v", scheme, n, err)
	}

	return keys
}

// sealNext builds a block of size transactions continuing tip, cycling over keys.
func sealNext(t *testing.T, tip ledger.Tip, keys []*ledger.KeyPair, size int) *ledger.Block {
	t.Helper()

	b := ledger.NewBuilder(tip.TxDigest)

	for i := range size {
		err := b.Add(keys[(tip.Len*size+i)%len(keys)])
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	block, err := b.Seal(tip)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	return block
}

func buildLedger(t *testing.T, keys []*ledger.KeyPair, blocks, size int) *ledger.Ledger {
	t.Helper()

	l := ledger.New()

	for range blocks {
		err := l.Append(sealNext(t, l.Tip(), keys, size))
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	return l
}
