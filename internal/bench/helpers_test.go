package bench_test

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/mchalapuk/super-position-benchmark/internal/bench"
	"github.com/mchalapuk/super-position-benchmark/pkg/ledger"
)

func newStream(t *testing.T, keys int, seed uint64) *bench.TxStream {
	t.Helper()

	kps, err := ledger.GenerateKeys(ledger.SchemeEd25519, keys, rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKeys: %v", err)
	}

	return bench.NewTxStream(kps, seed, 0)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	err = os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
