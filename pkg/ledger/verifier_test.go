package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mchalapuk/super-position-benchmark/pkg/ledger"
)

func Test_Verifier_Checks_Each_Block_Once_When_Ledger_Grows(t *testing.T) {
	t.Parallel()

	keys := mustKeys(t, ledger.SchemeEd25519, 3)
	l := ledger.New()

	var v ledger.Verifier

	for round := range 5 {
		for range round {
			require.NoError(t, l.Append(sealNext(t, l.Tip(), keys, 2)))
		}

		n, err := v.Check(l)
		require.NoError(t, err)

		if n != l.Len() || v.Next() != l.Len() {
			t.Fatalf("round %d: Check=%d Next=%d, want both=%d", round, n, v.Next(), l.Len())
		}
	}

	if got, want := v.Checked(), l.Len(); got != want {
		t.Fatalf("Checked=%d, want=%d (no block verified twice)", got, want)
	}
}

func Test_Verifier_Returns_ErrRegressed_When_Ledger_Shorter_Than_Checked(t *testing.T) {
	t.Parallel()

	keys := mustKeys(t, ledger.SchemeEd25519, 1)

	var v ledger.Verifier

	_, err := v.Check(buildLedger(t, keys, 3, 1))
	require.NoError(t, err)

	_, err = v.Check(buildLedger(t, keys, 2, 1))
	require.ErrorIs(t, err, ledger.ErrRegressed)
}

func Test_Verifier_Stays_Put_When_New_Block_Fails(t *testing.T) {
	t.Parallel()

	keys := mustKeys(t, ledger.SchemeEd25519, 2)
	l := buildLedger(t, keys, 2, 2)

	var v ledger.Verifier

	_, err := v.Check(l)
	require.NoError(t, err)

	require.NoError(t, l.Append(sealNext(t, l.Tip(), keys, 2)))
	ledger.CorruptTxDigest(l, 2, 1)

	_, err = v.Check(l)
	require.ErrorIs(t, err, ledger.ErrVerification)

	if got, want := v.Next(), 2; got != want {
		t.Fatalf("Next=%d, want=%d", got, want)
	}
}
