package bench

import (
	"math/rand/v2"

	"github.com/mchalapuk/super-position-benchmark/pkg/ledger"
)

// defaultStreamCycle is the number of signer picks before a stream repeats.
const defaultStreamCycle = 1 << 16

// TxStream hands out signers for new transactions. Picks are drawn once from
// a seeded generator and then cycled, so a run does not pay for randomness.
//
// A TxStream is owned by one goroutine.
type TxStream struct {
	keys  []*ledger.KeyPair
	picks []uint32
	pos   int
}

// NewTxStream returns a stream over keys with cycle picks. A cycle <= 0
// selects the default.
func NewTxStream(keys []*ledger.KeyPair, seed uint64, cycle int) *TxStream {
	if cycle <= 0 {
		cycle = defaultStreamCycle
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	picks := make([]uint32, cycle)
	for i := range picks {
		picks[i] = uint32(rng.IntN(len(keys)))
	}

	return &TxStream{keys: keys, picks: picks}
}

// Next returns the signer of the next transaction.
func (s *TxStream) Next() *ledger.KeyPair {
	k := s.keys[s.picks[s.pos]]

	s.pos++
	if s.pos == len(s.picks) {
		s.pos = 0
	}

	return k
}

// fill adds transactions to b until it holds size of them.
func (s *TxStream) fill(b *ledger.Builder, size int) error {
	for b.Len() < size {
		err := b.Add(s.Next())
		if err != nil {
			return err
		}
	}

	return nil
}
