package ledger

import "fmt"

// Tip summarizes the end of a ledger: what the next block must link to.
type Tip struct {
	Len         int
	BlockDigest Digest
	TxDigest    Digest
}

// Ledger is an append-only sequence of blocks.
type Ledger struct {
	blocks []*Block
	txs    int
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Factory returns a new empty ledger. It matches the factory signature of a
// publish register.
func Factory() (*Ledger, error) {
	return New(), nil
}

// Len returns the number of blocks.
func (l *Ledger) Len() int {
	return len(l.blocks)
}

// Transactions returns the total number of transactions.
func (l *Ledger) Transactions() int {
	return l.txs
}

// Block returns block i.
func (l *Ledger) Block(i int) (*Block, error) {
	if i < 0 || i >= len(l.blocks) {
		return nil, fmt.Errorf("%w: block %d of %d", ErrOutOfRange, i, len(l.blocks))
	}

	return l.blocks[i], nil
}

// Tip returns the end of the ledger. The tip of an empty ledger is all zero.
func (l *Ledger) Tip() Tip {
	if len(l.blocks) == 0 {
		return Tip{}
	}

	return TipAfter(l.blocks[len(l.blocks)-1])
}

// Append adds block to the end. The ledger is unchanged when block does not
// continue it.
func (l *Ledger) Append(block *Block) error {
	if block == nil || len(block.Transactions) == 0 {
		return ErrEmptyBlock
	}

	tip := l.Tip()

	if block.Index != tip.Len {
		return fmt.Errorf("%w: block index %d, ledger length %d", ErrBrokenLink, block.Index, tip.Len)
	}

	if block.PrevDigest != tip.BlockDigest {
		return fmt.Errorf("%w: previous block digest %s, tip %s", ErrBrokenLink, block.PrevDigest, tip.BlockDigest)
	}

	if first := block.Transactions[0].PrevDigest; first != tip.TxDigest {
		return fmt.Errorf("%w: first transaction chains from %s, tip %s", ErrBrokenLink, first, tip.TxDigest)
	}

	l.blocks = append(l.blocks, block)
	l.txs += len(block.Transactions)

	return nil
}

// Verify recomputes digests, validates signatures and checks chain links of
// every block from since onward. Block since is checked against the stored
// digests of block since-1, which is not re-verified.
//
// The first failure is returned as a [*VerificationError].
func (l *Ledger) Verify(since int) error {
	if since < 0 || since > len(l.blocks) {
		return fmt.Errorf("%w: verify since %d of %d", ErrOutOfRange, since, len(l.blocks))
	}

	var prevBlock, prevTx Digest

	if since > 0 {
		tail := l.blocks[since-1]
		prevBlock = tail.Digest
		prevTx = tail.LastTxDigest()
	}

	for i := since; i < len(l.blocks); i++ {
		b := l.blocks[i]

		err := b.verify(i, prevBlock, prevTx)
		if err != nil {
			return err
		}

		prevBlock = b.Digest
		prevTx = b.LastTxDigest()
	}

	return nil
}

// VerifyLast verifies the last block only.
func (l *Ledger) VerifyLast() error {
	if len(l.blocks) == 0 {
		return fmt.Errorf("%w: ledger is empty", ErrOutOfRange)
	}

	return l.Verify(len(l.blocks) - 1)
}
