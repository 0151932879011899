package ledger

import "fmt"

// Builder collects signed transactions for the next block.
//
// A Builder is owned by one goroutine.
type Builder struct {
	prevTx Digest
	txs    []Transaction
}

// NewBuilder starts a block whose first transaction chains from prevTx.
func NewBuilder(prevTx Digest) *Builder {
	return &Builder{prevTx: prevTx}
}

// Add signs a transaction of key chaining from the last one.
func (b *Builder) Add(key *KeyPair) error {
	tx, err := SignTransaction(key, b.LastDigest())
	if err != nil {
		return err
	}

	b.txs = append(b.txs, tx)

	return nil
}

// Len returns the number of transactions added so far.
func (b *Builder) Len() int {
	return len(b.txs)
}

// LastDigest returns the digest the next transaction chains from.
func (b *Builder) LastDigest() Digest {
	if len(b.txs) == 0 {
		return b.prevTx
	}

	return b.txs[len(b.txs)-1].Digest
}

// Seal produces the block continuing tip. The builder must have been started
// from tip.TxDigest. The builder is reset afterwards and continues the chain
// from the sealed block.
func (b *Builder) Seal(tip Tip) (*Block, error) {
	if len(b.txs) == 0 {
		return nil, ErrEmptyBlock
	}

	if b.txs[0].PrevDigest != tip.TxDigest {
		return nil, fmt.Errorf("%w: builder chains from %s, tip transaction is %s",
			ErrBrokenLink, b.txs[0].PrevDigest, tip.TxDigest)
	}

	block := &Block{
		Index:        tip.Len,
		PrevDigest:   tip.BlockDigest,
		Transactions: b.txs,
		Digest:       BlockDigest(tip.BlockDigest, b.txs),
	}

	b.prevTx = block.LastTxDigest()
	b.txs = nil

	return block, nil
}

// TipAfter returns the tip of a ledger whose last block is block.
func TipAfter(block *Block) Tip {
	return Tip{
		Len:         block.Index + 1,
		BlockDigest: block.Digest,
		TxDigest:    block.LastTxDigest(),
	}
}
