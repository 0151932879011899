package ledger

// Block is a sealed, immutable group of transactions.
type Block struct {
	// Index is the position of the block in its ledger.
	Index int
	// PrevDigest is the digest of the previous block; zero for genesis.
	PrevDigest   Digest
	Transactions []Transaction
	Digest       Digest
}

// BlockDigest is SHA-256(prev || tx0.Digest || tx0.Signature || ...).
func BlockDigest(prev Digest, txs []Transaction) Digest {
	parts := make([][]byte, 0, 1+2*len(txs))
	parts = append(parts, prev[:])

	for i := range txs {
		parts = append(parts, txs[i].Digest[:], txs[i].Signature)
	}

	return hashParts(parts...)
}

// LastTxDigest returns the digest the next transaction chains from.
func (b *Block) LastTxDigest() Digest {
	return b.Transactions[len(b.Transactions)-1].Digest
}

// verify checks b against the tail it should continue: prevBlock and prevTx
// are the block and transaction digests of the preceding block.
func (b *Block) verify(index int, prevBlock, prevTx Digest) error {
	if b.Index != index {
		return blockFailure(index, "stored index %d", b.Index)
	}

	if b.PrevDigest != prevBlock {
		return blockFailure(index, "previous block digest %s, want %s", b.PrevDigest, prevBlock)
	}

	if len(b.Transactions) == 0 {
		return blockFailure(index, "no transactions")
	}

	chain := prevTx

	for i := range b.Transactions {
		tx := &b.Transactions[i]

		if tx.PrevDigest != chain {
			return txFailure(index, i, "previous digest %s, want %s", tx.PrevDigest, chain)
		}

		if reason := tx.check(); reason != "" {
			return txFailure(index, i, "%s", reason)
		}

		chain = tx.Digest
	}

	if got := BlockDigest(b.PrevDigest, b.Transactions); got != b.Digest {
		return blockFailure(index, "digest mismatch: stored %s, calculated %s", b.Digest, got)
	}

	return nil
}
