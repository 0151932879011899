package ledger

// CorruptTxDigest replaces block blockIdx of l with a copy whose transaction
// txIdx has a flipped digest byte. Other ledgers sharing the block are not
// affected.
func CorruptTxDigest(l *Ledger, blockIdx, txIdx int) {
	corruptTx(l, blockIdx, txIdx, func(tx *Transaction) { tx.Digest[0] ^= 0xFF })
}

// CorruptSignature is like CorruptTxDigest but flips a signature byte.
func CorruptSignature(l *Ledger, blockIdx, txIdx int) {
	corruptTx(l, blockIdx, txIdx, func(tx *Transaction) {
		sig := append([]byte(nil), tx.Signature...)
		sig[len(sig)-1] ^= 0xFF
		tx.Signature = sig
	})
}

func corruptTx(l *Ledger, blockIdx, txIdx int, mutate func(*Transaction)) {
	orig := l.blocks[blockIdx]

	clone := *orig
	clone.Transactions = append([]Transaction(nil), orig.Transactions...)
	mutate(&clone.Transactions[txIdx])

	l.blocks[blockIdx] = &clone
}
