// Package ledger is an append-only, hash-chained ledger of signed
// transactions grouped into blocks.
//
// Every [Transaction] binds the digest of its predecessor to the public key of
// its signer, and is signed by that key. Every [Block] binds the digest of the
// previous block to the digests and signatures of its transactions.
// Transactions chain across block boundaries; the first transaction of the
// genesis block chains from the zero [Digest].
//
// # Basic Usage
//
//	keys, err := ledger.GenerateKeys(ledger.SchemeEd25519, 10, rand.Reader)
//	if err != nil {
//	    return err
//	}
//
//	l := ledger.New()
//	b := ledger.NewBuilder(l.Tip().TxDigest)
//	for _, k := range keys {
//	    if err := b.Add(k); err != nil {
//	        return err
//	    }
//	}
//
//	block, err := b.Seal(l.Tip())
//	if err != nil {
//	    return err
//	}
//
//	if err := l.Append(block); err != nil {
//	    return err
//	}
//
//	if err := l.Verify(0); err != nil {
//	    // errors.Is(err, ledger.ErrVerification)
//	}
//
// # Sharing
//
// A sealed [Block] is immutable and may be appended to several ledgers. Two
// ledgers that start empty and receive the same blocks in the same order are
// identical, which is what lets a *Ledger live inside a publish register.
//
// A [Ledger] itself is not safe for concurrent mutation. Verification only
// reads, and hashing and signing go through stateless calls, so any number of
// goroutines may verify one ledger while nobody appends to it.
package ledger
