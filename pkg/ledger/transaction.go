package ledger

import "fmt"

// Transaction is one signed link of the transaction chain.
type Transaction struct {
	Signer     *PublicKey
	PrevDigest Digest
	Digest     Digest
	Signature  []byte
}

// TransactionDigest is SHA-256(prev || PKIX(signer)).
func TransactionDigest(prev Digest, signer *PublicKey) Digest {
	return hashParts(prev[:], signer.Encoded())
}

// SignTransaction builds the transaction of key chaining from prev.
func SignTransaction(key *KeyPair, prev Digest) (Transaction, error) {
	d := TransactionDigest(prev, key.Public)

	sig, err := key.Sign(d)
	if err != nil {
		return Transaction{}, fmt.Errorf("sign transaction: %w", err)
	}

	return Transaction{
		Signer:     key.Public,
		PrevDigest: prev,
		Digest:     d,
		Signature:  sig,
	}, nil
}

// check recomputes the digest and validates the signature. The returned
// string is empty on success.
func (tx *Transaction) check() string {
	if tx.Signer == nil {
		return "missing signer"
	}

	if got := TransactionDigest(tx.PrevDigest, tx.Signer); got != tx.Digest {
		return fmt.Sprintf("digest mismatch: stored %s, calculated %s", tx.Digest, got)
	}

	if !tx.Signer.verify(tx.Digest, tx.Signature) {
		return "signature mismatch"
	}

	return ""
}
