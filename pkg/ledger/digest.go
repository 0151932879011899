package ledger

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is a SHA-256 hash.
type Digest [sha256.Size]byte

// IsZero reports whether d is the zero digest genesis chains from.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// String returns the first 8 bytes in hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:8])
}

// hashParts returns SHA-256 over the concatenation of parts.
// A fresh hash.Hash per call keeps concurrent callers independent.
func hashParts(parts ...[]byte) Digest {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}

	var d Digest
	h.Sum(d[:0])

	return d
}
