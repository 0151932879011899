package ledger

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"
	"io"
	"strings"
)

// Scheme selects the signature algorithm of a key pair.
type Scheme uint8

const (
	// SchemeEd25519 signs the transaction digest with Ed25519.
	SchemeEd25519 Scheme = iota
	// SchemeRSA signs SHA-256 of the transaction digest with RSA-2048
	// PKCS #1 v1.5.
	SchemeRSA
)

const rsaBits = 2048

// ParseScheme parses "ed25519" or "rsa".
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ed25519", "":
		return SchemeEd25519, nil
	case "rsa":
		return SchemeRSA, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, s)
	}
}

func (s Scheme) String() string {
	switch s {
	case SchemeEd25519:
		return "ed25519"
	case SchemeRSA:
		return "rsa"
	default:
		return fmt.Sprintf("scheme(%d)", uint8(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Scheme) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scheme) UnmarshalText(text []byte) error {
	parsed, err := ParseScheme(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// PublicKey is the verifying half of a key pair together with its PKIX (DER)
// encoding, which is what transaction digests commit to.
type PublicKey struct {
	scheme  Scheme
	key     crypto.PublicKey
	encoded []byte
}

// Scheme returns the signature scheme of the key.
func (p *PublicKey) Scheme() Scheme { return p.scheme }

// Encoded returns the PKIX encoding. The slice must not be modified.
func (p *PublicKey) Encoded() []byte { return p.encoded }

func (p *PublicKey) verify(d Digest, sig []byte) bool {
	switch p.scheme {
	case SchemeEd25519:
		pub, ok := p.key.(ed25519.PublicKey)

		return ok && ed25519.Verify(pub, d[:], sig)
	case SchemeRSA:
		pub, ok := p.key.(*rsa.PublicKey)
		if !ok {
			return false
		}

		hashed := sha256.Sum256(d[:])

		return rsa.VerifyPKCS1v15(pub, crypto.SHA256, hashed[:], sig) == nil
	default:
		return false
	}
}

// KeyPair signs transactions.
type KeyPair struct {
	Public *PublicKey

	ed  ed25519.PrivateKey
	rsa *rsa.PrivateKey
}

// GenerateKey creates a key pair for scheme, reading entropy from random.
func GenerateKey(scheme Scheme, random io.Reader) (*KeyPair, error) {
	var (
		kp  KeyPair
		pub crypto.PublicKey
	)

	switch scheme {
	case SchemeEd25519:
		edPub, edPriv, err := ed25519.GenerateKey(random)
		if err != nil {
			return nil, fmt.Errorf("generate ed25519 key: %w", err)
		}

		kp.ed = edPriv
		pub = edPub
	case SchemeRSA:
		rsaPriv, err := rsa.GenerateKey(random, rsaBits)
		if err != nil {
			return nil, fmt.Errorf("generate rsa key: %w", err)
		}

		kp.rsa = rsaPriv
		pub = &rsaPriv.PublicKey
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownScheme, scheme)
	}

	encoded, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("encode %s public key: %w", scheme, err)
	}

	kp.Public = &PublicKey{scheme: scheme, key: pub, encoded: encoded}

	return &kp, nil
}

// GenerateKeys creates n key pairs of the same scheme.
func GenerateKeys(scheme Scheme, n int, random io.Reader) ([]*KeyPair, error) {
	if n <= 0 {
		return nil, fmt.Errorf("key count must be > 0, got %d", n)
	}

	keys := make([]*KeyPair, 0, n)

	for i := range n {
		kp, err := GenerateKey(scheme, random)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}

		keys = append(keys, kp)
	}

	return keys, nil
}

// Sign signs d. Safe for concurrent use.
func (k *KeyPair) Sign(d Digest) ([]byte, error) {
	switch k.Public.scheme {
	case SchemeEd25519:
		return ed25519.Sign(k.ed, d[:]), nil
	case SchemeRSA:
		hashed := sha256.Sum256(d[:])

		sig, err := rsa.SignPKCS1v15(nil, k.rsa, crypto.SHA256, hashed[:])
		if err != nil {
			return nil, fmt.Errorf("rsa sign: %w", err)
		}

		return sig, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownScheme, k.Public.scheme)
	}
}
