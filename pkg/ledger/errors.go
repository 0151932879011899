package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrVerification indicates a digest, signature or chain link did not
	// check out. The concrete error is a [*VerificationError] naming the
	// offending block and transaction.
	//
	// Recovery: none. The ledger content is wrong.
	ErrVerification = errors.New("ledger: verification failed")

	// ErrBrokenLink indicates a block that does not continue the ledger it is
	// appended to.
	ErrBrokenLink = errors.New("ledger: block does not link to tip")

	// ErrEmptyBlock indicates an attempt to seal a block without transactions.
	ErrEmptyBlock = errors.New("ledger: empty block")

	// ErrOutOfRange indicates a block index outside the ledger.
	ErrOutOfRange = errors.New("ledger: index out of range")

	// ErrRegressed indicates a [Verifier] saw a ledger shorter than one it
	// already checked.
	ErrRegressed = errors.New("ledger: length regressed")

	// ErrUnknownScheme indicates an unsupported signature scheme name.
	ErrUnknownScheme = errors.New("ledger: unknown scheme")
)

// VerificationError reports the first element that failed verification.
type VerificationError struct {
	// Block is the index of the offending block.
	Block int
	// Tx is the index of the offending transaction within Block, or -1 when
	// the block itself is at fault.
	Tx     int
	Reason string
}

func (e *VerificationError) Error() string {
	if e.Tx < 0 {
		return fmt.Sprintf("%s: block %d: %s", ErrVerification, e.Block, e.Reason)
	}

	return fmt.Sprintf("%s: block %d tx %d: %s", ErrVerification, e.Block, e.Tx, e.Reason)
}

func (e *VerificationError) Unwrap() error {
	return ErrVerification
}

func blockFailure(block int, format string, args ...any) error {
	return &VerificationError{Block: block, Tx: -1, Reason: fmt.Sprintf(format, args...)}
}

func txFailure(block, tx int, format string, args ...any) error {
	return &VerificationError{Block: block, Tx: tx, Reason: fmt.Sprintf(format, args...)}
}
