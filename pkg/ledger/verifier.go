package ledger

import "fmt"

// Verifier verifies a growing ledger incrementally: each block is verified
// exactly once across calls to [Verifier.Check].
//
// The zero value is ready to use. A Verifier is owned by one goroutine.
type Verifier struct {
	next    int
	checked int
}

// Check verifies the blocks of l appended since the previous call and returns
// the length of l.
func (v *Verifier) Check(l *Ledger) (int, error) {
	n := l.Len()
	if n < v.next {
		return n, fmt.Errorf("%w: length %d after %d", ErrRegressed, n, v.next)
	}

	if n == v.next {
		return n, nil
	}

	err := l.Verify(v.next)
	if err != nil {
		return n, err
	}

	v.checked += n - v.next
	v.next = n

	return n, nil
}

// Next returns the index of the first block not verified yet.
func (v *Verifier) Next() int { return v.next }

// Checked returns how many blocks were verified in total.
func (v *Verifier) Checked() int { return v.checked }
