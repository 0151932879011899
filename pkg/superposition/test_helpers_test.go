package superposition_test

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var errSeqMismatch = errors.New("seq mismatch")

// seqLog is a minimal value: vals[i] must equal i.
//
// inside counts read queries currently running on this instance; mutators
// record an overlap when they start or finish while a query is inside.
type seqLog struct {
	vals     []int
	inside   atomic.Int32
	overlaps *atomic.Int64
}

func newSeqLogFactory(overlaps *atomic.Int64) func() (*seqLog, error) {
	return func() (*seqLog, error) {
		return &seqLog{overlaps: overlaps}, nil
	}
}

func (l *seqLog) Len() int { return len(l.vals) }

func (l *seqLog) Verify(since int) error {
	for i := since; i < len(l.vals); i++ {
		if l.vals[i] != i {
			return fmt.Errorf("%w at %d: got %d", errSeqMismatch, i, l.vals[i])
		}
	}

	return nil
}

// appendN returns a deterministic mutator appending n consecutive values.
func appendN(n int) func(*seqLog) error {
	return func(l *seqLog) error {
		l.checkExclusive()

		for range n {
			l.vals = append(l.vals, len(l.vals))
		}

		l.checkExclusive()

		return nil
	}
}

func (l *seqLog) checkExclusive() {
	if l.inside.Load() != 0 && l.overlaps != nil {
		l.overlaps.Add(1)
	}
}

// observe is a read query that marks itself inside the instance while it
// verifies the full prefix.
func observe(l *seqLog) (int, error) {
	l.inside.Add(1)
	defer l.inside.Add(-1)

	return l.Len(), l.Verify(0)
}
