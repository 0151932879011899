package superposition_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mchalapuk/super-position-benchmark/pkg/superposition"
)

func Test_Read_Leaves_Slot_When_Query_Returns(t *testing.T) {
	t.Parallel()

	reg, err := superposition.New(newSeqLogFactory(nil))
	require.NoError(t, err)

	errQuery := errors.New("query failed")

	err = reg.Reader().Read(func(*seqLog) error {
		if got, want := superposition.SlotReaders(reg, reg.Front()), int64(1); got != want {
			t.Errorf("readers inside query=%d, want=%d", got, want)
		}

		return errQuery
	})
	require.ErrorIs(t, err, errQuery)

	for idx := range 2 {
		if got := superposition.SlotReaders(reg, idx); got != 0 {
			t.Fatalf("slot %d readers after Read=%d, want=0", idx, got)
		}
	}
}

func Test_Read_Leaves_Slot_When_Query_Panics(t *testing.T) {
	t.Parallel()

	reg, err := superposition.New(newSeqLogFactory(nil))
	require.NoError(t, err)

	func() {
		defer func() { _ = recover() }()

		_ = reg.Reader().Read(func(*seqLog) error { panic("query panic") })
	}()

	if got := superposition.SlotReaders(reg, reg.Front()); got != 0 {
		t.Fatalf("front readers after panic=%d, want=0", got)
	}

	// The mover is not stuck behind the panicked reader.
	require.NoError(t, reg.Mover().Publish(context.Background(), appendN(1)))
	require.NoError(t, reg.Mover().Publish(context.Background(), appendN(1)))
}

func Test_Read_Returns_ErrMisuse_And_Poisons_When_Query_Mutates(t *testing.T) {
	t.Parallel()

	reg, err := superposition.New(newSeqLogFactory(nil))
	require.NoError(t, err)

	err = reg.Reader().Read(func(l *seqLog) error {
		l.vals = append(l.vals, 0)

		return nil
	})
	require.ErrorIs(t, err, superposition.ErrMisuse)
	require.ErrorIs(t, reg.Mover().Publish(context.Background(), appendN(1)), superposition.ErrMisuse)
}

func Test_Read_Reaches_Target_Length_When_Mover_Publishes_Five_Single_Increments(t *testing.T) {
	t.Parallel()

	reg, err := superposition.New(newSeqLogFactory(nil))
	require.NoError(t, err)

	mover := reg.Mover()
	for range 5 {
		require.NoError(t, mover.Publish(context.Background(), appendN(1)))
	}

	reader := reg.Reader()

	n, err := superposition.ReadValue(reader, func(l *seqLog) (int, error) {
		return l.Len(), l.Verify(0)
	})
	require.NoError(t, err)

	if got, want := n, 5; got != want {
		t.Fatalf("Len=%d, want=%d", got, want)
	}
}

func Test_Read_Returns_ErrCorrupted_When_Query_Publishes_Twice_With_Drain_Timeout(t *testing.T) {
	t.Parallel()

	reg, err := superposition.New(newSeqLogFactory(nil),
		superposition.WithDrainSpins(0),
		superposition.WithDrainBackoff(50*time.Microsecond, time.Millisecond),
		superposition.WithDrainTimeout(20*time.Millisecond),
	)
	require.NoError(t, err)

	mover := reg.Mover()

	err = reg.Reader().Read(func(*seqLog) error {
		// The first publish drains the idle back slot; the second one drains
		// the slot this query is reading.
		pubErr := mover.Publish(context.Background(), appendN(1))
		if pubErr != nil {
			return pubErr
		}

		return mover.Publish(context.Background(), appendN(1))
	})
	require.ErrorIs(t, err, superposition.ErrCorrupted)
	require.ErrorContains(t, err, "slot 0")
	require.ErrorIs(t, reg.Err(), superposition.ErrCorrupted)

	if got := superposition.SlotReaders(reg, 0); got != 0 {
		t.Fatalf("slot 0 readers=%d after Read returned, want 0", got)
	}
}
