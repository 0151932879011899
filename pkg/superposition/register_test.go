package superposition_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/mchalapuk/super-position-benchmark/pkg/superposition"
)

func Test_New_Returns_ErrConfiguration_When_Factory_Invalid(t *testing.T) {
	t.Parallel()

	shared := &seqLog{}
	errBoom := errors.New("boom")

	testCases := []struct {
		name    string
		factory func() (*seqLog, error)
	}{
		{name: "NilFactory", factory: nil},
		{name: "FactoryFails", factory: func() (*seqLog, error) { return nil, errBoom }},
		{name: "FactoryReturnsNil", factory: func() (*seqLog, error) { return nil, nil }},
		{name: "FactoryReturnsSharedInstance", factory: func() (*seqLog, error) { return shared, nil }},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := superposition.New(testCase.factory)
			require.ErrorIs(t, err, superposition.ErrConfiguration)
		})
	}
}

func Test_New_Wraps_Factory_Error_When_Factory_Fails(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	_, err := superposition.New(func() (*seqLog, error) { return nil, errBoom })
	require.ErrorIs(t, err, errBoom)
}

func Test_New_Returns_ErrConfiguration_When_Drain_Options_Invalid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		opt  superposition.Option
	}{
		{name: "NegativeSpins", opt: superposition.WithDrainSpins(-1)},
		{name: "ZeroBackoff", opt: superposition.WithDrainBackoff(0, time.Millisecond)},
		{name: "MaxBelowInitial", opt: superposition.WithDrainBackoff(time.Millisecond, time.Microsecond)},
		{name: "NegativeTimeout", opt: superposition.WithDrainTimeout(-time.Second)},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := superposition.New(newSeqLogFactory(nil), testCase.opt)
			require.ErrorIs(t, err, superposition.ErrConfiguration)
		})
	}
}

func Test_New_Starts_With_Slot_Zero_In_Front_And_Empty_Value(t *testing.T) {
	t.Parallel()

	reg, err := superposition.New(newSeqLogFactory(nil))
	require.NoError(t, err)

	if got, want := reg.Front(), 0; got != want {
		t.Fatalf("Front()=%d, want=%d", got, want)
	}

	n, err := reg.Len()
	require.NoError(t, err)

	if got, want := n, 0; got != want {
		t.Fatalf("Len()=%d, want=%d", got, want)
	}
}

func Test_Publish_Makes_Increment_Visible_When_Index_Flips(t *testing.T) {
	t.Parallel()

	reg, err := superposition.New(newSeqLogFactory(nil))
	require.NoError(t, err)

	mover := reg.Mover()
	reader := reg.Reader()

	for i := 1; i <= 5; i++ {
		require.NoError(t, mover.Publish(context.Background(), appendN(1)))

		if got, want := reg.Front(), i%2; got != want {
			t.Fatalf("after publish %d: Front()=%d, want=%d", i, got, want)
		}

		n, readErr := superposition.ReadValue(reader, observe)
		require.NoError(t, readErr)

		if got, want := n, i; got != want {
			t.Fatalf("after publish %d: Len=%d, want=%d", i, got, want)
		}
	}
}

func Test_Publish_Keeps_Back_Slot_One_Increment_Behind_When_Replaying(t *testing.T) {
	t.Parallel()

	reg, err := superposition.New(newSeqLogFactory(nil))
	require.NoError(t, err)

	mover := reg.Mover()

	for i := 1; i <= 7; i++ {
		require.NoError(t, mover.Publish(context.Background(), appendN(i)))

		front, back := superposition.SlotValues(reg)

		if got, want := front.Len()-back.Len(), i; got != want {
			t.Fatalf("publish %d: front-back lag=%d, want=%d", i, got, want)
		}

		if diff := cmp.Diff(front.vals[:back.Len()], back.vals, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("publish %d: back slot is not a prefix of front (-front +back):\n%s", i, diff)
		}
	}

	stats := reg.Stats()
	if got, want := stats.Publishes, uint64(7); got != want {
		t.Fatalf("Publishes=%d, want=%d", got, want)
	}

	// The first publish has nothing to replay.
	if got, want := stats.Replays, uint64(6); got != want {
		t.Fatalf("Replays=%d, want=%d", got, want)
	}
}

func Test_Stats_Add_Sums_Counters_And_Keeps_Peak(t *testing.T) {
	t.Parallel()

	a := superposition.Stats{Publishes: 1, Replays: 2, DrainSpins: 3, DrainBackoffs: 4, Reads: 5, ReadRetries: 6, PeakReaders: 7}
	b := superposition.Stats{Publishes: 10, Replays: 20, DrainSpins: 30, DrainBackoffs: 40, Reads: 50, ReadRetries: 60, PeakReaders: 3}

	want := superposition.Stats{Publishes: 11, Replays: 22, DrainSpins: 33, DrainBackoffs: 44, Reads: 55, ReadRetries: 66, PeakReaders: 7}

	if diff := cmp.Diff(want, a.Add(b)); diff != "" {
		t.Fatalf("Add mismatch (-want +got):\n%s", diff)
	}
}
