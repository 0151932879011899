package superposition_test

import (
	"context"
	"flag"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mchalapuk/super-position-benchmark/pkg/superposition"
)

// Duration of the stress test.
// Override via: go test ./pkg/superposition -run Stress -superposition.stress=10s.
var flagStress = flag.Duration("superposition.stress", 1*time.Second, "duration for superposition register stress tests")

func Test_Readers_Observe_Monotonic_Verified_Values_When_Mover_Publishes_Concurrently(t *testing.T) {
	t.Parallel()

	const publishes = 1000

	var overlaps atomic.Int64

	reg, err := superposition.New(newSeqLogFactory(&overlaps))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 30*time.Second)
	defer cancel()

	var (
		wg   sync.WaitGroup
		done atomic.Bool
	)

	readerErrs := make([]error, 2)

	for i := range readerErrs {
		wg.Go(func() {
			reader := reg.Reader()
			last := 0

			for !done.Load() {
				n, readErr := superposition.ReadValue(reader, observe)
				if readErr != nil {
					readerErrs[i] = readErr

					return
				}

				if n < last {
					t.Errorf("reader %d: length went back from %d to %d", i, last, n)

					return
				}

				last = n
			}
		})
	}

	mover := reg.Mover()

	for i := range publishes {
		publishErr := mover.Publish(ctx, appendN(1))
		if publishErr != nil {
			done.Store(true)
			wg.Wait()
			t.Fatalf("Publish #%d: %v", i, publishErr)
		}
	}

	done.Store(true)
	wg.Wait()

	for i, readerErr := range readerErrs {
		require.NoError(t, readerErr, "reader %d", i)
	}

	n, err := superposition.ReadValue(reg.Reader(), observe)
	require.NoError(t, err)

	if got, want := n, publishes; got != want {
		t.Fatalf("final Len=%d, want=%d", got, want)
	}

	if got := overlaps.Load(); got != 0 {
		t.Fatalf("mutator ran while a reader was inside the same slot %d times", got)
	}
}

func Test_Stress_Register_Never_Mutates_Slot_Under_Reader_When_Readers_Come_And_Go(t *testing.T) {
	t.Parallel()

	duration := *flagStress
	if testing.Short() {
		duration = 200 * time.Millisecond
	}

	var overlaps atomic.Int64

	reg, err := superposition.New(newSeqLogFactory(&overlaps),
		superposition.WithDrainSpins(16),
		superposition.WithDrainTimeout(10*time.Second),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), duration)
	defer cancel()

	var (
		wg       sync.WaitGroup
		readErrs atomic.Int64
		reads    atomic.Int64
	)

	// Short-lived readers: each goroutine does a handful of reads and exits.
	wg.Go(func() {
		for ctx.Err() == nil {
			var batch sync.WaitGroup

			for range 8 {
				batch.Go(func() {
					reader := reg.Reader()

					for range 4 {
						_, readErr := superposition.ReadValue(reader, observe)
						if readErr != nil {
							readErrs.Add(1)

							return
						}

						reads.Add(1)
					}
				})
			}

			batch.Wait()
		}
	})

	mover := reg.Mover()
	rng := rand.New(rand.NewPCG(1, 2))
	published := 0

	for ctx.Err() == nil {
		size := 1 + rng.IntN(8)

		publishErr := mover.Publish(context.Background(), appendN(size))
		require.NoError(t, publishErr)

		published += size
	}

	wg.Wait()

	if got := readErrs.Load(); got != 0 {
		t.Fatalf("%d reads failed", got)
	}

	if got := overlaps.Load(); got != 0 {
		t.Fatalf("mutator ran while a reader was inside the same slot %d times", got)
	}

	front, back := superposition.SlotValues(reg)
	require.NoError(t, front.Verify(0))
	require.NoError(t, back.Verify(0))

	if got, want := front.Len(), published; got != want {
		t.Fatalf("front Len=%d, want=%d", got, want)
	}

	if back.Len() > front.Len() {
		t.Fatalf("back slot ahead of front: back=%d front=%d", back.Len(), front.Len())
	}

	t.Logf("published=%d reads=%d stats=%+v", published, reads.Load(), reg.Stats())
}
