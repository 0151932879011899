package superposition

import "sync/atomic"

// Stats is a point-in-time snapshot of register activity.
type Stats struct {
	// Publishes counts completed index flips.
	Publishes uint64
	// Replays counts increments replayed onto a lagging back slot.
	Replays uint64
	// DrainSpins counts processor yields while waiting for readers to
	// leave the back slot.
	DrainSpins uint64
	// DrainBackoffs counts sleeps of the drain wait.
	DrainBackoffs uint64
	// Reads counts completed read queries.
	Reads uint64
	// ReadRetries counts readers that registered on a slot that had just
	// been demoted and had to retry.
	ReadRetries uint64
	// PeakReaders is the largest reader tally seen on a single slot.
	PeakReaders int64
}

type counters struct {
	publishes     atomic.Uint64
	replays       atomic.Uint64
	drainSpins    atomic.Uint64
	drainBackoffs atomic.Uint64
	reads         atomic.Uint64
	readRetries   atomic.Uint64
	peakReaders   atomic.Int64
}

func (c *counters) notePeak(n int64) {
	for {
		peak := c.peakReaders.Load()
		if n <= peak || c.peakReaders.CompareAndSwap(peak, n) {
			return
		}
	}
}

// Stats returns a snapshot of the register counters. Counters are read one by
// one, so a snapshot taken during activity is not a consistent cut.
func (r *Register[T]) Stats() Stats {
	return Stats{
		Publishes:     r.stats.publishes.Load(),
		Replays:       r.stats.replays.Load(),
		DrainSpins:    r.stats.drainSpins.Load(),
		DrainBackoffs: r.stats.drainBackoffs.Load(),
		Reads:         r.stats.reads.Load(),
		ReadRetries:   r.stats.readRetries.Load(),
		PeakReaders:   r.stats.peakReaders.Load(),
	}
}

// Add returns the field-wise sum of s and o. PeakReaders keeps the maximum.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Publishes:     s.Publishes + o.Publishes,
		Replays:       s.Replays + o.Replays,
		DrainSpins:    s.DrainSpins + o.DrainSpins,
		DrainBackoffs: s.DrainBackoffs + o.DrainBackoffs,
		Reads:         s.Reads + o.Reads,
		ReadRetries:   s.ReadRetries + o.ReadRetries,
		PeakReaders:   max(s.PeakReaders, o.PeakReaders),
	}
}
