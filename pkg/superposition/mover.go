package superposition

import (
	"context"
	"fmt"
)

// Mover is the single-writer side of a [Register].
type Mover[T Value] struct {
	reg *Register[T]
}

// Stage runs inspect against the published value so the caller can compute
// the next increment. inspect must not mutate the value; a change in Len is
// reported as [ErrMisuse] and poisons the register.
//
// Errors returned by inspect are returned unchanged.
func (m *Mover[T]) Stage(inspect func(T) error) error {
	r := m.reg

	err := r.acquireMover("Stage")
	if err != nil {
		return err
	}
	defer r.releaseMover()

	err = r.Err()
	if err != nil {
		return err
	}

	// Only the mover writes, and only to the back slot, so the front slot is
	// stable here without registering as a reader.
	front := &r.slots[r.front.Load()]

	before := front.value.Len()
	inspectErr := inspect(front.value)

	if after := front.value.Len(); after != before {
		return r.poison(fmt.Errorf("%w: stage inspector changed length from %d to %d", ErrMisuse, before, after))
	}

	return inspectErr
}

// Publish applies mutate to the back slot and makes the result visible.
//
// Steps: wait for readers that entered the back slot while it was front to
// leave, replay the previously published mutator so the back slot catches up,
// apply mutate, flip the front index, and retain mutate for the next call.
//
// mutate must be deterministic and all-or-nothing. If it (or the replay of
// its predecessor) fails or panics, the slots diverge: Publish returns an
// error wrapping [ErrCorrupted] and the register is poisoned.
//
// If ctx is done while waiting for readers, Publish returns ctx.Err() and the
// register is left as it was.
func (m *Mover[T]) Publish(ctx context.Context, mutate func(T) error) error {
	if mutate == nil {
		return fmt.Errorf("%w: nil mutator", ErrMisuse)
	}

	r := m.reg

	err := r.acquireMover("Publish")
	if err != nil {
		return err
	}
	defer r.releaseMover()

	err = r.Err()
	if err != nil {
		return err
	}

	err = ctx.Err()
	if err != nil {
		return err
	}

	backIdx := r.front.Load() ^ 1
	back := &r.slots[backIdx]

	err = r.drain(ctx, back, backIdx)
	if err != nil {
		return err
	}

	if r.pending != nil {
		replayErr := apply(back.value, r.pending)
		if replayErr != nil {
			return r.poison(fmt.Errorf("%w: replaying previous increment onto slot %d: %w", ErrCorrupted, backIdx, replayErr))
		}

		r.stats.replays.Add(1)
	}

	mutateErr := apply(back.value, mutate)
	if mutateErr != nil {
		return r.poison(fmt.Errorf("%w: applying increment to slot %d: %w", ErrCorrupted, backIdx, mutateErr))
	}

	r.front.Store(backIdx)
	r.pending = mutate
	r.stats.publishes.Add(1)

	return nil
}

// StageValue runs fn through [Mover.Stage] and returns its result.
func StageValue[T Value, R any](m *Mover[T], fn func(T) (R, error)) (R, error) {
	var out R

	err := m.Stage(func(v T) error {
		var fnErr error
		out, fnErr = fn(v)

		return fnErr
	})

	return out, err
}
