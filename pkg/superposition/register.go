package superposition

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"sync/atomic"
	"time"
)

// Value is the capability contract of a value held by a [Register].
//
// Len is used to detect callbacks that changed the value when they were only
// allowed to look at it. Verify validates elements from since onward.
type Value interface {
	Len() int
	Verify(since int) error
}

// cacheLine keeps the reader counters of the two slots on separate lines.
const cacheLine = 64

// slot owns one physical instance of the value and its reader tally.
type slot[T Value] struct {
	// readers counts goroutines that registered on this slot and have not
	// left yet. Readers that registered on a slot that turned out not to be
	// front leave immediately without touching value.
	readers atomic.Int64
	_       [cacheLine - 8]byte

	value T
}

// Register is a publish register over two instances of T.
//
// Build it with [New], then obtain one [Mover] and any number of [Reader]
// handles.
type Register[T Value] struct {
	slots [2]slot[T]

	// front is the index (0 or 1) of the reader-visible slot.
	front atomic.Uint32

	// moving is set while a mover call (Stage or Publish) runs.
	moving atomic.Bool

	// pending is the last published mutator. The back slot has not seen it
	// yet. Owned by the mover.
	pending func(T) error

	// poisoned holds the fatal error once the register is unusable.
	poisoned atomic.Pointer[error]

	opts  options
	stats counters
}

// New builds a register whose two slots come from independent factory calls.
//
// Returns an error wrapping [ErrConfiguration] when factory is nil, when it
// fails, when it returns a nil pointer, or when both calls return the same
// instance.
func New[T Value](factory func() (T, error), opts ...Option) (*Register[T], error) {
	if factory == nil {
		return nil, fmt.Errorf("%w: factory is nil", ErrConfiguration)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	err := o.validate()
	if err != nil {
		return nil, err
	}

	reg := &Register[T]{opts: o}

	for i := range reg.slots {
		value, factoryErr := factory()
		if factoryErr != nil {
			return nil, fmt.Errorf("%w: factory: %w", ErrConfiguration, factoryErr)
		}

		if isNil(value) {
			return nil, fmt.Errorf("%w: factory returned nil", ErrConfiguration)
		}

		reg.slots[i].value = value
	}

	if sameInstance(reg.slots[0].value, reg.slots[1].value) {
		return nil, fmt.Errorf("%w: factory returned the same instance twice", ErrConfiguration)
	}

	if a, b := reg.slots[0].value.Len(), reg.slots[1].value.Len(); a != b {
		return nil, fmt.Errorf("%w: factory is not deterministic (len %d vs %d)", ErrConfiguration, a, b)
	}

	return reg, nil
}

// Mover returns the mover handle.
//
// The register assumes a single logical mover. Handles returned by repeated
// calls share state; driving them from several goroutines is a caller bug.
// Overlapping calls are detected and fail with [ErrMisuse].
func (r *Register[T]) Mover() *Mover[T] {
	return &Mover[T]{reg: r}
}

// Reader returns a new reader handle. Any number of handles may be used
// concurrently.
func (r *Register[T]) Reader() *Reader[T] {
	return &Reader[T]{reg: r}
}

// Len returns the length of the published value.
func (r *Register[T]) Len() (int, error) {
	var n int

	err := r.read(func(v T) error {
		n = v.Len()

		return nil
	})

	return n, err
}

// Front reports which slot is currently published. Diagnostics only.
func (r *Register[T]) Front() int {
	return int(r.front.Load())
}

// Err returns the poisoning error, or nil while the register is usable.
func (r *Register[T]) Err() error {
	if p := r.poisoned.Load(); p != nil {
		return *p
	}

	return nil
}

// poison records err as fatal and returns the error that won.
func (r *Register[T]) poison(err error) error {
	if r.poisoned.CompareAndSwap(nil, &err) {
		return err
	}

	return *r.poisoned.Load()
}

// read runs the enter/verify/exit protocol around query.
func (r *Register[T]) read(query func(T) error) error {
	err := r.Err()
	if err != nil {
		return err
	}

	s := r.enter()
	defer s.readers.Add(-1)

	before := s.value.Len()
	queryErr := query(s.value)

	if after := s.value.Len(); after != before {
		return r.poison(fmt.Errorf("%w: read query changed length from %d to %d", ErrMisuse, before, after))
	}

	r.stats.reads.Add(1)

	return queryErr
}

// enter registers on the front slot. The second load of front closes the
// race with a flip that happened between reading the index and registering.
func (r *Register[T]) enter() *slot[T] {
	for {
		idx := r.front.Load()
		s := &r.slots[idx]
		n := s.readers.Add(1)

		if r.front.Load() == idx {
			r.stats.notePeak(n)

			return s
		}

		s.readers.Add(-1)
		r.stats.readRetries.Add(1)
	}
}

// drain waits until no reader is registered on s. Only readers that entered
// s while it was still front can be inside, so the wait is short.
func (r *Register[T]) drain(ctx context.Context, s *slot[T], idx uint32) error {
	if s.readers.Load() == 0 {
		return nil
	}

	start := time.Now()
	spins := 0
	delay := r.opts.backoffInitial

	for s.readers.Load() != 0 {
		if spins < r.opts.drainSpins {
			spins++
			r.stats.drainSpins.Add(1)
			runtime.Gosched()

			continue
		}

		err := ctx.Err()
		if err != nil {
			return err
		}

		if r.opts.drainTimeout > 0 && time.Since(start) > r.opts.drainTimeout {
			return r.poison(fmt.Errorf("%w: slot %d still has %d readers after %s",
				ErrCorrupted, idx, s.readers.Load(), r.opts.drainTimeout))
		}

		r.stats.drainBackoffs.Add(1)
		time.Sleep(delay)
		delay = nextBackoff(delay, r.opts.backoffMax)
	}

	return nil
}

func (r *Register[T]) acquireMover(op string) error {
	if !r.moving.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: %s called while another mover call is running", ErrMisuse, op)
	}

	return nil
}

func (r *Register[T]) releaseMover() {
	r.moving.Store(false)
}

// apply runs fn on v, turning a panic into an error.
func apply[T Value](v T, fn func(T) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("mutator panicked: %v", p)
		}
	}()

	return fn(v)
}

func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return true
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}

// sameInstance reports whether a and b reference the same underlying object.
// Slices are not compared: empty slices may share a backing pointer.
func sameInstance(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() != vb.Kind() {
		return false
	}

	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	default:
		return false
	}
}
