package superposition

// SlotValues returns both slot values, front first.
func SlotValues[T Value](r *Register[T]) (T, T) {
	idx := r.front.Load()

	return r.slots[idx].value, r.slots[idx^1].value
}

// HoldSlot registers a phantom reader on slot idx, as if a reader had entered
// it and never left. The returned func releases it.
func HoldSlot[T Value](r *Register[T], idx int) func() {
	r.slots[idx].readers.Add(1)

	return func() { r.slots[idx].readers.Add(-1) }
}

// SlotReaders returns the reader tally of slot idx.
func SlotReaders[T Value](r *Register[T], idx int) int64 {
	return r.slots[idx].readers.Load()
}
