package superposition

// Reader is a read handle of a [Register]. Handles are cheap; create one per
// goroutine or share one, both are safe.
type Reader[T Value] struct {
	reg *Register[T]
}

// Read runs query against the published value.
//
// The value observed by query is fully formed and stays unchanged until query
// returns. query must not mutate it nor retain it past its return. A change in
// Len is reported as [ErrMisuse] and poisons the register.
//
// query must not call [Mover] methods. The second publish from inside query
// drains the slot query is reading and waits for query to return: it blocks
// forever, or fails with [ErrCorrupted] once a drain timeout is set.
//
// Errors returned by query are returned unchanged.
func (rd *Reader[T]) Read(query func(T) error) error {
	return rd.reg.read(query)
}

// ReadValue runs fn through [Reader.Read] and returns its result.
//
// The result must not alias the value itself.
func ReadValue[T Value, R any](rd *Reader[T], fn func(T) (R, error)) (R, error) {
	var out R

	err := rd.Read(func(v T) error {
		var fnErr error
		out, fnErr = fn(v)

		return fnErr
	})

	return out, err
}
