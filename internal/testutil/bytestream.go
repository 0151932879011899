// Package testutil holds helpers shared by fuzz tests.
package testutil

// ByteStream hands out values derived from fuzz input, one byte at a time.
//
// An exhausted stream keeps returning zero values, so the same input always
// drives the same sequence of operations.
type ByteStream struct {
	bytes []byte
	pos   int
}

// NewByteStream creates a stream over b.
func NewByteStream(b []byte) *ByteStream {
	return &ByteStream{bytes: b}
}

// HasMore reports whether unread bytes remain.
func (s *ByteStream) HasMore() bool {
	return s.pos < len(s.bytes)
}

// NextByte returns the next byte, or 0 if exhausted.
func (s *ByteStream) NextByte() byte {
	if s.pos >= len(s.bytes) {
		return 0
	}

	v := s.bytes[s.pos]
	s.pos++

	return v
}

// NextInt returns a value in [0, n). Returns 0 when n <= 0.
func (s *ByteStream) NextInt(n int) int {
	if n <= 0 {
		return 0
	}

	return int(s.NextByte()) % n
}

// NextRange returns a value in [lo, hi].
func (s *ByteStream) NextRange(lo, hi int) int {
	return lo + s.NextInt(hi-lo+1)
}

// NextBool returns a boolean derived from the next byte.
func (s *ByteStream) NextBool() bool {
	return s.NextByte()&1 == 1
}
