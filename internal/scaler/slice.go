package scaler

// SliceSource is a Source over a fixed pixel slice, useful for still images
// and tests. Each call to Rewind replays the slice as a new frame.
type SliceSource[T any] struct {
	pix []T
	pos int
}

func NewSliceSource[T any](pix []T) *SliceSource[T] {
	return &SliceSource[T]{pix: pix}
}

func (s *SliceSource[T]) Next() (T, bool) {
	if s.pos >= len(s.pix) {
		var zero T
		return zero, false
	}
	px := s.pix[s.pos]
	s.pos++
	return px, true
}

func (s *SliceSource[T]) Rewind() { s.pos = 0 }
