package scaler

import "iter"

// Source yields pixels one at a time. ok is false at the end of a frame.
type Source[T any] interface {
	Next() (px T, ok bool)
}

// Scaler reads rows of InWidth pixels from a Source and emits each row
// widened to OutWidth and repeated as many times as the vertical table
// dictates. After InHeight source rows the row counters wrap and the next
// frame begins.
type Scaler[T any] struct {
	src     Source[T]
	widths  Table
	heights Table

	line   []T // current output row
	x      int // next position in line to emit
	repeat int // emissions of line still pending
	inRow  int
	outRow int
}

// New returns a Scaler converting inW x inH frames from src to outW x outH.
func New[T any](src Source[T], inW, inH, outW, outH int) *Scaler[T] {
	return &Scaler[T]{
		src:     src,
		widths:  NewTable(inW, outW),
		heights: NewTable(inH, outH),
		line:    make([]T, outW),
	}
}

// Next returns the next output pixel. It returns false when the source ends
// before a complete row could be read; a partially read row is dropped.
func (s *Scaler[T]) Next() (T, bool) {
	for s.repeat == 0 {
		if !s.readRow() {
			var zero T
			return zero, false
		}
	}
	px := s.line[s.x]
	s.x++
	if s.x == len(s.line) {
		s.x = 0
		s.repeat--
	}
	return px, true
}

// All yields pixels until the source reports end of frame.
func (s *Scaler[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			px, ok := s.Next()
			if !ok || !yield(px) {
				return
			}
		}
	}
}

// Row returns the source row that will be read next.
func (s *Scaler[T]) Row() int { return s.inRow }

func (s *Scaler[T]) readRow() bool {
	start := 0
	for i := range s.widths {
		px, ok := s.src.Next()
		if !ok {
			return false
		}
		end := s.widths[i]
		for j := start; j < end; j++ {
			s.line[j] = px
		}
		start = end
	}

	next := s.heights[s.inRow]
	s.repeat = next - s.outRow
	s.outRow = next
	s.x = 0

	s.inRow++
	if s.inRow == len(s.heights) {
		s.inRow, s.outRow = 0, 0
	}
	return true
}
