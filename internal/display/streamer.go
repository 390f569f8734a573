package display

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/clintonium-119/gb-rp2350/internal/dma"
)

// Streamer owns the scanline memory and the transfer channels. The memory
// is split into three equal lines that rotate between the producer, the
// line being drained and the line queued behind it. Byte and half-word
// streams share the same memory.
type Streamer struct {
	eng   dma.Engine
	lines [3][]uint16
}

// NewStreamer splits arena into three lines of len(arena)/3 half words.
func NewStreamer(eng dma.Engine, arena []uint16) *Streamer {
	n := len(arena) / 3
	if n == 0 {
		panic(fmt.Sprintf("display: streamer arena of %d half words is too small", len(arena)))
	}
	return &Streamer{
		eng: eng,
		lines: [3][]uint16{
			arena[:n:n],
			arena[n : 2*n : 2*n],
			arena[2*n : 3*n : 3*n],
		},
	}
}

// LineWords returns how many words of type W fit in one line.
func LineWords[W dma.Word](s *Streamer) int {
	var w W
	return len(s.lines[0]) * 2 / int(unsafe.Sizeof(w))
}

// view reinterprets a line as words of type W.
func view[W dma.Word](line []uint16) []W {
	var w W
	n := len(line) * 2 / int(unsafe.Sizeof(w))
	return unsafe.Slice((*W)(unsafe.Pointer(unsafe.SliceData(line))), n)
}

// Stream packs every element of src into k words with pack and transfers
// the words to to, one line at a time. A partly filled last line is flushed
// with its valid length. Stream returns after the final word has left the
// channels.
func Stream[E any, W dma.Word](s *Streamer, to dma.Target[W], src iter.Seq[E], k int, pack func(E, []W)) {
	lineLen := LineWords[W](s)
	if k <= 0 || k > lineLen {
		panic(fmt.Sprintf("display: cannot pack %d words into a %d word line", k, lineLen))
	}

	tr := NewLineTransfer[W](dma.Bind(s.eng, to), view[W](s.lines[0]), view[W](s.lines[1]))
	buf := view[W](s.lines[2])
	pos := 0
	for e := range src {
		pack(e, buf[pos:pos+k])
		pos += k
		if pos+k > lineLen {
			buf = tr.Submit(buf, pos)
			pos = 0
		}
	}
	if pos > 0 {
		tr.Submit(buf, pos)
	}
	tr.Free()
}

// Stream8 transfers bytes unchanged.
func (s *Streamer) Stream8(to dma.Target[uint8], src iter.Seq[uint8]) {
	Stream(s, to, src, 1, func(b uint8, out []uint8) { out[0] = b })
}

// Stream16 transfers half words through f.
func (s *Streamer) Stream16(to dma.Target[uint16], src iter.Seq[uint16], f func(uint16) uint16) {
	Stream(s, to, src, 1, func(w uint16, out []uint16) { out[0] = f(w) })
}
