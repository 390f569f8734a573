package display

import (
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clintonium-119/gb-rp2350/internal/dma"
)

// slowTarget stalls now and then so the producer runs ahead of the bus.
type slowTarget[W dma.Word] struct {
	mu  sync.Mutex
	got []W
}

func (s *slowTarget[W]) Put(w W) {
	s.mu.Lock()
	s.got = append(s.got, w)
	n := len(s.got)
	s.mu.Unlock()
	if n%5 == 0 {
		time.Sleep(50 * time.Microsecond)
	}
}

func (s *slowTarget[W]) words() []W {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]W(nil), s.got...)
}

func newStreamer(t *testing.T, lineHalfWords int) *Streamer {
	eng := dma.NewSimEngine()
	t.Cleanup(eng.Close)
	return NewStreamer(eng, make([]uint16, 3*lineHalfWords))
}

func seq(n int) []uint16 {
	out := make([]uint16, n)
	for i := range out {
		out[i] = uint16(i*7 + 1)
	}
	return out
}

func TestStreamer_LineWords(t *testing.T) {
	s := newStreamer(t, 4)
	assert.Equal(t, 4, LineWords[uint16](s))
	assert.Equal(t, 8, LineWords[uint8](s))
	assert.Panics(t, func() { NewStreamer(dma.NewSimEngine(), make([]uint16, 2)) })
}

func TestStreamer_Stream16FlushesPartialLine(t *testing.T) {
	s := newStreamer(t, 4)
	to := &slowTarget[uint16]{}
	in := seq(103)
	s.Stream16(to, slices.Values(in), identity)
	assert.Equal(t, in, to.words())

	// reusable for a second stream on the same memory
	to2 := &slowTarget[uint16]{}
	s.Stream16(to2, slices.Values(in[:3]), swap)
	assert.Equal(t, []uint16{swap(in[0]), swap(in[1]), swap(in[2])}, to2.words())
}

func TestStreamer_Stream8SharesMemory(t *testing.T) {
	s := newStreamer(t, 4)
	in := make([]uint8, 77)
	for i := range in {
		in[i] = uint8(255 - i)
	}
	to := &slowTarget[uint8]{}
	s.Stream8(to, slices.Values(in))
	assert.Equal(t, in, to.words())
}

func TestStreamer_PacksSeveralWordsPerElement(t *testing.T) {
	s := newStreamer(t, 4) // 8 byte lines, two pixels per line
	px := []uint16{0xF800, 0x07E0, 0x001F, 0xFFFF, 0x0000}
	to := &slowTarget[uint8]{}
	Stream(s, dma.Target[uint8](to), slices.Values(px), 3, packRGB666)

	assert.Equal(t, []uint8{
		0xFF, 0x00, 0x00,
		0x00, 0xFF, 0x00,
		0x00, 0x00, 0xFF,
		0xFF, 0xFF, 0xFF,
		0x00, 0x00, 0x00,
	}, to.words())
}

func TestStreamer_EmptySource(t *testing.T) {
	s := newStreamer(t, 4)
	to := &slowTarget[uint16]{}
	s.Stream16(to, slices.Values([]uint16(nil)), identity)
	assert.Empty(t, to.words())
}

func TestStreamer_RejectsOversizedPacking(t *testing.T) {
	s := newStreamer(t, 1)
	require.Panics(t, func() {
		Stream(s, dma.Target[uint8](&slowTarget[uint8]{}), slices.Values([]uint16{1}), 3, packRGB666)
	})
}
