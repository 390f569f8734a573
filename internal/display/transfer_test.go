package display

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clintonium-119/gb-rp2350/internal/dma"
)

type started struct {
	ch dma.Channel
	n  int
}

// manualPair completes transfers only when the test says so.
type manualPair struct {
	busy  [2]atomic.Bool
	calls []started
}

func (p *manualPair) Start(ch dma.Channel, src []uint16) {
	p.busy[ch].Store(true)
	p.calls = append(p.calls, started{ch, len(src)})
}

func (p *manualPair) Done(ch dma.Channel) bool { return !p.busy[ch].Load() }
func (p *manualPair) finish(ch dma.Channel)    { p.busy[ch].Store(false) }

func same(a, b []uint16) bool { return &a[0] == &b[0] }

func TestLineTransfer_ReturnsBufferFromTwoCallsBefore(t *testing.T) {
	p := &manualPair{}
	first, second := make([]uint16, 4), make([]uint16, 4)
	tr := NewLineTransfer[uint16](p, first, second)
	assert.False(t, tr.Running())

	var submitted [][]uint16
	for n := 1; n <= 12; n++ {
		buf := make([]uint16, 4)
		// the transfer queued two calls ago must be done before reuse
		if n >= 3 {
			p.finish(p.calls[n-3].ch)
		}
		got := tr.Submit(buf, 4)
		submitted = append(submitted, buf)

		switch n {
		case 1:
			require.True(t, same(got, first))
		case 2:
			require.True(t, same(got, second))
		default:
			require.Truef(t, same(got, submitted[n-3]), "call %d", n)
		}
		require.False(t, same(got, buf))
		if n >= 2 {
			require.False(t, same(got, submitted[n-2]))
		}
	}
	assert.True(t, tr.Running())

	// channels alternate starting with A
	for i, c := range p.calls {
		assert.Equal(t, dma.Channel(i%2), c.ch)
	}
}

func TestLineTransfer_PartialLength(t *testing.T) {
	p := &manualPair{}
	tr := NewLineTransfer[uint16](p, make([]uint16, 8), make([]uint16, 8))
	tr.Submit(make([]uint16, 8), 3)
	require.Len(t, p.calls, 1)
	assert.Equal(t, 3, p.calls[0].n)
}

func TestLineTransfer_BlocksOnTransferBeforeLast(t *testing.T) {
	p := &manualPair{}
	tr := NewLineTransfer[uint16](p, make([]uint16, 2), make([]uint16, 2))
	tr.Submit(make([]uint16, 2), 2) // A
	tr.Submit(make([]uint16, 2), 2) // B, primed buffer is free at once

	done := make(chan []uint16)
	go func() { done <- tr.Submit(make([]uint16, 2), 2) }()

	select {
	case <-done:
		t.Fatal("submit returned while the transfer on A was still running")
	case <-time.After(20 * time.Millisecond):
	}

	p.finish(dma.B) // finishing the newer transfer does not release the older
	select {
	case <-done:
		t.Fatal("submit returned before A completed")
	case <-time.After(20 * time.Millisecond):
	}

	p.finish(dma.A)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("submit did not return after A completed")
	}
}

func TestLineTransfer_FreeWaitsForAll(t *testing.T) {
	p := &manualPair{}
	first, second := make([]uint16, 2), make([]uint16, 2)
	tr := NewLineTransfer[uint16](p, first, second)

	_, a, b := NewLineTransfer[uint16](p, first, second).Free()
	assert.True(t, same(a, first))
	assert.True(t, same(b, second))

	x, y := make([]uint16, 2), make([]uint16, 2)
	tr.Submit(x, 2)
	tr.Submit(y, 2)
	p.finish(dma.A)
	p.finish(dma.B)
	pair, older, newer := tr.Free()
	assert.Same(t, p, pair)
	assert.True(t, same(older, x))
	assert.True(t, same(newer, y))
	assert.Panics(t, func() { tr.Submit(x, 2) })
}
