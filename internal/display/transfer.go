// Package display streams pixel data to a display controller over a
// state-machine driven bus using chained transfer channels.
package display

import (
	"runtime"

	"github.com/clintonium-119/gb-rp2350/internal/dma"
)

// transferState is either idle or running. Each variant owns the channel
// pair and the buffers that belong to it in that state.
type transferState[W dma.Word] interface {
	transferState()
}

// idle holds a spare buffer for the first Submit and a primed buffer that
// stands in for a completed transfer on channel B.
type idle[W dma.Word] struct {
	pair   dma.Pair[W]
	spare  []W
	primed []W
}

type inflight[W dma.Word] struct {
	ch  dma.Channel
	buf []W
}

// running has two transfers queued back to back. older was started first.
type running[W dma.Word] struct {
	pair  dma.Pair[W]
	older inflight[W]
	newer inflight[W]
}

func (idle[W]) transferState()    {}
func (running[W]) transferState() {}

// LineTransfer hands scanline buffers to a channel pair in ping-pong order.
// The buffer returned by a Submit call is the one submitted two calls
// earlier, so the caller can fill one line while the bus drains the last.
//
// There is no timeout: a transfer that never completes stalls the caller
// forever, which is the only sane outcome for a stuck display bus.
type LineTransfer[W dma.Word] struct {
	state transferState[W]
}

// NewLineTransfer takes ownership of pair and the two initial buffers.
// first is returned by the first Submit and second by the second.
func NewLineTransfer[W dma.Word](pair dma.Pair[W], first, second []W) *LineTransfer[W] {
	return &LineTransfer[W]{state: idle[W]{pair: pair, spare: first, primed: second}}
}

// Submit queues the first n words of buf for transfer and returns a buffer
// the hardware no longer reads from. It blocks only until the transfer
// queued before the previous one has completed.
func (t *LineTransfer[W]) Submit(buf []W, n int) []W {
	switch s := t.state.(type) {
	case idle[W]:
		s.pair.Start(dma.A, buf[:n])
		t.state = running[W]{
			pair:  s.pair,
			older: inflight[W]{ch: dma.B, buf: s.primed},
			newer: inflight[W]{ch: dma.A, buf: buf},
		}
		return s.spare
	case running[W]:
		wait(s.pair, s.older.ch)
		s.pair.Start(s.older.ch, buf[:n])
		t.state = running[W]{
			pair:  s.pair,
			older: s.newer,
			newer: inflight[W]{ch: s.older.ch, buf: buf},
		}
		return s.older.buf
	}
	panic("display: line transfer released")
}

// Running reports whether transfers have been queued since construction.
func (t *LineTransfer[W]) Running() bool {
	_, ok := t.state.(running[W])
	return ok
}

// Free waits for every queued transfer and returns the channel pair with the
// two buffers the transfer still held. The LineTransfer is unusable after.
func (t *LineTransfer[W]) Free() (dma.Pair[W], []W, []W) {
	st := t.state
	t.state = nil
	switch s := st.(type) {
	case idle[W]:
		return s.pair, s.spare, s.primed
	case running[W]:
		wait(s.pair, s.older.ch)
		wait(s.pair, s.newer.ch)
		return s.pair, s.older.buf, s.newer.buf
	}
	panic("display: line transfer released")
}

func wait[W dma.Word](p dma.Pair[W], ch dma.Channel) {
	for !p.Done(ch) {
		runtime.Gosched()
	}
}
