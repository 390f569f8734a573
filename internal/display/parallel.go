package display

import (
	"fmt"
	"iter"
	"runtime"
	"slices"

	"github.com/clintonium-119/gb-rp2350/internal/dma"
	"github.com/clintonium-119/gb-rp2350/internal/pio"
)

// ParallelLink drives an 8-bit parallel bus from a single state machine.
// Byte and half-word transfers use different entries of the same program.
type ParallelLink struct {
	streamer *Streamer
	rs       OutputPin
	sm       pio.Machine
	narrow   dma.Target[uint8]
	wide     dma.Target[uint16]
}

// NewParallelLink starts sm, which must be loaded with pio.ParallelProgram.
func NewParallelLink(rs OutputPin, sm pio.Machine, narrow dma.Target[uint8], wide dma.Target[uint16], streamer *Streamer) *ParallelLink {
	sm.Start()
	return &ParallelLink{streamer: streamer, rs: rs, sm: sm, narrow: narrow, wide: wide}
}

func (l *ParallelLink) Idle() bool { return l.sm.Idle() }

func (l *ParallelLink) SendCommands(cmd DataFormat) error {
	for !l.sm.Idle() {
		runtime.Gosched()
	}
	if err := l.rs.SetLow(); err != nil {
		return fmt.Errorf("%w: %w", ErrRS, err)
	}
	return l.send(cmd)
}

func (l *ParallelLink) SendData(buf DataFormat) error {
	for !l.sm.Idle() {
		runtime.Gosched()
	}
	if err := l.rs.SetHigh(); err != nil {
		return fmt.Errorf("%w: %w", ErrRS, err)
	}
	return l.send(buf)
}

func (l *ParallelLink) bytes() (dma.Target[uint8], error) {
	return l.narrow, l.sm.Jump(pio.EntryNarrow)
}

func (l *ParallelLink) halfWords() (dma.Target[uint16], error) {
	return l.wide, l.sm.Jump(pio.EntryWide)
}

func (l *ParallelLink) send(f DataFormat) error {
	switch d := f.(type) {
	case U8, U8Iter, RGB666Iter:
		tx, err := l.bytes()
		if err != nil {
			return err
		}
		switch d := d.(type) {
		case U8:
			l.streamer.Stream8(tx, slices.Values(d))
		case U8Iter:
			l.streamer.Stream8(tx, iter.Seq[uint8](d))
		case RGB666Iter:
			Stream(l.streamer, tx, iter.Seq[uint16](d), 3, packRGB666)
		}
	case U16, U16BE, U16LE, U16BEIter, U16LEIter:
		tx, err := l.halfWords()
		if err != nil {
			return err
		}
		switch d := d.(type) {
		case U16:
			l.streamer.Stream16(tx, slices.Values(d), identity)
		case U16BE:
			l.streamer.Stream16(tx, slices.Values(d), identity)
		case U16LE:
			l.streamer.Stream16(tx, slices.Values(d), swap)
		case U16BEIter:
			l.streamer.Stream16(tx, iter.Seq[uint16](d), identity)
		case U16LEIter:
			l.streamer.Stream16(tx, iter.Seq[uint16](d), swap)
		}
	default:
		return fmt.Errorf("%w: %T", ErrDataFormatNotImplemented, f)
	}
	return nil
}
