package display

import (
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"slices"

	"github.com/clintonium-119/gb-rp2350/internal/dma"
	"github.com/clintonium-119/gb-rp2350/internal/pio"
)

// Lane is a state machine together with a typed view of its TX FIFO.
type Lane[W dma.Word] struct {
	SM pio.Machine
	TX dma.Target[W]
}

// linkMode records which of the two machines is running.
type linkMode interface {
	linkMode()
}

type byteMode struct {
	active Lane[uint8]
	parked Lane[uint16]
}

type halfWordMode struct {
	parked Lane[uint8]
	active Lane[uint16]
}

func (byteMode) linkMode()     {}
func (halfWordMode) linkMode() {}

// SPILink drives a serial display bus with two programs loaded on separate
// state machines: an 8-bit one for commands and parameters, and a 16-bit
// one for pixel data. Only one of them runs at a time.
type SPILink struct {
	streamer *Streamer
	rs       OutputPin
	mode     linkMode
	log      *slog.Logger
}

// NewSPILink starts in byte mode.
func NewSPILink(rs OutputPin, narrow Lane[uint8], wide Lane[uint16], streamer *Streamer, log *slog.Logger) *SPILink {
	if log == nil {
		log = slog.Default()
	}
	wide.SM.Stop()
	narrow.SM.Start()
	return &SPILink{
		streamer: streamer,
		rs:       rs,
		mode:     byteMode{active: narrow, parked: wide},
		log:      log,
	}
}

// Idle reports whether the running machine has shifted out every word.
func (l *SPILink) Idle() bool {
	switch m := l.mode.(type) {
	case byteMode:
		return m.active.SM.Idle()
	case halfWordMode:
		return m.active.SM.Idle()
	}
	return true
}

func (l *SPILink) waitIdle() {
	for !l.Idle() {
		runtime.Gosched()
	}
}

func (l *SPILink) SendCommands(cmd DataFormat) error {
	l.waitIdle()
	if err := l.rs.SetLow(); err != nil {
		return fmt.Errorf("%w: %w", ErrRS, err)
	}
	return l.send(cmd)
}

func (l *SPILink) SendData(buf DataFormat) error {
	l.waitIdle()
	if err := l.rs.SetHigh(); err != nil {
		return fmt.Errorf("%w: %w", ErrRS, err)
	}
	return l.send(buf)
}

func (l *SPILink) byteMode() Lane[uint8] {
	m, ok := l.mode.(halfWordMode)
	if !ok {
		return l.mode.(byteMode).active
	}
	m.active.SM.Stop()
	m.parked.SM.Start()
	l.mode = byteMode{active: m.parked, parked: m.active}
	l.log.Debug("display link mode", "bits", 8)
	return m.parked
}

func (l *SPILink) halfWordMode() Lane[uint16] {
	m, ok := l.mode.(byteMode)
	if !ok {
		return l.mode.(halfWordMode).active
	}
	m.active.SM.Stop()
	m.parked.SM.Start()
	l.mode = halfWordMode{active: m.parked, parked: m.active}
	l.log.Debug("display link mode", "bits", 16)
	return m.parked
}

func (l *SPILink) send(f DataFormat) error {
	switch d := f.(type) {
	case U8:
		l.streamer.Stream8(l.byteMode().TX, slices.Values(d))
	case U8Iter:
		l.streamer.Stream8(l.byteMode().TX, iter.Seq[uint8](d))
	case RGB666Iter:
		Stream(l.streamer, l.byteMode().TX, iter.Seq[uint16](d), 3, packRGB666)
	case U16:
		l.streamer.Stream16(l.halfWordMode().TX, slices.Values(d), identity)
	case U16BE:
		l.streamer.Stream16(l.halfWordMode().TX, slices.Values(d), identity)
	case U16LE:
		l.streamer.Stream16(l.halfWordMode().TX, slices.Values(d), swap)
	case U16BEIter:
		l.streamer.Stream16(l.halfWordMode().TX, iter.Seq[uint16](d), identity)
	case U16LEIter:
		l.streamer.Stream16(l.halfWordMode().TX, iter.Seq[uint16](d), swap)
	default:
		return fmt.Errorf("%w: %T", ErrDataFormatNotImplemented, f)
	}
	return nil
}
