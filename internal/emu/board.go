package emu

import (
	"runtime"

	"github.com/clintonium-119/gb-rp2350/internal/config"
	"github.com/clintonium-119/gb-rp2350/internal/display"
	"github.com/clintonium-119/gb-rp2350/internal/dma"
	"github.com/clintonium-119/gb-rp2350/internal/hostsim"
	"github.com/clintonium-119/gb-rp2350/internal/input"
	"github.com/clintonium-119/gb-rp2350/internal/pio"
)

type link interface {
	display.Interface
	Idle() bool
}

// board is the simulated RP2350 and everything wired to its pins.
type board struct {
	rs      *hostsim.Pin
	ctl     *hostsim.Controller
	eng     *dma.SimEngine
	sms     []*pio.SimMachine
	link    link
	buttons [8]*hostsim.Pin
}

func newBoard(cfg Config) *board {
	c := cfg.Board
	b := &board{rs: &hostsim.Pin{}, eng: dma.NewSimEngine()}
	b.ctl = hostsim.NewController(c.Native())
	var bus hostsim.Bus = b.ctl
	if cfg.Bridge != nil {
		bus = hostsim.Tee{b.ctl, cfg.Bridge}
	}
	wire := hostsim.NewWire(b.rs, bus)
	// three lines of the widest row we draw
	streamer := display.NewStreamer(b.eng, make([]uint16, 3*max(c.Display.Width, c.Display.Height)))

	switch c.Display.Interface {
	case config.InterfaceParallel:
		sm := pio.NewSimMachine(pio.ParallelProgram(c.Divider()), wire)
		b.sms = append(b.sms, sm)
		b.link = display.NewParallelLink(b.rs, sm, pio.NewTX[uint8](sm), pio.NewTX[uint16](sm), streamer)
	default:
		narrow := pio.NewSimMachine(pio.SerialProgram(8, c.Divider()), wire)
		wide := pio.NewSimMachine(pio.SerialProgram(16, c.Divider()), wire)
		b.sms = append(b.sms, narrow, wide)
		b.link = display.NewSPILink(b.rs,
			display.Lane[uint8]{SM: narrow, TX: pio.NewTX[uint8](narrow)},
			display.Lane[uint16]{SM: wide, TX: pio.NewTX[uint16](wide)},
			streamer, cfg.Log)
	}

	for i := range b.buttons {
		// pulled up: released
		b.buttons[i] = &hostsim.Pin{}
		b.buttons[i].Set(true)
	}
	return b
}

func (b *board) pins() input.Pins {
	p := b.buttons
	return input.Pins{
		A: p[input.A], B: p[input.B], Select: p[input.Select], Start: p[input.Start],
		Up: p[input.Up], Down: p[input.Down], Left: p[input.Left], Right: p[input.Right],
	}
}

func (b *board) settle() {
	for !b.link.Idle() {
		runtime.Gosched()
	}
}

func (b *board) close() {
	b.settle()
	for _, sm := range b.sms {
		sm.Close()
	}
	b.eng.Close()
}
