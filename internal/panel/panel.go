// Package panel drives an ILI9341/ILI9488 class display controller over a
// display.Interface.
package panel

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/clintonium-119/gb-rp2350/internal/dcs"
	"github.com/clintonium-119/gb-rp2350/internal/display"
)

var ErrWindow = errors.New("panel: address window out of range")

type PixelFormat uint8

const (
	RGB565 PixelFormat = 16
	RGB666 PixelFormat = 18
)

// Options configure a panel. Width and Height are the native portrait
// dimensions of the glass.
type Options struct {
	Width, Height int
	Rotation      int // clockwise, one of 0, 90, 180, 270
	Mirrored      bool
	InvertColors  bool
	BGR           bool
	Format        PixelFormat
	// Delay waits between init steps; nil uses time.Sleep.
	Delay func(time.Duration)
}

type Panel struct {
	di     display.Interface
	opts   Options
	madctl byte
	log    *slog.Logger
}

func New(di display.Interface, opts Options, log *slog.Logger) *Panel {
	if opts.Format == 0 {
		opts.Format = RGB565
	}
	if opts.Delay == nil {
		opts.Delay = time.Sleep
	}
	if log == nil {
		log = slog.Default()
	}
	return &Panel{
		di:     di,
		opts:   opts,
		madctl: dcs.AddressMode(opts.Rotation, opts.Mirrored, opts.BGR),
		log:    log,
	}
}

func (p *Panel) command(cmd byte, params ...byte) error {
	if err := p.di.SendCommands(display.U8{cmd}); err != nil {
		return fmt.Errorf("panel: command %#02x: %w", cmd, err)
	}
	if len(params) == 0 {
		return nil
	}
	if err := p.di.SendData(display.U8(params)); err != nil {
		return fmt.Errorf("panel: command %#02x params: %w", cmd, err)
	}
	return nil
}

// Init resets the controller and brings it out of sleep with the configured
// orientation and pixel format.
func (p *Panel) Init() error {
	if err := p.command(dcs.SWRESET); err != nil {
		return err
	}
	// 5ms after reset before the next command
	p.opts.Delay(5 * time.Millisecond)

	colmod := byte(dcs.PIXEL16)
	if p.opts.Format == RGB666 {
		colmod = dcs.PIXEL18
	}
	invert := byte(dcs.INVOFF)
	if p.opts.InvertColors {
		invert = dcs.INVON
	}
	steps := []struct {
		cmd    byte
		params []byte
	}{
		{dcs.MADCTL, []byte{p.madctl}},
		{dcs.INVCTR, []byte{0x00}},
		{invert, nil},
		{dcs.COLMOD, []byte{colmod}},
		{dcs.NORON, nil},
	}
	for _, s := range steps {
		if err := p.command(s.cmd, s.params...); err != nil {
			return err
		}
	}
	p.opts.Delay(120 * time.Millisecond)
	if err := p.command(dcs.SLPOUT); err != nil {
		return err
	}
	p.opts.Delay(140 * time.Millisecond)
	if err := p.command(dcs.DISPON); err != nil {
		return err
	}
	w, h := p.Size()
	p.log.Info("panel ready", "width", w, "height", h, "madctl", fmt.Sprintf("%#02x", p.madctl), "bpp", int(p.opts.Format))
	return nil
}

// Size returns the drawable size in the current orientation.
func (p *Panel) Size() (w, h int) {
	if dcs.Swapped(p.madctl) {
		return p.opts.Height, p.opts.Width
	}
	return p.opts.Width, p.opts.Height
}

// SetOrientation changes rotation and mirroring at runtime.
func (p *Panel) SetOrientation(rotation int, mirrored bool) error {
	p.madctl = dcs.AddressMode(rotation, mirrored, p.opts.BGR)
	p.opts.Rotation, p.opts.Mirrored = rotation, mirrored
	return p.command(dcs.MADCTL, p.madctl)
}

// SetAddressWindow limits subsequent memory writes to the inclusive
// rectangle (x0,y0)-(x1,y1).
func (p *Panel) SetAddressWindow(x0, y0, x1, y1 int) error {
	w, h := p.Size()
	if x0 < 0 || y0 < 0 || x1 < x0 || y1 < y0 || x1 >= w || y1 >= h {
		return fmt.Errorf("%w: (%d,%d)-(%d,%d) on %dx%d", ErrWindow, x0, y0, x1, y1, w, h)
	}
	if err := p.command(dcs.CASET, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
		return err
	}
	return p.command(dcs.RASET, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1))
}

// DrawRawIter fills the rectangle with RGB565 pixels in row-major order.
func (p *Panel) DrawRawIter(x0, y0, x1, y1 int, pixels iter.Seq[uint16]) error {
	if err := p.SetAddressWindow(x0, y0, x1, y1); err != nil {
		return err
	}
	if err := p.command(dcs.RAMWR); err != nil {
		return err
	}
	var data display.DataFormat = display.U16BEIter(pixels)
	if p.opts.Format == RGB666 {
		data = display.RGB666Iter(pixels)
	}
	return p.di.SendData(data)
}

// Clear fills the whole panel with one color.
func (p *Panel) Clear(color uint16) error {
	w, h := p.Size()
	return p.DrawRawIter(0, 0, w-1, h-1, func(yield func(uint16) bool) {
		for i := 0; i < w*h; i++ {
			if !yield(color) {
				return
			}
		}
	})
}
