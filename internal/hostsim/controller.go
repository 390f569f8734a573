package hostsim

import (
	"sync"

	"github.com/clintonium-119/gb-rp2350/internal/dcs"
)

// Controller decodes the display command set into a framebuffer of RGB565
// pixels laid out in the panel's native portrait orientation.
type Controller struct {
	mu sync.Mutex

	w, h int
	fb   []uint16

	cmd    byte
	params []byte

	madctl   byte
	colmod   byte
	cs, ce   int
	rs, re   int
	col, row int
	pix      [3]byte
	npix     int

	asleep   bool
	on       bool
	inverted bool
	writes   int
}

// NewController returns a controller for a w x h native panel, in the
// state it has after power-on reset.
func NewController(w, h int) *Controller {
	c := &Controller{w: w, h: h, fb: make([]uint16, w*h)}
	c.reset()
	return c
}

func (c *Controller) reset() {
	c.madctl = 0
	c.colmod = dcs.PIXEL18
	c.cs, c.ce = 0, c.w-1
	c.rs, c.re = 0, c.h-1
	c.asleep = true
	c.on = false
	c.inverted = false
}

func (c *Controller) Command(b byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cmd = b
	c.params = c.params[:0]
	c.npix = 0
	switch b {
	case dcs.SWRESET:
		c.reset()
	case dcs.SLPIN:
		c.asleep = true
	case dcs.SLPOUT:
		c.asleep = false
	case dcs.DISPON:
		c.on = true
	case dcs.DISPOFF:
		c.on = false
	case dcs.INVON:
		c.inverted = true
	case dcs.INVOFF:
		c.inverted = false
	case dcs.RAMWR:
		c.col, c.row = c.cs, c.rs
		c.writes++
	}
}

func (c *Controller) Data(b byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.cmd {
	case dcs.CASET, dcs.RASET:
		c.params = append(c.params, b)
		if len(c.params) == 4 {
			start := int(c.params[0])<<8 | int(c.params[1])
			end := int(c.params[2])<<8 | int(c.params[3])
			if c.cmd == dcs.CASET {
				c.cs, c.ce = start, end
			} else {
				c.rs, c.re = start, end
			}
		}
	case dcs.MADCTL:
		c.madctl = b
	case dcs.COLMOD:
		c.colmod = b
	case dcs.RAMWR:
		c.pix[c.npix] = b
		c.npix++
		if c.colmod == dcs.PIXEL18 {
			if c.npix == 3 {
				c.npix = 0
				c.put(uint16(c.pix[0]&0xF8)<<8 | uint16(c.pix[1]&0xFC)<<3 | uint16(c.pix[2])>>3)
			}
			return
		}
		if c.npix == 2 {
			c.npix = 0
			c.put(uint16(c.pix[0])<<8 | uint16(c.pix[1]))
		}
	}
}

// limits returns the column and row address ranges for the current mode.
func (c *Controller) limits() (cols, rows int) {
	if dcs.Swapped(c.madctl) {
		return c.h, c.w
	}
	return c.w, c.h
}

// physical maps a column/row address to a framebuffer index.
func (c *Controller) physical(col, row int) (int, bool) {
	cols, rows := c.limits()
	if col < 0 || col >= cols || row < 0 || row >= rows {
		return 0, false
	}
	if c.madctl&dcs.MADCTL_MX != 0 {
		col = cols - 1 - col
	}
	if c.madctl&dcs.MADCTL_MY != 0 {
		row = rows - 1 - row
	}
	x, y := col, row
	if dcs.Swapped(c.madctl) {
		x, y = row, col
	}
	return y*c.w + x, true
}

func (c *Controller) put(px uint16) {
	if i, ok := c.physical(c.col, c.row); ok {
		c.fb[i] = px
	}
	c.col++
	if c.col > c.ce {
		c.col = c.cs
		c.row++
		if c.row > c.re {
			c.row = c.rs
		}
	}
}

// Size returns the visible size in the current address mode.
func (c *Controller) Size() (w, h int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limits()
}

// Pixel returns the RGB565 value at column x, row y of the current address
// mode.
func (c *Controller) Pixel(x, y int) uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.physical(x, y)
	if !ok {
		return 0
	}
	return c.fb[i]
}

// Native returns a copy of the framebuffer in panel orientation.
func (c *Controller) Native() []uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]uint16(nil), c.fb...)
}

// RGBA renders what a viewer of the panel sees, in the current address
// mode, as 8-bit RGBA. A sleeping or blanked panel is black.
func (c *Controller) RGBA() (pix []byte, w, h int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, h = c.limits()
	pix = make([]byte, 4*w*h)
	lit := c.on && !c.asleep
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := 4 * (y*w + x)
			pix[o+3] = 0xFF
			if !lit {
				continue
			}
			i, _ := c.physical(x, y)
			px := c.fb[i]
			if c.inverted {
				px = ^px
			}
			pix[o], pix[o+1], pix[o+2] = RGB565ToRGB(px)
		}
	}
	return pix, w, h
}

// State reports the panel flags.
func (c *Controller) State() (on, asleep, inverted bool, madctl byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.on, c.asleep, c.inverted, c.madctl
}

// MemoryWrites counts RAMWR commands received.
func (c *Controller) MemoryWrites() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

// RGB565ToRGB expands a packed pixel to 8 bits per channel.
func RGB565ToRGB(px uint16) (r, g, b uint8) {
	r5 := uint8(px >> 11)
	g6 := uint8(px>>5) & 0x3F
	b5 := uint8(px) & 0x1F
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}
