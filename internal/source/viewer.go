package source

import (
	"github.com/clintonium-119/gb-rp2350/internal/cart"
	"github.com/clintonium-119/gb-rp2350/internal/input"
)

const (
	bytesPerLine = Width / 2
	pageBytes    = bytesPerLine * 16
	windowSize   = 0x4000
)

// ROMViewer is a core that renders cartridge ROM as pixels, two 4-bit
// pixels per byte, reading every byte through the cartridge bus the way
// a CPU would. Up and Down select the switchable bank; Left and Right
// scroll within it.
type ROMViewer struct {
	screen  Screen
	cart    cart.Cartridge
	banks   int
	bank    int
	offset  int
	y       int
	frame   int
	palette [16][3]uint8
}

// NewROMViewer views c, a cartridge with banks ROM banks.
func NewROMViewer(screen Screen, c cart.Cartridge, banks int) *ROMViewer {
	v := &ROMViewer{screen: screen, cart: c, banks: max(banks, 2), bank: 1}
	for i := range v.palette {
		// warm-to-cool ramp so that code and tile data read differently
		v.palette[i] = [3]uint8{uint8(i * 17), uint8(255 - i*12), uint8(i * i)}
	}
	v.selectBank()
	return v
}

func (v *ROMViewer) selectBank() {
	if _, ok := v.cart.(*cart.MBC1); ok {
		v.cart.Write(0x4000, byte(v.bank>>5)&0x03)
	} else {
		// MBC5 bit 8; the 2000 write below overrides it on MBC3
		v.cart.Write(0x3000, byte(v.bank>>8))
	}
	v.cart.Write(0x2000, byte(v.bank))
}

func (v *ROMViewer) Tick() {
	if v.y == Height {
		v.y = 0
		v.frame++
		v.screen.FrameDone()
		return
	}
	base := v.offset + v.y*bytesPerLine
	for i := 0; i < bytesPerLine; i++ {
		b := v.cart.Read(uint16(0x4000 + (base+i)%windowSize))
		hi, lo := v.palette[b>>4], v.palette[b&0x0F]
		v.screen.SetPixel(2*i, v.y, hi[0], hi[1], hi[2])
		v.screen.SetPixel(2*i+1, v.y, lo[0], lo[1], lo[2])
	}
	v.screen.ScanlineComplete(v.y)
	v.y++
}

// Bank is the ROM bank currently shown.
func (v *ROMViewer) Bank() int { return v.bank }

func (v *ROMViewer) Offset() int { return v.offset }

func (v *ROMViewer) Frames() int { return v.frame }

func (v *ROMViewer) KeyPressed(b input.Button) {
	switch b {
	case input.Up:
		v.bank++
		if v.bank >= v.banks {
			v.bank = 1
		}
		v.selectBank()
	case input.Down:
		v.bank--
		if v.bank < 1 {
			v.bank = v.banks - 1
		}
		v.selectBank()
	case input.Right:
		v.offset = (v.offset + pageBytes) % windowSize
	case input.Left:
		v.offset = (v.offset - pageBytes + windowSize) % windowSize
	}
}

func (v *ROMViewer) KeyReleased(input.Button) {}
