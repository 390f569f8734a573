// Package dcs lists the MIPI display command set opcodes shared by the
// panel driver and the simulated controller.
package dcs

const (
	NOP       = 0x00
	SWRESET   = 0x01
	SLPIN     = 0x10
	SLPOUT    = 0x11
	NORON     = 0x13
	INVOFF    = 0x20
	INVON     = 0x21
	DISPOFF   = 0x28
	DISPON    = 0x29
	CASET     = 0x2A
	RASET     = 0x2B
	RAMWR     = 0x2C
	MADCTL    = 0x36
	COLMOD    = 0x3A
	IFMODE    = 0xB0
	INVCTR    = 0xB4
	PIXEL16   = 0x55 // COLMOD parameter, 16 bits per pixel
	PIXEL18   = 0x66 // COLMOD parameter, 18 bits per pixel
	MADCTL_MY = 0x80
	MADCTL_MX = 0x40
	MADCTL_MV = 0x20
	MADCTL_BG = 0x08
)

// AddressMode returns the MADCTL value for a clockwise rotation in degrees.
// mirrored flips the image horizontally; bgr selects BGR subpixel order.
func AddressMode(rotation int, mirrored, bgr bool) byte {
	var m byte
	switch rotation {
	case 90:
		m = MADCTL_MV | MADCTL_MX
	case 180:
		m = MADCTL_MX | MADCTL_MY
	case 270:
		m = MADCTL_MV | MADCTL_MY
	}
	if mirrored {
		m ^= MADCTL_MX
	}
	if bgr {
		m |= MADCTL_BG
	}
	return m
}

// Swapped reports whether the mode exchanges rows and columns.
func Swapped(madctl byte) bool { return madctl&MADCTL_MV != 0 }
