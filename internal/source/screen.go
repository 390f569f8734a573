// Package source produces the emulated screen as a stream of RGB565
// pixels, one scanline at a time, running the emulation core only as fast
// as pixels are consumed.
package source

// Screen size of the emulated handheld.
const (
	Width  = 160
	Height = 144
)

// Screen receives video output from an emulation core.
type Screen interface {
	SetPixel(x, y int, r, g, b uint8)
	ScanlineComplete(y int)
	FrameDone()
}

// RGB565 packs an 8-bit-per-channel color into 16 bits.
func RGB565(r, g, b uint8) uint16 {
	return uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b>>3)
}

// LineScreen holds the last scanline the core drew. The core must not
// draw the next line before the current one has been drained.
type LineScreen struct {
	line     [Width]uint16
	complete bool
	frameEnd bool
}

func NewLineScreen() *LineScreen { return &LineScreen{} }

func (s *LineScreen) SetPixel(x, _ int, r, g, b uint8) {
	if x >= 0 && x < Width {
		s.line[x] = RGB565(r, g, b)
	}
}

func (s *LineScreen) ScanlineComplete(int) { s.complete = true }

func (s *LineScreen) FrameDone() { s.frameEnd = true }
