package source

import "github.com/clintonium-119/gb-rp2350/internal/input"

// Pattern is a core that draws scrolling color bars, one scanline per
// Tick. Left and Right change the scroll direction; A freezes it.
type Pattern struct {
	screen Screen
	y      int
	frame  int
	dir    int
	frozen bool
}

var bars = [8][3]uint8{
	{0xFF, 0xFF, 0xFF}, {0xFF, 0xFF, 0x00}, {0x00, 0xFF, 0xFF}, {0x00, 0xFF, 0x00},
	{0xFF, 0x00, 0xFF}, {0xFF, 0x00, 0x00}, {0x00, 0x00, 0xFF}, {0x00, 0x00, 0x00},
}

func NewPattern(screen Screen) *Pattern { return &Pattern{screen: screen, dir: 1} }

func (p *Pattern) Tick() {
	if p.y == Height {
		p.y = 0
		p.frame++
		p.screen.FrameDone()
		return
	}
	shift := 0
	if !p.frozen {
		shift = p.frame * p.dir
	}
	for x := 0; x < Width; x++ {
		c := bars[((x+shift)%Width+Width)%Width*len(bars)/Width]
		if p.y >= Height*3/4 {
			// grey ramp along the bottom quarter
			v := uint8(x * 255 / (Width - 1))
			c = [3]uint8{v, v, v}
		}
		p.screen.SetPixel(x, p.y, c[0], c[1], c[2])
	}
	p.screen.ScanlineComplete(p.y)
	p.y++
}

// Frames is the number of frames drawn so far.
func (p *Pattern) Frames() int { return p.frame }

func (p *Pattern) KeyPressed(b input.Button) {
	switch b {
	case input.Left:
		p.dir = -1
	case input.Right:
		p.dir = 1
	case input.A:
		p.frozen = !p.frozen
	}
}

func (p *Pattern) KeyReleased(input.Button) {}
