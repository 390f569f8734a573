package source

import (
	"iter"

	"github.com/clintonium-119/gb-rp2350/internal/input"
)

// Core is an emulation core that draws into a Screen as it runs.
type Core interface {
	// Tick advances emulation by one step.
	Tick()
	input.Keypad
}

// Handler turns a Core drawing into a LineScreen into a pixel iterator.
// Buttons are polled once per completed scanline.
type Handler struct {
	core   Core
	screen *LineScreen
	input  *input.Mapper
	x      int
}

// NewHandler returns a Handler over core, which must draw into screen.
// buttons may be nil.
func NewHandler(core Core, screen *LineScreen, buttons *input.Mapper) *Handler {
	return &Handler{core: core, screen: screen, input: buttons}
}

// Next returns the next pixel of the frame, ticking the core until a
// scanline is ready. ok is false once at the end of every frame; the call
// after that starts the next frame.
func (h *Handler) Next() (px uint16, ok bool) {
	for {
		s := h.screen
		if s.frameEnd {
			s.frameEnd = false
			return 0, false
		}
		if !s.complete {
			h.core.Tick()
			continue
		}
		px = s.line[h.x]
		h.x++
		if h.x == Width {
			h.x = 0
			s.complete = false
			if h.input != nil {
				h.input.Poll(h.core)
			}
		}
		return px, true
	}
}

// Frame yields the pixels of one frame.
func (h *Handler) Frame() iter.Seq[uint16] {
	return func(yield func(uint16) bool) {
		for {
			px, ok := h.Next()
			if !ok || !yield(px) {
				return
			}
		}
	}
}
