package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clintonium-119/gb-rp2350/internal/cart"
	"github.com/clintonium-119/gb-rp2350/internal/input"
	"github.com/clintonium-119/gb-rp2350/internal/rom"
	"github.com/clintonium-119/gb-rp2350/internal/scaler"
	"github.com/clintonium-119/gb-rp2350/internal/storage"
)

// countingPin is an input that counts how often it is sampled.
type countingPin struct {
	low     bool
	samples int
}

func (p *countingPin) IsLow() bool {
	p.samples++
	return p.low
}

func TestRGB565(t *testing.T) {
	assert.Equal(t, uint16(0xFFFF), RGB565(0xFF, 0xFF, 0xFF))
	assert.Equal(t, uint16(0x0000), RGB565(0x07, 0x03, 0x07))
	assert.Equal(t, uint16(0x0821), RGB565(0x08, 0x04, 0x08))
	assert.Equal(t, uint16(0xF800), RGB565(0xFF, 0, 0))
	assert.Equal(t, uint16(0x07E0), RGB565(0, 0xFF, 0))
	assert.Equal(t, uint16(0x001F), RGB565(0, 0, 0xFF))
}

func count(h *Handler) (n int) {
	for range h.Frame() {
		n++
	}
	return n
}

func TestHandler_OneFramePerSequence(t *testing.T) {
	screen := NewLineScreen()
	core := NewPattern(screen)
	h := NewHandler(core, screen, nil)

	assert.Equal(t, Width*Height, count(h))
	assert.Equal(t, 1, core.Frames())
	assert.Equal(t, Width*Height, count(h))
	assert.Equal(t, 2, core.Frames())
}

func TestHandler_PixelOrder(t *testing.T) {
	screen := NewLineScreen()
	h := NewHandler(NewPattern(screen), screen, nil)
	var px []uint16
	for p := range h.Frame() {
		px = append(px, p)
	}
	require.Len(t, px, Width*Height)
	// first bar is white, last is black
	assert.Equal(t, uint16(0xFFFF), px[0])
	assert.Equal(t, uint16(0x0000), px[Width-1])
	// bottom quarter is a grey ramp from black to white
	last := px[(Height-1)*Width:]
	assert.Equal(t, uint16(0x0000), last[0])
	assert.Equal(t, uint16(0xFFFF), last[Width-1])
}

func TestHandler_PollsInputOncePerLine(t *testing.T) {
	screen := NewLineScreen()
	core := NewPattern(screen)
	pin := &countingPin{low: true}
	h := NewHandler(core, screen, input.NewMapper(input.Pins{A: pin}))

	count(h)
	assert.Equal(t, Height, pin.samples)
	assert.True(t, core.frozen)

	// A stays held: no second press, pattern stays frozen
	count(h)
	assert.True(t, core.frozen)
	pin.low = false
	count(h)
	assert.True(t, core.frozen)
}

func TestHandler_FeedsScaler(t *testing.T) {
	screen := NewLineScreen()
	h := NewHandler(NewPattern(screen), screen, nil)
	s := scaler.New[uint16](h, Width, Height, 320, 240)

	for frame := 0; frame < 2; frame++ {
		n := 0
		for range s.All() {
			n++
		}
		assert.Equal(t, 320*240, n, "frame %d", frame)
	}
}

func testROM(banks int) storage.Region {
	img := make(storage.Region, banks*storage.BankSize)
	for i := range img {
		img[i] = byte(i / storage.BankSize)
	}
	img[0x0147] = 0x19 // MBC5
	return img
}

func TestROMViewer_ReadsThroughBankCache(t *testing.T) {
	store, err := rom.NewStore(testROM(8), 2, nil)
	require.NoError(t, err)
	c, _ := cart.NewCartridge(store)
	require.IsType(t, &cart.MBC5{}, c)

	screen := NewLineScreen()
	v := NewROMViewer(screen, c, store.Banks())
	h := NewHandler(v, screen, nil)

	// bank 1 is all 0x01: left pixel palette[0], right palette[1]
	px, ok := h.Next()
	require.True(t, ok)
	p0 := v.palette[0]
	assert.Equal(t, RGB565(p0[0], p0[1], p0[2]), px)
	px, _ = h.Next()
	p1 := v.palette[1]
	assert.Equal(t, RGB565(p1[0], p1[1], p1[2]), px)
	assert.Equal(t, []int{1}, store.Cached())

	v.KeyPressed(input.Up)
	v.KeyPressed(input.Up)
	assert.Equal(t, 3, v.Bank())
	for range h.Frame() {
	}
	count(h)
	assert.Equal(t, []int{1, 3}, store.Cached())

	v.KeyPressed(input.Down)
	v.KeyPressed(input.Down)
	v.KeyPressed(input.Down)
	assert.Equal(t, 7, v.Bank())
}

func TestROMViewer_Scroll(t *testing.T) {
	img := testROM(2)
	img[storage.BankSize+pageBytes] = 0xF0
	c, _ := cart.NewCartridge(rom.NewStatic(img))
	screen := NewLineScreen()
	v := NewROMViewer(screen, c, 2)
	h := NewHandler(v, screen, nil)

	v.KeyPressed(input.Right)
	assert.Equal(t, pageBytes, v.Offset())
	px, _ := h.Next()
	p := v.palette[0xF]
	assert.Equal(t, RGB565(p[0], p[1], p[2]), px)

	v.KeyPressed(input.Left)
	v.KeyPressed(input.Left)
	assert.Equal(t, windowSize-pageBytes, v.Offset())
}
