package hostsim

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clintonium-119/gb-rp2350/internal/dcs"
)

func TestPin(t *testing.T) {
	var p Pin
	assert.False(t, p.IsHigh())
	require.NoError(t, p.SetHigh())
	assert.True(t, p.IsHigh())
	require.NoError(t, p.SetLow())
	assert.True(t, p.IsLow())

	boom := errors.New("shorted")
	p.FailWith(boom)
	assert.ErrorIs(t, p.SetHigh(), boom)
	p.FailWith(nil)
	assert.NoError(t, p.SetHigh())
}

func TestWire_SerialBitsAndRegisterSelect(t *testing.T) {
	var rs Pin
	tr := &Trace{}
	w := NewWire(&rs, tr)

	for _, bit := range []uint32{0, 0, 1, 0, 1, 1, 0, 0} { // 0x2C
		w.Out(bit, 1)
	}
	rs.Set(true)
	w.Out(0xAB, 8)

	assert.Equal(t, []Event{{Command: true, B: 0x2C}, {B: 0xAB}}, tr.Events())
	assert.Equal(t, []byte{0xAB}, tr.DataBytes())
	assert.Panics(t, func() { w.Out(0, 4) })
}

func TestTee(t *testing.T) {
	a, b := &Trace{}, &Trace{}
	tee := Tee{a, b}
	tee.Command(1)
	tee.Data(2)
	assert.Equal(t, a.Events(), b.Events())
	assert.Len(t, a.Events(), 2)
}

func write(c *Controller, cmd byte, params ...byte) {
	c.Command(cmd)
	for _, p := range params {
		c.Data(p)
	}
}

func TestController_WindowedWrite(t *testing.T) {
	c := NewController(4, 6)
	write(c, dcs.SLPOUT)
	write(c, dcs.COLMOD, dcs.PIXEL16)
	write(c, dcs.DISPON)
	write(c, dcs.CASET, 0, 1, 0, 2)
	write(c, dcs.RASET, 0, 3, 0, 4)
	write(c, dcs.RAMWR, 0xF8, 0x00, 0x07, 0xE0, 0x00, 0x1F, 0xFF, 0xFF, 0x12, 0x34)

	assert.Equal(t, uint16(0x07E0), c.Pixel(2, 3))
	assert.Equal(t, uint16(0x001F), c.Pixel(1, 4))
	assert.Equal(t, uint16(0xFFFF), c.Pixel(2, 4))
	// the fifth pixel wraps to the start of the window
	assert.Equal(t, uint16(0x1234), c.Pixel(1, 3))
	assert.Equal(t, uint16(0), c.Pixel(0, 3))
	assert.Equal(t, 1, c.MemoryWrites())

	on, asleep, inverted, _ := c.State()
	assert.True(t, on)
	assert.False(t, asleep)
	assert.False(t, inverted)
}

func TestController_SwappedAddressMode(t *testing.T) {
	c := NewController(4, 6)
	write(c, dcs.COLMOD, dcs.PIXEL16)
	write(c, dcs.MADCTL, dcs.AddressMode(90, false, false))
	w, h := c.Size()
	assert.Equal(t, 6, w)
	assert.Equal(t, 4, h)

	write(c, dcs.CASET, 0, 0, 0, 5)
	write(c, dcs.RASET, 0, 0, 0, 3)
	write(c, dcs.RAMWR, 0xAB, 0xCD)
	assert.Equal(t, uint16(0xABCD), c.Pixel(0, 0))

	// column 0 is mirrored to the far end of the native rows
	native := c.Native()
	assert.Equal(t, uint16(0xABCD), native[5*4+0])
}

func TestController_EighteenBitPixels(t *testing.T) {
	c := NewController(2, 2)
	write(c, dcs.RAMWR, 0xFF, 0x00, 0xF8)
	assert.Equal(t, uint16(0xF81F), c.Pixel(0, 0))
}

func TestController_RGBA(t *testing.T) {
	c := NewController(1, 1)
	write(c, dcs.COLMOD, dcs.PIXEL16)
	write(c, dcs.RAMWR, 0xF8, 0x00)

	pix, w, h := c.RGBA()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
	assert.Equal(t, []byte{0, 0, 0, 0xFF}, pix, "asleep panel is dark")

	write(c, dcs.SLPOUT)
	write(c, dcs.DISPON)
	pix, _, _ = c.RGBA()
	assert.Equal(t, []byte{0xFF, 0, 0, 0xFF}, pix)

	write(c, dcs.INVON)
	pix, _, _ = c.RGBA()
	assert.Equal(t, []byte{0, 0xFF, 0xFF, 0xFF}, pix)
}

func TestSerialBridge_Frames(t *testing.T) {
	var out bytes.Buffer
	b := NewSerialBridge(&out)
	b.Command(dcs.RAMWR)
	b.Data(0x12)
	b.Data(0x34)
	b.Command(dcs.NOP)
	require.NoError(t, b.Flush())

	assert.Equal(t, []byte{
		'C', 0, 1, dcs.RAMWR,
		'D', 0, 2, 0x12, 0x34,
		'C', 0, 1, dcs.NOP,
	}, out.Bytes())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("unplugged") }

func TestSerialBridge_KeepsFirstError(t *testing.T) {
	b := NewSerialBridge(failWriter{})
	b.Command(1)
	b.Data(2)
	b.Data(3)
	assert.EqualError(t, b.Flush(), "unplugged")
	assert.EqualError(t, b.Close(), "unplugged")
}
