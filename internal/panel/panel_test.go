package panel

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clintonium-119/gb-rp2350/internal/dcs"
	"github.com/clintonium-119/gb-rp2350/internal/display"
	"github.com/clintonium-119/gb-rp2350/internal/dma"
	"github.com/clintonium-119/gb-rp2350/internal/hostsim"
	"github.com/clintonium-119/gb-rp2350/internal/pio"
)

// recordingBus captures what the driver asks the bus to send.
type recordingBus struct {
	cmds []byte
	fail error
}

func (r *recordingBus) SendCommands(f display.DataFormat) error {
	if r.fail != nil {
		return r.fail
	}
	r.cmds = append(r.cmds, f.(display.U8)...)
	return nil
}

func (r *recordingBus) SendData(display.DataFormat) error { return r.fail }

func noDelay(time.Duration) {}

func TestInit_Sequence(t *testing.T) {
	bus := &recordingBus{}
	var waited time.Duration
	p := New(bus, Options{Width: 240, Height: 320, Rotation: 90, Delay: func(d time.Duration) { waited += d }}, nil)
	require.NoError(t, p.Init())

	assert.Equal(t, []byte{
		dcs.SWRESET, dcs.MADCTL, dcs.INVCTR, dcs.INVOFF, dcs.COLMOD, dcs.NORON, dcs.SLPOUT, dcs.DISPON,
	}, bus.cmds)
	assert.Equal(t, 265*time.Millisecond, waited)

	w, h := p.Size()
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)
}

func TestInit_PropagatesBusErrors(t *testing.T) {
	boom := errors.New("bus down")
	p := New(&recordingBus{fail: boom}, Options{Width: 10, Height: 10, Delay: noDelay}, nil)
	assert.ErrorIs(t, p.Init(), boom)
}

func TestSetAddressWindow_Bounds(t *testing.T) {
	p := New(&recordingBus{}, Options{Width: 240, Height: 320, Delay: noDelay}, nil)
	assert.NoError(t, p.SetAddressWindow(0, 0, 239, 319))
	assert.ErrorIs(t, p.SetAddressWindow(0, 0, 240, 10), ErrWindow)
	assert.ErrorIs(t, p.SetAddressWindow(5, 5, 4, 10), ErrWindow)
	require.NoError(t, p.SetOrientation(270, false))
	assert.NoError(t, p.SetAddressWindow(0, 0, 319, 239))
}

// rig wires a panel to a simulated controller through the full SPI path.
func rig(t *testing.T, opts Options) (*Panel, *hostsim.Controller, *display.SPILink) {
	rs := &hostsim.Pin{}
	ctl := hostsim.NewController(opts.Width, opts.Height)
	wire := hostsim.NewWire(rs, ctl)
	div := pio.ClockDivider{Int: 3}
	narrow := pio.NewSimMachine(pio.SerialProgram(8, div), wire)
	wide := pio.NewSimMachine(pio.SerialProgram(16, div), wire)
	eng := dma.NewSimEngine()
	link := display.NewSPILink(rs,
		display.Lane[uint8]{SM: narrow, TX: pio.NewTX[uint8](narrow)},
		display.Lane[uint16]{SM: wide, TX: pio.NewTX[uint16](wide)},
		display.NewStreamer(eng, make([]uint16, 3*32)), nil)
	t.Cleanup(func() {
		narrow.Close()
		wide.Close()
		eng.Close()
	})
	opts.Delay = noDelay
	return New(link, opts, nil), ctl, link
}

func settle(l *display.SPILink) {
	for !l.Idle() {
		runtime.Gosched()
	}
}

func TestDrawRawIter_ReachesController(t *testing.T) {
	p, ctl, link := rig(t, Options{Width: 8, Height: 12, Rotation: 90})
	require.NoError(t, p.Init())
	require.NoError(t, p.Clear(0x0000))

	require.NoError(t, p.DrawRawIter(2, 1, 4, 2, func(yield func(uint16) bool) {
		for i := uint16(1); i <= 6; i++ {
			if !yield(i) {
				return
			}
		}
	}))
	settle(link)

	w, h := ctl.Size()
	assert.Equal(t, 12, w)
	assert.Equal(t, 8, h)
	assert.Equal(t, uint16(1), ctl.Pixel(2, 1))
	assert.Equal(t, uint16(3), ctl.Pixel(4, 1))
	assert.Equal(t, uint16(4), ctl.Pixel(2, 2))
	assert.Equal(t, uint16(6), ctl.Pixel(4, 2))
	assert.Equal(t, uint16(0), ctl.Pixel(5, 2))

	on, asleep, inverted, madctl := ctl.State()
	assert.True(t, on)
	assert.False(t, asleep)
	assert.False(t, inverted)
	assert.Equal(t, dcs.AddressMode(90, false, false), madctl)
}

func TestDrawRawIter_EighteenBit(t *testing.T) {
	p, ctl, link := rig(t, Options{Width: 4, Height: 4, Format: RGB666, InvertColors: true})
	require.NoError(t, p.Init())
	require.NoError(t, p.DrawRawIter(0, 0, 0, 0, func(yield func(uint16) bool) { yield(0x07E0) }))
	settle(link)

	assert.Equal(t, uint16(0x07E0), ctl.Pixel(0, 0))
	_, _, inverted, _ := ctl.State()
	assert.True(t, inverted)
}
