package display

import (
	"errors"
	"iter"
	"math/bits"
)

var (
	ErrDataFormatNotImplemented = errors.New("display: data format not implemented")
	ErrRS                       = errors.New("display: RS pin")
)

// DataFormat is a payload for Interface. Half words leave the bus most
// significant byte first unless the format says otherwise.
type DataFormat interface {
	dataFormat()
}

type (
	U8        []uint8
	U16       []uint16
	U16BE     []uint16
	U16LE     []uint16 // least significant byte first
	U8Iter    iter.Seq[uint8]
	U16BEIter iter.Seq[uint16]
	U16LEIter iter.Seq[uint16]
	// RGB666Iter expands RGB565 pixels to three bytes each for controllers
	// that only accept 18-bit color on a serial bus.
	RGB666Iter iter.Seq[uint16]
)

func (U8) dataFormat()         {}
func (U16) dataFormat()        {}
func (U16BE) dataFormat()      {}
func (U16LE) dataFormat()      {}
func (U8Iter) dataFormat()     {}
func (U16BEIter) dataFormat()  {}
func (U16LEIter) dataFormat()  {}
func (RGB666Iter) dataFormat() {}

// Interface is a write-only command/data display bus.
type Interface interface {
	SendCommands(cmd DataFormat) error
	SendData(buf DataFormat) error
}

// OutputPin is a digital output such as the register select line.
type OutputPin interface {
	SetLow() error
	SetHigh() error
}

func identity(w uint16) uint16 { return w }

func swap(w uint16) uint16 { return bits.ReverseBytes16(w) }

func packRGB666(px uint16, out []uint8) {
	r := uint8(px >> 11)
	g := uint8(px>>5) & 0x3F
	b := uint8(px) & 0x1F
	out[0] = r<<3 | r>>2
	out[1] = g<<2 | g>>4
	out[2] = b<<3 | b>>2
}
