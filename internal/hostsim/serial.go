package hostsim

import (
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"
)

// Frame kinds written by SerialBridge.
const (
	FrameCommand = 'C'
	FrameData    = 'D'
)

const maxFramePayload = 512

// SerialBridge forwards bus traffic to an external display adapter over a
// USB serial port. Consecutive bytes of one kind are batched into frames of
// kind, big-endian 16-bit length and payload.
type SerialBridge struct {
	mu   sync.Mutex
	w    io.Writer
	port serial.Port
	kind byte
	buf  []byte
	err  error
}

// NewSerialBridge writes frames to w.
func NewSerialBridge(w io.Writer) *SerialBridge {
	return &SerialBridge{w: w, buf: make([]byte, 0, maxFramePayload)}
}

// OpenSerialBridge opens the named port at baud, 8N1, with DTR raised.
func OpenSerialBridge(name string, baud int) (*SerialBridge, error) {
	p, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("serial bridge: open %s: %w", name, err)
	}
	if err := p.SetDTR(true); err != nil {
		p.Close()
		return nil, fmt.Errorf("serial bridge: set DTR: %w", err)
	}
	b := NewSerialBridge(p)
	b.port = p
	return b, nil
}

// SerialPorts lists the serial ports present on the host.
func SerialPorts() ([]string, error) { return serial.GetPortsList() }

func (b *SerialBridge) Command(v byte) { b.add(FrameCommand, v) }
func (b *SerialBridge) Data(v byte)    { b.add(FrameData, v) }

func (b *SerialBridge) add(kind, v byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if kind != b.kind || len(b.buf) == maxFramePayload {
		b.flush()
	}
	b.kind = kind
	b.buf = append(b.buf, v)
}

func (b *SerialBridge) flush() {
	if len(b.buf) == 0 || b.err != nil {
		b.buf = b.buf[:0]
		return
	}
	hdr := [3]byte{b.kind, byte(len(b.buf) >> 8), byte(len(b.buf))}
	if _, err := b.w.Write(hdr[:]); err != nil {
		b.err = err
	} else if _, err := b.w.Write(b.buf); err != nil {
		b.err = err
	}
	b.buf = b.buf[:0]
}

// Flush writes any batched bytes and reports the first write error.
func (b *SerialBridge) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flush()
	if b.err == nil && b.port != nil {
		b.err = b.port.Drain()
	}
	return b.err
}

// Close flushes and closes the port if the bridge opened one.
func (b *SerialBridge) Close() error {
	err := b.Flush()
	if b.port != nil {
		b.port.SetDTR(false)
		if cerr := b.port.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
