package hostsim

import (
	"fmt"
	"sync"
)

// Bus receives decoded display bus traffic.
type Bus interface {
	Command(b byte)
	Data(b byte)
}

// Wire assembles state machine pin output into bytes and tags each one
// with the level of the register select pin: low for a command, high for
// data.
type Wire struct {
	rs  *Pin
	bus Bus

	acc  byte
	bits int
}

func NewWire(rs *Pin, bus Bus) *Wire {
	return &Wire{rs: rs, bus: bus}
}

func (w *Wire) Out(v uint32, width int) {
	switch width {
	case 1:
		w.acc = w.acc<<1 | byte(v&1)
		w.bits++
		if w.bits < 8 {
			return
		}
		w.bits = 0
		w.emit(w.acc)
	case 8:
		w.emit(byte(v))
	default:
		panic(fmt.Sprintf("hostsim: unsupported bus width %d", width))
	}
}

func (w *Wire) emit(b byte) {
	if w.rs.IsHigh() {
		w.bus.Data(b)
		return
	}
	w.bus.Command(b)
}

// Event is one byte seen on the bus.
type Event struct {
	Command bool
	B       byte
}

// Trace records bus traffic.
type Trace struct {
	mu     sync.Mutex
	events []Event
}

func (t *Trace) Command(b byte) { t.add(Event{Command: true, B: b}) }
func (t *Trace) Data(b byte)    { t.add(Event{B: b}) }

func (t *Trace) add(e Event) {
	t.mu.Lock()
	t.events = append(t.events, e)
	t.mu.Unlock()
}

// Events returns a copy of everything recorded so far.
func (t *Trace) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Event(nil), t.events...)
}

// DataBytes returns the data bytes recorded so far.
func (t *Trace) DataBytes() []byte {
	var out []byte
	for _, e := range t.Events() {
		if !e.Command {
			out = append(out, e.B)
		}
	}
	return out
}

// Tee forwards traffic to several buses.
type Tee []Bus

func (t Tee) Command(b byte) {
	for _, bus := range t {
		bus.Command(b)
	}
}

func (t Tee) Data(b byte) {
	for _, bus := range t {
		bus.Data(b)
	}
}
