package pio

import (
	"sync"
	"sync/atomic"

	"github.com/clintonium-119/gb-rp2350/internal/dma"
)

// FIFODepth is the TX FIFO depth with the RX FIFO joined to it.
const FIFODepth = 8

// Machine is a state machine that can be started, stopped and redirected.
type Machine interface {
	Start()
	Stop()
	Running() bool
	// Idle reports whether the TX FIFO is empty and the last word has
	// been shifted out.
	Idle() bool
	// Jump forces execution to a public entry of the loaded program.
	Jump(entry string) error
}

// Pins receives the state of the output pins on every clock.
type Pins interface {
	Out(value uint32, width int)
}

// SimMachine executes a Program on a goroutine, clocking FIFO words out to
// Pins.
type SimMachine struct {
	prog Program
	pins Pins
	fifo chan uint32

	pending atomic.Int32

	mu      sync.Mutex
	cond    *sync.Cond
	running bool
	closed  bool
	entry   Entry
}

// NewSimMachine loads prog in the stopped state.
func NewSimMachine(prog Program, pins Pins) *SimMachine {
	m := &SimMachine{
		prog:  prog,
		pins:  pins,
		fifo:  make(chan uint32, FIFODepth),
		entry: prog.Entries[0],
	}
	m.cond = sync.NewCond(&m.mu)
	go m.loop()
	return m
}

func (m *SimMachine) Start() { m.setRunning(true) }
func (m *SimMachine) Stop()  { m.setRunning(false) }

func (m *SimMachine) setRunning(v bool) {
	m.mu.Lock()
	m.running = v
	m.mu.Unlock()
	m.cond.Broadcast()
}

func (m *SimMachine) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *SimMachine) Idle() bool { return m.pending.Load() == 0 }

func (m *SimMachine) Jump(name string) error {
	e, err := m.prog.entry(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entry = e
	m.mu.Unlock()
	return nil
}

// Put pushes a word into the TX FIFO, blocking while it is full.
func (m *SimMachine) Put(w uint32) {
	m.pending.Add(1)
	m.fifo <- w
}

// Close stops the execution goroutine once the FIFO has drained.
func (m *SimMachine) Close() {
	close(m.fifo)
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cond.Broadcast()
}

func (m *SimMachine) loop() {
	for w := range m.fifo {
		e, ok := m.await()
		if ok {
			m.shift(w, e)
		}
		m.pending.Add(-1)
	}
}

// await blocks while the machine is stopped and returns the active entry.
func (m *SimMachine) await() (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for !m.running && !m.closed {
		m.cond.Wait()
	}
	return m.entry, m.running
}

func (m *SimMachine) shift(w uint32, e Entry) {
	groups := e.PullThreshold / e.OutWidth
	mask := uint32(1)<<e.OutWidth - 1
	if m.prog.Shift == ShiftLeft {
		for i := groups - 1; i >= 0; i-- {
			m.pins.Out(w>>(i*e.OutWidth)&mask, e.OutWidth)
		}
		return
	}
	for i := 0; i < groups; i++ {
		m.pins.Out(w>>(i*e.OutWidth)&mask, e.OutWidth)
	}
}

// TX is a typed view of a machine's TX FIFO, usable as a transfer target.
type TX[W dma.Word] struct {
	m *SimMachine
}

func NewTX[W dma.Word](m *SimMachine) TX[W] { return TX[W]{m: m} }

func (t TX[W]) Put(w W) { t.m.Put(uint32(w)) }
