// Package hostsim stands in for the board when running on a desktop: GPIO
// pins, the display bus wire and the display controller at its far end.
package hostsim

import (
	"sync"
	"sync/atomic"
)

// Pin is a simulated GPIO. The zero value is a low output.
type Pin struct {
	high atomic.Bool

	mu   sync.Mutex
	fail error
}

func (p *Pin) SetLow() error {
	if err := p.err(); err != nil {
		return err
	}
	p.high.Store(false)
	return nil
}

func (p *Pin) SetHigh() error {
	if err := p.err(); err != nil {
		return err
	}
	p.high.Store(true)
	return nil
}

// Set drives the pin to level v.
func (p *Pin) Set(v bool) { p.high.Store(v) }

func (p *Pin) IsHigh() bool { return p.high.Load() }

// IsLow reports an active-low input as asserted.
func (p *Pin) IsLow() bool { return !p.high.Load() }

// FailWith makes later writes return err. A nil err clears the fault.
func (p *Pin) FailWith(err error) {
	p.mu.Lock()
	p.fail = err
	p.mu.Unlock()
}

func (p *Pin) err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fail
}
