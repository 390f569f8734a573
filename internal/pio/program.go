// Package pio describes the programmable shift state machines that clock
// display bus traffic out of a TX FIFO, together with a host simulation.
package pio

import (
	"errors"
	"fmt"
)

var ErrUnknownEntry = errors.New("pio: unknown program entry")

type ShiftDirection uint8

const (
	ShiftLeft ShiftDirection = iota // most significant bits leave first
	ShiftRight
)

// ClockDivider is the fixed-point state machine clock divisor.
type ClockDivider struct {
	Int  uint16
	Frac uint8
}

// Hz returns the state machine clock for a given system clock.
func (d ClockDivider) Hz(sys float64) float64 {
	div := float64(d.Int) + float64(d.Frac)/256
	if div < 1 {
		div = 1
	}
	return sys / div
}

func (d ClockDivider) String() string { return fmt.Sprintf("%d.%d", d.Int, d.Frac) }

// Entry is a public label of a program. Jumping to it selects how many
// bits are pulled per FIFO word and how many pins are driven per clock.
type Entry struct {
	Name          string
	PullThreshold int
	OutWidth      int
}

// Program is an installed state machine program.
type Program struct {
	Name    string
	Shift   ShiftDirection
	Divider ClockDivider
	Entries []Entry // Entries[0] is where the machine starts
}

func (p Program) entry(name string) (Entry, error) {
	for _, e := range p.Entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w %q in %s", ErrUnknownEntry, name, p.Name)
}

// SerialProgram shifts threshold bits of every word out of one data pin,
// toggling the clock side-set pin once per bit.
func SerialProgram(threshold int, div ClockDivider) Program {
	return Program{
		Name:    fmt.Sprintf("spi%d", threshold),
		Shift:   ShiftLeft,
		Divider: div,
		Entries: []Entry{{Name: "start", PullThreshold: threshold, OutWidth: 1}},
	}
}

// Entry labels of ParallelProgram.
const (
	EntryWide   = "start_tx"
	EntryNarrow = "start_8"
)

// ParallelProgram drives an 8-bit data bus with a write strobe. The narrow
// entry sends one byte per FIFO word, the wide entry sends the high byte
// followed by the low byte of a half word.
func ParallelProgram(div ClockDivider) Program {
	return Program{
		Name:    "parallel8",
		Shift:   ShiftLeft,
		Divider: div,
		Entries: []Entry{
			{Name: EntryNarrow, PullThreshold: 8, OutWidth: 8},
			{Name: EntryWide, PullThreshold: 16, OutWidth: 8},
		},
	}
}
