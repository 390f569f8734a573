// Package dma models a pair of transfer channels that copy a buffer into a
// peripheral FIFO without CPU involvement.
package dma

import "errors"

// Word is the unit moved by one channel write.
type Word interface {
	~uint8 | ~uint16
}

// Channel selects one of the two channels of a Pair.
type Channel uint8

const (
	A Channel = iota
	B
)

// Other returns the opposite channel.
func (c Channel) Other() Channel { return c ^ 1 }

func (c Channel) String() string {
	if c == A {
		return "A"
	}
	return "B"
}

var ErrChannelBusy = errors.New("dma: channel started while busy")

// Target is an endless write target such as a state machine TX FIFO. Put
// blocks while the target is full.
type Target[W Word] interface {
	Put(w W)
}

// Engine is an exclusively owned handle to two hardware channels. Jobs
// started on either channel run in start order; a job on one channel begins
// only after the job started before it has finished, which chains the two
// channels back to back.
type Engine interface {
	// Run starts job on ch. Starting a channel that has not completed its
	// previous job is a programming error and halts.
	Run(ch Channel, job func())
	// Done reports whether the last job started on ch has finished. A
	// channel that never ran is done.
	Done(ch Channel) bool
}

// Pair moves typed buffers to a fixed target over an Engine.
type Pair[W Word] interface {
	Start(ch Channel, src []W)
	Done(ch Channel) bool
}

// Bound is the Pair produced by Bind.
type Bound[W Word] struct {
	eng Engine
	to  Target[W]
}

// Bind attaches the channels of eng to the target to. The engine may be
// rebound to another target once both channels are done.
func Bind[W Word](eng Engine, to Target[W]) *Bound[W] {
	return &Bound[W]{eng: eng, to: to}
}

func (b *Bound[W]) Start(ch Channel, src []W) {
	to := b.to
	b.eng.Run(ch, func() {
		for _, w := range src {
			to.Put(w)
		}
	})
}

func (b *Bound[W]) Done(ch Channel) bool { return b.eng.Done(ch) }

// Engine returns the underlying channels.
func (b *Bound[W]) Engine() Engine { return b.eng }
