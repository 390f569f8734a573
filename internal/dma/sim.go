package dma

import (
	"sync"
	"sync/atomic"

	"github.com/clintonium-119/gb-rp2350/internal/fault"
)

type simJob struct {
	ch  Channel
	run func()
}

// SimEngine runs channel jobs on a background goroutine standing in for
// the transfer hardware.
type SimEngine struct {
	jobs chan simJob
	busy [2]atomic.Bool
	runs [2]atomic.Uint64

	closeOnce sync.Once
	stopped   chan struct{}
}

func NewSimEngine() *SimEngine {
	e := &SimEngine{
		jobs:    make(chan simJob, 2),
		stopped: make(chan struct{}),
	}
	go e.loop()
	return e
}

func (e *SimEngine) loop() {
	defer close(e.stopped)
	for j := range e.jobs {
		j.run()
		e.runs[j.ch].Add(1)
		e.busy[j.ch].Store(false)
	}
}

func (e *SimEngine) Run(ch Channel, job func()) {
	if !e.busy[ch].CompareAndSwap(false, true) {
		fault.Halt(ErrChannelBusy)
	}
	e.jobs <- simJob{ch: ch, run: job}
}

func (e *SimEngine) Done(ch Channel) bool { return !e.busy[ch].Load() }

// Completed returns the number of jobs ch has finished.
func (e *SimEngine) Completed(ch Channel) uint64 { return e.runs[ch].Load() }

// Close stops the engine after queued jobs finish.
func (e *SimEngine) Close() {
	e.closeOnce.Do(func() { close(e.jobs) })
	<-e.stopped
}
