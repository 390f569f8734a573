package dma

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clintonium-119/gb-rp2350/internal/fault"
)

type sliceTarget[W Word] struct {
	mu  sync.Mutex
	got []W
}

func (s *sliceTarget[W]) Put(w W) {
	s.mu.Lock()
	s.got = append(s.got, w)
	s.mu.Unlock()
}

func waitDone(p interface{ Done(Channel) bool }, ch Channel) {
	for !p.Done(ch) {
		runtime.Gosched()
	}
}

func TestChannel_Other(t *testing.T) {
	assert.Equal(t, B, A.Other())
	assert.Equal(t, A, B.Other())
	assert.Equal(t, "A", A.String())
	assert.Equal(t, "B", B.String())
}

func TestSimEngine_ChainsInStartOrder(t *testing.T) {
	eng := NewSimEngine()
	defer eng.Close()
	to := &sliceTarget[uint16]{}
	p := Bind[uint16](eng, to)

	assert.True(t, p.Done(A), "unused channel reports done")
	p.Start(A, []uint16{1, 2, 3})
	p.Start(B, []uint16{4, 5})
	waitDone(p, A)
	waitDone(p, B)
	p.Start(A, []uint16{6})
	waitDone(p, A)

	assert.Equal(t, []uint16{1, 2, 3, 4, 5, 6}, to.got)
	assert.Equal(t, uint64(2), eng.Completed(A))
	assert.Equal(t, uint64(1), eng.Completed(B))
}

func TestSimEngine_Rebind(t *testing.T) {
	eng := NewSimEngine()
	defer eng.Close()
	bytes := &sliceTarget[uint8]{}
	words := &sliceTarget[uint16]{}

	b := Bind[uint8](eng, bytes)
	b.Start(A, []uint8{0x2A})
	waitDone(b, A)

	w := Bind[uint16](b.Engine(), words)
	w.Start(A, []uint16{0xF800})
	waitDone(w, A)

	assert.Equal(t, []uint8{0x2A}, bytes.got)
	assert.Equal(t, []uint16{0xF800}, words.got)
}

type blockingTarget struct{ release chan struct{} }

func (b blockingTarget) Put(uint8) { <-b.release }

func TestSimEngine_StartWhileBusyHalts(t *testing.T) {
	eng := NewSimEngine()
	to := blockingTarget{release: make(chan struct{})}
	p := Bind[uint8](eng, to)
	p.Start(A, []uint8{1})

	err := func() (err error) {
		defer func() { err = fault.Recover(recover()) }()
		p.Start(A, []uint8{2})
		return nil
	}()
	require.ErrorIs(t, err, ErrChannelBusy)

	close(to.release)
	eng.Close()
}
