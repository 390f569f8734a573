package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type pin struct{ low bool }

func (p *pin) IsLow() bool { return p.low }

type edge struct {
	b       Button
	pressed bool
}

type recorder struct{ edges []edge }

func (r *recorder) KeyPressed(b Button)  { r.edges = append(r.edges, edge{b, true}) }
func (r *recorder) KeyReleased(b Button) { r.edges = append(r.edges, edge{b, false}) }

func TestMapper_Edges(t *testing.T) {
	a, start, left := &pin{}, &pin{}, &pin{}
	m := NewMapper(Pins{A: a, Start: start, Left: left})
	r := &recorder{}

	m.Poll(r)
	assert.Empty(t, r.edges)

	a.low, left.low = true, true
	m.Poll(r)
	m.Poll(r) // still held: no repeat
	assert.Equal(t, []edge{{A, true}, {Left, true}}, r.edges)
	assert.True(t, m.Held(A))

	a.low, start.low = false, true
	m.Poll(r)
	assert.Equal(t, []edge{{A, true}, {Left, true}, {A, false}, {Start, true}}, r.edges)
	assert.False(t, m.Held(A))
	assert.False(t, m.Held(Button(42)))
}

func TestButton_String(t *testing.T) {
	assert.Equal(t, "Select", Select.String())
	assert.Equal(t, "Right", Right.String())
	assert.Equal(t, "Button(?)", Button(99).String())
}
