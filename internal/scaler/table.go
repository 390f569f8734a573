// Package scaler point-scales a native-resolution pixel stream to the
// display resolution.
package scaler

import "fmt"

// Table maps each source position to the first output position it no
// longer covers. Source position i fills [Table[i-1], Table[i]).
type Table []int

// NewTable builds the boundary table for scaling in positions to out
// positions: Table[i] = ceil((i+1) * out / in).
func NewTable(in, out int) Table {
	if in <= 0 || out <= 0 {
		panic(fmt.Sprintf("scaler: invalid table dimensions %d -> %d", in, out))
	}
	t := make(Table, in)
	for i := range t {
		t[i] = ((i+1)*out + in - 1) / in
	}
	return t
}

// Span returns the output range covered by source position i.
func (t Table) Span(i int) (start, end int) {
	if i > 0 {
		start = t[i-1]
	}
	return start, t[i]
}

// Out is the output dimension.
func (t Table) Out() int {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1]
}
