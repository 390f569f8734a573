// Package input turns active-low button pins into press and release
// events.
package input

type Button uint8

const (
	A Button = iota
	B
	Select
	Start
	Up
	Down
	Left
	Right
	numButtons
)

var buttonNames = [numButtons]string{"A", "B", "Select", "Start", "Up", "Down", "Left", "Right"}

func (b Button) String() string {
	if b < numButtons {
		return buttonNames[b]
	}
	return "Button(?)"
}

// Pin is a digital input. Buttons pull their pin low while pressed.
type Pin interface {
	IsLow() bool
}

// Keypad receives button edges.
type Keypad interface {
	KeyPressed(b Button)
	KeyReleased(b Button)
}

// Pins assigns an input to every button. Unassigned buttons never fire.
type Pins struct {
	A, B, Select, Start, Up, Down, Left, Right Pin
}

// Mapper remembers the last sampled state of each button so that a held
// button produces one press and, later, one release.
type Mapper struct {
	pins [numButtons]Pin
	held [numButtons]bool
}

func NewMapper(p Pins) *Mapper {
	return &Mapper{pins: [numButtons]Pin{p.A, p.B, p.Select, p.Start, p.Up, p.Down, p.Left, p.Right}}
}

// Poll samples every pin and reports changes since the last poll.
func (m *Mapper) Poll(k Keypad) {
	for i, pin := range m.pins {
		if pin == nil {
			continue
		}
		down := pin.IsLow()
		if down == m.held[i] {
			continue
		}
		m.held[i] = down
		if down {
			k.KeyPressed(Button(i))
		} else {
			k.KeyReleased(Button(i))
		}
	}
}

// Held reports whether b was down at the last poll.
func (m *Mapper) Held(b Button) bool { return b < numButtons && m.held[b] }
