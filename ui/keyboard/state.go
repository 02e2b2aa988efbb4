// Package keyboard reports whether text entry is currently possible.
//
// Terminals have no on-screen keyboard, so the signal comes from terminal focus
// reporting: losing focus closes the keyboard and regaining it opens it again.
// Programs must be started with tea.WithReportFocus for the signal to arrive.
package keyboard

import tea "github.com/charmbracelet/bubbletea"

// State is the keyboard visibility
type State int

const (
	// Closed means the terminal lost focus and keys go elsewhere
	Closed State = iota
	// Open means the terminal has focus and accepts typing
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// StateMsg announces a keyboard visibility change
type StateMsg struct {
	State State
}

// FromTeaMsg translates terminal focus messages into a StateMsg
func FromTeaMsg(msg tea.Msg) (StateMsg, bool) {
	switch msg.(type) {
	case tea.FocusMsg:
		return StateMsg{State: Open}, true
	case tea.BlurMsg:
		return StateMsg{State: Closed}, true
	}
	return StateMsg{}, false
}
