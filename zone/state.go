// Package zone classifies displayed intensity into feedback states and
// announces changes to subscribers.
package zone

import "fmt"

// State is a feedback zone.
type State int

const (
	Silent State = iota
	Low
	Optimal
	// Warning is part of the feedback vocabulary (it has a message and an
	// emoji) but Classify never produces it; see DESIGN.md.
	Warning
	Danger
)

// States lists every state in display order.
var States = []State{Silent, Low, Optimal, Warning, Danger}

var stateNames = [...]string{"SILENT", "LOW", "OPTIMAL", "WARNING", "DANGER"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// ParseState is the inverse of String.
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return Silent, fmt.Errorf("unknown state %q", name)
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

type phrase struct {
	emoji string
	plain string
	named string // %s receives the display name
}

var phrases = [...]phrase{
	Silent:  {"🤫", "Waiting for your voice...", "Waiting for your voice, %s..."},
	Low:     {"🔈", "A little louder, please", "A little louder, %s"},
	Optimal: {"✅", "Perfect volume!", "Perfect volume, %s!"},
	Warning: {"⚠️", "Getting loud, ease off a little", "Getting loud, %s, ease off a little"},
	Danger:  {"🔊", "Too loud! Lower your voice", "Too loud, %s! Lower your voice"},
}

// Message returns the feedback text and emoji for s. A non-empty name is
// inserted verbatim.
func Message(s State, name string) (text, emoji string) {
	if s < 0 || int(s) >= len(phrases) {
		return "", ""
	}
	p := phrases[s]
	if name == "" {
		return p.plain, p.emoji
	}
	return fmt.Sprintf(p.named, name), p.emoji
}
