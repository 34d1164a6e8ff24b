package hotkey

import (
	"time"
)

type Action int

const (
	// ActionToggle starts a session when idle and ends the active one.
	ActionToggle Action = iota
	// ActionEnd ends the active session and never starts one.
	ActionEnd
)

func (a Action) String() string {
	if a == ActionEnd {
		return "end"
	}
	return "toggle"
}

// Toggler turns raw key events into session actions: a tap toggles, a
// press held for at least longPress ends.
type Toggler struct {
	actions chan Action
	stop    chan struct{}
}

func NewToggler(hk Hotkey, longPress time.Duration) *Toggler {
	t := &Toggler{
		actions: make(chan Action, 1),
		stop:    make(chan struct{}),
	}
	go t.run(hk, longPress)
	return t
}

func (t *Toggler) Actions() <-chan Action { return t.actions }

// Close stops the event loop.
func (t *Toggler) Close() {
	select {
	case <-t.stop:
	default:
		close(t.stop)
	}
}

func (t *Toggler) run(hk Hotkey, longPress time.Duration) {
	for {
		select {
		case <-t.stop:
			return
		case <-hk.Keydown():
		}

		timer := time.NewTimer(longPress)
		action := ActionToggle
		select {
		case <-t.stop:
			timer.Stop()
			return
		case <-timer.C:
			action = ActionEnd
			select {
			case <-hk.Keyup():
			case <-t.stop:
				return
			}
		case <-hk.Keyup():
			timer.Stop()
		}

		select {
		case t.actions <- action:
		case <-t.stop:
			return
		}
	}
}
