package hotkey

import (
	"encoding/binary"
	"strconv"
	"strings"
)

// Linux input event codes.
const (
	evKey = 1

	keyLeftCtrl   = 29
	keyLeftShift  = 42
	keyM          = 50
	keyRightShift = 54
	keyRightCtrl  = 97
)

const (
	keyReleased = 0
	keyPressed  = 1
	// value 2 is autorepeat
)

// inputEventSize is sizeof(struct input_event) on 64-bit kernels.
const inputEventSize = 24

type inputEvent struct {
	typ   uint16
	code  uint16
	value int32
}

func decodeEvent(b []byte) inputEvent {
	return inputEvent{
		typ:   binary.LittleEndian.Uint16(b[16:]),
		code:  binary.LittleEndian.Uint16(b[18:]),
		value: int32(binary.LittleEndian.Uint32(b[20:])),
	}
}

type comboEdge int

const (
	comboNone comboEdge = iota
	comboDown
	comboUp
)

// comboTracker follows both sides of each modifier across key events from
// one keyboard and reports press and release of Ctrl+Shift+M.
type comboTracker struct {
	ctrl  [2]bool
	shift [2]bool
	held  bool
}

func (c *comboTracker) feed(ev inputEvent) comboEdge {
	if ev.typ != evKey || (ev.value != keyPressed && ev.value != keyReleased) {
		return comboNone
	}
	down := ev.value == keyPressed

	switch ev.code {
	case keyLeftCtrl:
		c.ctrl[0] = down
	case keyRightCtrl:
		c.ctrl[1] = down
	case keyLeftShift:
		c.shift[0] = down
	case keyRightShift:
		c.shift[1] = down
	case keyM:
		switch {
		case down && !c.held && c.modifiers():
			c.held = true
			return comboDown
		case !down && c.held:
			c.held = false
			return comboUp
		}
	}
	return comboNone
}

func (c *comboTracker) modifiers() bool {
	return (c.ctrl[0] || c.ctrl[1]) && (c.shift[0] || c.shift[1])
}

// hasComboKeys reports whether a device's key capability bitmap, as read
// from /sys/class/input/eventN/device/capabilities/key, includes every key
// of the combo. The bitmap is hex words, most significant first.
func hasComboKeys(caps string) bool {
	words := strings.Fields(caps)
	if len(words) == 0 {
		return false
	}
	const wordBits = strconv.IntSize
	for _, code := range []int{keyLeftCtrl, keyLeftShift, keyM} {
		i := len(words) - 1 - code/wordBits
		if i < 0 {
			return false
		}
		w, err := strconv.ParseUint(words[i], 16, wordBits)
		if err != nil || w&(1<<(code%wordBits)) == 0 {
			return false
		}
	}
	return true
}
