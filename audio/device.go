package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// FindDevice returns the first capture device whose name contains name,
// case-insensitively. An empty name selects the system default (nil).
func FindDevice(ctx Context, name string) (*DeviceInfo, error) {
	if name == "" {
		return nil, nil
	}
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	want := strings.ToLower(name)
	for i := range devices {
		if strings.Contains(strings.ToLower(devices[i].Name), want) {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("no capture device matching %q", name)
}

// ErrSelectCancelled is returned when the picker is dismissed with Ctrl+C.
var ErrSelectCancelled = errors.New("device selection cancelled")

type pickKey int

const (
	pickNone pickKey = iota
	pickUp
	pickDown
	pickConfirm
	pickCancel
)

// decodePickKey maps one raw-mode read to a picker action: arrows or
// j/k move, Enter confirms, Ctrl+C cancels.
func decodePickKey(b []byte) pickKey {
	switch {
	case len(b) == 3 && b[0] == 0x1b && b[1] == '[' && b[2] == 'A':
		return pickUp
	case len(b) == 3 && b[0] == 0x1b && b[1] == '[' && b[2] == 'B':
		return pickDown
	case len(b) != 1:
		return pickNone
	}
	switch b[0] {
	case '\r', '\n':
		return pickConfirm
	case 3:
		return pickCancel
	case 'k':
		return pickUp
	case 'j':
		return pickDown
	}
	return pickNone
}

type picker struct {
	devices []DeviceInfo
	cursor  int
}

// move applies k and reports whether the picker is finished.
func (p *picker) move(k pickKey) bool {
	switch k {
	case pickUp:
		p.cursor = max(p.cursor-1, 0)
	case pickDown:
		p.cursor = min(p.cursor+1, len(p.devices)-1)
	case pickConfirm, pickCancel:
		return true
	}
	return false
}

// height is the number of terminal lines render writes.
func (p *picker) height() int { return len(p.devices) + 2 }

func (p *picker) render(w io.Writer) {
	fmt.Fprint(w, "\r\x1b[J")
	fmt.Fprint(w, "Select microphone to meter (↑/↓, Enter to confirm):\r\n\r\n")
	for i, d := range p.devices {
		tag := ""
		if d.Bluetooth() {
			tag = " \x1b[33m[⚠ Bluetooth: meter may lag]\x1b[0m"
		}
		if i == p.cursor {
			fmt.Fprintf(w, "  \x1b[1;36m▶ %s%s\x1b[0m\r\n", d.Name, tag)
		} else {
			fmt.Fprintf(w, "    %s%s\r\n", d.Name, tag)
		}
	}
}

// SelectDevice lets the user pick a capture device in the terminal. A
// single device is returned without prompting.
func SelectDevice(ctx Context) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	switch len(devices) {
	case 0:
		return nil, errors.New("no capture devices found")
	case 1:
		return &devices[0], nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	p := &picker{devices: devices}
	p.render(os.Stdout)
	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		k := decodePickKey(buf[:n])
		if p.move(k) {
			fmt.Print("\r\n")
			if k == pickCancel {
				return nil, ErrSelectCancelled
			}
			return &devices[p.cursor], nil
		}
		fmt.Printf("\x1b[%dA", p.height())
		p.render(os.Stdout)
	}
}
