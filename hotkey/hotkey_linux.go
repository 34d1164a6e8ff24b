//go:build linux

package hotkey

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const addInputGroup = "run: sudo usermod -aG input $USER, then re-login"

// evdevHotkey reads raw key events from every keyboard under /dev/input,
// so the combo works without a window system.
type evdevHotkey struct {
	keydown chan struct{}
	keyup   chan struct{}
	files   []*os.File
	once    sync.Once
}

func New() Hotkey {
	return &evdevHotkey{
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}
}

func (h *evdevHotkey) Register() error {
	files, found, err := openKeyboards()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("found %d keyboard(s) but could not open any (%s)", found, addInputGroup)
	}
	h.files = files
	for _, f := range files {
		go h.read(f)
	}
	return nil
}

// read runs until the device is closed by Unregister.
func (h *evdevHotkey) read(f *os.File) {
	buf := make([]byte, inputEventSize*16)
	var combo comboTracker
	for {
		n, err := f.Read(buf)
		if err != nil {
			return
		}
		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			switch combo.feed(decodeEvent(buf[i:])) {
			case comboDown:
				notify(h.keydown)
			case comboUp:
				notify(h.keyup)
			}
		}
	}
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (h *evdevHotkey) Unregister() {
	h.once.Do(func() {
		for _, f := range h.files {
			f.Close()
		}
	})
}

func (h *evdevHotkey) Keydown() <-chan struct{} { return h.keydown }
func (h *evdevHotkey) Keyup() <-chan struct{}   { return h.keyup }

// keyboards lists event devices able to produce the combo.
func keyboards() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, fmt.Errorf("scan input devices: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		caps, err := os.ReadFile(filepath.Join("/sys/class/input", e.Name(), "device", "capabilities", "key"))
		if err != nil || !hasComboKeys(string(caps)) {
			continue
		}
		paths = append(paths, filepath.Join("/dev/input", e.Name()))
	}
	if len(paths) == 0 {
		return nil, errors.New("no keyboard devices found (is user in 'input' group?)")
	}
	return paths, nil
}

// openKeyboards opens every readable keyboard; found counts all of them.
func openKeyboards() (files []*os.File, found int, err error) {
	paths, err := keyboards()
	if err != nil {
		return nil, 0, err
	}
	for _, p := range paths {
		if f, err := os.Open(p); err == nil {
			files = append(files, f)
		}
	}
	return files, len(paths), nil
}

func Diagnose() (string, error) {
	files, found, err := openKeyboards()
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("found %d keyboard(s) but cannot open any (%s)", found, addInputGroup)
	}
	first := files[0].Name()
	for _, f := range files {
		f.Close()
	}
	return fmt.Sprintf("%s via %s (%d keyboard(s) found)", Combo, first, found), nil
}
