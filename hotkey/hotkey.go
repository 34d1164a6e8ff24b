// Package hotkey listens for the global session toggle, Ctrl+Shift+M.
package hotkey

const Combo = "Ctrl+Shift+M"

type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}
