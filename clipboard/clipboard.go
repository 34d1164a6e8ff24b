// Package clipboard copies session summaries to the system clipboard.
package clipboard

import (
	"errors"

	cb "github.com/atotto/clipboard"
)

var ErrUnsupported = errors.New("no clipboard utility available (install xclip, xsel or wl-clipboard)")

// Available reports whether a clipboard backend was found.
func Available() error {
	if cb.Unsupported {
		return ErrUnsupported
	}
	return nil
}

func Copy(text string) error {
	if err := Available(); err != nil {
		return err
	}
	return cb.WriteAll(text)
}

func Read() (string, error) {
	if err := Available(); err != nil {
		return "", err
	}
	return cb.ReadAll()
}
