//go:build linux

package beep

import (
	"testing"

	"github.com/jfreymuth/pulse"
)

func TestCueReaderEndsWithLastChunk(t *testing.T) {
	r := cueReader(Cue{1, 2, 3, 4, 5})
	buf := make([]int16, 3)

	n, err := r(buf)
	if n != 3 || err != nil {
		t.Fatalf("first read = %d, %v", n, err)
	}
	n, err = r(buf)
	if n != 2 || err != pulse.EndOfData {
		t.Fatalf("second read = %d, %v; want 2, EndOfData", n, err)
	}
	if buf[0] != 4 || buf[1] != 5 {
		t.Errorf("tail = %v", buf[:2])
	}
}
