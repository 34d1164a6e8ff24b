package hotkey

import (
	"testing"
	"time"
)

func waitAction(t *testing.T, tg *Toggler) Action {
	t.Helper()
	select {
	case a := <-tg.Actions():
		return a
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for action")
	}
	return 0
}

func TestTapToggles(t *testing.T) {
	fk := NewFake()
	tg := NewToggler(fk, 200*time.Millisecond)
	defer tg.Close()

	fk.Tap()
	if a := waitAction(t, tg); a != ActionToggle {
		t.Fatalf("got %v, want toggle", a)
	}
	fk.Tap()
	if a := waitAction(t, tg); a != ActionToggle {
		t.Fatalf("second tap got %v, want toggle", a)
	}
}

func TestLongPressEnds(t *testing.T) {
	fk := NewFake()
	threshold := 50 * time.Millisecond
	tg := NewToggler(fk, threshold)
	defer tg.Close()

	fk.SimKeydown()
	time.Sleep(threshold + 30*time.Millisecond)
	select {
	case a := <-tg.Actions():
		t.Fatalf("action %v before release", a)
	default:
	}
	fk.SimKeyup()
	if a := waitAction(t, tg); a != ActionEnd {
		t.Fatalf("got %v, want end", a)
	}
}

func TestCloseStopsLoop(t *testing.T) {
	fk := NewFake()
	tg := NewToggler(fk, 50*time.Millisecond)
	tg.Close()
	tg.Close()

	fk.SimKeydown()
	select {
	case a := <-tg.Actions():
		t.Fatalf("action %v after Close", a)
	case <-time.After(100 * time.Millisecond):
	}
}
