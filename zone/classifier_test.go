package zone

import (
	"strings"
	"testing"
	"time"
)

func TestClassifierFiresOnChangeOnly(t *testing.T) {
	c := NewClassifier(Config{Lower: 25, Upper: 75})
	var got []Transition
	c.Subscribe(func(tr Transition) { got = append(got, tr) })

	now := time.Unix(0, 0)
	for _, v := range []float64{0, 0, 50, 50, 50, 90, 90, 10, 0} {
		c.Update(v, now)
		now = now.Add(100 * time.Millisecond)
	}

	want := []struct{ from, to State }{
		{Silent, Optimal},
		{Optimal, Danger},
		{Danger, Low},
		{Low, Silent},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d transitions, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].From != w.from || got[i].To != w.to {
			t.Errorf("transition %d = %v->%v, want %v->%v", i, got[i].From, got[i].To, w.from, w.to)
		}
	}
}

func TestClassifierNotifiesInOrder(t *testing.T) {
	c := NewClassifier(Default())
	var order []string
	c.Subscribe(func(Transition) { order = append(order, "a") })
	id := c.Subscribe(func(Transition) { order = append(order, "b") })
	c.Subscribe(func(Transition) { order = append(order, "c") })

	c.Update(50, time.Unix(0, 0))
	if strings.Join(order, "") != "abc" {
		t.Fatalf("order = %v, want abc", order)
	}

	c.Unsubscribe(id)
	order = nil
	c.Update(95, time.Unix(1, 0))
	if strings.Join(order, "") != "ac" {
		t.Fatalf("after unsubscribe order = %v, want ac", order)
	}
}

func TestClassifierMessageUsesName(t *testing.T) {
	c := NewClassifier(Default())
	c.SetName("Ana")
	tr, ok := c.Update(50, time.Unix(0, 0))
	if !ok {
		t.Fatal("expected transition")
	}
	if tr.Message != "Perfect volume, Ana!" {
		t.Errorf("message = %q", tr.Message)
	}
	if tr.Emoji == "" {
		t.Error("missing emoji")
	}
}

func TestClassifierConfigAppliesNextUpdate(t *testing.T) {
	c := NewClassifier(Config{Lower: 25, Upper: 75})
	c.Update(60, time.Unix(0, 0))
	if c.Current() != Optimal {
		t.Fatalf("state = %v, want OPTIMAL", c.Current())
	}
	c.SetConfig(Config{Lower: 25, Upper: 50})
	tr, ok := c.Update(60, time.Unix(1, 0))
	if !ok || tr.To != Danger {
		t.Errorf("after narrowing band got %v (ok=%v), want DANGER", tr.To, ok)
	}
}

func TestMessageCoversAllStates(t *testing.T) {
	for _, s := range States {
		text, emoji := Message(s, "")
		if text == "" || emoji == "" {
			t.Errorf("state %v has no message", s)
		}
		named, _ := Message(s, "Zoe")
		if !strings.Contains(named, "Zoe") {
			t.Errorf("state %v named message %q lacks name", s, named)
		}
	}
}

func TestParseStateRoundTrip(t *testing.T) {
	for _, s := range States {
		got, err := ParseState(s.String())
		if err != nil || got != s {
			t.Errorf("ParseState(%q) = %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseState("LOUD"); err == nil {
		t.Error("expected error for unknown state")
	}
}
