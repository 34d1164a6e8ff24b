package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"hush/engine"
	"hush/store"
	"hush/zone"
)

type quietSource struct{}

func (quietSource) Initialize() error { return nil }
func (quietSource) Start() error      { return nil }
func (quietSource) Stop()             {}
func (quietSource) Level() float64    { return 0 }

func TestDriveTest(t *testing.T) {
	var events, out bytes.Buffer
	st := store.NewMemory()
	eng := engine.New(engine.Options{
		Source: quietSource{},
		Store:  st,
		Sink:   newPrintSink(&events),
		Config: zone.Default(),
		NewID:  func() string { return "s1" },
	})
	ctx, cancel := context.WithCancel(context.Background())
	go eng.Run(ctx)

	done := make(chan struct{})
	close(done)
	in := strings.NewReader("START\nSTATS\nEND\nEND\nSLEEP 1\nWAIT_AUDIO_DONE\nSTATS\nQUIT\nSTART\n")
	driveTest(in, &out, eng, st, done)

	cancel()
	<-eng.Done()

	got := out.String()
	for _, want := range []string{"STATS count=0", "NO_SESSION", "STATS count=1"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	ev := events.String()
	if !strings.Contains(ev, "SESSION_START s1") || !strings.Contains(ev, "SESSION_END id=s1") {
		t.Errorf("events:\n%s", ev)
	}
	if strings.Count(ev, "SESSION_START") != 1 {
		t.Errorf("commands after QUIT ran:\n%s", ev)
	}
}
