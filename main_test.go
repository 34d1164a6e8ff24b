package main

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hush/session"
	"hush/store"
	"hush/zone"
)

func mustParse(t *testing.T, args ...string) *options {
	t.Helper()
	o, err := parseFlags(args, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags(%v): %v", args, err)
	}
	return o
}

func TestEffectiveConfigKeepsStoredWithoutFlags(t *testing.T) {
	stored := zone.Config{Lower: 30, Upper: 80, Sensitivity: 70, Dampening: 10, Persistence: 3 * time.Second}
	got := mustParse(t).effectiveConfig(stored)
	if got != stored {
		t.Errorf("got %+v, want stored %+v", got, stored)
	}
}

func TestEffectiveConfigFlagsOverrideStored(t *testing.T) {
	stored := zone.Config{Lower: 30, Upper: 80, Sensitivity: 70, Dampening: 10, Persistence: 3 * time.Second}
	got := mustParse(t, "-lower", "40", "-persistence", "4s").effectiveConfig(stored)
	want := stored
	want.Lower = 40
	want.Persistence = 4 * time.Second
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestEffectiveConfigFlagAtDefaultStillWins(t *testing.T) {
	stored := zone.Default()
	stored.Lower = 30
	got := mustParse(t, "-lower=25").effectiveConfig(stored)
	if got.Lower != 25 {
		t.Errorf("Lower = %v, want 25", got.Lower)
	}
}

func TestEffectiveConfigNormalizes(t *testing.T) {
	got := mustParse(t, "-lower", "95", "-persistence", "1ms").effectiveConfig(zone.Default())
	if got.Lower != zone.MaxLower {
		t.Errorf("Lower = %v, want %v", got.Lower, zone.MaxLower)
	}
	if got.Upper <= got.Lower {
		t.Errorf("Upper %v not above Lower %v", got.Upper, got.Lower)
	}
	if got.Persistence != zone.MinPersistence {
		t.Errorf("Persistence = %v, want %v", got.Persistence, zone.MinPersistence)
	}
}

func TestParseFlagsRejectsUnknown(t *testing.T) {
	if _, err := parseFlags([]string{"-bogus"}, io.Discard); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestParseFlagsPositionalArgs(t *testing.T) {
	o := mustParse(t, "-test", "clip.wav")
	if !o.test {
		t.Error("test flag not set")
	}
	if len(o.args) != 1 || o.args[0] != "clip.wav" {
		t.Errorf("args = %v", o.args)
	}
}

func TestFlagValue(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"-logpath", "/tmp/x"}, "/tmp/x"},
		{[]string{"--logpath=/tmp/y"}, "/tmp/y"},
		{[]string{"-lower", "30", "-logpath", "./"}, "./"},
		{[]string{"-logpath"}, ""},
		{[]string{"--", "-logpath", "/tmp/z"}, ""},
		{nil, ""},
	}
	for _, c := range cases {
		if got := flagValue(c.args, "logpath"); got != c.want {
			t.Errorf("flagValue(%v) = %q, want %q", c.args, got, c.want)
		}
	}
}

func TestWantsGUI(t *testing.T) {
	if !wantsGUI([]string{"-name", "Sam", "-gui"}) {
		t.Error("expected -gui to be detected")
	}
	if wantsGUI([]string{"-tui"}) {
		t.Error("unexpected gui for -tui")
	}
	if wantsGUI([]string{"--", "-gui"}) {
		t.Error("-gui after -- is not a flag")
	}
}

func TestResolveDataPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HUSH_DATA_PATH", dir)

	got, err := resolveDataPath("")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, dataFile); got != want {
		t.Errorf("env path = %q, want %q", got, want)
	}

	flagPath := filepath.Join(dir, "other.db")
	got, err = resolveDataPath(flagPath)
	if err != nil {
		t.Fatal(err)
	}
	if got != flagPath {
		t.Errorf("flag path = %q, want %q", got, flagPath)
	}
}

func TestLoadConfigFallsBackToDefault(t *testing.T) {
	if got := loadConfig(store.NewMemory()); got != zone.Default() {
		t.Errorf("empty store: got %+v", got)
	}
	if got := loadConfig(store.Unavailable{}); got != zone.Default() {
		t.Errorf("unavailable store: got %+v", got)
	}

	st := store.NewMemory()
	saved := zone.Default()
	saved.Upper = 60
	if err := st.SaveConfig(saved); err != nil {
		t.Fatal(err)
	}
	if got := loadConfig(st); got != saved {
		t.Errorf("got %+v, want %+v", got, saved)
	}
}

func TestOpenStore(t *testing.T) {
	if _, ok := openStore(&options{noStore: true}).(*store.Memory); !ok {
		t.Error("-nostore should give a memory store")
	}

	path := filepath.Join(t.TempDir(), "sub", "hush.db")
	st := openStore(&options{dbPath: path})
	defer st.Close()
	if _, ok := st.(*store.SQLite); !ok {
		t.Fatalf("got %T, want *store.SQLite", st)
	}
	if err := st.SaveConfig(zone.Default()); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
}

func TestDeviceLineText(t *testing.T) {
	if got := deviceLineText(""); got != "mic: system default" {
		t.Errorf("got %q", got)
	}
	if got := deviceLineText("AirPods Pro"); !strings.HasSuffix(got, "(BT!)") {
		t.Errorf("bluetooth device not flagged: %q", got)
	}
}

func TestPrintSink(t *testing.T) {
	var buf bytes.Buffer
	p := newPrintSink(&buf)
	p.SessionStarted("abc")
	p.Transition(zone.Transition{From: zone.Silent, To: zone.Optimal, Intensity: 50})
	p.NoVoiceWarning()
	p.SessionEnded(session.Record{ID: "abc", TotalDuration: 3, GreenZoneTime: 3, PeakIntensity: 50, ConsistencyScore: 100})

	want := "SESSION_START abc\n" +
		"STATE SILENT -> OPTIMAL 50\n" +
		"NO_VOICE\n" +
		"SESSION_END id=abc total=3 green=3 peak=50 drops=0 score=100\n"
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
