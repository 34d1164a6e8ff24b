package log

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hush/session"
	"hush/zone"
)

func setupLogDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	t.Cleanup(func() { Close(); SetDir("") })
	return tmp
}

func TestResolveDirFlag(t *testing.T) {
	got, err := ResolveDir("/tmp/mylog")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/mylog" {
		t.Errorf("got %q, want /tmp/mylog", got)
	}
}

func TestResolveDirFlagRelative(t *testing.T) {
	got, err := ResolveDir("logs")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(wd, "logs")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("HUSH_LOG_PATH", "/tmp/hush-env-log")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/hush-env-log" {
		t.Errorf("got %q, want /tmp/hush-env-log", got)
	}
}

func TestResolveDirDefault(t *testing.T) {
	t.Setenv("HUSH_LOG_PATH", "")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got == "" {
		t.Error("expected non-empty default directory")
	}
}

func TestInitCreatesFiles(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{DiagnosticsFile, SessionsFile} {
		path := filepath.Join(tmp, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}
}

func TestSessionEndWritesSummary(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	SessionEnd(session.Record{
		ID:               "abc-123",
		StartTime:        time.Now(),
		TotalDuration:    75,
		GreenZoneTime:    60,
		ConsistencyScore: 95,
		DropCount:        1,
	})

	data, err := os.ReadFile(filepath.Join(tmp, SessionsFile))
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	for _, want := range []string{"abc-123", "total=01:15", "green=01:00", "success=80%", "consistency=95"} {
		if !strings.Contains(line, want) {
			t.Errorf("sessions log missing %q, got: %q", want, line)
		}
	}

	diag, err := os.ReadFile(filepath.Join(tmp, DiagnosticsFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(diag), "session_end") {
		t.Errorf("diagnostics missing session_end: %q", diag)
	}
}

func TestDomainEvents(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	SessionStart("s-1", zone.Default())
	ConfigUpdate(zone.Default())
	CaptureError(errors.New("permission denied"))

	diag, err := os.ReadFile(filepath.Join(tmp, DiagnosticsFile))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"session_start", "config_update", "capture_unavailable", "permission denied"} {
		if !strings.Contains(string(diag), want) {
			t.Errorf("diagnostics missing %q", want)
		}
	}
}

func TestNoopBeforeInit(t *testing.T) {
	Close()
	Info("ignored")
	SessionEnd(session.Record{ID: "x"})
}

func TestCloseIdempotent(t *testing.T) {
	setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}
	Close()
	Close() // should not panic
}
