// Package doctor runs interactive diagnostics for the capture, hotkey,
// storage, logging and clipboard paths.
package doctor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hush/audio"
	"hush/clipboard"
	"hush/hotkey"
	"hush/log"
	"hush/meter"
	"hush/store"
	"hush/zone"
)

type Options struct {
	// WAV replaces the microphone with a file when set.
	WAV    string
	Device string
	// DataPath is the session database to verify; a scratch database is
	// used when empty.
	DataPath string
	// SkipHotkey skips the interactive hotkey step.
	SkipHotkey bool
}

const listenFor = 3 * time.Second

type check struct {
	name string
	run  func() (string, error)
}

// Run executes the checks in order and returns an exit code (0=all pass,
// 1=any fail).
func Run(opts Options) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("hush doctor - system diagnostics")
	fmt.Println("================================")

	checks := []check{
		{"Microphone level", func() (string, error) { return checkMicrophone(opts) }},
		{"Session store", func() (string, error) { return checkStore(opts.DataPath) }},
		{"Log directory", func() (string, error) { return checkLogDir(log.Dir()) }},
		{"Clipboard", checkClipboard},
	}
	if !opts.SkipHotkey {
		checks = append([]check{{"Hotkey detection", checkHotkey}}, checks...)
	}

	allPass := true
	for i, c := range checks {
		fmt.Println()
		fmt.Printf("[%d/%d] %s\n", i+1, len(checks), c.name)
		detail, err := c.run()
		if err != nil {
			fmt.Printf("  FAIL: %v\n", err)
			allPass = false
			continue
		}
		fmt.Printf("  PASS: %s\n", detail)
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkHotkey() (string, error) {
	detail, err := hotkey.Diagnose()
	if err != nil {
		return "", err
	}
	fmt.Printf("  %s\n", detail)
	fmt.Printf("Press %s...\n", hotkey.Combo)

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		return "", fmt.Errorf("could not register hotkey: %w", err)
	}
	defer hk.Unregister()

	select {
	case <-hk.Keydown():
		select {
		case <-hk.Keyup():
		case <-time.After(5 * time.Second):
		}
		// the hotkey listener can leave the terminal in raw mode
		resetTerminal()
		return "hotkey detected", nil
	case <-time.After(10 * time.Second):
		return "", errors.New("timeout waiting for hotkey")
	}
}

func checkMicrophone(opts Options) (string, error) {
	open := audio.NewContext
	if opts.WAV != "" {
		open = func() (audio.Context, error) { return audio.NewFakeContext(opts.WAV, true) }
	}
	m := audio.NewMeter(open, opts.Device)
	if err := m.Initialize(); err != nil {
		return "", err
	}
	defer m.Close()

	fmt.Printf("  Using device: %s\n", m.DeviceName())
	fmt.Printf("  Speak for %d seconds...\n", int(listenFor/time.Second))
	peak, err := listen(m, listenFor, 100*time.Millisecond, func(v float64) {
		fmt.Printf("\r  level %3.0f %s", v, bar(v, 40))
	})
	fmt.Println()
	if err != nil {
		return "", err
	}
	if peak < meter.NoiseGate {
		return "", fmt.Errorf("peak level %.0f never cleared the noise gate (%d); check the input volume", peak, meter.NoiseGate)
	}
	return fmt.Sprintf("peak level %.0f", peak), nil
}

// listen samples src every interval for d, passing each conditioned level
// to show, and returns the peak.
func listen(src audio.Source, d, interval time.Duration, show func(float64)) (float64, error) {
	if err := src.Start(); err != nil {
		return 0, err
	}
	defer src.Stop()

	var peak float64
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.After(d)
	for {
		select {
		case <-deadline:
			return peak, nil
		case <-ticker.C:
			v := meter.Condition(src.Level())
			peak = max(peak, v)
			if show != nil {
				show(v)
			}
		}
	}
}

func bar(v float64, width int) string {
	n := int(v / meter.Max * float64(width))
	n = min(max(n, 0), width)
	return "[" + strings.Repeat("#", n) + strings.Repeat(" ", width-n) + "]"
}

func checkStore(path string) (string, error) {
	if path == "" {
		dir, err := os.MkdirTemp("", "hush-doctor-")
		if err != nil {
			return "", err
		}
		defer os.RemoveAll(dir)
		path = filepath.Join(dir, "doctor.db")
	}
	st, err := store.OpenSQLite(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer st.Close()

	ver, err := st.Version()
	if err != nil {
		return "", fmt.Errorf("schema version: %w", err)
	}
	recs, err := st.ListSessions()
	if err != nil {
		return "", fmt.Errorf("list sessions: %w", err)
	}

	cfg, err := st.LoadConfig()
	switch {
	case errors.Is(err, store.ErrNotFound):
		cfg = zone.Default()
	case err != nil:
		return "", fmt.Errorf("load config: %w", err)
	}
	if err := st.SaveConfig(cfg); err != nil {
		return "", fmt.Errorf("save config: %w", err)
	}
	return fmt.Sprintf("%s (schema v%d, %d sessions)", path, ver, len(recs)), nil
}

func checkLogDir(dir string) (string, error) {
	if dir == "" {
		return "", errors.New("log directory not resolved")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return "", fmt.Errorf("not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return dir, nil
}

func checkClipboard() (string, error) {
	if err := clipboard.Available(); err != nil {
		return "", err
	}
	prev, _ := clipboard.Read()
	const sample = "hush-doctor-test"
	if err := clipboard.Copy(sample); err != nil {
		return "", fmt.Errorf("copy failed: %w", err)
	}
	got, err := clipboard.Read()
	if prev != "" {
		clipboard.Copy(prev)
	}
	if err != nil {
		return "", fmt.Errorf("read failed: %w", err)
	}
	if got != sample {
		return "", fmt.Errorf("read back %q, want %q", got, sample)
	}
	return "copy and read verified", nil
}
