package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"hush/session"
	"hush/zone"
)

var (
	diagLog     zerolog.Logger
	diagFile    *os.File
	sessionFile *os.File
	logMu       sync.Mutex
	logReady    bool
	pid         int
	dir         string
)

const (
	DiagnosticsFile = "diagnostics_log.txt"
	SessionsFile    = "sessions_log.txt"
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		return absolute(flagPath)
	}

	// Priority 2: HUSH_LOG_PATH environment variable
	if envPath := os.Getenv("HUSH_LOG_PATH"); envPath != "" {
		return absolute(envPath)
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func absolute(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagFile, err = os.OpenFile(filepath.Join(dir, DiagnosticsFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	sessionFile, err = os.OpenFile(filepath.Join(dir, SessionsFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if sessionFile != nil {
		sessionFile.Close()
		sessionFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if logReady {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func SessionStart(id string, cfg zone.Config) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("session", id).
		Float64("lower", cfg.Lower).
		Float64("upper", cfg.Upper).
		Float64("sensitivity", cfg.Sensitivity).
		Float64("dampening", cfg.Dampening).
		Dur("persistence", cfg.Persistence).
		Msg("session_start")
}

// SessionEnd logs the finalized record and appends a summary line to the
// sessions log.
func SessionEnd(r session.Record) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("session", r.ID).
		Int("total_s", r.TotalDuration).
		Int("green_s", r.GreenZoneTime).
		Int("peak", r.PeakIntensity).
		Int("drops", r.DropCount).
		Int("consistency", r.ConsistencyScore).
		Int("transitions", len(r.Transitions)).
		Msg("session_end")

	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\ttotal=%s\tgreen=%s\tsuccess=%s\tpeak=%d\tdrops=%d\tconsistency=%d\n",
		time.Now().Format("2006-01-02 15:04:05"), pid, r.ID,
		session.FormatClock(r.TotalDuration), session.FormatClock(r.GreenZoneTime),
		session.FormatPercent(r.SuccessRate()), r.PeakIntensity, r.DropCount, r.ConsistencyScore)
	sessionFile.WriteString(line)
}

func Transition(tr zone.Transition) {
	if !logReady {
		return
	}
	diagLog.Debug().
		Str("from", tr.From.String()).
		Str("to", tr.To.String()).
		Float64("intensity", tr.Intensity).
		Msg("transition")
}

func ConfigUpdate(cfg zone.Config) {
	if !logReady {
		return
	}
	diagLog.Info().
		Float64("lower", cfg.Lower).
		Float64("upper", cfg.Upper).
		Float64("sensitivity", cfg.Sensitivity).
		Float64("dampening", cfg.Dampening).
		Dur("persistence", cfg.Persistence).
		Msg("config_update")
}

func CaptureError(err error) {
	if !logReady {
		return
	}
	diagLog.Error().Err(err).Msg("capture_unavailable")
}
