package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"hush/audio"
	"hush/beep"
	"hush/clock"
	"hush/doctor"
	"hush/engine"
	"hush/hotkey"
	"hush/log"
	"hush/report"
	"hush/shutdown"
	"hush/store"
	"hush/zone"
)

var version = "dev"

// guiMode is set by initGUI before run is called.
var guiMode bool

// toggleRequests carries session toggles from the GUI window and tray.
var toggleRequests = make(chan struct{}, 1)

const dataFile = "hush.db"

type options struct {
	cfg       zone.Config
	name      string
	dbPath    string
	noStore   bool
	logPath   string
	serve     string
	autoEnd   time.Duration
	device    string
	setup     bool
	test      bool
	doctor    bool
	version   bool
	gui       bool
	tui       bool
	frame     time.Duration
	profile   string
	longPress time.Duration

	set  map[string]bool // flags given explicitly
	args []string
}

func parseFlags(args []string, out io.Writer) (*options, error) {
	def := zone.Default()
	o := &options{}
	fs := flag.NewFlagSet("hush", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.Float64Var(&o.cfg.Lower, "lower", def.Lower, "Lower edge of the target zone (0-85)")
	fs.Float64Var(&o.cfg.Upper, "upper", def.Upper, "Upper edge of the target zone (15-100)")
	fs.Float64Var(&o.cfg.Sensitivity, "sensitivity", def.Sensitivity, "Microphone sensitivity (0-100, 50 = unity)")
	fs.Float64Var(&o.cfg.Dampening, "dampening", def.Dampening, "Smoothing of the displayed level (0-100)")
	fs.DurationVar(&o.cfg.Persistence, "persistence", def.Persistence, "How long a peak is held before it decays (500ms-10s)")
	fs.StringVar(&o.name, "name", "", "Name used in feedback messages")
	fs.StringVar(&o.dbPath, "db", "", "Session database path (default: $HUSH_DATA_PATH/hush.db or OS config dir)")
	fs.BoolVar(&o.noStore, "nostore", false, "Keep settings and history in memory only")
	fs.StringVar(&o.logPath, "logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	fs.StringVar(&o.serve, "serve", "", "Serve the session report on this address (e.g., :8080)")
	fs.DurationVar(&o.autoEnd, "autoend", 0, "End a session after this much silence (0 = never)")
	fs.StringVar(&o.device, "device", "", "Use the microphone whose name contains this text")
	fs.BoolVar(&o.setup, "setup", false, "Select microphone device (otherwise uses system default)")
	fs.BoolVar(&o.test, "test", false, "Test mode (headless, stdin-driven, reads a WAV file)")
	fs.BoolVar(&o.doctor, "doctor", false, "Run system diagnostics and exit")
	fs.BoolVar(&o.version, "version", false, "Print version and exit")
	fs.BoolVar(&o.gui, "gui", false, "Open the gauge window (requires a -tags gui build)")
	fs.BoolVar(&o.tui, "tui", true, "Run with terminal UI")
	fs.DurationVar(&o.frame, "frame", engine.DefaultFrameInterval, "Render cadence")
	fs.StringVar(&o.profile, "profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	fs.DurationVar(&o.longPress, "longpress", 600*time.Millisecond, "Holding the hotkey this long ends the session")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	o.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	o.args = fs.Args()
	return o, nil
}

// effectiveConfig overlays the explicitly set flags on base and
// normalizes the result.
func (o *options) effectiveConfig(base zone.Config) zone.Config {
	cfg := base
	if o.set["lower"] {
		cfg.Lower = o.cfg.Lower
	}
	if o.set["upper"] {
		cfg.Upper = o.cfg.Upper
	}
	if o.set["sensitivity"] {
		cfg.Sensitivity = o.cfg.Sensitivity
	}
	if o.set["dampening"] {
		cfg.Dampening = o.cfg.Dampening
	}
	if o.set["persistence"] {
		cfg.Persistence = o.cfg.Persistence
	}
	return cfg.Normalize()
}

// flagValue finds -name value or -name=value in args without a full
// parse, for setup that has to happen before flag parsing.
func flagValue(args []string, name string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		if !strings.HasPrefix(a, "-") {
			continue
		}
		a = strings.TrimLeft(a, "-")
		if v, ok := strings.CutPrefix(a, name+"="); ok {
			return v
		}
		if a == name && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func wantsGUI(args []string) bool {
	for _, a := range args {
		switch a {
		case "--":
			return false
		case "-gui", "--gui", "-gui=true", "--gui=true":
			return true
		}
	}
	return false
}

func initCrashLog() {
	dir, err := log.ResolveDir(flagValue(os.Args[1:], "logpath"))
	if err != nil {
		return
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return
	}
	crashPath := filepath.Join(dir, "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(crashFile, debug.CrashOptions{})
}

// resolveDataPath picks the database file: -db, then hush.db inside
// $HUSH_DATA_PATH, then hush.db in the user config directory.
func resolveDataPath(flagPath string) (string, error) {
	if flagPath != "" {
		return filepath.Abs(flagPath)
	}
	if env := os.Getenv("HUSH_DATA_PATH"); env != "" {
		return filepath.Abs(filepath.Join(env, dataFile))
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hush", dataFile), nil
}

// openStore never fails: without a usable database the app runs with an
// Unavailable store and reports every persistence error as a warning.
func openStore(o *options) store.Store {
	if o.noStore {
		return store.NewMemory()
	}
	path, err := resolveDataPath(o.dbPath)
	if err == nil {
		err = os.MkdirAll(filepath.Dir(path), 0755)
	}
	if err != nil {
		log.Warnf("session store: %v", err)
		fmt.Fprintf(os.Stderr, "Warning: session history disabled: %v\n", err)
		return store.Unavailable{}
	}
	st, err := store.OpenSQLite(path)
	if err != nil {
		log.Warnf("session store: %v", err)
		fmt.Fprintf(os.Stderr, "Warning: session history disabled: %v\n", err)
		return store.Unavailable{}
	}
	log.Infof("session store: %s", path)
	return st
}

// loadConfig returns the stored config, or the defaults when there is
// none or it cannot be read.
func loadConfig(st store.Store) zone.Config {
	cfg, err := st.LoadConfig()
	switch {
	case err == nil:
		return cfg
	case errors.Is(err, store.ErrNotFound):
	default:
		log.Warnf("load config: %v", err)
	}
	return zone.Default()
}

func deviceLineText(name string) string {
	if name == "" {
		name = "system default"
	}
	if audio.IsBluetooth(name) {
		name += " (BT!)"
	}
	return "mic: " + name
}

func run() {
	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if o.version {
		fmt.Printf("hush %s\n", version)
		os.Exit(0)
	}

	logPath, err := log.ResolveDir(o.logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	if o.profile != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", o.profile)
			if err := http.ListenAndServe(o.profile, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	if o.doctor {
		wavFile := ""
		if len(o.args) > 0 {
			wavFile = o.args[0]
		}
		dbPath, _ := resolveDataPath(o.dbPath)
		if o.noStore {
			dbPath = ""
		}
		os.Exit(doctor.Run(doctor.Options{WAV: wavFile, Device: o.device, DataPath: dbPath}))
	}

	if o.setup && o.device == "" {
		actx, err := audio.NewContext()
		if err != nil {
			fmt.Printf("Error initializing audio: %v\n", err)
			os.Exit(1)
		}
		dev, err := audio.SelectDevice(actx)
		if errors.Is(err, audio.ErrSelectCancelled) {
			actx.Close()
			os.Exit(130)
		}
		if err != nil {
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
		} else if dev != nil {
			o.device = dev.Name
		}
		actx.Close()
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	st := openStore(o)

	cfg := o.effectiveConfig(loadConfig(st))
	if err := st.SaveConfig(cfg); err != nil {
		log.Warnf("save config: %v", err)
	}
	log.ConfigUpdate(cfg)

	if o.test {
		if len(o.args) == 0 {
			fmt.Fprintln(os.Stderr, "Usage: hush -test <wav-file>")
			os.Exit(1)
		}
		code := runTestMode(o.args[0], o, st, cfg)
		st.Close()
		log.Close()
		os.Exit(code)
	}

	os.Exit(runLive(o, st, cfg))
}

func runLive(o *options, st store.Store, cfg zone.Config) int {
	defer st.Close()
	defer log.Close()

	ctx, cancel := shutdown.Context(context.Background())
	defer cancel()

	src := guiMeter
	if src == nil {
		src = audio.NewMeter(audio.NewContext, o.device)
	}
	defer src.Close()

	useTUI := o.tui && !guiMode
	sinks := engine.MultiSink{cueSink{}}
	if s := guiSink(); s != nil {
		sinks = append(sinks, s)
	}
	if useTUI {
		sinks = append(sinks, tuiSink{})
	} else {
		sinks = append(sinks, newPrintSink(os.Stdout))
	}

	eng := engine.New(engine.Options{
		Clock:         clock.Real{},
		Source:        src,
		Store:         st,
		Sink:          sinks,
		Config:        cfg,
		Name:          o.name,
		FrameInterval: o.frame,
		AutoEnd:       o.autoEnd,
	})
	if err := eng.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		guiQuit()
		return 1
	}
	log.Info("capture_device: " + src.DeviceName())
	guiSetThresholds(cfg)

	go beep.Init()

	if o.serve != "" {
		srv := report.NewServer(o.serve, st)
		go func() {
			if err := srv.Serve(ctx); err != nil {
				log.Errorf("report server: %v", err)
				tuiSend(ErrorMsg{Text: "report server: " + err.Error()})
			}
		}()
		log.Info("report_server: " + o.serve)
	}

	var actions <-chan hotkey.Action
	hotkeyLine := "hotkey: " + hotkey.Combo + " (tap to start/end, hold to end)"
	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		log.Warnf("hotkey register error: %v", err)
		hotkeyLine = "hotkey unavailable: " + err.Error()
	} else {
		defer hk.Unregister()
		toggler := hotkey.NewToggler(hk, o.longPress)
		defer toggler.Close()
		actions = toggler.Actions()
	}
	go dispatch(ctx, eng, actions)

	var p *tea.Program
	if useTUI {
		p = NewTUIProgram(newTUIModel(cfg, o.name, eng.Do))
		tuiMu.Lock()
		tuiProgram = p
		tuiMu.Unlock()
		go func() {
			if _, err := p.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
			}
			cancel()
		}()
		tuiSend(DeviceLineMsg{Text: deviceLineText(src.DeviceName()) + "   " + hotkeyLine})
	} else {
		fmt.Printf("hush %s: %s, %s\n", version, deviceLineText(src.DeviceName()), hotkeyLine)
	}

	eng.Run(ctx)

	if p != nil {
		p.Quit()
		p.Wait()
	}
	guiQuit()
	return 0
}

// dispatch turns hotkey actions and toggle requests into engine
// commands until ctx is done.
func dispatch(ctx context.Context, eng *engine.Engine, actions <-chan hotkey.Action) {
	for {
		select {
		case <-ctx.Done():
			return
		case a := <-actions:
			log.Info("hotkey_" + a.String())
			if a == hotkey.ActionEnd {
				eng.Do(func(e *engine.Engine) { e.EndSession() })
			} else {
				eng.Do(toggleSession)
			}
		case <-toggleRequests:
			eng.Do(toggleSession)
		}
	}
}

// requestToggle asks the engine to start or end a session without
// blocking the caller.
func requestToggle() {
	select {
	case toggleRequests <- struct{}{}:
	default:
	}
}
