// Package engine drives the feedback pipeline: each frame pulls a level
// from the capture source, conditions and stabilizes it, classifies the
// result and feeds the session aggregator; a 1-second tick advances the
// session clock.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hush/audio"
	"hush/clock"
	"hush/log"
	"hush/meter"
	"hush/session"
	"hush/store"
	"hush/zone"
)

const DefaultFrameInterval = 50 * time.Millisecond

type Options struct {
	Clock  clock.Clock
	Source audio.Source
	Store  store.Store
	Sink   Sink
	Config zone.Config
	Name   string
	// FrameInterval is the render cadence; zero means DefaultFrameInterval.
	FrameInterval time.Duration
	// AutoEnd ends a session after this much continuous silence; zero
	// disables it.
	AutoEnd time.Duration
	// NewID generates session identifiers; defaults to random UUIDs.
	NewID func() string
}

// Engine owns all pipeline state. Frame, Second and the session and
// config methods must be called from one goroutine: Run's, or the test's.
// Other goroutines go through Do.
type Engine struct {
	clock    clock.Clock
	source   audio.Source
	store    store.Store
	sink     Sink
	newID    func() string
	interval time.Duration

	cfg        zone.Config
	stabilizer *meter.Stabilizer
	classifier *zone.Classifier
	aggregator *session.Aggregator
	silence    *silenceMonitor

	running bool
	seconds clock.Ticker
	cmds    chan func(*Engine)
	done    chan struct{}
}

func New(opts Options) *Engine {
	e := &Engine{
		clock:      opts.Clock,
		source:     opts.Source,
		store:      opts.Store,
		sink:       opts.Sink,
		newID:      opts.NewID,
		interval:   opts.FrameInterval,
		cfg:        opts.Config.Normalize(),
		stabilizer: meter.NewStabilizer(),
		aggregator: session.NewAggregator(),
		silence:    newSilenceMonitor(opts.AutoEnd),
		cmds:       make(chan func(*Engine), 16),
		done:       make(chan struct{}),
	}
	if e.clock == nil {
		e.clock = clock.Real{}
	}
	if e.store == nil {
		e.store = store.NewMemory()
	}
	if e.sink == nil {
		e.sink = NopSink{}
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.interval <= 0 {
		e.interval = DefaultFrameInterval
	}
	e.classifier = zone.NewClassifier(e.cfg)
	e.classifier.SetName(opts.Name)
	e.classifier.Subscribe(e.aggregator.Transition)
	e.classifier.Subscribe(log.Transition)
	e.classifier.Subscribe(e.sink.Transition)
	return e
}

// Start initializes and starts capture. On failure nothing changes and the
// error wraps audio.ErrCaptureUnavailable.
func (e *Engine) Start() error {
	if e.running {
		return nil
	}
	if e.source == nil {
		return fmt.Errorf("engine start: %w", audio.ErrCaptureUnavailable)
	}
	if err := e.source.Initialize(); err != nil {
		log.CaptureError(err)
		return fmt.Errorf("engine start: %w", wrapCapture(err))
	}
	if err := e.source.Start(); err != nil {
		log.CaptureError(err)
		return fmt.Errorf("engine start: %w", wrapCapture(err))
	}
	e.running = true
	return nil
}

func wrapCapture(err error) error {
	if errors.Is(err, audio.ErrCaptureUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", audio.ErrCaptureUnavailable, err)
}

// Stop halts capture. An active session stays open until EndSession.
func (e *Engine) Stop() {
	if !e.running {
		return
	}
	e.running = false
	e.source.Stop()
}

func (e *Engine) Running() bool { return e.running }

// Frame runs one pass of the pipeline at now.
func (e *Engine) Frame(now time.Time) {
	if !e.running {
		return
	}
	level := e.source.Level() * meter.SensitivityGain(e.cfg.Sensitivity)
	sample := meter.Condition(level)
	v := e.stabilizer.Update(sample, now, meter.Params{
		Dampening:   e.cfg.Dampening,
		Persistence: e.cfg.Persistence,
	})
	e.aggregator.Observe(v)
	e.classifier.Update(v, now)
	e.sink.Intensity(v)
}

// Second advances the session clock at now, sampling the current state.
func (e *Engine) Second(now time.Time) {
	if !e.running || !e.aggregator.Active() {
		return
	}
	state := e.classifier.Current()
	e.aggregator.Tick(now, state)
	e.sink.Progress(e.aggregator.Progress())

	switch e.silence.Tick(state) {
	case silenceWarn, silenceRepeat:
		e.sink.NoVoiceWarning()
	case silenceClear:
		e.sink.VoiceCleared()
	case silenceAutoEnd:
		log.Info("no voice, ending session")
		e.EndSession()
	}
}

// StartSession begins a new session, starting capture first if needed.
// A session already in progress is ended and saved.
func (e *Engine) StartSession() (string, error) {
	if err := e.Start(); err != nil {
		return "", err
	}
	id := e.newID()
	now := e.clock.Now()
	if prev, ended := e.aggregator.Start(id, now, e.classifier.Current(), e.stabilizer.Displayed()); ended {
		e.finish(prev)
	}
	e.silence.Reset()
	e.restartSeconds()
	log.SessionStart(id, e.cfg)
	e.sink.SessionStarted(id)
	return id, nil
}

// EndSession finalizes and saves the active session. ok is false when no
// session is active.
func (e *Engine) EndSession() (rec session.Record, ok bool) {
	rec, ok = e.aggregator.End(e.clock.Now())
	if !ok {
		return rec, false
	}
	e.finish(rec)
	e.silence.Reset()
	return rec, true
}

func (e *Engine) finish(rec session.Record) {
	if err := e.store.SaveSession(rec); err != nil {
		log.Warnf("save session %s: %v", rec.ID, err)
	}
	log.SessionEnd(rec)
	e.sink.SessionEnded(rec)
}

// restartSeconds realigns the 1-second ticker to the session start so
// every sample lands on a whole elapsed second.
func (e *Engine) restartSeconds() {
	if e.seconds == nil {
		return
	}
	e.seconds.Stop()
	e.seconds = e.clock.NewTicker(time.Second)
}

// Current returns the active session record, if any.
func (e *Engine) Current() (session.Record, bool) { return e.aggregator.Current() }

func (e *Engine) State() zone.State { return e.classifier.Current() }

func (e *Engine) Displayed() float64 { return e.stabilizer.Displayed() }

func (e *Engine) Config() zone.Config { return e.cfg }

// UpdateConfig normalizes and applies cfg from the next frame, saving it
// to the store. It returns the applied config.
func (e *Engine) UpdateConfig(cfg zone.Config) zone.Config {
	cfg = cfg.Normalize()
	e.cfg = cfg
	e.classifier.SetConfig(cfg)
	if err := e.store.SaveConfig(cfg); err != nil {
		log.Warnf("save config: %v", err)
	}
	log.ConfigUpdate(cfg)
	return cfg
}

func (e *Engine) SetName(name string) { e.classifier.SetName(name) }

// Do queues fn to run on the engine goroutine. It returns false if Run
// has exited.
func (e *Engine) Do(fn func(*Engine)) bool {
	select {
	case <-e.done:
		return false
	default:
	}
	select {
	case e.cmds <- fn:
		return true
	case <-e.done:
		return false
	}
}

// Call runs fn on the engine goroutine and waits for it to finish.
func (e *Engine) Call(fn func(*Engine)) bool {
	finished := make(chan struct{})
	if !e.Do(func(e *Engine) {
		defer close(finished)
		fn(e)
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-e.done:
		return false
	}
}

// Run drives frames, seconds and queued commands until ctx is cancelled,
// then ends any active session and stops capture.
func (e *Engine) Run(ctx context.Context) error {
	frames := e.clock.NewTicker(e.interval)
	e.seconds = e.clock.NewTicker(time.Second)
	defer func() {
		frames.Stop()
		e.seconds.Stop()
		e.EndSession()
		e.Stop()
		close(e.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-frames.C():
			e.Frame(now)
		case now := <-e.seconds.C():
			e.Second(now)
		case fn := <-e.cmds:
			fn(e)
		}
	}
}

// Done is closed once Run has returned.
func (e *Engine) Done() <-chan struct{} { return e.done }
