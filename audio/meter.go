package audio

import (
	"errors"
	"fmt"
	"sync"
)

var ErrCaptureUnavailable = errors.New("audio capture unavailable")

// Source yields the current loudness in [0,1].
type Source interface {
	Initialize() error
	Start() error
	Stop()
	Level() float64
}

// Meter is a Source over a platform capture device. It is the capture's
// SampleSink: incoming samples overwrite a fixed PCM window of the
// analyzer's size, and Level analyses a snapshot of it.
type Meter struct {
	open   func() (Context, error)
	device string

	ctx      Context
	capture  Capture
	analyzer *Analyzer

	mu      sync.Mutex
	window  [WindowSize]int16
	pos     int
	running bool
}

// NewMeter returns a meter that opens its context with open and captures
// from the first device whose name contains device (empty: system default).
func NewMeter(open func() (Context, error), device string) *Meter {
	return &Meter{open: open, device: device, analyzer: NewAnalyzer()}
}

func (m *Meter) Initialize() error {
	if m.capture != nil {
		return nil
	}
	ctx, err := m.open()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}
	dev, err := FindDevice(ctx, m.device)
	if err != nil {
		ctx.Close()
		return fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}
	capture, err := ctx.OpenCapture(dev, m)
	if err != nil {
		ctx.Close()
		return fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}
	m.ctx = ctx
	m.capture = capture
	return nil
}

func (m *Meter) Start() error {
	if m.capture == nil {
		return fmt.Errorf("%w: not initialized", ErrCaptureUnavailable)
	}
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = true
	m.mu.Unlock()

	if err := m.capture.Start(); err != nil {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}
	return nil
}

// Stop halts capture and discards the buffered window.
func (m *Meter) Stop() {
	m.mu.Lock()
	wasRunning := m.running
	m.running = false
	m.window = [WindowSize]int16{}
	m.pos = 0
	m.mu.Unlock()
	if wasRunning && m.capture != nil {
		m.capture.Stop()
	}
}

// Close stops capture and releases the device and context.
func (m *Meter) Close() {
	m.Stop()
	if m.capture != nil {
		m.capture.Close()
		m.capture = nil
	}
	if m.ctx != nil {
		m.ctx.Close()
		m.ctx = nil
	}
}

// WriteSamples appends samples to the window, overwriting the oldest.
// Samples arriving while the meter is stopped are dropped.
func (m *Meter) WriteSamples(samples []int16) {
	if len(samples) > WindowSize {
		samples = samples[len(samples)-WindowSize:]
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	n := copy(m.window[m.pos:], samples)
	copy(m.window[:], samples[n:])
	m.pos = (m.pos + len(samples)) % WindowSize
}

func (m *Meter) Level() float64 {
	var snap [WindowSize]int16
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return 0
	}
	n := copy(snap[:], m.window[m.pos:])
	copy(snap[n:], m.window[:m.pos])
	m.mu.Unlock()
	return m.analyzer.Level(snap[:])
}

// Capture exposes the underlying device, e.g. to wait on a fake's AudioDone.
func (m *Meter) Capture() Capture { return m.capture }

func (m *Meter) DeviceName() string {
	if m.capture == nil {
		return ""
	}
	return m.capture.DeviceName()
}
