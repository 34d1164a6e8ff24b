package audio

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"time"
)

const wavHeaderSize = 44

// WindowInterval is how long one analyzer window lasts at SampleRate.
const WindowInterval = WindowSize * time.Second / SampleRate

// FakeContext replays fixed PCM in place of a microphone, one analyzer
// window per chunk. With realtime set, chunks are paced at WindowInterval
// and silence follows the recording; otherwise the whole recording is
// delivered during Start.
type FakeContext struct {
	samples  []int16
	realtime bool
}

// NewFakeContext loads 16-bit mono PCM from a canonical WAV file.
func NewFakeContext(wavPath string, realtime bool) (*FakeContext, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, err
	}
	if len(data) < wavHeaderSize || string(data[:4]) != "RIFF" {
		return nil, fmt.Errorf("%s: not a WAV file", wavPath)
	}
	pcm := data[wavHeaderSize:]
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return &FakeContext{samples: samples, realtime: realtime}, nil
}

// NewFakePCM builds a fake context over raw samples.
func NewFakePCM(samples []int16, realtime bool) *FakeContext {
	return &FakeContext{samples: append([]int16(nil), samples...), realtime: realtime}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) { return nil, nil }
func (f *FakeContext) Close()                         {}

func (f *FakeContext) OpenCapture(_ *DeviceInfo, sink SampleSink) (Capture, error) {
	return &FakeCapture{
		samples:  f.samples,
		realtime: f.realtime,
		sink:     sink,
		done:     make(chan struct{}),
	}, nil
}

type FakeCapture struct {
	samples  []int16
	realtime bool
	sink     SampleSink

	mu     sync.Mutex
	done   chan struct{}
	closed bool // done has been closed
	stop   chan struct{}
	wg     sync.WaitGroup
}

// AudioDone is closed once the whole recording has been delivered. Stop
// rearms it for a replay.
func (f *FakeCapture) AudioDone() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

func (f *FakeCapture) DeviceName() string { return "fake" }

func (f *FakeCapture) finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.done)
	}
}

// window delivers the chunk starting at pos and returns the next offset.
func (f *FakeCapture) window(pos int) int {
	end := min(pos+WindowSize, len(f.samples))
	f.sink.WriteSamples(f.samples[pos:end])
	return end
}

func (f *FakeCapture) Start() error {
	if f.stop != nil {
		return nil
	}
	f.stop = make(chan struct{})

	if !f.realtime {
		for pos := 0; pos < len(f.samples); {
			pos = f.window(pos)
		}
		f.finish()
		return nil
	}

	f.wg.Add(1)
	go f.replay(f.stop)
	return nil
}

func (f *FakeCapture) replay(stop <-chan struct{}) {
	defer f.wg.Done()
	ticker := time.NewTicker(WindowInterval)
	defer ticker.Stop()
	silence := make([]int16, WindowSize)

	pos := 0
	for {
		if pos < len(f.samples) {
			pos = f.window(pos)
		} else {
			f.finish()
			f.sink.WriteSamples(silence)
		}
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

func (f *FakeCapture) Stop() {
	if f.stop == nil {
		return
	}
	close(f.stop)
	f.wg.Wait()
	f.stop = nil

	f.mu.Lock()
	f.done = make(chan struct{})
	f.closed = false
	f.mu.Unlock()
}

func (f *FakeCapture) Close() { f.Stop() }
