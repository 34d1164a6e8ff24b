//go:build darwin

package beep

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

// player streams one cue at a time through a malgo playback device. The
// audio thread reads the cue and cursor atomically; play swaps them under
// mu with the device stopped.
type player struct {
	mu  sync.Mutex
	ctx *malgo.AllocatedContext
	dev *malgo.Device

	cue atomic.Pointer[Cue]
	pos atomic.Int64
}

var (
	out       player
	sounds    cues
	soundOnce sync.Once
)

func initSound() {
	sounds = render(true)
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return
	}
	out.ctx = ctx
	if err := out.open(); err != nil {
		ctx.Uninit()
		out.ctx = nil
	}
}

func (p *player) open() error {
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = 1
	cfg.SampleRate = sampleRate

	dev, err := malgo.InitDevice(p.ctx.Context, cfg, malgo.DeviceCallbacks{Data: p.fill})
	if err != nil {
		return err
	}
	p.dev = dev
	return nil
}

// fill writes the next frames of the current cue and pads with silence.
func (p *player) fill(output, _ []byte, frames uint32) {
	n := 0
	if c := p.cue.Load(); c != nil {
		samples := *c
		pos := int(p.pos.Load())
		n = min(int(frames), len(samples)-pos, len(output)/2)
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint16(output[i*2:], uint16(samples[pos+i]))
		}
		if pos+n >= len(samples) {
			p.cue.Store(nil)
		}
		p.pos.Store(int64(pos + n))
	}
	clear(output[n*2:])
}

func (p *player) play(c Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx == nil || p.dev == nil || len(c) == 0 {
		return
	}

	p.dev.Stop()
	p.pos.Store(0)
	p.cue.Store(&c)
	if err := p.dev.Start(); err == nil {
		return
	}
	// the device goes stale across sleep/wake; reopen once
	p.dev.Uninit()
	p.dev = nil
	if err := p.open(); err != nil || p.dev.Start() != nil {
		p.cue.Store(nil)
	}
}

func Init() {
	soundOnce.Do(initSound)
}

func play(pick func(cues) Cue) {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	out.play(pick(sounds))
}

func PlayStart()   { play(func(c cues) Cue { return c.start }) }
func PlayEnd()     { play(func(c cues) Cue { return c.end }) }
func PlayDanger()  { play(func(c cues) Cue { return c.danger }) }
func PlayNoVoice() { play(func(c cues) Cue { return c.noVoice }) }
