//go:build linux

package beep

import (
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

var (
	sounds    cues
	client    *pulse.Client
	soundOnce sync.Once
	// one cue at a time: a danger beep queues behind the start tick
	playMu sync.Mutex
)

func initSound() {
	sounds = render(false)
	if c, err := pulse.NewClient(pulse.ClientApplicationName("hush")); err == nil {
		client = c
	}
}

// cueReader feeds c to a playback stream and ends it with the last chunk.
func cueReader(c Cue) pulse.Int16Reader {
	pos := 0
	return func(buf []int16) (int, error) {
		n := copy(buf, c[pos:])
		pos += n
		if pos >= len(c) {
			return n, pulse.EndOfData
		}
		return n, nil
	}
}

// stream plays c to completion on the shared client at full stream
// volume, so cue loudness follows only the sink volume.
func stream(c Cue) {
	playMu.Lock()
	defer playMu.Unlock()
	if client == nil || len(c) == 0 {
		return
	}
	s, err := client.NewPlayback(cueReader(c),
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackMediaName("hush cue"),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			p.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm)}
		}),
	)
	if err != nil {
		return
	}
	defer s.Close()
	s.Start()
	s.Drain()
	s.Stop()
}

func Init() {
	soundOnce.Do(initSound)
}

// play blocks until the cue has drained; callers run it off the engine
// goroutine.
func play(pick func(cues) Cue) {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	stream(pick(sounds))
}

func PlayStart()   { play(func(c cues) Cue { return c.start }) }
func PlayEnd()     { play(func(c cues) Cue { return c.end }) }
func PlayDanger()  { play(func(c cues) Cue { return c.danger }) }
func PlayNoVoice() { play(func(c cues) Cue { return c.noVoice }) }
