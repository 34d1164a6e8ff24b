// Package beep plays short feedback cues: session start and end, entering
// the danger zone and the no-voice reminder.
package beep

import "math"

var disabled bool

func Disable() { disabled = true }

const (
	sampleRate = 44100

	// Start cue: high pitch, short
	startFreq   = 1200
	startVolume = 0.5
	startDecay  = 60

	// End cue: medium pitch, slightly longer
	endFreq   = 900
	endVolume = 0.5
	endDecay  = 40

	// Danger cue: sharp high double beep
	dangerFreq   = 1600
	dangerVolume = 0.45
	dangerDecay  = 45

	// No-voice cue: low double beep
	noVoiceFreq   = 350
	noVoiceVolume = 0.6
	noVoiceDecay  = 30
)

// Cue is a rendered mono PCM16 waveform at sampleRate.
type Cue []int16

func tick(freq, duration, volume, decay float64) Cue {
	n := int(sampleRate * duration)
	samples := make(Cue, n)
	for i := range samples {
		t := float64(i) / sampleRate
		envelope := math.Exp(-t * decay)
		samples[i] = int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
	}
	return samples
}

func double(freq, beepDur, gapDur, volume, decay float64) Cue {
	b := tick(freq, beepDur, volume, decay)
	gap := make(Cue, int(sampleRate*gapDur))
	out := make(Cue, 0, len(b)*2+len(gap))
	out = append(out, b...)
	out = append(out, gap...)
	return append(out, b...)
}

type cues struct {
	start, end, danger, noVoice Cue
}

// render builds the cue set; short shortens the single ticks for
// backends with a large output latency.
func render(short bool) cues {
	startDur, endDur := 0.2, 0.2
	if short {
		startDur, endDur = 0.03, 0.05
	}
	return cues{
		start:   tick(startFreq, startDur, startVolume, startDecay),
		end:     tick(endFreq, endDur, endVolume, endDecay),
		danger:  double(dangerFreq, 0.06, 0.04, dangerVolume, dangerDecay),
		noVoice: double(noVoiceFreq, 0.08, 0.05, noVoiceVolume, noVoiceDecay),
	}
}
