package beep

import "testing"

func TestTickLengthAndDecay(t *testing.T) {
	c := tick(startFreq, 0.2, startVolume, startDecay)
	if len(c) != int(sampleRate*0.2) {
		t.Fatalf("len = %d", len(c))
	}
	peak := func(s Cue) int {
		m := 0
		for _, v := range s {
			if a := int(v); a > m {
				m = a
			} else if -a > m {
				m = -a
			}
		}
		return m
	}
	head, tail := peak(c[:len(c)/10]), peak(c[len(c)*9/10:])
	if head <= tail {
		t.Errorf("envelope does not decay: head %d tail %d", head, tail)
	}
	volume := startVolume
	if head > int(32767*volume)+1 {
		t.Errorf("peak %d exceeds volume", head)
	}
}

func TestDoubleHasGap(t *testing.T) {
	c := double(dangerFreq, 0.06, 0.04, dangerVolume, dangerDecay)
	beepLen := int(sampleRate * 0.06)
	gapLen := int(sampleRate * 0.04)
	if len(c) != 2*beepLen+gapLen {
		t.Fatalf("len = %d, want %d", len(c), 2*beepLen+gapLen)
	}
	for i := beepLen; i < beepLen+gapLen; i++ {
		if c[i] != 0 {
			t.Fatalf("gap sample %d = %d", i, c[i])
		}
	}
}

func TestRenderShort(t *testing.T) {
	long, short := render(false), render(true)
	if len(short.start) >= len(long.start) || len(short.end) >= len(long.end) {
		t.Error("short render should shorten the ticks")
	}
	if len(short.danger) != len(long.danger) {
		t.Error("danger cue should not depend on short")
	}
}
