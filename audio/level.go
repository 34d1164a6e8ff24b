package audio

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

const (
	// WindowSize is the number of PCM samples analysed per level reading.
	WindowSize = 1024

	MinDecibels = -100.0
	MaxDecibels = -30.0
)

// Analyzer maps a PCM window to a loudness scalar in [0,1]: each
// frequency bin's magnitude is converted to dBFS, mapped linearly from
// [MinDecibels, MaxDecibels] onto [0,1], and the bins are combined by RMS.
type Analyzer struct {
	fft    *fourier.FFT
	buf    []float64
	coeffs []complex128
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		fft:    fourier.NewFFT(WindowSize),
		buf:    make([]float64, WindowSize),
		coeffs: make([]complex128, WindowSize/2+1),
	}
}

// Level analyses samples, which must hold exactly WindowSize values;
// shorter input is zero padded.
func (a *Analyzer) Level(samples []int16) float64 {
	for i := range a.buf {
		a.buf[i] = 0
	}
	for i, s := range samples {
		if i >= WindowSize {
			break
		}
		a.buf[i] = float64(s) / 32768
	}
	window.Blackman(a.buf)
	a.coeffs = a.fft.Coefficients(a.coeffs, a.buf)

	bins := WindowSize / 2
	var sum float64
	for k := 0; k < bins; k++ {
		mag := cmplxAbs(a.coeffs[k]) / WindowSize
		v := binLevel(mag)
		sum += v * v
	}
	return math.Sqrt(sum / float64(bins))
}

func binLevel(mag float64) float64 {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	v := (db - MinDecibels) / (MaxDecibels - MinDecibels)
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
