package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude spectrum of a real signal after Hann
// windowing, one entry per non-negative frequency bin.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		// The Hann window needs at least two samples; a single sample has
		// no spectrum to speak of.
		return nil
	}
	windowed := make([]float64, n)
	for i, v := range data {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = v * w
	}
	spectrum := fft.FFTReal(windowed)
	ps := make([]float64, n/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the strongest non-DC bin of the spectrum as a
// frequency in cycles per sample interval, given the sampling step dt.
func DominantFrequency(data []float64, dt float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0
	}
	best, bestMag := 1, ps[1]
	for i := 2; i < len(ps); i++ {
		if ps[i] > bestMag {
			best, bestMag = i, ps[i]
		}
	}
	return float64(best) / (float64(len(data)) * dt)
}
