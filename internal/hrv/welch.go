package hrv

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// pwelch estimates the one-sided power spectral density of x sampled at fs
// Hz using Welch's method: Hamming-windowed, mean-detrended segments of
// nperseg points overlapping by noverlap, periodograms averaged across
// segments. Returns parallel frequency and PSD slices.
func pwelch(x []float64, fs float64, nperseg, noverlap int) (freqs, psd []float64) {
	if nperseg > len(x) {
		nperseg = len(x)
	}
	if nperseg < 2 {
		return nil, nil
	}
	if noverlap >= nperseg {
		noverlap = nperseg / 2
	}
	step := nperseg - noverlap

	win := window.Hamming(nperseg)
	var winPower float64
	for _, w := range win {
		winPower += w * w
	}
	scale := 1.0 / (fs * winPower)

	nbins := nperseg/2 + 1
	psd = make([]float64, nbins)
	segments := 0
	seg := make([]float64, nperseg)

	for start := 0; start+nperseg <= len(x); start += step {
		var mean float64
		for _, v := range x[start : start+nperseg] {
			mean += v
		}
		mean /= float64(nperseg)

		for i := 0; i < nperseg; i++ {
			seg[i] = (x[start+i] - mean) * win[i]
		}

		spectrum := fft.FFTReal(seg)
		for i := 0; i < nbins; i++ {
			p := cmplx.Abs(spectrum[i])
			psd[i] += p * p * scale
		}
		segments++
	}
	if segments == 0 {
		return nil, nil
	}

	for i := range psd {
		psd[i] /= float64(segments)
		// One-sided spectrum: fold in the negative frequencies.
		if i != 0 && !(nperseg%2 == 0 && i == nbins-1) {
			psd[i] *= 2
		}
	}

	freqs = make([]float64, nbins)
	for i := range freqs {
		freqs[i] = fs * float64(i) / float64(nperseg)
	}
	return freqs, psd
}

// bandPower integrates the PSD over [lo, hi) with the trapezoidal rule.
// Fewer than two bins in the band yield zero power.
func bandPower(freqs, psd []float64, lo, hi float64) float64 {
	var power float64
	prev := -1
	for i := range freqs {
		if freqs[i] < lo || freqs[i] >= hi {
			continue
		}
		if prev >= 0 {
			power += (psd[prev] + psd[i]) / 2 * (freqs[i] - freqs[prev])
		}
		prev = i
	}
	return power
}

// resampleUniform linearly interpolates the irregular series (t, v) onto a
// uniform grid of rate hz between t[0] and t[len-1].
func resampleUniform(t, v []float64, hz float64) []float64 {
	if len(t) < 2 || len(t) != len(v) {
		return nil
	}
	span := t[len(t)-1] - t[0]
	n := int(span*hz) + 1
	if n < 2 {
		return nil
	}
	out := make([]float64, n)
	j := 0
	for i := 0; i < n; i++ {
		ti := t[0] + float64(i)/hz
		for j < len(t)-2 && t[j+1] < ti {
			j++
		}
		span := t[j+1] - t[j]
		if span <= 0 {
			out[i] = v[j]
			continue
		}
		frac := (ti - t[j]) / span
		if frac < 0 {
			frac = 0
		} else if frac > 1 {
			frac = 1
		}
		out[i] = v[j] + frac*(v[j+1]-v[j])
	}
	return out
}

func isFinitePositive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
