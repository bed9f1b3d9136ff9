// Package hrv computes heart-rate-variability metrics from windows of
// sensor data on a fixed cadence.
//
// The math here is pure and non-blocking: windows come in as snapshot
// copies, results go back out through the store. Insufficient or invalid
// input yields an absent result, never a zero.
package hrv

import (
	"context"
	"math"
	"time"

	"github.com/aremos-dev/around-demo5/internal/domain"
	"github.com/aremos-dev/around-demo5/internal/ports"
	"github.com/aremos-dev/around-demo5/internal/store"
)

// HRV frequency bands, in Hz.
const (
	lfLow  = 0.04
	lfHigh = 0.15
	hfHigh = 0.4
)

// minFreqSamples is the smallest usable RR series for spectral analysis.
const minFreqSamples = 4

// Config tunes the engine. Zero values fall back to device defaults.
type Config struct {
	// Cadence is the timer period of the compute loop.
	Cadence time.Duration

	// RadarWindow is the heart-rate sample count required for the radar
	// path (one sample every ~3 s, 40 samples ≈ two minutes).
	RadarWindow int

	// WearableWindow is the RR-interval count required for the PPG path.
	WearableWindow int

	// ResampleHz is the uniform grid rate for spectral analysis.
	ResampleHz float64
}

func (c *Config) setDefaults() {
	if c.Cadence <= 0 {
		c.Cadence = 3 * time.Second
	}
	if c.RadarWindow <= 0 {
		c.RadarWindow = 40
	}
	if c.WearableWindow <= 0 {
		c.WearableWindow = 60
	}
	if c.ResampleHz <= 0 {
		c.ResampleHz = 4
	}
}

// Engine runs the periodic HRV computation over SensorStore windows and
// publishes results back into the store.
type Engine struct {
	cfg        Config
	store      *store.SensorStore
	classifier ports.EmotionClassifier
	logger     ports.Logger
}

// New creates an engine. The classifier is optional.
func New(cfg Config, st *store.SensorStore, classifier ports.EmotionClassifier, logger ports.Logger) *Engine {
	cfg.setDefaults()
	return &Engine{cfg: cfg, store: st, classifier: classifier, logger: logger}
}

// TimeDomain computes SDNN and RMSSD from a heart-rate window (bpm).
// Returns nil when the window is shorter than required or carries no
// usable beats.
func (e *Engine) TimeDomain(hrWindow []float64) *domain.HRVResult {
	if len(hrWindow) < e.cfg.RadarWindow {
		return nil
	}
	rr := rrFromHeartRate(hrWindow[len(hrWindow)-e.cfg.RadarWindow:])
	return timeDomainFromRR(rr)
}

// TimeDomainRR computes SDNN and RMSSD directly from an RR series (ms),
// the wearable path where the band reports intervals itself.
func (e *Engine) TimeDomainRR(rr []float64) *domain.HRVResult {
	if len(rr) < e.cfg.WearableWindow {
		return nil
	}
	return timeDomainFromRR(rr[len(rr)-e.cfg.WearableWindow:])
}

func timeDomainFromRR(rr []float64) *domain.HRVResult {
	usable := rr[:0:0]
	for _, v := range rr {
		if isFinitePositive(v) {
			usable = append(usable, v)
		}
	}
	if len(usable) < 2 {
		return nil
	}

	var mean float64
	for _, v := range usable {
		mean += v
	}
	mean /= float64(len(usable))

	var variance, sqDiff float64
	for i, v := range usable {
		d := v - mean
		variance += d * d
		if i > 0 {
			step := v - usable[i-1]
			sqDiff += step * step
		}
	}
	variance /= float64(len(usable))

	return &domain.HRVResult{
		SDNN:       math.Sqrt(variance),
		RMSSD:      math.Sqrt(sqDiff / float64(len(usable)-1)),
		ComputedAt: time.Now(),
	}
}

// FreqDomain computes LF/HF band powers from an RR series in milliseconds.
// Returns nil when fewer than four finite positive intervals are available
// or the series is too short to resample. Missing metrics stay absent,
// never zero.
func (e *Engine) FreqDomain(rr []float64) *domain.HRVResult {
	usable := make([]float64, 0, len(rr))
	for _, v := range rr {
		if isFinitePositive(v) {
			usable = append(usable, v)
		}
	}
	if len(usable) < minFreqSamples {
		return nil
	}

	// RR values double as the time axis: beat i lands at the cumulative
	// sum of the preceding intervals.
	t := make([]float64, len(usable))
	var elapsed float64
	for i, v := range usable {
		elapsed += v / 1000
		t[i] = elapsed
	}

	uniform := resampleUniform(t, usable, e.cfg.ResampleHz)
	if uniform == nil {
		return nil
	}

	nperseg := len(uniform) / 4
	if nperseg < 8 {
		nperseg = 8
	}
	if nperseg > 256 {
		nperseg = 256
	}
	freqs, psd := pwelch(uniform, e.cfg.ResampleHz, nperseg, nperseg/2)
	if freqs == nil {
		return nil
	}

	lf := bandPower(freqs, psd, lfLow, lfHigh)
	hf := bandPower(freqs, psd, lfHigh, hfHigh)

	res := &domain.HRVResult{
		FreqValid:  true,
		LF:         lf,
		HF:         hf,
		ComputedAt: time.Now(),
	}
	if hf > 0 {
		res.LFHF = lf / hf
		res.RatioOK = true
	}
	return res
}

// Run executes the compute loop until the context is canceled. The loop
// always operates on the latest snapshots and tolerates stale or
// partially-filled windows by skipping the cycle.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.Cadence)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.computeOnce()
		}
	}
}

func (e *Engine) computeOnce() {
	// Radar path: heart-rate window converted to RR intervals.
	hr := e.store.Tail(store.HeartRate, e.cfg.RadarWindow)
	if td := e.TimeDomain(hr); td != nil {
		e.store.Push(store.SDNN, td.SDNN)
		e.store.Push(store.RMSSD, td.RMSSD)

		if fd := e.FreqDomain(rrFromHeartRate(hr)); fd != nil {
			e.store.Push(store.LF, fd.LF)
			e.store.Push(store.HF, fd.HF)
			if fd.RatioOK {
				e.store.Push(store.LFHF, fd.LFHF)
			}
		}
	}

	// Wearable path: the band reports RR intervals directly. The result
	// goes to its own stream; WearableSDNN belongs to the band reader.
	rr := e.store.Tail(store.RRInterval, e.cfg.WearableWindow)
	if td := e.TimeDomainRR(rr); td != nil {
		e.store.Push(store.RRSDNN, td.SDNN)
	}

	e.classify()
}

// classify feeds the emotion classifier once both fused windows are full.
func (e *Engine) classify() {
	if e.classifier == nil {
		return
	}
	hr := e.store.Tail(store.HeartRate, ports.SampleWindow)
	br := e.store.Tail(store.BreathRate, ports.SampleWindow)
	if len(hr) < ports.SampleWindow || len(br) < ports.SampleWindow {
		return
	}
	arousal, valence, err := e.classifier.Predict(hr, br)
	if err != nil {
		e.logger.Warn("emotion classifier failed", ports.Err(err))
		return
	}
	e.store.Push(store.Arousal, float64(arousal))
	e.store.Push(store.Valence, float64(valence))
}

// rrFromHeartRate converts a bpm series to RR intervals in milliseconds.
// Non-positive readings produce no interval.
func rrFromHeartRate(hr []float64) []float64 {
	rr := make([]float64, 0, len(hr))
	for _, bpm := range hr {
		if bpm > 0 {
			rr = append(rr, 60000/bpm)
		}
	}
	return rr
}
