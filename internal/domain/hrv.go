package domain

import "time"

// HRVResult carries one round of heart-rate-variability metrics.
// Frequency-domain fields are only meaningful when FreqValid is set; an
// engine that cannot compute them publishes no result rather than zeros.
type HRVResult struct {
	SDNN  float64 // ms
	RMSSD float64 // ms

	FreqValid bool
	LF        float64 // ms^2, band [0.04, 0.15) Hz
	HF        float64 // ms^2, band [0.15, 0.4) Hz
	LFHF      float64 // valid only when HF > 0
	RatioOK   bool

	ComputedAt time.Time
}
