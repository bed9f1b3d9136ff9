// Package classifier estimates arousal and valence from fused heart-rate
// and breath-rate windows.
package classifier

import (
	"fmt"

	"github.com/aremos-dev/around-demo5/internal/ports"
)

// Resting-rate thresholds, bpm. Readings are compared against these bands
// rather than a per-user baseline; the device has no user accounts.
const (
	hrHigh = 82.0
	brLow  = 12.0
	brHigh = 19.0
)

// brVarCalm is the breath-rate variance ceiling for "even breathing".
const brVarCalm = 4.0

// Threshold is a rule-based ports.EmotionClassifier. Arousal is 1 when the
// mean heart rate runs above the resting band, valence is 1 when breathing
// is slow and even; both are 0 otherwise.
type Threshold struct{}

var _ ports.EmotionClassifier = Threshold{}

// New creates a threshold classifier.
func New() Threshold {
	return Threshold{}
}

// Predict maps the windows to binary arousal and valence.
func (Threshold) Predict(hr, br []float64) (arousal, valence int, err error) {
	if len(hr) == 0 || len(br) == 0 {
		return 0, 0, fmt.Errorf("classifier: empty window")
	}

	if mean(hr) > hrHigh {
		arousal = 1
	}

	brMean := mean(br)
	var brVar float64
	for _, v := range br {
		d := v - brMean
		brVar += d * d
	}
	brVar /= float64(len(br))

	if brMean >= brLow && brMean <= brHigh && brVar < brVarCalm {
		valence = 1
	}
	return arousal, valence, nil
}

func mean(xs []float64) float64 {
	var sum float64
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}
