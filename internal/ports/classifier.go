package ports

// EmotionClassifier predicts a coarse emotional state from fused heart-rate
// and breathing-rate windows. The model is pre-trained and consumed as a
// black box; both windows must hold exactly SampleWindow samples.
type EmotionClassifier interface {
	// Predict returns binary arousal and valence scores.
	Predict(hr, br []float64) (arousal, valence int, err error)
}

// SampleWindow is the fixed input window length the classifier was trained
// with (one sample per second).
const SampleWindow = 60
