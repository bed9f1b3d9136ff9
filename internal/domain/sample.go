package domain

import (
	"math"
	"time"
)

// VitalSignSample is one decoded vital-sign TLV from the mm-wave radar.
// Field order matches the wire layout of the vital-sign TLV.
type VitalSignSample struct {
	RangeBinIndexMax   uint16
	RangeBinIndexPhase uint16
	MaxVal             float32
	ProcessingCycles   uint32
	RangeBinStart      uint16
	RangeBinEnd        uint16

	UnwrapPhasePeakMM float32

	BreathWaveform float32
	HeartWaveform  float32

	HeartRateEstFFT    float32
	HeartRateEstFFT4Hz float32 // wire value halved, protocol convention
	HeartRateEstXCorr  float32
	HeartRateEstPeaks  float32

	BreathRateEstFFT   float32
	BreathRateEstXCorr float32
	BreathRateEstPeaks float32

	ConfidenceBreath      float32
	ConfidenceBreathXCorr float32
	ConfidenceHeart       float32
	ConfidenceHeart4Hz    float32
	ConfidenceHeartXCorr  float32

	EnergyBreathWfm float32
	EnergyHeartWfm  float32
	MotionDetected  float32

	RangeProfileLen float32

	Timestamp time.Time
}

// Valid reports whether the sample may be admitted downstream: range bins
// must be ordered and the rate estimates must be actual numbers.
func (s *VitalSignSample) Valid() bool {
	if s.RangeBinEnd < s.RangeBinStart {
		return false
	}
	if math.IsNaN(float64(s.HeartRateEstFFT)) || math.IsNaN(float64(s.BreathRateEstFFT)) {
		return false
	}
	return true
}

// RangeBinCount returns the number of processed range bins, the cross-TLV
// count used to size the range-profile TLV of the same packet.
func (s *VitalSignSample) RangeBinCount() int {
	return int(s.RangeBinEnd) - int(s.RangeBinStart) + 1
}

// WearableSample is one decoded frame from the PPG wristband notification
// stream: heart rate, SpO2, on-device SDNN, up to three RR intervals, battery
// voltage (tenths of a volt) and a gesture code from the motion sensor.
type WearableSample struct {
	HeartRate  int // clamped to 0 outside [50,190]
	SpO2       int
	SDNN       int
	RR         [3]int // zero entries mean "no sample"
	VoltageRaw int
	Gesture    int

	Timestamp time.Time
}
