package decode

import (
	"time"

	"github.com/aremos-dev/around-demo5/internal/domain"
)

// Plausible wristband heart-rate bounds; readings outside are stored as 0
// so downstream freshness and averaging treat them as "no reading".
const (
	wearableHRMin = 50
	wearableHRMax = 190
)

// DecodeWearable interprets one wristband frame payload (the nine data
// bytes after the header): heart rate, SpO2, on-device SDNN, three RR
// samples, battery voltage in tenths of a volt, and the gesture code.
func DecodeWearable(f domain.Frame) (domain.WearableSample, bool) {
	if len(f.Payload) < 8 {
		return domain.WearableSample{}, false
	}
	p := f.Payload

	hr := int(p[0])
	if hr < wearableHRMin || hr > wearableHRMax {
		hr = 0
	}
	return domain.WearableSample{
		HeartRate:  hr,
		SpO2:       int(p[1]),
		SDNN:       int(p[2]),
		RR:         [3]int{int(p[3]), int(p[4]), int(p[5])},
		VoltageRaw: int(p[6]),
		Gesture:    int(p[7]),
		Timestamp:  time.Now(),
	}, true
}
