package device

import (
	"context"
	"time"

	"github.com/aremos-dev/around-demo5/internal/store"
)

// telemetryStreams are the streams summarized in each telemetry document,
// keyed by the field name used on the wire.
var telemetryStreams = map[string]store.Stream{
	"heart_rate":    store.HeartRate,
	"breath_rate":   store.BreathRate,
	"motion":        store.Motion,
	"wearable_hr":   store.WearableHR,
	"spo2":          store.SpO2,
	"sdnn":          store.SDNN,
	"rmssd":         store.RMSSD,
	"rr_sdnn":       store.RRSDNN,
	"lf":            store.LF,
	"hf":            store.HF,
	"lf_hf":         store.LFHF,
	"arousal":       store.Arousal,
	"valence":       store.Valence,
	"wearable_sdnn": store.WearableSDNN,
}

// telemetryLoop publishes one summary document per interval: the latest
// value of each stream that has ever produced one, plus the behavior state.
// Publishing is best effort and never blocks the sensing path.
func (d *Device) telemetryLoop(ctx context.Context) {
	interval := d.cfg.TelemetryInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.sink.Publish(d.cfg.NATSSubject, d.telemetryDoc())
		}
	}
}

func (d *Device) telemetryDoc() map[string]float64 {
	doc := make(map[string]float64, len(telemetryStreams)+2)
	for field, stream := range telemetryStreams {
		if v, ok := d.store.Last(stream); ok {
			doc[field] = v
		}
	}
	doc["state"] = float64(d.ctrl.State())
	if d.ctrl.Levitating() {
		doc["levitating"] = 1
	} else {
		doc["levitating"] = 0
	}
	return doc
}
