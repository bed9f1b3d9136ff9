package device

import (
	"context"

	"github.com/aremos-dev/around-demo5/internal/decode"
	"github.com/aremos-dev/around-demo5/internal/domain"
	"github.com/aremos-dev/around-demo5/internal/ports"
	"github.com/aremos-dev/around-demo5/internal/store"
)

// Wristband push-notification control commands.
var (
	wearablePushOn  = []byte("p=1\n")
	wearablePushOff = []byte("p=0\n")
)

// serveWearable owns the wristband link: switch the band into push mode,
// then route its notification frames into the store. The band sends no
// acknowledgement for the push command; its first data frame is the ack.
func (d *Device) serveWearable(ctx context.Context, src ports.ByteSource) error {
	if _, err := src.Write(wearablePushOn); err != nil {
		return err
	}
	defer src.Write(wearablePushOff)

	dec := decode.NewFrameDecoder(decode.WearableFraming())
	buf := make([]byte, 256)
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := src.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		dec.Feed(buf[:n])
		for {
			f, ok := dec.Poll()
			if !ok {
				break
			}
			if sample, ok := decode.DecodeWearable(f); ok {
				d.routeWearableSample(sample)
			}
		}
	}
}

// routeWearableSample fans one wristband sample out to its streams. The
// gesture code is pushed even when zero so the two-consecutive-readings
// gesture filter sees the release between presses; rate-like fields skip
// zero, which on this band means "no reading".
func (d *Device) routeWearableSample(s domain.WearableSample) {
	d.store.Push(store.WearableHR, float64(s.HeartRate))
	if s.SpO2 > 0 {
		d.store.Push(store.SpO2, float64(s.SpO2))
	}
	if s.SDNN > 0 {
		d.store.Push(store.WearableSDNN, float64(s.SDNN))
	}
	for _, rr := range s.RR {
		if rr > 0 {
			// The band reports RR in units of 10 ms to fit a byte.
			d.store.Push(store.RRInterval, float64(rr)*10)
		}
	}
	d.store.Push(store.Gesture, float64(s.Gesture))
}
