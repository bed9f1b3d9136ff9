package device

import (
	"context"

	"github.com/aremos-dev/around-demo5/internal/decode"
	"github.com/aremos-dev/around-demo5/internal/ports"
	"github.com/aremos-dev/around-demo5/internal/store"
)

// mmwaveConfidenceMin gates the mm-wave rate estimates. Low-confidence
// estimates wander badly when the target moves; they are dropped rather
// than smoothed.
const mmwaveConfidenceMin = 0.1

// serveMMWave owns the optional TI mm-wave vital-sign link. Its packets
// feed the same heart-rate and breath-rate streams as the pulse radar;
// whichever front end the unit carries, downstream analysis is identical.
func (d *Device) serveMMWave(ctx context.Context, src ports.ByteSource) error {
	framer := decode.NewFrameDecoder(decode.MMWaveFraming())
	vital := decode.NewVitalSignDecoder()

	buf := make([]byte, 4096)
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
		framer.Feed(buf[:n])
		for {
			f, ok := framer.Poll()
			if !ok {
				break
			}
			pkt, err := vital.DecodePacket(f.Payload)
			if err != nil {
				d.logger.Debug("mmwave packet rejected", ports.Err(err))
				continue
			}
			if pkt.Sample == nil || !pkt.Sample.Valid() {
				continue
			}
			s := pkt.Sample

			if s.ConfidenceHeart4Hz >= mmwaveConfidenceMin && s.HeartRateEstFFT4Hz > 0 {
				d.store.Push(store.HeartRate, float64(s.HeartRateEstFFT4Hz))
			}
			if s.ConfidenceBreath >= mmwaveConfidenceMin && s.BreathRateEstFFT > 0 {
				d.store.Push(store.BreathRate, float64(s.BreathRateEstFFT))
			}
			d.store.Push(store.Motion, float64(s.MotionDetected))
		}
	}
}
