package decode

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/aremos-dev/around-demo5/internal/domain"
)

// TLV type codes of the mm-wave radar packet stream.
const (
	tlvTypeRangeProfile = 2
	tlvTypeVitalSign    = 6
)

// vitalSignTLVMin is the number of payload bytes the vital-sign TLV must
// carry: the fixed fields through the motion flag plus a 40-byte reserved
// block. The range-profile length field sits right after the reserved block.
const vitalSignTLVMin = 128

// defaultRangeBins is the processed-bin count assumed until the first
// vital-sign TLV declares the real window (bins 11 through 33 inclusive).
const defaultRangeBins = 33 - 11 + 1

// Packet is the decoded content of one mm-wave radar packet: at most one
// vital-sign sample and one range profile. The profile's bin count depends
// on the vital-sign TLV of the same packet, so both are decoded together.
type Packet struct {
	FrameNumber     uint32
	DetectedObjects uint32
	Sample          *domain.VitalSignSample
	Profile         []float64
}

// VitalSignDecoder interprets mm-wave packet payloads. It carries the
// processed range-bin count across packets for profiles that arrive without
// an accompanying vital-sign TLV.
type VitalSignDecoder struct {
	rangeBins int
	now       func() time.Time
}

// NewVitalSignDecoder creates a decoder with the default range-bin window.
func NewVitalSignDecoder() *VitalSignDecoder {
	return &VitalSignDecoder{rangeBins: defaultRangeBins, now: time.Now}
}

// DecodePacket parses one complete packet (header plus TLVs). Truncated
// TLVs abort the packet; nothing partially decoded is ever returned.
func (d *VitalSignDecoder) DecodePacket(packet []byte) (*Packet, error) {
	if len(packet) < mmwaveHeaderLen {
		return nil, fmt.Errorf("decode: short mmwave packet: %d bytes", len(packet))
	}

	le := binary.LittleEndian
	// Header layout after the 8-byte magic: version [8:12], total length
	// [12:16], platform [16:20], frame number [20:24], cpu cycles [24:28],
	// detected objects [28:32], TLV count [32:36], subframe [36:40].
	out := &Packet{
		FrameNumber:     le.Uint32(packet[20:24]),
		DetectedObjects: le.Uint32(packet[28:32]),
	}
	numTLVs := int(le.Uint32(packet[32:36]))

	idx := mmwaveHeaderLen
	for t := 0; t < numTLVs; t++ {
		if idx+8 > len(packet) {
			return nil, fmt.Errorf("decode: truncated TLV header at %d", idx)
		}
		tlvType := int(le.Uint32(packet[idx : idx+4]))
		tlvLen := int(le.Uint32(packet[idx+4 : idx+8]))
		idx += 8
		if tlvLen < 0 || idx+tlvLen > len(packet) {
			return nil, fmt.Errorf("decode: TLV %d overruns packet", tlvType)
		}
		body := packet[idx : idx+tlvLen]

		switch tlvType {
		case tlvTypeVitalSign:
			sample, err := d.decodeVitalSign(body)
			if err != nil {
				return nil, err
			}
			out.Sample = sample
			d.rangeBins = sample.RangeBinCount()
		case tlvTypeRangeProfile:
			bins := d.rangeBins
			if out.Sample != nil {
				bins = out.Sample.RangeBinCount()
			}
			profile, err := decodeRangeProfile(body, bins)
			if err != nil {
				return nil, err
			}
			out.Profile = profile
		}
		idx += tlvLen
	}
	return out, nil
}

// decodeVitalSign reads the fixed-offset field block of the vital-sign TLV.
func (d *VitalSignDecoder) decodeVitalSign(body []byte) (*domain.VitalSignSample, error) {
	if len(body) < vitalSignTLVMin {
		return nil, fmt.Errorf("decode: vital-sign TLV too short: %d bytes", len(body))
	}

	le := binary.LittleEndian
	f32 := func(off int) float32 {
		return math.Float32frombits(le.Uint32(body[off : off+4]))
	}

	s := &domain.VitalSignSample{
		RangeBinIndexMax:   le.Uint16(body[0:2]),
		RangeBinIndexPhase: le.Uint16(body[2:4]),
		MaxVal:             f32(4),
		ProcessingCycles:   le.Uint32(body[8:12]),
		RangeBinStart:      le.Uint16(body[12:14]),
		RangeBinEnd:        le.Uint16(body[14:16]),

		UnwrapPhasePeakMM: f32(16),
		BreathWaveform:    f32(20),
		HeartWaveform:     f32(24),

		HeartRateEstFFT:    f32(28),
		HeartRateEstFFT4Hz: f32(32) / 2, // protocol convention, not an error
		HeartRateEstXCorr:  f32(36),
		HeartRateEstPeaks:  f32(40),

		BreathRateEstFFT:   f32(44),
		BreathRateEstXCorr: f32(48),
		BreathRateEstPeaks: f32(52),

		ConfidenceBreath:      f32(56),
		ConfidenceBreathXCorr: f32(60),
		ConfidenceHeart:       f32(64),
		ConfidenceHeart4Hz:    f32(68),
		ConfidenceHeartXCorr:  f32(72),

		EnergyBreathWfm: f32(76),
		EnergyHeartWfm:  f32(80),
		MotionDetected:  f32(84),

		Timestamp: d.now(),
	}
	// 40 reserved bytes follow the motion flag; the profile length field
	// sits after them when present.
	if len(body) >= vitalSignTLVMin+4 {
		s.RangeProfileLen = f32(vitalSignTLVMin)
	}
	return s, nil
}

// decodeRangeProfile converts bins complex (int16 real, int16 imag) pairs
// into per-bin magnitudes.
func decodeRangeProfile(body []byte, bins int) ([]float64, error) {
	if bins <= 0 || len(body) < bins*4 {
		return nil, fmt.Errorf("decode: range profile needs %d bins, has %d bytes", bins, len(body))
	}
	le := binary.LittleEndian
	profile := make([]float64, bins)
	for i := 0; i < bins; i++ {
		re := float64(int16(le.Uint16(body[i*4 : i*4+2])))
		im := float64(int16(le.Uint16(body[i*4+2 : i*4+4])))
		profile[i] = math.Sqrt(re*re + im*im)
	}
	return profile, nil
}
