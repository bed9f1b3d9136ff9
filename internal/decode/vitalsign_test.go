package decode

import (
	"encoding/binary"
	"math"
	"testing"
	"time"
)

// tlvPacket assembles a packet from TLV bodies keyed by type.
func tlvPacket(frameNumber uint32, tlvs []struct {
	typ  int
	body []byte
}) []byte {
	le := binary.LittleEndian

	size := mmwaveHeaderLen
	for _, tlv := range tlvs {
		size += 8 + len(tlv.body)
	}

	packet := make([]byte, mmwaveHeaderLen, size)
	copy(packet, []byte{2, 1, 4, 3, 6, 5, 8, 7})
	le.PutUint32(packet[12:16], uint32(size))
	le.PutUint32(packet[16:20], 0xA1642) // platform word
	le.PutUint32(packet[20:24], frameNumber)
	le.PutUint32(packet[28:32], 0) // detected objects
	le.PutUint32(packet[32:36], uint32(len(tlvs)))

	for _, tlv := range tlvs {
		hdr := make([]byte, 8)
		le.PutUint32(hdr[0:4], uint32(tlv.typ))
		le.PutUint32(hdr[4:8], uint32(len(tlv.body)))
		packet = append(packet, hdr...)
		packet = append(packet, tlv.body...)
	}
	return packet
}

// vitalSignBody builds a vital-sign TLV body with the given rates.
func vitalSignBody(binStart, binEnd uint16, heartFFT, heart4HzRaw, breathFFT float32) []byte {
	le := binary.LittleEndian
	body := make([]byte, vitalSignTLVMin+4)

	put := func(off int, v float32) {
		le.PutUint32(body[off:off+4], math.Float32bits(v))
	}

	le.PutUint16(body[0:2], 21)  // range bin index max
	le.PutUint16(body[12:14], binStart)
	le.PutUint16(body[14:16], binEnd)
	put(28, heartFFT)
	put(32, heart4HzRaw)
	put(36, 71) // xcorr estimate
	put(44, breathFFT)
	put(56, 0.8)  // breath confidence
	put(64, 0.9)  // heart confidence
	put(68, 0.7)  // heart 4 Hz confidence
	put(84, 1)    // motion flag
	put(vitalSignTLVMin, float32(binEnd-binStart+1)*4)
	return body
}

func TestVitalSignDecoder_DecodesSample(t *testing.T) {
	d := NewVitalSignDecoder()
	d.now = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }

	packet := tlvPacket(42, []struct {
		typ  int
		body []byte
	}{
		{tlvTypeVitalSign, vitalSignBody(11, 33, 72, 150, 16)},
	})

	out, err := d.DecodePacket(packet)
	if err != nil {
		t.Fatalf("DecodePacket() error: %v", err)
	}
	// The frame number sits after the platform word; a misaligned header
	// read would pick up the 0xA1642 platform value instead.
	if out.FrameNumber != 42 {
		t.Errorf("FrameNumber = %d, want 42", out.FrameNumber)
	}
	// Vital-sign firmware reports zero detected objects while still
	// emitting TLVs; the TLV count lives in its own header word.
	if out.DetectedObjects != 0 {
		t.Errorf("DetectedObjects = %d, want 0", out.DetectedObjects)
	}
	s := out.Sample
	if s == nil {
		t.Fatal("Sample is nil")
	}
	if s.HeartRateEstFFT != 72 {
		t.Errorf("HeartRateEstFFT = %v, want 72", s.HeartRateEstFFT)
	}
	if s.HeartRateEstFFT4Hz != 75 {
		t.Errorf("HeartRateEstFFT4Hz = %v, want 75 (half the wire value)", s.HeartRateEstFFT4Hz)
	}
	if s.BreathRateEstFFT != 16 {
		t.Errorf("BreathRateEstFFT = %v, want 16", s.BreathRateEstFFT)
	}
	if got := s.RangeBinCount(); got != 23 {
		t.Errorf("RangeBinCount() = %d, want 23", got)
	}
	if !s.Valid() {
		t.Error("Valid() = false for a well-formed sample")
	}
}

func TestVitalSignDecoder_RangeProfileUsesSameFrameBins(t *testing.T) {
	d := NewVitalSignDecoder()

	const bins = 23
	profile := make([]byte, bins*4)
	// bin 0: re=3, im=4, magnitude 5
	binary.LittleEndian.PutUint16(profile[0:2], 3)
	binary.LittleEndian.PutUint16(profile[2:4], 4)

	packet := tlvPacket(1, []struct {
		typ  int
		body []byte
	}{
		{tlvTypeVitalSign, vitalSignBody(11, 33, 70, 140, 15)},
		{tlvTypeRangeProfile, profile},
	})

	out, err := d.DecodePacket(packet)
	if err != nil {
		t.Fatalf("DecodePacket() error: %v", err)
	}
	if len(out.Profile) != bins {
		t.Fatalf("profile has %d bins, want %d", len(out.Profile), bins)
	}
	if out.Profile[0] != 5 {
		t.Errorf("Profile[0] = %v, want 5", out.Profile[0])
	}
}

func TestVitalSignDecoder_CarriesBinCountAcrossPackets(t *testing.T) {
	d := NewVitalSignDecoder()

	// First packet teaches a narrower window.
	first := tlvPacket(1, []struct {
		typ  int
		body []byte
	}{
		{tlvTypeVitalSign, vitalSignBody(10, 19, 70, 140, 15)},
	})
	if _, err := d.DecodePacket(first); err != nil {
		t.Fatalf("DecodePacket(first) error: %v", err)
	}

	// Profile-only packet: sized by the remembered 10-bin window.
	profile := make([]byte, 10*4)
	second := tlvPacket(2, []struct {
		typ  int
		body []byte
	}{
		{tlvTypeRangeProfile, profile},
	})
	out, err := d.DecodePacket(second)
	if err != nil {
		t.Fatalf("DecodePacket(second) error: %v", err)
	}
	if len(out.Profile) != 10 {
		t.Errorf("profile has %d bins, want 10", len(out.Profile))
	}
}

func TestVitalSignDecoder_RejectsTruncatedTLV(t *testing.T) {
	d := NewVitalSignDecoder()

	packet := tlvPacket(1, []struct {
		typ  int
		body []byte
	}{
		{tlvTypeVitalSign, make([]byte, 40)}, // far too short
	})
	if _, err := d.DecodePacket(packet); err == nil {
		t.Error("DecodePacket() accepted a truncated vital-sign TLV")
	}
}

func TestVitalSignSample_ValidRejectsNaN(t *testing.T) {
	d := NewVitalSignDecoder()

	nan := float32(math.NaN())
	packet := tlvPacket(1, []struct {
		typ  int
		body []byte
	}{
		{tlvTypeVitalSign, vitalSignBody(11, 33, nan, 140, 15)},
	})
	out, err := d.DecodePacket(packet)
	if err != nil {
		t.Fatalf("DecodePacket() error: %v", err)
	}
	if out.Sample.Valid() {
		t.Error("Valid() = true for a NaN heart-rate estimate")
	}
}
