// Package decode recovers frames from unreliable sensor byte streams and
// interprets their payloads as typed samples.
//
// The wire is inherently noisy: bytes are dropped and duplicated, and the
// reader can attach mid-frame. Decode errors are therefore never surfaced;
// the decoder resynchronizes on the next frame boundary instead.
package decode

import (
	"encoding/binary"

	"github.com/aremos-dev/around-demo5/internal/domain"
)

// Framing describes one link's frame envelope: how frames start, how their
// total length is declared, and how a candidate frame is validated.
type Framing struct {
	// Name tags log lines and errors.
	Name string

	// Magic is the frame start sequence (8 bytes for the mm-wave radar
	// packet stream, 2 for the vitals radar link, 1 for the wearable).
	Magic []byte

	// MinPrefix is the number of buffered bytes required before TotalLen
	// can be evaluated.
	MinPrefix int

	// MaxBuffer is the desync-recovery cap: when no magic sequence is
	// found and the buffer exceeds this size, the buffer is dropped
	// entirely. A designed lossy fallback, not an error.
	MaxBuffer int

	// TotalLen returns the declared total frame length given at least
	// MinPrefix buffered bytes starting at the magic sequence. A result
	// < MinPrefix or > MaxBuffer marks the candidate invalid.
	TotalLen func(prefix []byte) int

	// Validate checks terminator and checksum on a complete candidate
	// frame. Nil means the structural length check is the only gate.
	Validate func(frame []byte) bool

	// Extract slices the payload out of a validated frame. The frame
	// slice is a private copy; Extract may retain it.
	Extract func(frame []byte) domain.Frame
}

const (
	radarHeaderLen  = 6 // magic(2) + ctrl + cmd + len(be16)
	radarEnvelope   = 9 // header + checksum + terminator(2)
	wearableFrame   = 10
	mmwaveHeaderLen = 40 // magic(8) + 8 le32 words
)

// RadarFraming is the envelope of the vitals radar serial link:
//
//	53 59 | ctrl | cmd | len(be16) | payload | cksum | 54 43
//
// The checksum is the byte sum of everything through the payload, mod 256.
func RadarFraming() Framing {
	return Framing{
		Name:      "radar",
		Magic:     []byte{0x53, 0x59},
		MinPrefix: 8,
		MaxBuffer: 4096,
		TotalLen: func(prefix []byte) int {
			return radarEnvelope + int(binary.BigEndian.Uint16(prefix[4:6]))
		},
		Validate: func(frame []byte) bool {
			n := len(frame)
			if frame[n-2] != 0x54 || frame[n-1] != 0x43 {
				return false
			}
			var sum byte
			for _, b := range frame[:n-3] {
				sum += b
			}
			return sum == frame[n-3]
		},
		Extract: func(frame []byte) domain.Frame {
			return domain.Frame{
				Ctrl:    frame[2],
				Cmd:     frame[3],
				Payload: frame[radarHeaderLen : len(frame)-3],
			}
		},
	}
}

// MMWaveFraming is the envelope of the mm-wave radar TLV packet stream.
// Packets open with an 8-byte magic word and declare their total length in
// the fourth little-endian word of the header; there is no terminator or
// checksum, so the length check is the only structural gate.
func MMWaveFraming() Framing {
	return Framing{
		Name:      "mmwave",
		Magic:     []byte{2, 1, 4, 3, 6, 5, 8, 7},
		MinPrefix: 16,
		MaxBuffer: 1 << 15,
		TotalLen: func(prefix []byte) int {
			return int(binary.LittleEndian.Uint32(prefix[12:16]))
		},
		Extract: func(frame []byte) domain.Frame {
			return domain.Frame{Payload: frame}
		},
	}
}

// WearableFraming is the envelope of the wristband notification stream: a
// single 0xFF header byte followed by nine data bytes. The link carries no
// checksum; the header byte is the only validity check, preserved as the
// observed protocol defines it.
func WearableFraming() Framing {
	return Framing{
		Name:      "wearable",
		Magic:     []byte{0xFF},
		MinPrefix: 1,
		MaxBuffer: 512,
		TotalLen:  func([]byte) int { return wearableFrame },
		Extract: func(frame []byte) domain.Frame {
			return domain.Frame{Payload: frame[1:]}
		},
	}
}
