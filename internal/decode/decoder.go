package decode

import (
	"bytes"

	"github.com/aremos-dev/around-demo5/internal/domain"
)

// FrameDecoder recovers complete frames from an append-only byte stream.
//
// Feed appends raw bytes; Poll attempts one decode step and yields at most
// one frame, so the caller loops until Poll reports no frame. Decoding only
// ever blocks on data availability: a partial header or partial frame
// leaves the buffer untouched until more bytes arrive.
//
// Corrupt candidates (bad declared length, bad terminator, bad checksum)
// advance the scan by a single byte and retry, which guarantees forward
// progress and eventual realignment on the next genuine frame boundary.
type FrameDecoder struct {
	framing Framing
	buf     []byte
}

// NewFrameDecoder creates a decoder for the given framing.
func NewFrameDecoder(f Framing) *FrameDecoder {
	return &FrameDecoder{framing: f}
}

// Feed appends raw bytes to the internal buffer.
func (d *FrameDecoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Buffered returns the number of unconsumed bytes.
func (d *FrameDecoder) Buffered() int { return len(d.buf) }

// Poll attempts one decode step. It returns the next complete, validated
// frame, or ok=false when the buffer holds no complete frame yet.
func (d *FrameDecoder) Poll() (domain.Frame, bool) {
	f := d.framing
	for {
		k := bytes.Index(d.buf, f.Magic)
		if k < 0 {
			// No frame start in sight. Past the safety cap the whole
			// buffer is garbage; drop it and wait for realignment.
			if len(d.buf) > f.MaxBuffer {
				d.buf = d.buf[:0]
			} else if n := len(f.Magic) - 1; len(d.buf) > n {
				// Keep only a possible partial magic at the tail.
				d.discard(len(d.buf) - n)
			}
			return domain.Frame{}, false
		}
		if k > 0 {
			d.discard(k)
		}
		if len(d.buf) < f.MinPrefix {
			return domain.Frame{}, false
		}

		total := f.TotalLen(d.buf[:f.MinPrefix])
		if total < f.MinPrefix || total > f.MaxBuffer {
			// Corrupt length field: the magic match was noise.
			d.discard(1)
			continue
		}
		if len(d.buf) < total {
			return domain.Frame{}, false
		}

		candidate := d.buf[:total]
		if f.Validate != nil && !f.Validate(candidate) {
			d.discard(1)
			continue
		}

		frame := f.Extract(append([]byte(nil), candidate...))
		d.discard(total)
		return frame, true
	}
}

// discard drops n consumed (or garbage) bytes from the front of the buffer.
func (d *FrameDecoder) discard(n int) {
	remaining := copy(d.buf, d.buf[n:])
	d.buf = d.buf[:remaining]
}
