package domain

// Frame is one complete unit recovered from a sensor byte stream.
// It is constructed once per successful decode, handed to a typed decoder,
// and then discarded.
type Frame struct {
	// Ctrl and Cmd are the control/type codes for links that carry them
	// (the radar link tags every frame with a control and command byte).
	// Links without control codes leave them zero.
	Ctrl byte
	Cmd  byte

	// Payload is the frame body with framing bytes stripped.
	// The slice is owned by the frame; decoders may retain it.
	Payload []byte
}

// Len returns the payload length in bytes.
func (f Frame) Len() int { return len(f.Payload) }
