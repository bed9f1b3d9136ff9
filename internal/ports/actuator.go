package ports

// Light modes understood by the companion shell. The values are the wire
// codes of the peripheral's command protocol.
const (
	LightBreathGuide = 1 // slow warm pulse used during the breathing guide
	LightFlowBlue    = 2 // blue-purple slow flow
	LightOff         = 3
	LightFlowOrange  = 4 // orange fast flow
	LightAccumulate  = 6 // baseline accumulation sweep
	LightFlashWarm   = 7 // warm yellow flash
)

// Actuator drives the ambient outputs of the companion shell. Commands are
// fire-and-forget: the core requires no acknowledgement, and implementations
// may retry internally. No call may block on the peripheral.
type Actuator interface {
	// SetMode selects a built-in light animation (Light* constants).
	SetMode(mode int)

	// SetColor sets a steady RGB color.
	SetColor(r, g, b uint8)

	// SetBrightness sets the global light brightness.
	SetBrightness(level uint8)

	// SetVibration sets the vibration pattern, 0 for off.
	SetVibration(pattern int)

	// SetJump sets the jump animation level, 0 for off.
	SetJump(level int)
}

// BaseStation is the command channel to the levitation base controller.
// The placement monitor uses it to energize the coil and switch platform
// modes when the shell is lifted or set down.
type BaseStation interface {
	WriteCommand(cmd string) error
}
