package domain

import "errors"

// Domain errors represent error conditions surfaced by the public API.
// These can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running device.
	ErrAlreadyRunning = errors.New("around: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped device.
	ErrNotRunning = errors.New("around: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("around: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("around: invalid configuration")

	// ErrLinkClosed is returned when a sensor link is used after Close.
	ErrLinkClosed = errors.New("around: link closed")

	// ErrNoAck is returned when a connect-time protocol command is not
	// acknowledged by the device within the ack timeout.
	ErrNoAck = errors.New("around: command not acknowledged")
)
