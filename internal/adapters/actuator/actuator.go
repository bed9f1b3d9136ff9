// Package actuator drives the companion shell and the levitation base over
// their ASCII command links.
package actuator

import (
	"fmt"
	"io"
	"sync"

	"github.com/aremos-dev/around-demo5/internal/ports"
)

// Shell writes single-letter key=value commands to the companion shell.
// The link is one-way; the shell firmware acknowledges nothing, so every
// command is fire-and-forget with a logged failure.
type Shell struct {
	logger ports.Logger

	mu sync.Mutex
	w  io.Writer
}

var _ ports.Actuator = (*Shell)(nil)

// NewShell creates a shell actuator over the command link.
func NewShell(w io.Writer, logger ports.Logger) *Shell {
	return &Shell{logger: logger, w: w}
}

func (s *Shell) send(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, format, args...); err != nil {
		s.logger.Warn("shell command failed", ports.Err(err))
	}
}

// SetMode selects a built-in light animation.
func (s *Shell) SetMode(mode int) {
	s.send("m=%d\n", mode)
}

// SetColor sets a steady RGB color.
func (s *Shell) SetColor(r, g, b uint8) {
	s.send("c=%d,%d,%d\n", r, g, b)
}

// SetBrightness sets the global light brightness.
func (s *Shell) SetBrightness(level uint8) {
	s.send("b=%d\n", level)
}

// SetVibration sets the vibration pattern, 0 for off.
func (s *Shell) SetVibration(pattern int) {
	s.send("v=%d\n", pattern)
}

// SetJump sets the jump animation level, 0 for off.
func (s *Shell) SetJump(level int) {
	s.send("l=%d\n", level)
}

// Base writes newline-terminated commands to the levitation base
// controller.
type Base struct {
	mu sync.Mutex
	w  io.Writer
}

var _ ports.BaseStation = (*Base)(nil)

// NewBase creates a base station command channel.
func NewBase(w io.Writer) *Base {
	return &Base{w: w}
}

// WriteCommand sends one command line to the base controller.
func (b *Base) WriteCommand(cmd string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := fmt.Fprintf(b.w, "%s\n", cmd); err != nil {
		return fmt.Errorf("actuator: base command %q: %w", cmd, err)
	}
	return nil
}
