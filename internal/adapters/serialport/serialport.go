// Package serialport opens UART devices as byte sources.
package serialport

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/tarm/serial"

	"github.com/aremos-dev/around-demo5/internal/domain"
	"github.com/aremos-dev/around-demo5/internal/ports"
)

// readTimeout bounds each Read so reader loops can notice shutdown even on
// a silent line.
const readTimeout = 500 * time.Millisecond

// Port wraps a tarm/serial port as a ports.ByteSource.
type Port struct {
	rwc    io.ReadWriteCloser
	name   string
	closed atomic.Bool
}

var _ ports.ByteSource = (*Port)(nil)

// Open opens the named serial device at the given baud rate, 8N1.
func Open(name string, baud int) (*Port, error) {
	p, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        baud,
		ReadTimeout: readTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("serialport: open %s: %w", name, err)
	}
	return &Port{rwc: p, name: name}, nil
}

// Name returns the device path.
func (p *Port) Name() string { return p.name }

// Read reads available bytes. A timed-out read returns (0, nil); callers
// treat an empty read as "no data yet", not end of stream.
func (p *Port) Read(buf []byte) (int, error) {
	if p.closed.Load() {
		return 0, domain.ErrLinkClosed
	}
	return p.rwc.Read(buf)
}

// Write writes the bytes to the device.
func (p *Port) Write(buf []byte) (int, error) {
	if p.closed.Load() {
		return 0, domain.ErrLinkClosed
	}
	return p.rwc.Write(buf)
}

// Close closes the device. Further reads and writes fail with
// domain.ErrLinkClosed; a second Close is a no-op.
func (p *Port) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.rwc.Close()
}
