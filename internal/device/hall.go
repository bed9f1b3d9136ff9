package device

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/aremos-dev/around-demo5/internal/ports"
	"github.com/aremos-dev/around-demo5/internal/store"
)

// serveHall owns the hall sensor link. The sensor prints one raw ADC count
// per line; lines that fail to parse are noise from the shared UART and
// are skipped.
func (d *Device) serveHall(ctx context.Context, src ports.ByteSource) error {
	scanner := bufio.NewScanner(contextReader{ctx: ctx, r: src})
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			continue
		}
		d.store.Push(store.Hall, v)
	}
	if ctx.Err() != nil {
		return nil
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}

// contextReader stops a blocking line scan at shutdown. The serial port's
// read timeout guarantees Read returns regularly, so the context check
// runs at least every timeout period.
type contextReader struct {
	ctx context.Context
	r   ports.ByteSource
}

func (c contextReader) Read(p []byte) (int, error) {
	for {
		if c.ctx.Err() != nil {
			return 0, io.EOF
		}
		n, err := c.r.Read(p)
		if n > 0 || err != nil {
			return n, err
		}
	}
}
