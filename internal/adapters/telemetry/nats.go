// Package telemetry publishes sensor summaries to NATS.
package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/aremos-dev/around-demo5/internal/ports"
)

// NATSSink implements ports.TelemetrySink over a NATS connection.
// Publishing is best effort: the device must keep sensing and guiding with
// the broker unreachable, so failures are logged and dropped, never
// propagated to the sensing path.
type NATSSink struct {
	conn   *nats.Conn
	logger ports.Logger
}

var _ ports.TelemetrySink = (*NATSSink)(nil)

// Connect dials the NATS server. The connection reconnects indefinitely in
// the background; a server that is down at boot is not an error.
func Connect(url string, logger ports.Logger) (*NATSSink, error) {
	conn, err := nats.Connect(url,
		nats.Name("aroundd"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", ports.Err(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", ports.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: connect %s: %w", url, err)
	}
	return &NATSSink{conn: conn, logger: logger}, nil
}

// Publish sends one telemetry document as JSON. Errors are swallowed after
// logging; the async NATS writer already buffers across short outages.
func (s *NATSSink) Publish(subject string, doc map[string]float64) {
	payload, err := json.Marshal(doc)
	if err != nil {
		s.logger.Warn("telemetry marshal failed", ports.Err(err))
		return
	}
	if err := s.conn.Publish(subject, payload); err != nil {
		s.logger.Debug("telemetry publish failed", ports.Err(err))
	}
}

// Close flushes and closes the connection.
func (s *NATSSink) Close() {
	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
	}
}
