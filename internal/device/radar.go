package device

import (
	"context"
	"time"

	"github.com/aremos-dev/around-demo5/internal/decode"
	"github.com/aremos-dev/around-demo5/internal/domain"
	"github.com/aremos-dev/around-demo5/internal/ports"
	"github.com/aremos-dev/around-demo5/internal/store"
)

// Radar report identifiers, (ctrl, cmd) pairs of the vitals radar protocol.
const (
	radarCtrlPresence = 0x80
	radarCtrlBreath   = 0x81
	radarCtrlSystem   = 0x84
	radarCtrlHeart    = 0x85
	radarCmdEnable    = 0x00
	radarCmdRate      = 0x02
	radarCmdMotion    = 0x03
	radarCmdRealtime  = 0x0F
)

// ackTimeout bounds the wait for a connect-time command acknowledgement.
const ackTimeout = 2 * time.Second

// radarCommand is one connect-time protocol command. The radar echoes the
// (ctrl, cmd) pair as its acknowledgement.
type radarCommand struct {
	name string
	ctrl byte
	cmd  byte
	data []byte
}

// radarStartup enables the report streams the device relies on. Sent on
// every (re)connect since the radar forgets its mode on power loss.
var radarStartup = []radarCommand{
	{"presence reporting", radarCtrlPresence, radarCmdEnable, []byte{0x01}},
	{"breath monitoring", radarCtrlBreath, radarCmdEnable, []byte{0x01}},
	{"heart monitoring", radarCtrlHeart, radarCmdEnable, []byte{0x01}},
	{"realtime mode", radarCtrlSystem, radarCmdRealtime, []byte{0x00}},
}

// encodeRadarCommand builds a complete wire frame for the command.
func encodeRadarCommand(c radarCommand) []byte {
	n := len(c.data)
	frame := make([]byte, 0, 9+n)
	frame = append(frame, 0x53, 0x59, c.ctrl, c.cmd, byte(n>>8), byte(n))
	frame = append(frame, c.data...)
	var sum byte
	for _, b := range frame {
		sum += b
	}
	frame = append(frame, sum, 0x54, 0x43)
	return frame
}

// serveRadar owns the vitals radar link: enable the report streams, then
// route report frames into the store until the link fails.
func (d *Device) serveRadar(ctx context.Context, src ports.ByteSource) error {
	dec := decode.NewFrameDecoder(decode.RadarFraming())

	for _, c := range radarStartup {
		if err := d.radarCommandWithAck(ctx, src, dec, c); err != nil {
			// The radar keeps streaming with a lost ack; a report frame
			// arriving at the wrong moment can eat the echo.
			d.logger.Warn("radar command unacknowledged",
				ports.String("command", c.name), ports.Err(err))
		}
	}

	buf := make([]byte, 512)
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := src.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		dec.Feed(buf[:n])
		for {
			f, ok := dec.Poll()
			if !ok {
				break
			}
			d.routeRadarFrame(f)
		}
	}
}

// radarCommandWithAck writes the command and waits for its echo, routing
// any report frames that arrive in between.
func (d *Device) radarCommandWithAck(ctx context.Context, src ports.ByteSource, dec *decode.FrameDecoder, c radarCommand) error {
	if _, err := src.Write(encodeRadarCommand(c)); err != nil {
		return err
	}

	buf := make([]byte, 512)
	deadline := time.Now().Add(ackTimeout)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n, err := src.Read(buf)
		if err != nil {
			return err
		}
		dec.Feed(buf[:n])
		for {
			f, ok := dec.Poll()
			if !ok {
				break
			}
			if f.Ctrl == c.ctrl && f.Cmd == c.cmd {
				return nil
			}
			d.routeRadarFrame(f)
		}
	}
	return domain.ErrNoAck
}

// routeRadarFrame pushes one report frame into its stream. A zero rate
// means "no target locked"; storing it would poison the averaging windows,
// so zero rates update nothing and presence decays by staleness instead.
func (d *Device) routeRadarFrame(f domain.Frame) {
	if len(f.Payload) < 1 {
		return
	}
	v := float64(f.Payload[0])

	switch {
	case f.Ctrl == radarCtrlHeart && f.Cmd == radarCmdRate:
		if v > 0 {
			d.store.Push(store.HeartRate, v)
		}
	case f.Ctrl == radarCtrlBreath && f.Cmd == radarCmdRate:
		if v > 0 {
			d.store.Push(store.BreathRate, v)
		}
	case f.Ctrl == radarCtrlPresence && f.Cmd == radarCmdMotion:
		d.store.Push(store.Motion, v)
	}
}
