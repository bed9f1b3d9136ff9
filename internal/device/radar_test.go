package device

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/aremos-dev/around-demo5/internal/decode"
	"github.com/aremos-dev/around-demo5/internal/domain"
	"github.com/aremos-dev/around-demo5/internal/store"
)

// scriptSource plays back canned read chunks and records writes.
type scriptSource struct {
	mu     sync.Mutex
	chunks [][]byte
	wrote  []byte
}

func (s *scriptSource) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, s.chunks[0])
	s.chunks[0] = s.chunks[0][n:]
	if len(s.chunks[0]) == 0 {
		s.chunks = s.chunks[1:]
	}
	return n, nil
}

func (s *scriptSource) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wrote = append(s.wrote, p...)
	return len(p), nil
}

func (s *scriptSource) Close() error { return nil }

func newTestDevice(st *store.SensorStore) *Device {
	return &Device{
		logger: mockLogger{},
		life:   NewLifecycle(mockLogger{}),
		store:  st,
	}
}

func TestEncodeRadarCommand_RoundTrips(t *testing.T) {
	raw := encodeRadarCommand(radarCommand{
		ctrl: radarCtrlHeart, cmd: radarCmdEnable, data: []byte{0x01},
	})

	d := decode.NewFrameDecoder(decode.RadarFraming())
	d.Feed(raw)
	f, ok := d.Poll()
	if !ok {
		t.Fatal("encoded command failed its own framing validation")
	}
	if f.Ctrl != radarCtrlHeart || f.Cmd != radarCmdEnable {
		t.Errorf("decoded (ctrl, cmd) = (%#x, %#x), want (%#x, %#x)",
			f.Ctrl, f.Cmd, radarCtrlHeart, radarCmdEnable)
	}
	if !bytes.Equal(f.Payload, []byte{0x01}) {
		t.Errorf("decoded payload = %v, want [1]", f.Payload)
	}
}

func TestRadarStartup_EnablesAllStreamsAndRealtimeMode(t *testing.T) {
	want := []struct {
		ctrl byte
		cmd  byte
	}{
		{radarCtrlPresence, radarCmdEnable},
		{radarCtrlBreath, radarCmdEnable},
		{radarCtrlHeart, radarCmdEnable},
		{radarCtrlSystem, radarCmdRealtime},
	}
	if len(radarStartup) != len(want) {
		t.Fatalf("radarStartup has %d commands, want %d", len(radarStartup), len(want))
	}
	for i, w := range want {
		if radarStartup[i].ctrl != w.ctrl || radarStartup[i].cmd != w.cmd {
			t.Errorf("radarStartup[%d] = (%#x, %#x), want (%#x, %#x)",
				i, radarStartup[i].ctrl, radarStartup[i].cmd, w.ctrl, w.cmd)
		}
	}

	// Realtime mode on the wire, checksum included.
	got := encodeRadarCommand(radarStartup[3])
	wire := []byte{0x53, 0x59, 0x84, 0x0F, 0x00, 0x01, 0x00, 0x40, 0x54, 0x43}
	if !bytes.Equal(got, wire) {
		t.Errorf("realtime command = % x, want % x", got, wire)
	}
}

func TestRouteRadarFrame(t *testing.T) {
	st := store.New()
	d := newTestDevice(st)

	d.routeRadarFrame(domain.Frame{Ctrl: radarCtrlHeart, Cmd: radarCmdRate, Payload: []byte{72}})
	d.routeRadarFrame(domain.Frame{Ctrl: radarCtrlBreath, Cmd: radarCmdRate, Payload: []byte{16}})
	d.routeRadarFrame(domain.Frame{Ctrl: radarCtrlPresence, Cmd: radarCmdMotion, Payload: []byte{2}})

	if v, ok := st.Last(store.HeartRate); !ok || v != 72 {
		t.Errorf("HeartRate = (%v, %v), want (72, true)", v, ok)
	}
	if v, ok := st.Last(store.BreathRate); !ok || v != 16 {
		t.Errorf("BreathRate = (%v, %v), want (16, true)", v, ok)
	}
	if v, ok := st.Last(store.Motion); !ok || v != 2 {
		t.Errorf("Motion = (%v, %v), want (2, true)", v, ok)
	}
}

func TestRouteRadarFrame_SkipsZeroRates(t *testing.T) {
	st := store.New()
	d := newTestDevice(st)

	d.routeRadarFrame(domain.Frame{Ctrl: radarCtrlHeart, Cmd: radarCmdRate, Payload: []byte{0}})
	d.routeRadarFrame(domain.Frame{Ctrl: radarCtrlBreath, Cmd: radarCmdRate, Payload: []byte{0}})

	if st.Count(store.HeartRate) != 0 {
		t.Error("zero heart rate was stored")
	}
	if st.Count(store.BreathRate) != 0 {
		t.Error("zero breath rate was stored")
	}
}

func TestRadarCommandWithAck(t *testing.T) {
	st := store.New()
	d := newTestDevice(st)
	cmd := radarStartup[2] // heart monitoring

	ack := encodeRadarCommand(radarCommand{ctrl: cmd.ctrl, cmd: cmd.cmd, data: []byte{0x01}})
	report := buildReportFrame(radarCtrlHeart, radarCmdRate, []byte{68})
	src := &scriptSource{chunks: [][]byte{report, ack}}

	dec := decode.NewFrameDecoder(decode.RadarFraming())
	if err := d.radarCommandWithAck(context.Background(), src, dec, cmd); err != nil {
		t.Fatalf("radarCommandWithAck() = %v, want nil", err)
	}

	// The report frame that arrived before the ack was routed, not lost.
	if v, ok := st.Last(store.HeartRate); !ok || v != 68 {
		t.Errorf("HeartRate = (%v, %v), want (68, true)", v, ok)
	}
	// And the command itself went out on the wire.
	if len(src.wrote) == 0 {
		t.Error("no command bytes were written")
	}
}

func TestRadarCommandWithAck_LinkError(t *testing.T) {
	st := store.New()
	d := newTestDevice(st)

	src := &scriptSource{} // immediate EOF
	dec := decode.NewFrameDecoder(decode.RadarFraming())
	if err := d.radarCommandWithAck(context.Background(), src, dec, radarStartup[0]); err == nil {
		t.Error("radarCommandWithAck() = nil on a dead link, want error")
	}
}

// buildReportFrame constructs a valid report frame for tests.
func buildReportFrame(ctrl, cmd byte, payload []byte) []byte {
	return encodeRadarCommand(radarCommand{ctrl: ctrl, cmd: cmd, data: payload})
}
