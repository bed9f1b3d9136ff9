package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aremos-dev/around-demo5/internal/ports"
	"github.com/aremos-dev/around-demo5/internal/store"
)

type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}

// mockActuator records commands in order.
type mockActuator struct {
	mu  sync.Mutex
	log []string
}

func (m *mockActuator) record(cmd string) {
	m.mu.Lock()
	m.log = append(m.log, cmd)
	m.mu.Unlock()
}

func (m *mockActuator) SetMode(mode int)         { m.record(fmt.Sprintf("mode=%d", mode)) }
func (m *mockActuator) SetColor(r, g, b uint8)   { m.record(fmt.Sprintf("color=%d,%d,%d", r, g, b)) }
func (m *mockActuator) SetBrightness(l uint8)    { m.record(fmt.Sprintf("brightness=%d", l)) }
func (m *mockActuator) SetVibration(pattern int) { m.record(fmt.Sprintf("vibration=%d", pattern)) }
func (m *mockActuator) SetJump(level int)        { m.record(fmt.Sprintf("jump=%d", level)) }

func (m *mockActuator) commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.log...)
}

// mockBase records base station commands.
type mockBase struct {
	mu  sync.Mutex
	log []string
}

func (m *mockBase) WriteCommand(cmd string) error {
	m.mu.Lock()
	m.log = append(m.log, cmd)
	m.mu.Unlock()
	return nil
}

func (m *mockBase) commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.log...)
}

// fastTunables shrinks every timing for tests.
func fastTunables() Tunables {
	return Tunables{
		PresenceWindow:    60 * time.Millisecond,
		PresencePoll:      5 * time.Millisecond,
		HallPoll:          5 * time.Millisecond,
		BaselineHold:      10 * time.Millisecond,
		FatigueProbeDelay: 10 * time.Millisecond,
		IdleAfter:         40 * time.Millisecond,
		IdleTimeout:       80 * time.Millisecond,
		IdlePulseEvery:    10 * time.Millisecond,
		GuideMode1:        30 * time.Millisecond,
		GuideMode2:        30 * time.Millisecond,
		GuideMode3:        30 * time.Millisecond,
		BreathGuide:       30 * time.Millisecond,
		Poll:              5 * time.Millisecond,
	}
}

func waitForState(t *testing.T, c *Controller, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.State() == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("state = %v, never reached %v", c.State(), want)
}

func TestController_BootReachesWaiting(t *testing.T) {
	st := store.New()
	act := &mockActuator{}
	base := &mockBase{}
	c := New(fastTunables(), st, act, base, mockLogger{})

	c.Start(context.Background())
	defer c.Stop()

	waitForState(t, c, Waiting)

	baseCmds := base.commands()
	joined := strings.Join(baseCmds, " ")
	if !strings.Contains(joined, cmdCoilOn) || !strings.Contains(joined, cmdPlatformSpin) {
		t.Errorf("baseline never commanded the base station, got %v", baseCmds)
	}
}

func TestController_PresenceEngagesAndLossReturnsToWaiting(t *testing.T) {
	st := store.New()
	c := New(fastTunables(), st, &mockActuator{}, &mockBase{}, mockLogger{})

	c.Start(context.Background())
	defer c.Stop()
	waitForState(t, c, Waiting)

	// Heart-rate pushes make the stream fresh; presence follows.
	stop := make(chan struct{})
	var pushWG sync.WaitGroup
	pushWG.Add(1)
	go func() {
		defer pushWG.Done()
		for {
			select {
			case <-stop:
				return
			default:
				st.Push(store.HeartRate, 72)
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()

	waitForState(t, c, Engaged)

	// Stop the pushes; staleness past the window reads as absence.
	close(stop)
	pushWG.Wait()
	waitForState(t, c, Waiting)
}

func TestController_GestureSelectsGuideMode(t *testing.T) {
	st := store.New()
	c := New(fastTunables(), st, &mockActuator{}, &mockBase{}, mockLogger{})

	c.Start(context.Background())
	defer c.Stop()
	waitForState(t, c, Waiting)

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				st.Push(store.HeartRate, 70)
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()
	waitForState(t, c, Engaged)

	// Two consecutive identical nonzero codes select the mode.
	st.Push(store.Gesture, 2)
	st.Push(store.Gesture, 2)
	waitForState(t, c, GuidingMode2)

	// Release the gesture, then let the guide run out without levitation;
	// it falls into desk idle.
	st.Push(store.Gesture, 0)
	st.Push(store.Gesture, 0)
	waitForState(t, c, DeskIdle)
}

func TestController_SingleGestureReadingIsIgnored(t *testing.T) {
	st := store.New()
	c := New(fastTunables(), st, &mockActuator{}, &mockBase{}, mockLogger{})

	st.Push(store.Gesture, 3)
	st.Push(store.Gesture, 0)
	if ev, ok := c.gestureEvent(); ok {
		t.Errorf("gestureEvent() = %v for a glitch reading, want none", ev)
	}

	st.Push(store.Gesture, 1)
	st.Push(store.Gesture, 1)
	ev, ok := c.gestureEvent()
	if !ok || ev != EvNeedMode1 {
		t.Errorf("gestureEvent() = (%v, %v), want (EvNeedMode1, true)", ev, ok)
	}
}

func TestController_ExitRunsBeforeEnter(t *testing.T) {
	st := store.New()
	act := &mockActuator{}
	c := New(fastTunables(), st, act, &mockBase{}, mockLogger{})
	c.state = GuidingMode2

	c.apply(EvEnterIdle)
	defer c.Stop()

	// exitState runs synchronously inside apply; the idle worker's first
	// command can only appear after the reset triplet.
	cmds := act.commands()
	if len(cmds) < 3 {
		t.Fatalf("commands after apply = %v, want reset triplet first", cmds)
	}
	if cmds[0] != "mode=3" || cmds[1] != "vibration=0" || cmds[2] != "jump=0" {
		t.Errorf("reset triplet = %v, want [mode=3 vibration=0 jump=0]", cmds[:3])
	}
}

func TestController_InvalidEventIsNoOp(t *testing.T) {
	st := store.New()
	act := &mockActuator{}
	c := New(fastTunables(), st, act, &mockBase{}, mockLogger{})

	c.apply(EvNeedMode1) // invalid in Booting

	if c.State() != Booting {
		t.Errorf("state = %v after invalid event, want Booting", c.State())
	}
	if cmds := act.commands(); len(cmds) != 0 {
		t.Errorf("invalid event produced commands: %v", cmds)
	}
}

func TestController_StaleWorkerStandsDown(t *testing.T) {
	st := store.New()
	act := &mockActuator{}
	c := New(fastTunables(), st, act, &mockBase{}, mockLogger{})

	c.mu.Lock()
	c.gen = 1
	gen := c.gen
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.guideWorker(gen, ports.LightFlashWarm, 2, time.Hour)
	}()

	// Let the worker issue its opening commands, then invalidate it.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(act.commands()) >= 2 {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}

	c.mu.Lock()
	c.gen++
	c.mu.Unlock()
	c.wg.Wait()

	// A stale worker must not run its wrap-up actions or raise events.
	for _, cmd := range act.commands() {
		if cmd == "vibration=0" {
			t.Error("stale worker issued its wrap-up vibration reset")
		}
	}
	select {
	case ev := <-c.events:
		t.Errorf("stale worker raised %v", ev)
	default:
	}
}

func TestController_PlacementMonitorTracksHallBands(t *testing.T) {
	st := store.New()
	base := &mockBase{}
	c := New(fastTunables(), st, &mockActuator{}, base, mockLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.wg.Add(1)
	go c.placementMonitor(ctx)
	defer c.Stop()

	st.Push(store.Hall, 1600)
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && !c.Levitating() {
		time.Sleep(2 * time.Millisecond)
	}
	if !c.Levitating() {
		t.Fatal("hall reading 1600 did not set levitating")
	}

	st.Push(store.Hall, 400)
	deadline = time.Now().Add(time.Second)
	for time.Now().Before(deadline) && c.Levitating() {
		time.Sleep(2 * time.Millisecond)
	}
	if c.Levitating() {
		t.Fatal("hall reading 400 did not clear levitating")
	}

	joined := strings.Join(base.commands(), " ")
	if !strings.Contains(joined, cmdCoilOn) {
		t.Error("levitation band never energized the coil")
	}
	if !strings.Contains(joined, cmdPlatformDown) {
		t.Error("set-down band never dropped the platform")
	}
}

func TestController_UpdateTunables(t *testing.T) {
	c := New(fastTunables(), store.New(), &mockActuator{}, &mockBase{}, mockLogger{})

	next := fastTunables()
	next.IdleTimeout = 123 * time.Millisecond
	c.UpdateTunables(next)

	if got := c.tunables().IdleTimeout; got != 123*time.Millisecond {
		t.Errorf("IdleTimeout after update = %v, want 123ms", got)
	}
}
