// Package controller runs the device behavior state machine.
//
// Monitors and behavior workers raise events; a single dispatch goroutine
// serializes them against the transition table, runs the old state's exit
// actions to completion, then starts the new state's worker. Workers are
// tagged with a generation counter and stand down as soon as a transition
// bumps it, so a stale worker never drives the actuators after handover.
package controller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aremos-dev/around-demo5/internal/ports"
	"github.com/aremos-dev/around-demo5/internal/store"
)

// eventQueueLen bounds the pending-event channel. Raises beyond this are
// dropped with a warning rather than blocking a sensor goroutine.
const eventQueueLen = 32

// Tunables are the behavior timings. Zero values fall back to the device
// defaults; all of them may be swapped at runtime via UpdateTunables.
type Tunables struct {
	// PresenceWindow is how recently the radar heart-rate stream must have
	// updated for someone to count as present.
	PresenceWindow time.Duration

	// PresencePoll is the presence monitor period.
	PresencePoll time.Duration

	// HallPoll is the placement monitor period.
	HallPoll time.Duration

	// BaselineHold is how long the accumulation animation runs on boot.
	BaselineHold time.Duration

	// FatigueProbeDelay is how long after engagement the wearable reading
	// is consulted before offering the breathing guide.
	FatigueProbeDelay time.Duration

	// IdleAfter is how long without a gesture before the engaged state
	// gives way to desk idle.
	IdleAfter time.Duration

	// IdleTimeout ends a desk-idle session outright.
	IdleTimeout time.Duration

	// IdlePulseEvery is the gentle vibration period while desk idle.
	IdlePulseEvery time.Duration

	// GuideMode1/2/3 are the interaction guide durations.
	GuideMode1 time.Duration
	GuideMode2 time.Duration
	GuideMode3 time.Duration

	// BreathGuide is the fatigue breathing-guide duration.
	BreathGuide time.Duration

	// Poll is the generic behavior loop period.
	Poll time.Duration
}

func (t *Tunables) setDefaults() {
	def := func(d *time.Duration, v time.Duration) {
		if *d <= 0 {
			*d = v
		}
	}
	def(&t.PresenceWindow, 8*time.Second)
	def(&t.PresencePoll, 2*time.Second)
	def(&t.HallPoll, 100*time.Millisecond)
	def(&t.BaselineHold, 10*time.Second)
	def(&t.FatigueProbeDelay, 20*time.Second)
	def(&t.IdleAfter, 10*time.Second)
	def(&t.IdleTimeout, 5*time.Minute)
	def(&t.IdlePulseEvery, 30*time.Second)
	def(&t.GuideMode1, 10*time.Second)
	def(&t.GuideMode2, 8*time.Second)
	def(&t.GuideMode3, 12*time.Second)
	def(&t.BreathGuide, 3*time.Minute)
	def(&t.Poll, 500*time.Millisecond)
}

// Controller owns the behavior state machine.
type Controller struct {
	logger ports.Logger
	store  *store.SensorStore
	act    ports.Actuator
	base   ports.BaseStation

	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup

	mu    sync.Mutex
	tun   Tunables
	state State
	gen   uint64

	levitating      atomic.Bool
	lastInteraction atomic.Int64
}

// New creates a controller in the Booting state. The base station is
// optional; without one, placement events still track the hall stream but
// no coil commands are issued.
func New(tun Tunables, st *store.SensorStore, act ports.Actuator, base ports.BaseStation, logger ports.Logger) *Controller {
	tun.setDefaults()
	return &Controller{
		logger: logger,
		store:  st,
		act:    act,
		base:   base,
		events: make(chan Event, eventQueueLen),
		done:   make(chan struct{}),
		tun:    tun,
		state:  Booting,
	}
}

// Start launches the dispatch loop and the presence and placement monitors,
// then kicks the machine out of Booting. It does not block.
func (c *Controller) Start(ctx context.Context) {
	c.markInteraction()

	c.wg.Add(3)
	go c.dispatchLoop(ctx)
	go c.presenceMonitor(ctx)
	go c.placementMonitor(ctx)

	c.Raise(EvStart)
}

// Stop terminates dispatch, monitors and any running worker, and waits for
// them to finish.
func (c *Controller) Stop() {
	close(c.done)
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()
	c.wg.Wait()
}

// State returns the current behavior state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// UpdateTunables swaps the behavior timings. Running workers pick the new
// values up on their next loop iteration.
func (c *Controller) UpdateTunables(tun Tunables) {
	tun.setDefaults()
	c.mu.Lock()
	c.tun = tun
	c.mu.Unlock()
}

func (c *Controller) tunables() Tunables {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tun
}

// Levitating reports whether the shell is currently on the levitation coil.
func (c *Controller) Levitating() bool {
	return c.levitating.Load()
}

// Raise queues an event for dispatch. It never blocks; when the queue is
// full the event is dropped and logged.
func (c *Controller) Raise(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.logger.Warn("event queue full, dropping", ports.String("event", ev.String()))
	}
}

func (c *Controller) dispatchLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case ev := <-c.events:
			c.apply(ev)
		}
	}
}

// apply performs one transition: bump the generation so the old worker
// stands down, run the exit actions of the old state to completion, then
// start the new state's worker.
func (c *Controller) apply(ev Event) {
	c.mu.Lock()
	from := c.state
	dest, ok := lookup(ev, from)
	if !ok {
		c.mu.Unlock()
		c.logger.Debug("event ignored in state",
			ports.String("event", ev.String()),
			ports.String("state", from.String()))
		return
	}
	c.gen++
	gen := c.gen
	c.state = dest
	c.mu.Unlock()

	c.exitState(from)
	c.logger.Info("state transition",
		ports.String("from", from.String()),
		ports.String("to", dest.String()),
		ports.String("event", ev.String()))
	c.enterState(dest, gen)
}

// exitState resets the outputs the old state may have left on. It runs
// synchronously in the dispatch goroutine, before the new state starts.
func (c *Controller) exitState(s State) {
	switch s {
	case Engaged, GuidingFatigue, GuidingMode1, GuidingMode2, GuidingMode3, DeskIdle:
		c.act.SetMode(ports.LightOff)
		c.act.SetVibration(0)
		c.act.SetJump(0)
	}
}

func (c *Controller) enterState(s State, gen uint64) {
	var worker func(uint64)
	switch s {
	case Baseline:
		worker = c.baselineWorker
	case Waiting:
		worker = c.waitingWorker
	case Engaged:
		worker = c.engagedWorker
	case GuidingFatigue:
		worker = c.fatigueWorker
	case GuidingMode1:
		worker = func(g uint64) {
			c.guideWorker(g, ports.LightFlashWarm, 2, c.tunables().GuideMode1)
		}
	case GuidingMode2:
		worker = func(g uint64) {
			c.guideWorker(g, ports.LightFlowBlue, 1, c.tunables().GuideMode2)
		}
	case GuidingMode3:
		worker = func(g uint64) {
			c.guideWorker(g, ports.LightFlowOrange, 3, c.tunables().GuideMode3)
		}
	case DeskIdle:
		worker = c.idleWorker
	default:
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		worker(gen)
	}()
}

// stillCurrent reports whether gen is the live generation. Workers check it
// before every actuator command and every raise.
func (c *Controller) stillCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen
}

// sleep waits for d, returning early (false) on shutdown.
func (c *Controller) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-c.done:
		return false
	case <-t.C:
		return true
	}
}

func (c *Controller) markInteraction() {
	c.lastInteraction.Store(time.Now().UnixNano())
}

func (c *Controller) idleElapsed() time.Duration {
	return time.Duration(time.Now().UnixNano() - c.lastInteraction.Load())
}
