package controller

import (
	"time"

	"github.com/aremos-dev/around-demo5/internal/ports"
	"github.com/aremos-dev/around-demo5/internal/store"
)

// Base station commands. The platform commands use '*' as separator, a
// quirk of the base controller firmware.
const (
	cmdPlatformDown = "platform_flag*0"
	cmdPlatformSpin = "platform_flag*2"
	cmdCoilOn       = "coil_flag=1"
)

// coilSettle is the pause between energizing the coil and spinning the
// platform; the firmware needs the field stable first.
const coilSettle = 700 * time.Millisecond

func (c *Controller) baseCommand(cmd string) {
	if c.base == nil {
		return
	}
	if err := c.base.WriteCommand(cmd); err != nil {
		c.logger.Warn("base station command failed",
			ports.String("cmd", cmd), ports.Err(err))
	}
}

// baselineWorker runs the boot accumulation sweep, then hands the shell to
// the base station and settles into waiting.
func (c *Controller) baselineWorker(gen uint64) {
	tun := c.tunables()

	c.baseCommand(cmdPlatformDown)
	c.act.SetMode(ports.LightAccumulate)
	if !c.sleep(tun.BaselineHold) || !c.stillCurrent(gen) {
		return
	}
	c.act.SetMode(ports.LightOff)

	c.baseCommand(cmdCoilOn)
	if !c.sleep(coilSettle) || !c.stillCurrent(gen) {
		return
	}
	c.baseCommand(cmdPlatformSpin)
	c.act.SetColor(100, 100, 100)

	c.Raise(EvBaselineDone)
}

// waitingWorker polls presence until someone shows up. The presence monitor
// raises the same event on its own edge detection; duplicates are harmless
// because re-entry from Waiting is the only transition PersonDetected has.
func (c *Controller) waitingWorker(gen uint64) {
	tun := c.tunables()
	for c.stillCurrent(gen) {
		if c.store.Fresh(store.HeartRate, tun.PresenceWindow) {
			c.Raise(EvPersonDetected)
			return
		}
		if !c.sleep(tun.PresencePoll) {
			return
		}
	}
}

// engagedWorker is the attentive companion loop: settle into the engaged
// color, probe for fatigue once, then watch gestures and the idle clock.
func (c *Controller) engagedWorker(gen uint64) {
	c.markInteraction()
	c.act.SetColor(78, 58, 158)

	if !c.sleep(c.tunables().FatigueProbeDelay) || !c.stillCurrent(gen) {
		return
	}

	// A live wearable heart-rate reading means the band is worn; offer the
	// breathing guide once per engagement.
	if hr, ok := c.store.Last(store.WearableHR); ok && hr > 0 &&
		c.store.Fresh(store.WearableHR, c.tunables().PresenceWindow) {
		c.Raise(EvNeedFatigue)
		return
	}

	c.act.SetMode(ports.LightFlowBlue)
	for c.stillCurrent(gen) {
		tun := c.tunables()

		if ev, ok := c.gestureEvent(); ok {
			c.markInteraction()
			c.Raise(ev)
			return
		}
		if c.idleElapsed() > tun.IdleAfter && !c.Levitating() {
			c.Raise(EvEnterIdle)
			return
		}
		if !c.sleep(tun.Poll) {
			return
		}
	}
}

// gestureEvent reports a mode event when the two most recent gesture codes
// agree on a nonzero value. Requiring two consecutive readings filters the
// band's single-frame glitches.
func (c *Controller) gestureEvent() (Event, bool) {
	g := c.store.Tail(store.Gesture, 2)
	if len(g) < 2 || g[0] != g[1] {
		return 0, false
	}
	switch g[0] {
	case 1:
		return EvNeedMode1, true
	case 2:
		return EvNeedMode2, true
	case 3:
		return EvNeedMode3, true
	}
	return 0, false
}

// guideWorker plays one interaction guide: light mode plus vibration for
// the configured duration, cut short if the shell is lifted onto the coil.
func (c *Controller) guideWorker(gen uint64, lightMode, vibration int, duration time.Duration) {
	c.act.SetMode(lightMode)
	if !c.sleep(c.tunables().Poll) || !c.stillCurrent(gen) {
		return
	}
	c.act.SetVibration(vibration)

	deadline := time.Now().Add(duration)
	for c.stillCurrent(gen) && !c.Levitating() && time.Now().Before(deadline) {
		if !c.sleep(c.tunables().Poll) {
			return
		}
	}
	if !c.stillCurrent(gen) {
		return
	}

	c.act.SetVibration(0)
	c.markInteraction()
	if c.Levitating() {
		c.Raise(EvGuideFinished)
	} else {
		c.Raise(EvEnterIdle)
	}
}

// fatigueWorker runs the breathing guide: the slow warm pulse with a long
// vibration pattern, for the full guide duration.
func (c *Controller) fatigueWorker(gen uint64) {
	tun := c.tunables()

	c.act.SetMode(ports.LightBreathGuide)
	c.act.SetVibration(4)

	deadline := time.Now().Add(tun.BreathGuide)
	for c.stillCurrent(gen) && time.Now().Before(deadline) {
		if !c.sleep(tun.Poll) {
			return
		}
	}
	if !c.stillCurrent(gen) {
		return
	}

	c.act.SetMode(ports.LightOff)
	c.act.SetVibration(0)
	c.markInteraction()
	c.Raise(EvGuideFinished)
}

// idleWorker keeps a soft presence on the desk: a dim steady color with a
// gentle pulse every so often, watching for a gesture to wake back up.
func (c *Controller) idleWorker(gen uint64) {
	c.act.SetColor(200, 220, 255)
	c.act.SetBrightness(40)

	start := time.Now()
	for c.stillCurrent(gen) {
		tun := c.tunables()
		if time.Since(start) > tun.IdleTimeout {
			break
		}

		if ev, ok := c.gestureEvent(); ok {
			c.markInteraction()
			c.Raise(ev)
			return
		}

		c.act.SetVibration(3)
		if !c.sleep(tun.Poll) || !c.stillCurrent(gen) {
			return
		}
		c.act.SetVibration(0)

		if !c.sleep(tun.IdlePulseEvery) {
			return
		}
	}
	if c.stillCurrent(gen) {
		c.Raise(EvIdleDone)
	}
}
