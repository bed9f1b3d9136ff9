package controller

import (
	"context"
	"time"

	"github.com/aremos-dev/around-demo5/internal/ports"
	"github.com/aremos-dev/around-demo5/internal/store"
)

// Hall sensor bands, raw ADC counts. The field strength depends on which
// face of the shell sits on the coil, so levitation shows up in two bands.
const (
	hallLevLow   = 1400
	hallLevHigh  = 1900
	hallDownLow  = 350
	hallDownHigh = 450
	hallLev2Low  = 2500
	hallLev2High = 2600
)

// presenceMonitor derives presence from heart-rate stream freshness and
// raises edge events. Level polling with edge-triggered raises keeps the
// event queue quiet while someone sits still in front of the radar.
func (c *Controller) presenceMonitor(ctx context.Context) {
	defer c.wg.Done()

	present := false
	ticker := time.NewTicker(c.tunables().PresencePoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			fresh := c.store.Fresh(store.HeartRate, c.tunables().PresenceWindow)
			if fresh == present {
				continue
			}
			present = fresh
			if present {
				c.logger.Debug("presence detected")
				c.Raise(EvPersonDetected)
			} else {
				c.logger.Debug("presence lost")
				c.Raise(EvLostPerson)
			}
		}
	}
}

// placementMonitor tracks the hall sensor stream and maintains the
// levitation flag. Base station commands fire on band entry only; the raw
// stream updates at 10 Hz and the coil must not be re-commanded every tick.
func (c *Controller) placementMonitor(ctx context.Context) {
	defer c.wg.Done()

	const (
		bandNone = iota
		bandDown
		bandLev
	)
	band := bandNone

	ticker := time.NewTicker(c.tunables().HallPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			raw, ok := c.store.Last(store.Hall)
			if !ok {
				continue
			}
			switch {
			case raw >= hallLevLow && raw <= hallLevHigh,
				raw >= hallLev2Low && raw <= hallLev2High:
				if band == bandLev {
					continue
				}
				band = bandLev
				c.levitating.Store(true)
				c.markInteraction()
				c.logger.Info("shell lifted onto coil", ports.Float64("hall", raw))
				c.baseCommand(cmdCoilOn)
				if !c.sleep(coilSettle) {
					return
				}
				c.baseCommand(cmdPlatformSpin)
			case raw >= hallDownLow && raw <= hallDownHigh:
				if band == bandDown {
					continue
				}
				band = bandDown
				c.levitating.Store(false)
				c.logger.Info("shell set down", ports.Float64("hall", raw))
				c.baseCommand(cmdPlatformDown)
			}
		}
	}
}
