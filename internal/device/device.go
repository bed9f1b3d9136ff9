// Package device wires the sensor links, the analysis engine and the
// behavior controller into one running daemon.
//
// Each serial link is served by its own goroutine with independent
// reconnect backoff. A dead or flapping link never takes the others down;
// the behavior controller simply sees its streams go stale.
package device

import (
	"context"

	"github.com/aremos-dev/around-demo5/internal/config"
	"github.com/aremos-dev/around-demo5/internal/controller"
	"github.com/aremos-dev/around-demo5/internal/domain"
	"github.com/aremos-dev/around-demo5/internal/hrv"
	"github.com/aremos-dev/around-demo5/internal/ports"
	"github.com/aremos-dev/around-demo5/internal/store"
)

// OpenPortFunc opens a serial link. Tests substitute in-memory sources.
type OpenPortFunc func(name string, baud int) (ports.ByteSource, error)

// Device is the top-level daemon object.
type Device struct {
	cfg    config.Config
	logger ports.Logger
	life   *Lifecycle

	store  *store.SensorStore
	engine *hrv.Engine
	ctrl   *controller.Controller
	sink   ports.TelemetrySink

	openPort OpenPortFunc
}

// New assembles a device from its parts. sink may be nil when telemetry is
// disabled.
func New(cfg config.Config, st *store.SensorStore, engine *hrv.Engine, ctrl *controller.Controller, sink ports.TelemetrySink, openPort OpenPortFunc, logger ports.Logger) *Device {
	return &Device{
		cfg:      cfg,
		logger:   logger,
		life:     NewLifecycle(logger),
		store:    st,
		engine:   engine,
		ctrl:     ctrl,
		sink:     sink,
		openPort: openPort,
	}
}

// State returns the lifecycle state.
func (d *Device) State() State {
	return d.life.State()
}

// Controller exposes the behavior controller, mainly for telemetry.
func (d *Device) Controller() *controller.Controller {
	return d.ctrl
}

// Start launches all sensor loops, the analysis engine and the behavior
// controller. It returns once everything is running; Stop tears it down.
func (d *Device) Start(ctx context.Context) error {
	if !d.life.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := d.life.TransitionTo(StateStarting, "start requested"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.life.SetCancel(cancel)

	d.spawn(func() { d.runLink(runCtx, "radar", d.cfg.RadarPort, d.cfg.RadarBaud, d.serveRadar) })
	d.spawn(func() { d.runLink(runCtx, "wearable", d.cfg.WearablePort, d.cfg.WearableBaud, d.serveWearable) })
	d.spawn(func() { d.runLink(runCtx, "hall", d.cfg.HallPort, d.cfg.HallBaud, d.serveHall) })
	if d.cfg.MMWavePort != "" {
		d.spawn(func() { d.runLink(runCtx, "mmwave", d.cfg.MMWavePort, d.cfg.MMWaveBaud, d.serveMMWave) })
	}

	d.spawn(func() { d.engine.Run(runCtx) })
	if d.sink != nil {
		d.spawn(func() { d.telemetryLoop(runCtx) })
	}

	d.ctrl.Start(runCtx)

	return d.life.TransitionTo(StateRunning, "all loops started")
}

// Stop shuts the device down and waits for all loops to finish.
func (d *Device) Stop() error {
	if !d.life.CanStop() {
		return domain.ErrNotRunning
	}
	if err := d.life.TransitionTo(StateStopping, "stop requested"); err != nil {
		return err
	}

	d.life.Cancel()
	d.ctrl.Stop()

	err := d.life.WaitWithTimeout(ShutdownTimeout)
	if err != nil {
		d.life.TransitionTo(StateCrashed, "shutdown timed out")
		return err
	}
	return d.life.TransitionTo(StateStopped, "all loops stopped")
}

func (d *Device) spawn(fn func()) {
	d.life.AddWorker()
	go func() {
		defer d.life.WorkerDone()
		fn()
	}()
}

// runLink keeps one serial link alive: open, serve until error, close,
// back off, reopen. Serving for a while resets the backoff so a nightly
// glitch does not leave the link on the slowest retry cadence forever.
func (d *Device) runLink(ctx context.Context, name, port string, baud int, serve func(context.Context, ports.ByteSource) error) {
	bo := newBackoff(DefaultBackoffInitial, DefaultBackoffMax)

	for ctx.Err() == nil {
		src, err := d.openPort(port, baud)
		if err != nil {
			d.logger.Warn("link open failed",
				ports.String("link", name),
				ports.String("port", port),
				ports.Duration("retry_in", bo.Current()),
				ports.Err(err))
			bo.Sleep(ctx.Done())
			continue
		}

		d.logger.Info("link open", ports.String("link", name), ports.String("port", port))
		bo.Reset()

		err = serve(ctx, src)
		src.Close()
		if ctx.Err() != nil {
			return
		}
		d.logger.Warn("link lost",
			ports.String("link", name),
			ports.Duration("retry_in", bo.Current()),
			ports.Err(err))
		bo.Sleep(ctx.Done())
	}
}
