package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/aremos-dev/around-demo5/internal/adapters/actuator"
	"github.com/aremos-dev/around-demo5/internal/adapters/classifier"
	logAdapter "github.com/aremos-dev/around-demo5/internal/adapters/log"
	"github.com/aremos-dev/around-demo5/internal/adapters/serialport"
	"github.com/aremos-dev/around-demo5/internal/adapters/telemetry"
	"github.com/aremos-dev/around-demo5/internal/config"
	"github.com/aremos-dev/around-demo5/internal/controller"
	"github.com/aremos-dev/around-demo5/internal/device"
	"github.com/aremos-dev/around-demo5/internal/hrv"
	"github.com/aremos-dev/around-demo5/internal/ports"
	"github.com/aremos-dev/around-demo5/internal/store"
)

const helpDescription = `
Sensing and behavior daemon for the Around desk companion.

Reads the vitals radar, wristband and hall sensor links, computes
heart-rate-variability metrics, and drives the shell lights, vibration and
levitation base through the behavior state machine. Optionally publishes
telemetry to NATS.
`

var exampleUsage = strings.TrimSpace(`
  aroundd
  aroundd --config /etc/around/config.toml --log-level debug
  aroundd --radar-port /dev/ttyUSB0 --nats-url nats://127.0.0.1:4222
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := config.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:     "aroundd",
		Short:   "Sensing and behavior daemon for the Around desk companion",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = config.DefaultPath()
			}

			// Build set of changed flags; explicit flags win over file and env.
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && config.FileExists(cfgFile) {
				fc, err := config.LoadFile(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := config.ApplyFile(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Environment (AROUND_*) overrides file, loses to flags.
			if err := config.ApplyEnv(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			return run(cfg, cfgFile, changed)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: /etc/around/config.toml)")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	root.Flags().StringVar(&cfg.RadarPort, "radar-port", cfg.RadarPort, "vitals radar serial device")
	root.Flags().IntVar(&cfg.RadarBaud, "radar-baud", cfg.RadarBaud, "vitals radar baud rate")
	root.Flags().StringVar(&cfg.MMWavePort, "mmwave-port", cfg.MMWavePort, "mm-wave radar serial device (empty disables)")
	root.Flags().IntVar(&cfg.MMWaveBaud, "mmwave-baud", cfg.MMWaveBaud, "mm-wave radar baud rate")
	root.Flags().StringVar(&cfg.WearablePort, "wearable-port", cfg.WearablePort, "wristband serial device")
	root.Flags().IntVar(&cfg.WearableBaud, "wearable-baud", cfg.WearableBaud, "wristband baud rate")
	root.Flags().StringVar(&cfg.HallPort, "hall-port", cfg.HallPort, "hall sensor serial device")
	root.Flags().IntVar(&cfg.HallBaud, "hall-baud", cfg.HallBaud, "hall sensor baud rate")
	root.Flags().StringVar(&cfg.ShellPort, "shell-port", cfg.ShellPort, "companion shell command device")
	root.Flags().IntVar(&cfg.ShellBaud, "shell-baud", cfg.ShellBaud, "companion shell baud rate")
	root.Flags().StringVar(&cfg.BasePort, "base-port", cfg.BasePort, "levitation base command device")
	root.Flags().IntVar(&cfg.BaseBaud, "base-baud", cfg.BaseBaud, "levitation base baud rate")

	root.Flags().StringVar(&cfg.NATSURL, "nats-url", cfg.NATSURL, "NATS server URL (empty disables telemetry)")
	root.Flags().StringVar(&cfg.NATSSubject, "nats-subject", cfg.NATSSubject, "telemetry subject")
	root.Flags().DurationVar(&cfg.TelemetryInterval, "telemetry-interval", cfg.TelemetryInterval, "telemetry publish interval")

	root.Flags().DurationVar(&cfg.PresenceWindow, "presence-window", cfg.PresenceWindow, "heart-rate freshness window for presence")
	root.Flags().DurationVar(&cfg.PresencePoll, "presence-poll", cfg.PresencePoll, "presence poll interval")
	root.Flags().DurationVar(&cfg.IdleAfter, "idle-after", cfg.IdleAfter, "inactivity before desk idle")
	root.Flags().DurationVar(&cfg.IdleTimeout, "idle-timeout", cfg.IdleTimeout, "desk idle session length")
	root.Flags().DurationVar(&cfg.HRVCadence, "hrv-cadence", cfg.HRVCadence, "HRV compute cadence")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "aroundd: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, cfgFile string, changed map[string]bool) error {
	logger := logAdapter.NewZerologAdapter(cfg.LogLevel)
	logger.Info("starting",
		ports.String("version", getVersion()),
		ports.String("radar", cfg.RadarPort),
		ports.String("wearable", cfg.WearablePort))

	st := store.New()
	engine := hrv.New(hrv.Config{
		Cadence:        cfg.HRVCadence,
		RadarWindow:    cfg.RadarWindow,
		WearableWindow: cfg.WearableWindow,
	}, st, classifier.New(), logger)

	shell := actuator.NewShell(openCommandPort(cfg.ShellPort, cfg.ShellBaud, "shell", logger), logger)
	base := actuator.NewBase(openCommandPort(cfg.BasePort, cfg.BaseBaud, "base", logger))

	ctrl := controller.New(tunables(cfg), st, shell, base, logger)

	var sink ports.TelemetrySink
	if cfg.NATSURL != "" {
		s, err := telemetry.Connect(cfg.NATSURL, logger)
		if err != nil {
			// Telemetry is an accessory; the companion works without it.
			logger.Warn("telemetry disabled", ports.Err(err))
		} else {
			sink = s
			defer s.Close()
		}
	}

	openPort := func(name string, baud int) (ports.ByteSource, error) {
		return serialport.Open(name, baud)
	}
	dev := device.New(cfg, st, engine, ctrl, sink, openPort, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := config.NewWatcher(cfgFile, cfg, changed, func(next config.Config) {
		ctrl.UpdateTunables(tunables(next))
	}, logger)
	go watcher.Run(ctx)

	if err := dev.Start(ctx); err != nil {
		return fmt.Errorf("start device: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("received signal, stopping")

	if err := dev.Stop(); err != nil {
		return fmt.Errorf("stop device: %w", err)
	}
	return nil
}

// tunables maps the daemon configuration onto the controller's behavior
// timings.
func tunables(cfg config.Config) controller.Tunables {
	return controller.Tunables{
		PresenceWindow: cfg.PresenceWindow,
		PresencePoll:   cfg.PresencePoll,
		BaselineHold:   cfg.BaselineHold,
		IdleAfter:      cfg.IdleAfter,
		IdleTimeout:    cfg.IdleTimeout,
		GuideMode1:     cfg.GuideMode1,
		GuideMode2:     cfg.GuideMode2,
		GuideMode3:     cfg.GuideMode3,
		BreathGuide:    cfg.BreathGuide,
	}
}

// openCommandPort opens a one-way command link. A missing peripheral is
// logged and replaced with a discard writer so the daemon keeps sensing
// with a dark shell rather than crash-looping under systemd.
func openCommandPort(name string, baud int, link string, logger ports.Logger) io.Writer {
	p, err := serialport.Open(name, baud)
	if err != nil {
		logger.Warn("command link unavailable",
			ports.String("link", link),
			ports.String("port", name),
			ports.Err(err))
		return io.Discard
	}
	return p
}
