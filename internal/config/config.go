// Package config loads the daemon configuration from flags, environment
// and a TOML file, in that precedence order.
package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/aremos-dev/around-demo5/internal/domain"
)

// Default serial device paths on the companion mainboard.
const (
	DefaultRadarPort    = "/dev/ttyS5"
	DefaultHallPort     = "/dev/ttyS7"
	DefaultWearablePort = "/dev/ttyS6"
	DefaultShellPort    = "/dev/ttyS4"
	DefaultBasePort     = "/dev/ttyS3"
)

type Config struct {
	RadarPort    string
	RadarBaud    int

	// MMWavePort enables the TI mm-wave vital-sign front end when
	// non-empty. The desk unit ships with the pulse radar only; the
	// mm-wave board is a hardware option.
	MMWavePort string
	MMWaveBaud int

	WearablePort string
	WearableBaud int
	HallPort     string
	HallBaud     int
	ShellPort    string
	ShellBaud    int
	BasePort     string
	BaseBaud     int

	// NATSURL enables the telemetry publisher when non-empty.
	NATSURL     string
	NATSSubject string

	TelemetryInterval time.Duration

	PresenceWindow time.Duration
	PresencePoll   time.Duration

	BaselineHold time.Duration
	IdleAfter    time.Duration
	IdleTimeout  time.Duration
	GuideMode1   time.Duration
	GuideMode2   time.Duration
	GuideMode3   time.Duration
	BreathGuide  time.Duration

	HRVCadence     time.Duration
	RadarWindow    int
	WearableWindow int

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		RadarPort:    DefaultRadarPort,
		RadarBaud:    115200,
		MMWaveBaud:   921600,
		WearablePort: DefaultWearablePort,
		WearableBaud: 115200,
		HallPort:     DefaultHallPort,
		HallBaud:     115200,
		ShellPort:    DefaultShellPort,
		ShellBaud:    115200,
		BasePort:     DefaultBasePort,
		BaseBaud:     115200,

		NATSSubject: "around.telemetry",

		TelemetryInterval: time.Second,

		PresenceWindow: 8 * time.Second,
		PresencePoll:   2 * time.Second,

		BaselineHold: 10 * time.Second,
		IdleAfter:    10 * time.Second,
		IdleTimeout:  5 * time.Minute,
		GuideMode1:   10 * time.Second,
		GuideMode2:   8 * time.Second,
		GuideMode3:   12 * time.Second,
		BreathGuide:  3 * time.Minute,

		HRVCadence:     3 * time.Second,
		RadarWindow:    40,
		WearableWindow: 60,

		LogLevel: "info",
	}
}

// Validate checks the configuration for errors. Failures wrap
// domain.ErrInvalidConfig so callers can test the class with errors.Is.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.RadarPort == "" {
		return fmt.Errorf("radar-port is required")
	}
	if c.WearablePort == "" {
		return fmt.Errorf("wearable-port is required")
	}
	if c.MMWavePort != "" && c.MMWaveBaud <= 0 {
		return fmt.Errorf("mmwave-baud must be positive")
	}
	for name, baud := range map[string]int{
		"radar-baud":    c.RadarBaud,
		"wearable-baud": c.WearableBaud,
		"hall-baud":     c.HallBaud,
		"shell-baud":    c.ShellBaud,
		"base-baud":     c.BaseBaud,
	} {
		if baud <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	if c.PresenceWindow <= 0 {
		return fmt.Errorf("presence window must be positive")
	}
	if c.PresencePoll <= 0 {
		return fmt.Errorf("presence poll must be positive")
	}
	if c.HRVCadence <= 0 {
		return fmt.Errorf("hrv cadence must be positive")
	}
	if c.RadarWindow <= 0 || c.WearableWindow <= 0 {
		return fmt.Errorf("analysis windows must be positive")
	}
	if c.NATSURL != "" && c.NATSSubject == "" {
		return fmt.Errorf("nats-subject is required when nats-url is set")
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}
