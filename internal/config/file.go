package config

import (
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// fileConfig mirrors Config but uses strings for durations to make TOML friendly.
type fileConfig struct {
	RadarPort    string `toml:"radar_port"`
	RadarBaud    int    `toml:"radar_baud"`
	MMWavePort   string `toml:"mmwave_port"`
	MMWaveBaud   int    `toml:"mmwave_baud"`
	WearablePort string `toml:"wearable_port"`
	WearableBaud int    `toml:"wearable_baud"`
	HallPort     string `toml:"hall_port"`
	HallBaud     int    `toml:"hall_baud"`
	ShellPort    string `toml:"shell_port"`
	ShellBaud    int    `toml:"shell_baud"`
	BasePort     string `toml:"base_port"`
	BaseBaud     int    `toml:"base_baud"`

	NATSURL     string `toml:"nats_url"`
	NATSSubject string `toml:"nats_subject"`

	TelemetryInterval string `toml:"telemetry_interval"`

	PresenceWindow string `toml:"presence_window"`
	PresencePoll   string `toml:"presence_poll"`

	BaselineHold string `toml:"baseline_hold"`
	IdleAfter    string `toml:"idle_after"`
	IdleTimeout  string `toml:"idle_timeout"`
	GuideMode1   string `toml:"guide_mode1"`
	GuideMode2   string `toml:"guide_mode2"`
	GuideMode3   string `toml:"guide_mode3"`
	BreathGuide  string `toml:"breath_guide"`

	HRVCadence     string `toml:"hrv_cadence"`
	RadarWindow    int    `toml:"radar_window"`
	WearableWindow int    `toml:"wearable_window"`

	LogLevel string `toml:"log_level"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultPath returns the default configuration file path,
// /etc/around/config.toml on the device.
func DefaultPath() string {
	return filepath.Join("/etc", "around", "config.toml")
}

// applyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func applyFileConfig(cfg *Config, fc fileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("radar-port", fc.RadarPort, &cfg.RadarPort)
	s.setString("mmwave-port", fc.MMWavePort, &cfg.MMWavePort)
	s.setString("wearable-port", fc.WearablePort, &cfg.WearablePort)
	s.setString("hall-port", fc.HallPort, &cfg.HallPort)
	s.setString("shell-port", fc.ShellPort, &cfg.ShellPort)
	s.setString("base-port", fc.BasePort, &cfg.BasePort)
	s.setString("nats-url", fc.NATSURL, &cfg.NATSURL)
	s.setString("nats-subject", fc.NATSSubject, &cfg.NATSSubject)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setInt("radar-baud", fc.RadarBaud, &cfg.RadarBaud)
	s.setInt("mmwave-baud", fc.MMWaveBaud, &cfg.MMWaveBaud)
	s.setInt("wearable-baud", fc.WearableBaud, &cfg.WearableBaud)
	s.setInt("hall-baud", fc.HallBaud, &cfg.HallBaud)
	s.setInt("shell-baud", fc.ShellBaud, &cfg.ShellBaud)
	s.setInt("base-baud", fc.BaseBaud, &cfg.BaseBaud)
	s.setInt("radar-window", fc.RadarWindow, &cfg.RadarWindow)
	s.setInt("wearable-window", fc.WearableWindow, &cfg.WearableWindow)

	durations := []struct {
		flag  string
		value string
		dst   *time.Duration
	}{
		{"telemetry-interval", fc.TelemetryInterval, &cfg.TelemetryInterval},
		{"presence-window", fc.PresenceWindow, &cfg.PresenceWindow},
		{"presence-poll", fc.PresencePoll, &cfg.PresencePoll},
		{"baseline-hold", fc.BaselineHold, &cfg.BaselineHold},
		{"idle-after", fc.IdleAfter, &cfg.IdleAfter},
		{"idle-timeout", fc.IdleTimeout, &cfg.IdleTimeout},
		{"guide-mode1", fc.GuideMode1, &cfg.GuideMode1},
		{"guide-mode2", fc.GuideMode2, &cfg.GuideMode2},
		{"guide-mode3", fc.GuideMode3, &cfg.GuideMode3},
		{"breath-guide", fc.BreathGuide, &cfg.BreathGuide},
		{"hrv-cadence", fc.HRVCadence, &cfg.HRVCadence},
	}
	for _, d := range durations {
		if err := s.setDuration(d.flag, d.value, d.dst); err != nil {
			return err
		}
	}

	return nil
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// LoadFile reads and parses a TOML config file from the given path.
func LoadFile(path string) (fileConfig, error) {
	return loadFileConfig(path)
}

// ApplyFile applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFile(cfg *Config, fc fileConfig, changed map[string]bool) error {
	return applyFileConfig(cfg, fc, changed)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	return fileExists(p)
}
