package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aremos-dev/around-demo5/internal/domain"
)

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"missing radar port", func(c *Config) { c.RadarPort = "" }, false},
		{"missing wearable port", func(c *Config) { c.WearablePort = "" }, false},
		{"zero baud", func(c *Config) { c.HallBaud = 0 }, false},
		{"negative presence window", func(c *Config) { c.PresenceWindow = -time.Second }, false},
		{"zero hrv cadence", func(c *Config) { c.HRVCadence = 0 }, false},
		{"zero radar window", func(c *Config) { c.RadarWindow = 0 }, false},
		{"nats url without subject", func(c *Config) { c.NATSURL = "nats://localhost:4222"; c.NATSSubject = "" }, false},
		{"nats url with subject", func(c *Config) { c.NATSURL = "nats://localhost:4222" }, true},
		{"mmwave enabled needs baud", func(c *Config) { c.MMWavePort = "/dev/ttyS9"; c.MMWaveBaud = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				if !errors.Is(err, domain.ErrInvalidConfig) {
					t.Errorf("Validate() = %v, want ErrInvalidConfig class", err)
				}
			}
		})
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestApplyFile(t *testing.T) {
	path := writeConfigFile(t, `
radar_port = "/dev/ttyUSB3"
radar_baud = 256000
presence_window = "12s"
log_level = "debug"
`)

	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	cfg := DefaultConfig()
	if err := ApplyFile(&cfg, fc, nil); err != nil {
		t.Fatalf("ApplyFile() error: %v", err)
	}

	if cfg.RadarPort != "/dev/ttyUSB3" {
		t.Errorf("RadarPort = %s, want /dev/ttyUSB3", cfg.RadarPort)
	}
	if cfg.RadarBaud != 256000 {
		t.Errorf("RadarBaud = %d, want 256000", cfg.RadarBaud)
	}
	if cfg.PresenceWindow != 12*time.Second {
		t.Errorf("PresenceWindow = %v, want 12s", cfg.PresenceWindow)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	// Untouched keys keep their defaults.
	if cfg.WearablePort != DefaultWearablePort {
		t.Errorf("WearablePort = %s, want default %s", cfg.WearablePort, DefaultWearablePort)
	}
}

func TestApplyFile_ChangedFlagWins(t *testing.T) {
	path := writeConfigFile(t, `radar_port = "/dev/ttyUSB3"`)

	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	cfg := DefaultConfig()
	cfg.RadarPort = "/dev/flag-set"
	changed := map[string]bool{"radar-port": true}
	if err := ApplyFile(&cfg, fc, changed); err != nil {
		t.Fatalf("ApplyFile() error: %v", err)
	}

	if cfg.RadarPort != "/dev/flag-set" {
		t.Errorf("RadarPort = %s, explicit flag lost to file", cfg.RadarPort)
	}
}

func TestApplyFile_BadDuration(t *testing.T) {
	path := writeConfigFile(t, `presence_window = "soon"`)

	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	cfg := DefaultConfig()
	if err := ApplyFile(&cfg, fc, nil); err == nil {
		t.Error("ApplyFile() accepted an unparseable duration")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("AROUND_RADAR_PORT", "/dev/ttyUSB7")
	t.Setenv("AROUND_RADAR_BAUD", "57600")
	t.Setenv("AROUND_IDLE_TIMEOUT", "2m")

	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg, nil); err != nil {
		t.Fatalf("ApplyEnv() error: %v", err)
	}

	if cfg.RadarPort != "/dev/ttyUSB7" {
		t.Errorf("RadarPort = %s, want /dev/ttyUSB7", cfg.RadarPort)
	}
	if cfg.RadarBaud != 57600 {
		t.Errorf("RadarBaud = %d, want 57600", cfg.RadarBaud)
	}
	if cfg.IdleTimeout != 2*time.Minute {
		t.Errorf("IdleTimeout = %v, want 2m", cfg.IdleTimeout)
	}
}

func TestApplyEnv_ChangedFlagWins(t *testing.T) {
	t.Setenv("AROUND_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.LogLevel = "warn"
	if err := ApplyEnv(&cfg, map[string]bool{"log-level": true}); err != nil {
		t.Fatalf("ApplyEnv() error: %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %s, explicit flag lost to environment", cfg.LogLevel)
	}
}

func TestApplyEnv_BadInt(t *testing.T) {
	t.Setenv("AROUND_RADAR_BAUD", "fast")

	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg, nil); err == nil {
		t.Error("ApplyEnv() accepted an unparseable baud rate")
	}
}
