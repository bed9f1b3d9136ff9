package config

import "os"

// ApplyEnv applies configuration from environment variables (AROUND_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnv(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("radar-port", os.Getenv("AROUND_RADAR_PORT"), &cfg.RadarPort)
	s.setString("mmwave-port", os.Getenv("AROUND_MMWAVE_PORT"), &cfg.MMWavePort)
	s.setString("wearable-port", os.Getenv("AROUND_WEARABLE_PORT"), &cfg.WearablePort)
	s.setString("hall-port", os.Getenv("AROUND_HALL_PORT"), &cfg.HallPort)
	s.setString("shell-port", os.Getenv("AROUND_SHELL_PORT"), &cfg.ShellPort)
	s.setString("base-port", os.Getenv("AROUND_BASE_PORT"), &cfg.BasePort)
	s.setString("nats-url", os.Getenv("AROUND_NATS_URL"), &cfg.NATSURL)
	s.setString("nats-subject", os.Getenv("AROUND_NATS_SUBJECT"), &cfg.NATSSubject)
	s.setString("log-level", os.Getenv("AROUND_LOG_LEVEL"), &cfg.LogLevel)

	ints := []struct {
		flag string
		env  string
		dst  *int
	}{
		{"radar-baud", "AROUND_RADAR_BAUD", &cfg.RadarBaud},
		{"mmwave-baud", "AROUND_MMWAVE_BAUD", &cfg.MMWaveBaud},
		{"wearable-baud", "AROUND_WEARABLE_BAUD", &cfg.WearableBaud},
		{"hall-baud", "AROUND_HALL_BAUD", &cfg.HallBaud},
		{"shell-baud", "AROUND_SHELL_BAUD", &cfg.ShellBaud},
		{"base-baud", "AROUND_BASE_BAUD", &cfg.BaseBaud},
		{"radar-window", "AROUND_RADAR_WINDOW", &cfg.RadarWindow},
		{"wearable-window", "AROUND_WEARABLE_WINDOW", &cfg.WearableWindow},
	}
	for _, i := range ints {
		if err := s.setIntFromString(i.flag, os.Getenv(i.env), i.dst); err != nil {
			return err
		}
	}

	if err := s.setDuration("telemetry-interval", os.Getenv("AROUND_TELEMETRY_INTERVAL"), &cfg.TelemetryInterval); err != nil {
		return err
	}
	if err := s.setDuration("presence-window", os.Getenv("AROUND_PRESENCE_WINDOW"), &cfg.PresenceWindow); err != nil {
		return err
	}
	if err := s.setDuration("presence-poll", os.Getenv("AROUND_PRESENCE_POLL"), &cfg.PresencePoll); err != nil {
		return err
	}
	if err := s.setDuration("baseline-hold", os.Getenv("AROUND_BASELINE_HOLD"), &cfg.BaselineHold); err != nil {
		return err
	}
	if err := s.setDuration("idle-after", os.Getenv("AROUND_IDLE_AFTER"), &cfg.IdleAfter); err != nil {
		return err
	}
	if err := s.setDuration("idle-timeout", os.Getenv("AROUND_IDLE_TIMEOUT"), &cfg.IdleTimeout); err != nil {
		return err
	}
	if err := s.setDuration("hrv-cadence", os.Getenv("AROUND_HRV_CADENCE"), &cfg.HRVCadence); err != nil {
		return err
	}

	return nil
}
