// Package config holds the tunables of the dashboard. Defaults are the
// firmware's compile-time values; host builds may override them from YAML.
package config

import (
	"errors"
	"fmt"
	"time"

	"octopus/octo/dashboard"
	"octopus/octo/flow"
	"octopus/octo/level"
)

type Config struct {
	Flow      flow.Config      `yaml:"flow"`
	Level     level.Config     `yaml:"level"`
	Dashboard dashboard.Config `yaml:"dashboard"`
	Control   ControlConfig    `yaml:"control"`
	Telemetry TelemetryConfig  `yaml:"telemetry"`
	Host      HostConfig       `yaml:"host"`
}

type ControlConfig struct {
	PumpOnBelow  uint8         `yaml:"pump_on_below"`  // percent
	PumpOffAbove uint8         `yaml:"pump_off_above"` // percent
	FailureGrace time.Duration `yaml:"failure_grace"`  // pump running without flow
	FailureRetry time.Duration `yaml:"failure_retry"`  // wait before restarting a failed pump
	LogEvery     time.Duration `yaml:"log_every"`
}

type TelemetryConfig struct {
	Broker   string        `yaml:"broker"` // empty disables publishing
	Topic    string        `yaml:"topic"`
	ClientID string        `yaml:"client_id"` // empty picks a unique id per run
	Period   time.Duration `yaml:"period"`
}

// HostConfig only applies to desktop runs.
type HostConfig struct {
	AssetsDir  string `yaml:"assets_dir"`
	FlashPath  string `yaml:"flash_path"`
	SerialPort string `yaml:"serial_port"`
	SerialBaud int    `yaml:"serial_baud"`
}

func Default() *Config {
	return &Config{
		Flow:      flow.DefaultConfig(),
		Level:     level.DefaultConfig(),
		Dashboard: dashboard.DefaultConfig(),
		Control: ControlConfig{
			PumpOnBelow:  30,
			PumpOffAbove: 90,
			FailureGrace: 10 * time.Second,
			FailureRetry: time.Minute,
			LogEvery:     time.Second,
		},
		Telemetry: TelemetryConfig{
			Topic:  "octopus/tank",
			Period: 5 * time.Second,
		},
		Host: HostConfig{
			AssetsDir:  "assets",
			FlashPath:  "octopus.flash",
			SerialBaud: 115200,
		},
	}
}

func (c *Config) Validate() error {
	var errs []error
	errs = append(errs, c.Flow.Validate(), c.Level.Validate())
	if c.Dashboard.MinInterval < 0 {
		errs = append(errs, fmt.Errorf("dashboard: negative min_interval %v", c.Dashboard.MinInterval))
	}
	ctl := c.Control
	if ctl.PumpOffAbove > 100 || ctl.PumpOnBelow >= ctl.PumpOffAbove {
		errs = append(errs, fmt.Errorf("control: need pump_on_below < pump_off_above <= 100, got %d and %d",
			ctl.PumpOnBelow, ctl.PumpOffAbove))
	}
	if ctl.FailureGrace <= 0 {
		errs = append(errs, fmt.Errorf("control: failure_grace must be positive"))
	}
	if c.Telemetry.Broker != "" && (c.Telemetry.Topic == "" || c.Telemetry.Period <= 0) {
		errs = append(errs, fmt.Errorf("telemetry: topic and a positive period are required with a broker"))
	}
	return errors.Join(errs...)
}
