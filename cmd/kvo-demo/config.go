package main

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kvo-hub/kvo-go/pkg/examples"
)

// Config holds the demo configuration. It is read from the -config file;
// flags given on the command line take precedence.
type Config struct {
	Lang     string `yaml:"lang"`
	EventLog string `yaml:"event_log"`
	LogLevel string `yaml:"log_level"`

	Thermostat ThermostatConfig `yaml:"thermostat"`
	HeatPump   HeatPumpConfig   `yaml:"heatpump"`
}

// ThermostatConfig is the YAML form of examples.ThermostatConfig.
type ThermostatConfig struct {
	Name      string  `yaml:"name"`
	Target    float64 `yaml:"target"`
	Current   float64 `yaml:"current"`
	Mode      string  `yaml:"mode"`
	MinTarget float64 `yaml:"min_target"`
	MaxTarget float64 `yaml:"max_target"`
}

// HeatPumpConfig is the YAML form of examples.HeatPumpConfig.
type HeatPumpConfig struct {
	Name         string `yaml:"name"`
	NominalPower int64  `yaml:"nominal_power"`
	Follow       bool   `yaml:"follow"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	t := examples.DefaultThermostatConfig()
	hp := examples.DefaultHeatPumpConfig()
	return Config{
		LogLevel: "info",
		Thermostat: ThermostatConfig{
			Name:      t.Name,
			Target:    t.Target,
			Current:   t.Current,
			Mode:      t.Mode.String(),
			MinTarget: t.MinTarget,
			MaxTarget: t.MaxTarget,
		},
		HeatPump: HeatPumpConfig{
			Name:         hp.Name,
			NominalPower: hp.NominalPower,
			Follow:       true,
		},
	}
}

// LoadConfig reads path over the defaults. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// thermostatConfig converts the YAML settings for examples.NewThermostat.
func (c Config) thermostatConfig() (examples.ThermostatConfig, error) {
	mode, err := examples.ParseMode(c.Thermostat.Mode)
	if err != nil {
		return examples.ThermostatConfig{}, err
	}
	cfg := examples.DefaultThermostatConfig()
	cfg.Name = c.Thermostat.Name
	cfg.Target = c.Thermostat.Target
	cfg.Current = c.Thermostat.Current
	cfg.Mode = mode
	cfg.MinTarget = c.Thermostat.MinTarget
	cfg.MaxTarget = c.Thermostat.MaxTarget
	return cfg, nil
}

func (c Config) heatPumpConfig() examples.HeatPumpConfig {
	cfg := examples.DefaultHeatPumpConfig()
	cfg.Name = c.HeatPump.Name
	cfg.NominalPower = c.HeatPump.NominalPower
	return cfg
}

// parseLogLevel parses debug, info, warn or error.
func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
