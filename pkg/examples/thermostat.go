package examples

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kvo-hub/kvo-go/pkg/kvo"
)

// Mode is the thermostat operating mode.
type Mode uint8

// Thermostat modes.
const (
	ModeOff Mode = iota
	ModeHeat
	ModeEco
)

// EcoSetback is how far below the target an eco-mode thermostat lets the
// room cool before it demands heat.
const EcoSetback = 2.0

var (
	// ErrTargetOutOfRange is returned for a target outside the configured range.
	ErrTargetOutOfRange = errors.New("target temperature out of range")

	// ErrInvalidMode is returned for an unknown mode.
	ErrInvalidMode = errors.New("invalid mode")
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeHeat:
		return "heat"
	case ModeEco:
		return "eco"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode parses a mode name as returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return ModeOff, nil
	case "heat":
		return ModeHeat, nil
	case "eco":
		return ModeEco, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Observable thermostat properties.
var (
	TargetKey  = kvo.NewKey("target", func(t *Thermostat) float64 { return t.target })
	CurrentKey = kvo.NewKey("current", func(t *Thermostat) float64 { return t.current })
	ModeKey    = kvo.NewKey("mode", func(t *Thermostat) Mode { return t.mode })

	// HeatingKey is derived from target, current and mode. Every setter of
	// those properties notifies it as well.
	HeatingKey = kvo.NewKey("heating", func(t *Thermostat) bool { return t.heating() })
)

// Thermostat is an observable room thermostat.
// It is not safe for concurrent use.
type Thermostat struct {
	kvo *kvo.Proxy[Thermostat]

	target    float64 // °C
	current   float64 // °C
	mode      Mode
	minTarget float64
	maxTarget float64
}

// ThermostatConfig contains configuration for creating a thermostat.
type ThermostatConfig struct {
	Name string

	// Initial state
	Target  float64 // °C
	Current float64 // °C
	Mode    Mode

	// Allowed target range
	MinTarget float64 // °C
	MaxTarget float64 // °C

	// Proxy configures logging of the thermostat's observers.
	// Proxy.Name defaults to Name.
	Proxy kvo.Config
}

// DefaultThermostatConfig returns a heating thermostat at 20 °C.
func DefaultThermostatConfig() ThermostatConfig {
	return ThermostatConfig{
		Name:      "thermostat",
		Target:    20,
		Current:   20,
		Mode:      ModeHeat,
		MinTarget: 5,
		MaxTarget: 30,
		Proxy:     kvo.DefaultConfig(),
	}
}

// NewThermostat creates a thermostat and binds its proxy.
func NewThermostat(cfg ThermostatConfig) (*Thermostat, error) {
	if cfg.MinTarget > cfg.MaxTarget {
		return nil, fmt.Errorf("%w: empty range [%g, %g]", ErrTargetOutOfRange, cfg.MinTarget, cfg.MaxTarget)
	}
	if cfg.Target < cfg.MinTarget || cfg.Target > cfg.MaxTarget {
		return nil, fmt.Errorf("%w: %g not in [%g, %g]", ErrTargetOutOfRange, cfg.Target, cfg.MinTarget, cfg.MaxTarget)
	}
	if cfg.Mode > ModeEco {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, cfg.Mode)
	}
	if cfg.Proxy.Name == "" {
		cfg.Proxy.Name = cfg.Name
	}

	t := &Thermostat{
		target:    cfg.Target,
		current:   cfg.Current,
		mode:      cfg.Mode,
		minTarget: cfg.MinTarget,
		maxTarget: cfg.MaxTarget,
	}
	t.kvo = kvo.NewProxyWithConfig[Thermostat](cfg.Proxy)
	if err := t.kvo.Bind(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Proxy returns the proxy used to observe the thermostat.
func (t *Thermostat) Proxy() *kvo.Proxy[Thermostat] {
	return t.kvo
}

// Target returns the target temperature.
func (t *Thermostat) Target() float64 {
	return t.target
}

// Current returns the measured room temperature.
func (t *Thermostat) Current() float64 {
	return t.current
}

// Mode returns the operating mode.
func (t *Thermostat) Mode() Mode {
	return t.mode
}

// Heating returns true while the thermostat demands heat.
func (t *Thermostat) Heating() bool {
	return t.heating()
}

// SetTarget changes the target temperature.
func (t *Thermostat) SetTarget(v float64) error {
	if v < t.minTarget || v > t.maxTarget {
		return fmt.Errorf("%w: %g not in [%g, %g]", ErrTargetOutOfRange, v, t.minTarget, t.maxTarget)
	}
	return changeWithHeating(t, TargetKey, func(t *Thermostat) { t.target = v })
}

// UpdateCurrent records a new room temperature measurement.
func (t *Thermostat) UpdateCurrent(v float64) error {
	return changeWithHeating(t, CurrentKey, func(t *Thermostat) { t.current = v })
}

// SetMode changes the operating mode.
func (t *Thermostat) SetMode(m Mode) error {
	if m > ModeEco {
		return fmt.Errorf("%w: %d", ErrInvalidMode, m)
	}
	return changeWithHeating(t, ModeKey, func(t *Thermostat) { t.mode = m })
}

// Close drops all observers of the thermostat.
func (t *Thermostat) Close() {
	t.kvo.Close()
}

func (t *Thermostat) heating() bool {
	switch t.mode {
	case ModeHeat:
		return t.current < t.target
	case ModeEco:
		return t.current < t.target-EcoSetback
	default:
		return false
	}
}

// changeWithHeating mutates key and notifies HeatingKey inside key's
// bracket: will(key), will(heating), mutate, did(heating), did(key).
// Both keys are checked first so that a failing heating dispatch never
// follows an already delivered will(key).
func changeWithHeating[T any](t *Thermostat, key kvo.Key[Thermostat, T], mutate func(*Thermostat)) error {
	if err := kvo.Check(t.kvo, key); err != nil {
		return err
	}
	if err := kvo.Check(t.kvo, HeatingKey); err != nil {
		return err
	}
	if err := kvo.WillChange(t.kvo, key); err != nil {
		return err
	}
	if err := kvo.Change(t.kvo, HeatingKey, mutate); err != nil {
		return err
	}
	return kvo.DidChange(t.kvo, key)
}
