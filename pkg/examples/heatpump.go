package examples

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/kvo-hub/kvo-go/pkg/kvo"
)

// OperatingState is the heat pump operating state.
type OperatingState uint8

// Heat pump operating states.
const (
	OperatingStateStandby OperatingState = iota
	OperatingStateRunning
)

// String returns the operating state name.
func (s OperatingState) String() string {
	switch s {
	case OperatingStateStandby:
		return "standby"
	case OperatingStateRunning:
		return "running"
	default:
		return fmt.Sprintf("OperatingState(%d)", uint8(s))
	}
}

// ErrAlreadyFollowing is returned by Follow while a thermostat is followed.
var ErrAlreadyFollowing = errors.New("heat pump already follows a thermostat")

// Observable heat pump properties.
var (
	PowerKey = kvo.NewKey("power", func(h *HeatPump) int64 { return h.power })
	StateKey = kvo.NewKey("state", func(h *HeatPump) OperatingState { return h.state })
)

// HeatPump represents a heat pump that runs while a thermostat demands heat.
// It demonstrates how one owner observes another:
//   - Follow registers for the thermostat's derived heating demand
//   - The initial value synchronizes the heat pump immediately
//   - Each demand change is forwarded to the heat pump's own observers
//
// It is not safe for concurrent use.
type HeatPump struct {
	kvo    *kvo.Proxy[HeatPump]
	logger *slog.Logger

	// Internal state
	power        int64 // W
	state        OperatingState
	nominalPower int64 // W

	// Active registration on the followed thermostat
	demand *kvo.Observer
	err    error
}

// HeatPumpConfig contains configuration for creating a heat pump.
type HeatPumpConfig struct {
	Name         string
	NominalPower int64 // W

	// Proxy configures logging of the heat pump's observers.
	// Proxy.Name defaults to Name.
	Proxy kvo.Config
}

// DefaultHeatPumpConfig returns a 3 kW heat pump.
func DefaultHeatPumpConfig() HeatPumpConfig {
	return HeatPumpConfig{
		Name:         "heatpump",
		NominalPower: 3000,
		Proxy:        kvo.DefaultConfig(),
	}
}

// NewHeatPump creates a heat pump in standby and binds its proxy.
func NewHeatPump(cfg HeatPumpConfig) (*HeatPump, error) {
	if cfg.NominalPower <= 0 {
		return nil, fmt.Errorf("invalid nominal power %d W", cfg.NominalPower)
	}
	if cfg.Proxy.Name == "" {
		cfg.Proxy.Name = cfg.Name
	}

	logger := cfg.Proxy.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &HeatPump{
		logger:       logger,
		nominalPower: cfg.NominalPower,
	}
	h.kvo = kvo.NewProxyWithConfig[HeatPump](cfg.Proxy)
	if err := h.kvo.Bind(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Proxy returns the proxy used to observe the heat pump.
func (h *HeatPump) Proxy() *kvo.Proxy[HeatPump] {
	return h.kvo
}

// Power returns the current electrical power in W.
func (h *HeatPump) Power() int64 {
	return h.power
}

// State returns the operating state.
func (h *HeatPump) State() OperatingState {
	return h.state
}

// Following returns true while the heat pump follows a thermostat.
func (h *HeatPump) Following() bool {
	return h.demand != nil && h.demand.Active()
}

// Follow makes the heat pump run whenever t demands heat. The heat pump
// takes t's current demand right away; an error applying it is returned
// and the heat pump does not follow.
func (h *HeatPump) Follow(t *Thermostat) error {
	if h.Following() {
		return ErrAlreadyFollowing
	}

	var initErr error
	obs, err := kvo.Observe(t.Proxy(), HeatingKey, kvo.Interested(kvo.InitialValue, kvo.AfterChange),
		func(kind kvo.ChangeKind, heating bool) {
			err := h.apply(heating)
			if kind == kvo.InitialValue {
				initErr = err
				return
			}
			h.setErr(err)
		})
	if err != nil {
		return fmt.Errorf("follow %s: %w", t.Proxy().Name(), err)
	}
	if initErr != nil {
		obs.Cancel()
		return fmt.Errorf("follow %s: %w", t.Proxy().Name(), initErr)
	}
	h.demand = obs
	h.err = nil
	return nil
}

// Unfollow stops following the thermostat and puts the heat pump in
// standby.
func (h *HeatPump) Unfollow() error {
	if h.demand == nil {
		return nil
	}
	h.demand.Cancel()
	h.demand = nil
	return h.apply(false)
}

// Err returns the last error hit while applying a demand change from the
// followed thermostat, or nil. Those changes arrive inside the
// thermostat's dispatch and cannot be returned to its caller.
func (h *HeatPump) Err() error {
	return h.err
}

// Close unfollows and drops all observers of the heat pump.
func (h *HeatPump) Close() {
	if h.demand != nil {
		h.demand.Cancel()
		h.demand = nil
	}
	h.kvo.Close()
}

func (h *HeatPump) setErr(err error) {
	if err == nil {
		return
	}
	h.err = err
	h.logger.Warn("heat pump update failed", "proxy", h.kvo.Name(), "error", err)
}

// apply switches state and power together. Both keys are checked before
// either is touched so that a rejected update leaves them consistent.
func (h *HeatPump) apply(on bool) error {
	power, state := int64(0), OperatingStateStandby
	if on {
		power, state = h.nominalPower, OperatingStateRunning
	}
	if power == h.power && state == h.state {
		return nil
	}

	if err := kvo.Check(h.kvo, StateKey); err != nil {
		return err
	}
	if err := kvo.Check(h.kvo, PowerKey); err != nil {
		return err
	}
	if err := kvo.Change(h.kvo, StateKey, func(h *HeatPump) { h.state = state }); err != nil {
		return err
	}
	return kvo.Change(h.kvo, PowerKey, func(h *HeatPump) { h.power = power })
}
