package powertrain

import (
	"errors"
	"fmt"

	"github.com/evsim/powertrain/core/curve"
	"github.com/evsim/powertrain/core/model"
)

// BatteryConfig describes a traction battery.
type BatteryConfig struct {
	Name string
	// NominalEnergy is the capacity in J when new.
	NominalEnergy float64
	// Energy is the initial stored energy in J, clamped to usable capacity.
	Energy float64
	// SOH scales usable capacity for degradation, in (0,1]. Zero defaults to 1.
	SOH float64
	// DischargeEfficiency in (0,1]. Zero defaults to 1.
	DischargeEfficiency float64
	// ChargeEfficiency in (0,1]. Zero defaults to 1.
	ChargeEfficiency float64
	// MaxPower limits both charge and discharge in W.
	MaxPower float64
	// NominalVoltage in V.
	NominalVoltage float64
	// OCV is the open-circuit voltage in V versus SoC. Nil uses the
	// nominal voltage at every state of charge.
	OCV curve.Curve
	// Rechargeable permits regenerative charging.
	Rechargeable bool
	// Mass in kg.
	Mass float64
}

// Battery is an electric energy store with state-of-health scaled capacity
// and separate charge and discharge efficiencies.
type Battery struct {
	id     string
	cfg    BatteryConfig
	energy float64
}

// NewBattery validates the configuration and returns the battery.
func NewBattery(cfg BatteryConfig) (*Battery, error) {
	if cfg.Name == "" {
		return nil, errors.New("battery: name is required")
	}
	if cfg.NominalEnergy <= 0 {
		return nil, fmt.Errorf("battery %s: nominal energy must be positive", cfg.Name)
	}
	if cfg.MaxPower <= 0 || cfg.NominalVoltage <= 0 {
		return nil, fmt.Errorf("battery %s: max power and nominal voltage must be positive", cfg.Name)
	}
	if cfg.SOH == 0 {
		cfg.SOH = 1
	}
	if cfg.DischargeEfficiency == 0 {
		cfg.DischargeEfficiency = 1
	}
	if cfg.ChargeEfficiency == 0 {
		cfg.ChargeEfficiency = 1
	}
	if cfg.SOH < 0 || cfg.SOH > 1 ||
		cfg.DischargeEfficiency < 0 || cfg.DischargeEfficiency > 1 ||
		cfg.ChargeEfficiency < 0 || cfg.ChargeEfficiency > 1 {
		return nil, fmt.Errorf("battery %s: SOH and efficiencies must be in (0,1]", cfg.Name)
	}
	b := &Battery{id: newID("EnergySource"), cfg: cfg}
	b.energy = cfg.Energy
	if b.energy > b.Capacity() {
		b.energy = b.Capacity()
	}
	if b.energy < 0 {
		return nil, fmt.Errorf("battery %s: initial energy cannot be negative", cfg.Name)
	}
	return b, nil
}

func (b *Battery) ID() string   { return b.id }
func (b *Battery) Name() string { return b.cfg.Name }

func (b *Battery) Ports() []model.Port {
	dir := model.PortOut
	if b.cfg.Rechargeable {
		dir = model.PortBidirectional
	}
	return []model.Port{{Direction: dir, Kind: model.KindElectric}}
}

func (b *Battery) BoundaryKind() model.Kind { return model.KindElectric }

// Capacity is the usable energy: nominal energy scaled by state of health.
func (b *Battery) Capacity() float64 { return b.cfg.NominalEnergy * b.cfg.SOH }

func (b *Battery) Level() float64 { return b.energy }

func (b *Battery) SoC() float64 { return b.energy / b.Capacity() }

func (b *Battery) Rechargeable() bool { return b.cfg.Rechargeable }

// Voltage is the open-circuit voltage at the current state of charge.
func (b *Battery) Voltage() float64 {
	if b.cfg.OCV != nil {
		return b.cfg.OCV.At(b.SoC())
	}
	return b.cfg.NominalVoltage
}

// Drain draws power for dt seconds through the discharge efficiency.
func (b *Battery) Drain(power, dt float64) (float64, error) {
	if power < 0 {
		return 0, fmt.Errorf("battery %s: drain power cannot be negative", b.cfg.Name)
	}
	if power > b.cfg.MaxPower {
		return 0, &model.OperatingPointError{
			Component: b.cfg.Name,
			Reason:    fmt.Sprintf("discharge demand %.1f W exceeds rating %.1f W", power, b.cfg.MaxPower),
		}
	}
	needed := power * dt / b.cfg.DischargeEfficiency
	if needed > b.energy {
		return 0, &model.DepletionError{Source: b.cfg.Name, Requested: needed, Available: b.energy}
	}
	b.energy -= needed
	return needed, nil
}

// Absorb stores power for dt seconds through the charge efficiency, limited
// by the power rating and remaining headroom.
func (b *Battery) Absorb(power, dt float64) (float64, float64, error) {
	if !b.cfg.Rechargeable {
		return 0, 0, &model.ReversibilityViolation{Component: b.cfg.Name, Power: power}
	}
	if power < 0 {
		return 0, 0, fmt.Errorf("battery %s: absorb power cannot be negative", b.cfg.Name)
	}
	accepted := power
	if accepted > b.cfg.MaxPower {
		accepted = b.cfg.MaxPower
	}
	toStore := accepted * dt * b.cfg.ChargeEfficiency
	if headroom := b.Capacity() - b.energy; toStore > headroom {
		toStore = headroom
		if dt > 0 {
			accepted = toStore / (dt * b.cfg.ChargeEfficiency)
		}
	}
	b.energy += toStore
	return accepted, toStore, nil
}
