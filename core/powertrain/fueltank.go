package powertrain

import (
	"errors"
	"fmt"

	"github.com/evsim/powertrain/core/model"
)

// FuelType describes a fuel by its lower heating value and density.
type FuelType struct {
	Name string
	// EnergyDensity is the lower heating value in J/kg.
	EnergyDensity float64
	// Density in kg/m³.
	Density float64
}

// Common fuels.
var (
	Gasoline = FuelType{Name: "gasoline", EnergyDensity: 43.4e6, Density: 745}
	Diesel   = FuelType{Name: "diesel", EnergyDensity: 42.8e6, Density: 832}
	Hydrogen = FuelType{Name: "hydrogen", EnergyDensity: 120.0e6, Density: 0.09}
)

// FuelTankConfig describes a fuel store feeding an engine or a fuel cell.
type FuelTankConfig struct {
	Name string
	Fuel FuelType
	// FuelMass is the initial fuel load in kg.
	FuelMass float64
	// TankMass is the dry mass of the tank in kg.
	TankMass float64
}

// FuelTank is a non-rechargeable chemical energy store. Its level decreases
// as fuel enthalpy is drawn; regenerated power can never flow into it.
type FuelTank struct {
	id   string
	cfg  FuelTankConfig
	mass float64 // remaining fuel, kg
}

// NewFuelTank validates the configuration and returns the tank.
func NewFuelTank(cfg FuelTankConfig) (*FuelTank, error) {
	if cfg.Name == "" {
		return nil, errors.New("fuel tank: name is required")
	}
	if cfg.Fuel.EnergyDensity <= 0 {
		return nil, fmt.Errorf("fuel tank %s: fuel energy density must be positive", cfg.Name)
	}
	if cfg.FuelMass < 0 {
		return nil, fmt.Errorf("fuel tank %s: fuel mass cannot be negative", cfg.Name)
	}
	return &FuelTank{id: newID("EnergySource"), cfg: cfg, mass: cfg.FuelMass}, nil
}

func (t *FuelTank) ID() string   { return t.id }
func (t *FuelTank) Name() string { return t.cfg.Name }

func (t *FuelTank) Ports() []model.Port {
	return []model.Port{{Direction: model.PortOut, Kind: model.KindChemical}}
}

func (t *FuelTank) BoundaryKind() model.Kind { return model.KindChemical }

func (t *FuelTank) Capacity() float64 { return t.cfg.FuelMass * t.cfg.Fuel.EnergyDensity }

func (t *FuelTank) Level() float64 { return t.mass * t.cfg.Fuel.EnergyDensity }

func (t *FuelTank) SoC() float64 {
	if t.cfg.FuelMass == 0 {
		return 0
	}
	return t.mass / t.cfg.FuelMass
}

func (t *FuelTank) Rechargeable() bool { return false }

// FuelMass is the remaining fuel in kg.
func (t *FuelTank) FuelMass() float64 { return t.mass }

// TotalMass is the tank plus remaining fuel in kg.
func (t *FuelTank) TotalMass() float64 { return t.cfg.TankMass + t.mass }

// Drain draws fuel enthalpy at the given power for dt seconds.
func (t *FuelTank) Drain(power, dt float64) (float64, error) {
	if power < 0 {
		return 0, fmt.Errorf("fuel tank %s: drain power cannot be negative", t.cfg.Name)
	}
	energy := power * dt
	if available := t.Level(); energy > available {
		return 0, &model.DepletionError{Source: t.cfg.Name, Requested: energy, Available: available}
	}
	t.mass -= energy / t.cfg.Fuel.EnergyDensity
	return energy, nil
}

// Absorb always fails: fuel cannot be regenerated.
func (t *FuelTank) Absorb(power, dt float64) (float64, float64, error) {
	return 0, 0, &model.ReversibilityViolation{Component: t.cfg.Name, Power: power}
}
