package powertrain

import (
	"errors"
	"fmt"

	"github.com/evsim/powertrain/core/curve"
	"github.com/evsim/powertrain/core/model"
)

// EngineConfig describes an internal combustion engine.
type EngineConfig struct {
	Name string
	// MaxPower is the peak mechanical power in W versus shaft speed in
	// rad/s, typically a peaked curve.
	MaxPower curve.Curve
	// IdleSpeed is the minimum self-sustaining shaft speed in rad/s. Below
	// it the engine is assumed to slip against the drivetrain at idle.
	IdleSpeed float64
	// MaxSpeed bounds the valid shaft speed domain in rad/s.
	MaxSpeed float64
	// Efficiency is the fuel-to-mechanical efficiency versus shaft speed.
	Efficiency curve.Curve
	// Inertia is the crankshaft inertia in kg·m².
	Inertia float64
	// Mass in kg.
	Mass float64
}

// InternalCombustionEngine converts fuel enthalpy into shaft torque. It is
// one-directional: it never absorbs power from the drivetrain, so any regen
// demand routed at it is a reversibility violation.
type InternalCombustionEngine struct {
	id  string
	cfg EngineConfig
	op  OperatingPoint
}

// NewInternalCombustionEngine validates the configuration and returns the engine.
func NewInternalCombustionEngine(cfg EngineConfig) (*InternalCombustionEngine, error) {
	if cfg.Name == "" {
		return nil, errors.New("engine: name is required")
	}
	if cfg.MaxPower == nil || cfg.Efficiency == nil {
		return nil, fmt.Errorf("engine %s: power and efficiency curves are required", cfg.Name)
	}
	if cfg.IdleSpeed <= 0 || cfg.MaxSpeed <= cfg.IdleSpeed {
		return nil, fmt.Errorf("engine %s: need 0 < idle speed < max speed", cfg.Name)
	}
	if cfg.Inertia < 0 || cfg.Mass < 0 {
		return nil, fmt.Errorf("engine %s: inertia and mass cannot be negative", cfg.Name)
	}
	return &InternalCombustionEngine{id: newID("Converter"), cfg: cfg}, nil
}

func (e *InternalCombustionEngine) ID() string   { return e.id }
func (e *InternalCombustionEngine) Name() string { return e.cfg.Name }

func (e *InternalCombustionEngine) Ports() []model.Port {
	return []model.Port{
		{Direction: model.PortIn, Kind: model.KindChemical},
		{Direction: model.PortOut, Kind: model.KindMechanical},
	}
}

func (e *InternalCombustionEngine) Reversible() bool { return false }

func (e *InternalCombustionEngine) OperatingPoint() OperatingPoint { return e.op }

func (e *InternalCombustionEngine) ShaftInertia() float64 { return e.cfg.Inertia }

// Drive produces torque at the given shaft speed and throttle. Below idle
// the engine turns at idle speed and slips against the drivetrain; the slip
// power is accounted as a converter loss. Negative or over-limit speeds are
// outside the engine's physical domain.
func (e *InternalCombustionEngine) Drive(omega, throttle float64) (model.Quantity, model.Quantity, error) {
	if omega < 0 || omega > e.cfg.MaxSpeed {
		return model.Quantity{}, model.Quantity{}, &model.OperatingPointError{
			Component:       e.cfg.Name,
			AngularVelocity: omega,
			Reason:          fmt.Sprintf("one-directional engine limited to [0, %.1f] rad/s", e.cfg.MaxSpeed),
		}
	}
	if throttle < 0 || throttle > 1 {
		return model.Quantity{}, model.Quantity{}, &model.OperatingPointError{
			Component:       e.cfg.Name,
			AngularVelocity: omega,
			Reason:          fmt.Sprintf("throttle %.3f outside [0,1]", throttle),
		}
	}
	running := omega
	if running < e.cfg.IdleSpeed {
		running = e.cfg.IdleSpeed
	}
	torque := throttle * e.cfg.MaxPower.At(running) / running
	eff := e.cfg.Efficiency.At(running)
	fuelPower := 0.0
	if torque > 0 {
		fuelPower = torque * running / eff
	}
	e.op = OperatingPoint{
		Torque:          torque,
		AngularVelocity: running,
		Power:           fuelPower,
		Command:         throttle,
		Efficiency:      eff,
	}
	return model.Chemical(fuelPower), model.Mechanical(torque, omega), nil
}

func (e *InternalCombustionEngine) RegenLimit(float64) float64 { return 0 }

// Recover always fails: a combustion engine cannot absorb power.
func (e *InternalCombustionEngine) Recover(omega, torque float64) (float64, model.Quantity, error) {
	return 0, model.Quantity{}, &model.ReversibilityViolation{
		Component: e.cfg.Name,
		Power:     torque * omega,
	}
}

// Forward maps fuel enthalpy flow to the mechanical output at the current
// operating point.
func (e *InternalCombustionEngine) Forward(in model.Quantity, cmd float64) (model.Quantity, error) {
	if in.Kind() != model.KindChemical {
		return model.Quantity{}, fmt.Errorf("engine %s: forward expects chemical input, got %s", e.cfg.Name, in.Kind())
	}
	omega := e.op.AngularVelocity
	if omega < e.cfg.IdleSpeed {
		return model.Quantity{}, &model.OperatingPointError{
			Component:       e.cfg.Name,
			AngularVelocity: omega,
			Reason:          "forward undefined below idle speed",
		}
	}
	eff := e.cfg.Efficiency.At(omega)
	e.op = OperatingPoint{
		Torque:          in.Power() * eff / omega,
		AngularVelocity: omega,
		Power:           in.Power(),
		Command:         cmd,
		Efficiency:      eff,
	}
	return model.Mechanical(in.Power()*eff/omega, omega), nil
}

// Backward always fails: the engine is not reversible.
func (e *InternalCombustionEngine) Backward(out model.Quantity, cmd float64) (model.Quantity, error) {
	return model.Quantity{}, &model.ReversibilityViolation{Component: e.cfg.Name, Power: out.Power()}
}
