package powertrain

import (
	"errors"
	"fmt"

	"github.com/evsim/powertrain/core/curve"
	"github.com/evsim/powertrain/core/model"
)

// FuelCellConfig describes a fuel cell stack converting fuel enthalpy to
// electric power on the supply path.
type FuelCellConfig struct {
	Name string
	// MaxPower is the rated electric output in W.
	MaxPower float64
	// Efficiency is the chemical-to-electric efficiency versus the output
	// power fraction of MaxPower, in (0,1].
	Efficiency curve.Curve
	// BusVoltage is the DC output voltage in V.
	BusVoltage float64
	// Mass in kg.
	Mass float64
}

// FuelCell is a non-reversible supply stage: it can feed the bus but cannot
// absorb regenerated power.
type FuelCell struct {
	id  string
	cfg FuelCellConfig
	op  OperatingPoint
}

// NewFuelCell validates the configuration and returns the stack.
func NewFuelCell(cfg FuelCellConfig) (*FuelCell, error) {
	if cfg.Name == "" {
		return nil, errors.New("fuel cell: name is required")
	}
	if cfg.Efficiency == nil {
		return nil, fmt.Errorf("fuel cell %s: efficiency curve is required", cfg.Name)
	}
	if cfg.MaxPower <= 0 || cfg.BusVoltage <= 0 {
		return nil, fmt.Errorf("fuel cell %s: max power and bus voltage must be positive", cfg.Name)
	}
	return &FuelCell{id: newID("Converter"), cfg: cfg}, nil
}

func (f *FuelCell) ID() string   { return f.id }
func (f *FuelCell) Name() string { return f.cfg.Name }

func (f *FuelCell) Ports() []model.Port {
	return []model.Port{
		{Direction: model.PortIn, Kind: model.KindChemical},
		{Direction: model.PortOut, Kind: model.KindElectric},
	}
}

func (f *FuelCell) Reversible() bool { return false }

func (f *FuelCell) OperatingPoint() OperatingPoint { return f.op }

// Supply reports the fuel enthalpy flow required to deliver the demanded
// electric output. Negative demand means the bus is trying to push power
// back into the stack, which is a reversibility violation.
func (f *FuelCell) Supply(demand model.Quantity) (model.Quantity, error) {
	if demand.Kind() != model.KindElectric {
		return model.Quantity{}, fmt.Errorf("fuel cell %s: supply expects electric demand, got %s", f.cfg.Name, demand.Kind())
	}
	out := demand.Power()
	if out < 0 {
		return model.Quantity{}, &model.ReversibilityViolation{Component: f.cfg.Name, Power: -out}
	}
	if out > f.cfg.MaxPower {
		return model.Quantity{}, &model.OperatingPointError{
			Component: f.cfg.Name,
			Reason:    fmt.Sprintf("demand %.1f W exceeds rating %.1f W", out, f.cfg.MaxPower),
		}
	}
	eff := f.cfg.Efficiency.At(out / f.cfg.MaxPower)
	in := 0.0
	if out > 0 {
		in = out / eff
	}
	f.op = OperatingPoint{Power: in, Efficiency: eff}
	return model.Chemical(in), nil
}

// Forward maps fuel enthalpy flow to electric output at the efficiency of
// the resulting operating point.
func (f *FuelCell) Forward(in model.Quantity, cmd float64) (model.Quantity, error) {
	if in.Kind() != model.KindChemical {
		return model.Quantity{}, fmt.Errorf("fuel cell %s: forward expects chemical input, got %s", f.cfg.Name, in.Kind())
	}
	eff := f.cfg.Efficiency.At(f.op.Power / f.cfg.MaxPower)
	out := in.Power() * eff
	f.op = OperatingPoint{Power: in.Power(), Command: cmd, Efficiency: eff}
	return model.Electric(f.cfg.BusVoltage, out/f.cfg.BusVoltage), nil
}

// Backward always fails: the stack is not reversible.
func (f *FuelCell) Backward(out model.Quantity, cmd float64) (model.Quantity, error) {
	return model.Quantity{}, &model.ReversibilityViolation{Component: f.cfg.Name, Power: out.Power()}
}
