package powertrain

import (
	"errors"
	"fmt"
	"math"

	"github.com/evsim/powertrain/core/logger"
	"github.com/evsim/powertrain/core/model"
)

// SourceAllocation binds an energy source to the share of the boundary power
// it carries. Shares are static for the whole run.
type SourceAllocation struct {
	Source EnergySource
	// Share of the boundary power in (0,1]. When every share is zero the
	// power is split evenly.
	Share float64
}

// VehicleConfig assembles a vehicle from its validated parts.
type VehicleConfig struct {
	Name       string
	Sources    []SourceAllocation
	DriveTrain *DriveTrain
	Body       *Body
	// ECU defaults to DirectECU.
	ECU ECU
	Log logger.Logger
}

// Vehicle composes the energy sources, drive train, body and ECU and advances
// them one step at a time. Assembly validates the whole graph; a vehicle that
// constructs successfully can always resolve causality.
type Vehicle struct {
	id      string
	name    string
	sources []SourceAllocation
	train   *DriveTrain
	body    *Body
	ecu     ECU
	log     logger.Logger
}

// NewVehicle validates the assembly and returns the vehicle.
func NewVehicle(cfg VehicleConfig) (*Vehicle, error) {
	if cfg.DriveTrain == nil || cfg.Body == nil {
		return nil, &model.ConnectivityError{Detail: "vehicle requires a drive train and a body"}
	}
	if len(cfg.Sources) == 0 {
		return nil, &model.ConnectivityError{Detail: "vehicle requires at least one energy source"}
	}

	boundary := cfg.DriveTrain.SourceBoundaryKind()
	names := map[string]bool{}
	for _, l := range cfg.DriveTrain.Links() {
		names[l.From] = true
		names[l.To] = true
	}
	total := 0.0
	for _, a := range cfg.Sources {
		if a.Source == nil {
			return nil, &model.ConnectivityError{Detail: "nil energy source"}
		}
		if a.Source.BoundaryKind() != boundary {
			return nil, &model.ConnectivityError{Detail: fmt.Sprintf(
				"source %s supplies %s but the drive train expects %s",
				a.Source.Name(), a.Source.BoundaryKind(), boundary)}
		}
		if names[a.Source.Name()] {
			return nil, &model.ConnectivityError{Detail: fmt.Sprintf("duplicate component name %q", a.Source.Name())}
		}
		names[a.Source.Name()] = true
		if a.Share < 0 || a.Share > 1 {
			return nil, &model.ConnectivityError{Detail: fmt.Sprintf("source %s: share %.3f outside [0,1]", a.Source.Name(), a.Share)}
		}
		total += a.Share
	}
	sources := make([]SourceAllocation, len(cfg.Sources))
	copy(sources, cfg.Sources)
	if total == 0 {
		for i := range sources {
			sources[i].Share = 1 / float64(len(sources))
		}
	} else if math.Abs(total-1) > 1e-9 {
		return nil, &model.ConnectivityError{Detail: fmt.Sprintf("source shares sum to %.6f, want 1", total)}
	}

	if r := cfg.DriveTrain.WheelRadius(); math.Abs(r-cfg.Body.WheelRadius()) > 1e-9 {
		return nil, &model.ConnectivityError{Detail: fmt.Sprintf(
			"driven wheel radius %.4f m does not match body wheel radius %.4f m",
			r, cfg.Body.WheelRadius())}
	}

	ecu := cfg.ECU
	if ecu == nil {
		ecu = NewDirectECU()
	}
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Vehicle{
		id:      newID("Vehicle"),
		name:    cfg.Name,
		sources: sources,
		train:   cfg.DriveTrain,
		body:    cfg.Body,
		ecu:     ecu,
		log:     log,
	}, nil
}

func (v *Vehicle) ID() string   { return v.id }
func (v *Vehicle) Name() string { return v.name }

func (v *Vehicle) Body() *Body             { return v.body }
func (v *Vehicle) DriveTrain() *DriveTrain { return v.train }

// Sources returns the allocation table in assembly order.
func (v *Vehicle) Sources() []SourceAllocation { return v.sources }

// SoC is the aggregate state of charge across all sources, energy weighted.
func (v *Vehicle) SoC() float64 {
	var level, capacity float64
	for _, a := range v.sources {
		level += a.Source.Level()
		capacity += a.Source.Capacity()
	}
	if capacity == 0 {
		return 0
	}
	return level / capacity
}

// StepResult is the full accounting of one vehicle step.
type StepResult struct {
	Step       int
	Commands   model.Commands
	Resolution *Resolution
	Motion     Motion

	// FromStore is the energy removed from the sources this step in J,
	// including their internal discharge losses.
	FromStore float64
	// ToStore is the energy added to the sources by regeneration in J,
	// after their internal charge losses.
	ToStore float64
	// SourceLoss is the energy lost inside the sources this step in J.
	SourceLoss float64
	// ConverterLoss is the energy lost across converters this step in J.
	ConverterLoss float64
	// FrictionLoss is the energy dissipated by the friction brakes this
	// step in J, including regenerated power the sources rejected.
	FrictionLoss float64
}

// Step advances the vehicle by dt seconds. loadTorque is an external
// resistive torque at the wheel, grade the track slope in rad and airDensity
// the ambient density in kg/m³. Errors other than ReversibilityViolation are
// fatal to the run; the vehicle state up to the previous step stays valid.
func (v *Vehicle) Step(step int, signal, loadTorque, grade, airDensity, dt float64) (*StepResult, error) {
	measured := model.Measured{
		Velocity:   v.body.Velocity(),
		Position:   v.body.Position(),
		WheelSpeed: v.body.WheelSpeed(),
		SoC:        v.SoC(),
	}
	cmd := v.ecu.Step(step, signal, measured)

	res, err := v.train.Resolve(v.body.WheelSpeed(), cmd, v.log)
	if err != nil {
		return nil, err
	}

	result := &StepResult{Step: step, Commands: cmd, Resolution: res}
	if err := v.settleSources(res, result, dt); err != nil {
		return nil, err
	}

	result.Motion = v.body.Integrate(
		res.DriveTorque, res.RetardTorque(), loadTorque,
		grade, airDensity, v.train.InertiaAtWheel(), dt,
	)
	result.ConverterLoss = res.ConverterLoss * dt
	v.train.Brakes().Dissipate(result.FrictionLoss)
	return result, nil
}

// settleSources applies the resolved boundary power to the sources by their
// allocation shares. Rejected regenerative power is diverted to the friction
// brakes so the energy ledger stays closed.
func (v *Vehicle) settleSources(res *Resolution, result *StepResult, dt float64) error {
	result.FrictionLoss = res.FrictionLoss * dt
	power := res.SourcePower
	switch {
	case power > 0:
		for _, a := range v.sources {
			if a.Share == 0 {
				continue
			}
			fromStore, err := a.Source.Drain(power*a.Share, dt)
			if err != nil {
				return err
			}
			result.FromStore += fromStore
			result.SourceLoss += fromStore - power*a.Share*dt
		}
	case power < 0:
		regen := -power
		for _, a := range v.sources {
			if a.Share == 0 {
				continue
			}
			offered := regen * a.Share
			accepted, toStore, err := a.Source.Absorb(offered, dt)
			if err != nil {
				var rv *model.ReversibilityViolation
				if !errors.As(err, &rv) {
					return err
				}
				// recoverable: the source cannot take charge, burn the
				// share in the friction brakes instead
				v.log.Warnf("%s rejected %.1f W of regeneration, diverting to friction brakes",
					a.Source.Name(), offered)
				res.Violation = rv
				result.FrictionLoss += offered * dt
				continue
			}
			result.ToStore += toStore
			result.SourceLoss += accepted*dt - toStore
			if rejected := offered - accepted; rejected > 0 {
				result.FrictionLoss += rejected * dt
			}
		}
	}
	return nil
}
