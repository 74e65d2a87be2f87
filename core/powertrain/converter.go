package powertrain

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/evsim/powertrain/core/model"
)

// Component is anything that can be wired into the vehicle graph.
type Component interface {
	// ID is a unique handle assigned at construction.
	ID() string
	// Name identifies the component in records and logs. Names must be
	// unique within a vehicle so that recorded sequences are reproducible
	// across identically assembled vehicles.
	Name() string
	Ports() []model.Port
}

// OperatingPoint is the point at which a converter's efficiency was last
// evaluated. Converters retain it so that every efficiency value can be
// audited after the fact.
type OperatingPoint struct {
	Torque          float64 // N·m at the shaft, zero for non-mechanical converters
	AngularVelocity float64 // rad/s at the shaft
	Power           float64 // W at the input side
	Command         float64
	Efficiency      float64
}

// Converter transforms a Quantity between its input and output ports with an
// efficiency loss. Forward and Backward are evaluated at the converter's
// current resolved operating point; output power never exceeds input power.
type Converter interface {
	Component

	// Forward maps an input-side Quantity to the output side.
	Forward(in model.Quantity, cmd float64) (model.Quantity, error)
	// Backward maps an output-side Quantity to the input side while power
	// flows output-to-input. Valid only when Reversible reports true; the
	// backward efficiency curve is independent of the forward one.
	Backward(out model.Quantity, cmd float64) (model.Quantity, error)
	Reversible() bool
	// OperatingPoint reports the point of the last evaluation.
	OperatingPoint() OperatingPoint
}

// PrimeMover is the converter that turns stored energy into shaft torque: an
// electric motor or a combustion engine. The causality resolver drives it
// from the shaft side, since the shaft speed is implied by the wheel boundary
// while the torque is commanded.
type PrimeMover interface {
	Converter

	// Drive produces torque at the given shaft speed and throttle. It
	// returns the input Quantity drawn from the supply side and the
	// mechanical output Quantity.
	Drive(omega, throttle float64) (in model.Quantity, out model.Quantity, err error)
	// Recover absorbs braking torque at the shaft and returns the torque
	// actually absorbed together with the Quantity sent back toward the
	// source (negative power). Valid only when Reversible reports true.
	Recover(omega, torque float64) (absorbed float64, out model.Quantity, err error)
	// RegenLimit reports the maximum shaft torque the converter can absorb
	// at the given speed. Zero when the converter is not reversible.
	RegenLimit(omega float64) float64
	// ShaftInertia is the rotor inertia seen at the output shaft, kg·m².
	ShaftInertia() float64
}

// MechStage is a mechanical converter with a fixed transformation ratio,
// such as a gearbox or a differential. Input speed equals Ratio times output
// speed; output torque equals input torque times Ratio within efficiency.
type MechStage interface {
	Converter

	Ratio() float64
	// Inertia is the stage's rotational inertia at its output shaft, kg·m².
	Inertia() float64
}

// SupplyStage is a converter on the path between an energy source and the
// prime mover, such as a fuel cell. Demand flows from the load side: Supply
// reports the input Quantity required to deliver the demanded output.
type SupplyStage interface {
	Converter

	Supply(demand model.Quantity) (model.Quantity, error)
}

func newID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
