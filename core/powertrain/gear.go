package powertrain

import (
	"fmt"

	"github.com/evsim/powertrain/core/model"
)

// GearStage is a fixed-ratio mechanical converter used for both gearboxes
// and differentials. With ratio r, the input shaft turns r times faster than
// the output shaft; torque is multiplied by r within the stage efficiency.
// Back-driving during regenerative braking uses the independent reverse
// efficiency.
type GearStage struct {
	id         string
	name       string
	ratio      float64
	efficiency float64
	reverseEff float64
	inertia    float64
	mass       float64
	op         OperatingPoint
}

func newGearStage(kind, name string, ratio, efficiency, inertia, mass float64) (*GearStage, error) {
	if name == "" {
		return nil, fmt.Errorf("%s: name is required", kind)
	}
	if ratio <= 0 {
		return nil, fmt.Errorf("%s %s: ratio must be positive", kind, name)
	}
	if efficiency <= 0 || efficiency > 1 {
		return nil, fmt.Errorf("%s %s: efficiency must be in (0,1]", kind, name)
	}
	if inertia < 0 || mass < 0 {
		return nil, fmt.Errorf("%s %s: inertia and mass cannot be negative", kind, name)
	}
	return &GearStage{
		id:         newID("Converter"),
		name:       name,
		ratio:      ratio,
		efficiency: efficiency,
		reverseEff: efficiency,
		inertia:    inertia,
		mass:       mass,
	}, nil
}

// NewGearbox returns a gearbox stage with the given speed-reduction ratio.
func NewGearbox(name string, ratio, efficiency, inertia, mass float64) (*GearStage, error) {
	return newGearStage("gearbox", name, ratio, efficiency, inertia, mass)
}

// NewDifferential returns a final-drive stage with the given ratio.
func NewDifferential(name string, ratio, efficiency, inertia, mass float64) (*GearStage, error) {
	return newGearStage("differential", name, ratio, efficiency, inertia, mass)
}

// WithReverseEfficiency overrides the back-drive efficiency, which defaults
// to the forward value.
func (g *GearStage) WithReverseEfficiency(eff float64) (*GearStage, error) {
	if eff <= 0 || eff > 1 {
		return nil, fmt.Errorf("gear %s: reverse efficiency must be in (0,1]", g.name)
	}
	g.reverseEff = eff
	return g, nil
}

func (g *GearStage) ID() string   { return g.id }
func (g *GearStage) Name() string { return g.name }

func (g *GearStage) Ports() []model.Port {
	return []model.Port{
		{Direction: model.PortBidirectional, Kind: model.KindMechanical},
		{Direction: model.PortBidirectional, Kind: model.KindMechanical},
	}
}

func (g *GearStage) Reversible() bool { return true }

func (g *GearStage) OperatingPoint() OperatingPoint { return g.op }

func (g *GearStage) Ratio() float64   { return g.ratio }
func (g *GearStage) Inertia() float64 { return g.inertia }
func (g *GearStage) Mass() float64    { return g.mass }

func (g *GearStage) checkMechanical(q model.Quantity, dir string) error {
	if q.Kind() != model.KindMechanical {
		return fmt.Errorf("gear %s: %s expects a mechanical quantity, got %s", g.name, dir, q.Kind())
	}
	return nil
}

// Forward transforms an input-side quantity to the output side: speed is
// divided by the ratio, torque multiplied by ratio and efficiency.
func (g *GearStage) Forward(in model.Quantity, cmd float64) (model.Quantity, error) {
	if err := g.checkMechanical(in, "forward"); err != nil {
		return model.Quantity{}, err
	}
	g.op = OperatingPoint{
		Torque:          in.Torque(),
		AngularVelocity: in.AngularVelocity(),
		Power:           in.Power(),
		Command:         cmd,
		Efficiency:      g.efficiency,
	}
	return model.Mechanical(in.Torque()*g.ratio*g.efficiency, in.AngularVelocity()/g.ratio), nil
}

// Backward transforms an output-side quantity to the input side while the
// stage is back-driven: speed is multiplied by the ratio, torque divided by
// ratio and scaled by the reverse efficiency.
func (g *GearStage) Backward(out model.Quantity, cmd float64) (model.Quantity, error) {
	if err := g.checkMechanical(out, "backward"); err != nil {
		return model.Quantity{}, err
	}
	g.op = OperatingPoint{
		Torque:          out.Torque(),
		AngularVelocity: out.AngularVelocity(),
		Power:           out.Power(),
		Command:         cmd,
		Efficiency:      g.reverseEff,
	}
	return model.Mechanical(out.Torque()*g.reverseEff/g.ratio, out.AngularVelocity()*g.ratio), nil
}
