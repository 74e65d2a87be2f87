package powertrain

import (
	"fmt"

	"github.com/evsim/powertrain/core/model"
)

// Brakes is the friction braking system: a torque-limited, purely
// dissipative sink. Energy absorbed here is lost as heat and never returns
// to an energy source.
type Brakes struct {
	id         string
	name       string
	maxTorque  float64 // N·m at the wheel
	dissipated float64 // J since assembly
}

// NewBrakes returns a friction brake set rated for the given wheel torque.
func NewBrakes(name string, maxTorque float64) (*Brakes, error) {
	if name == "" {
		return nil, fmt.Errorf("brakes: name is required")
	}
	if maxTorque <= 0 {
		return nil, fmt.Errorf("brakes %s: rated torque must be positive", name)
	}
	return &Brakes{id: newID("Brakes"), name: name, maxTorque: maxTorque}, nil
}

func (b *Brakes) ID() string   { return b.id }
func (b *Brakes) Name() string { return b.name }

func (b *Brakes) Ports() []model.Port {
	return []model.Port{{Direction: model.PortIn, Kind: model.KindMechanical}}
}

// MaxTorque is the rated wheel torque in N·m.
func (b *Brakes) MaxTorque() float64 { return b.maxTorque }

// Clamp bounds a requested friction torque to the rated maximum.
func (b *Brakes) Clamp(torque float64) float64 {
	if torque < 0 {
		return 0
	}
	if torque > b.maxTorque {
		return b.maxTorque
	}
	return torque
}

// Dissipate tallies energy converted to heat during a step.
func (b *Brakes) Dissipate(energy float64) {
	if energy > 0 {
		b.dissipated += energy
	}
}

// Dissipated is the total heat in J since assembly.
func (b *Brakes) Dissipated() float64 { return b.dissipated }
