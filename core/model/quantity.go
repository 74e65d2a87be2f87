package model

// Kind identifies the energy domain a quantity or port belongs to.
type Kind int

const (
	// KindMechanical carries torque and angular velocity on a rotating shaft.
	KindMechanical Kind = iota
	// KindElectric carries voltage and current on an electrical bus.
	KindElectric
	// KindChemical carries an enthalpy flow from a fuel store.
	KindChemical
)

func (k Kind) String() string {
	switch k {
	case KindMechanical:
		return "mechanical"
	case KindElectric:
		return "electric"
	case KindChemical:
		return "chemical"
	default:
		return "unknown"
	}
}

// Quantity is an immutable, typed value pair exchanged between two component
// ports during one step. Mechanical quantities carry (torque N·m, angular
// velocity rad/s), electric quantities (voltage V, current A) and chemical
// quantities a scalar enthalpy flow in W. A Quantity is recomputed every
// step; it is never mutated in place.
type Quantity struct {
	kind Kind

	torque float64
	omega  float64

	voltage float64
	current float64

	chemPower float64
}

// Mechanical returns a mechanical quantity with the given shaft torque and
// angular velocity.
func Mechanical(torque, omega float64) Quantity {
	return Quantity{kind: KindMechanical, torque: torque, omega: omega}
}

// Electric returns an electric quantity with the given bus voltage and current.
func Electric(voltage, current float64) Quantity {
	return Quantity{kind: KindElectric, voltage: voltage, current: current}
}

// Chemical returns a chemical quantity carrying the given enthalpy flow in W.
func Chemical(power float64) Quantity {
	return Quantity{kind: KindChemical, chemPower: power}
}

// Kind returns the energy domain of the quantity.
func (q Quantity) Kind() Kind { return q.kind }

// Torque returns the shaft torque in N·m. Zero for non-mechanical quantities.
func (q Quantity) Torque() float64 { return q.torque }

// AngularVelocity returns the shaft speed in rad/s. Zero for non-mechanical
// quantities.
func (q Quantity) AngularVelocity() float64 { return q.omega }

// Voltage returns the bus voltage in V. Zero for non-electric quantities.
func (q Quantity) Voltage() float64 { return q.voltage }

// Current returns the bus current in A. Zero for non-electric quantities.
func (q Quantity) Current() float64 { return q.current }

// Power returns the instantaneous power carried by the quantity in W.
// Positive power flows in the nominal direction of the link it travels on.
func (q Quantity) Power() float64 {
	switch q.kind {
	case KindMechanical:
		return q.torque * q.omega
	case KindElectric:
		return q.voltage * q.current
	default:
		return q.chemPower
	}
}
