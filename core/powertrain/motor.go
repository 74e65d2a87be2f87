package powertrain

import (
	"errors"
	"fmt"

	"github.com/evsim/powertrain/core/curve"
	"github.com/evsim/powertrain/core/model"
)

// MotorConfig describes an electric traction motor.
type MotorConfig struct {
	Name string
	// MaxTorque is the peak shaft torque in N·m versus shaft speed in rad/s.
	MaxTorque curve.Curve
	// MaxPower caps mechanical output power in W.
	MaxPower float64
	// MaxSpeed bounds the valid shaft speed domain in rad/s.
	MaxSpeed float64
	// Efficiency is the electric-to-mechanical efficiency versus shaft
	// speed, in (0,1].
	Efficiency curve.Curve
	// RegenEfficiency is the mechanical-to-electric efficiency versus shaft
	// speed used during recovery. Nil makes the motor non-reversible.
	RegenEfficiency curve.Curve
	// BusVoltage is the nominal DC bus voltage in V.
	BusVoltage float64
	// Inertia is the rotor inertia in kg·m².
	Inertia float64
	// Mass in kg.
	Mass float64
}

// ElectricMotor converts electric power into shaft torque. With a regen
// efficiency curve it is reversible and acts as a generator during braking.
type ElectricMotor struct {
	id  string
	cfg MotorConfig
	op  OperatingPoint
}

// NewElectricMotor validates the configuration and returns the motor.
func NewElectricMotor(cfg MotorConfig) (*ElectricMotor, error) {
	if cfg.Name == "" {
		return nil, errors.New("motor: name is required")
	}
	if cfg.MaxTorque == nil || cfg.Efficiency == nil {
		return nil, fmt.Errorf("motor %s: torque and efficiency curves are required", cfg.Name)
	}
	if cfg.MaxPower <= 0 || cfg.MaxSpeed <= 0 || cfg.BusVoltage <= 0 {
		return nil, fmt.Errorf("motor %s: max power, max speed and bus voltage must be positive", cfg.Name)
	}
	if cfg.Inertia < 0 || cfg.Mass < 0 {
		return nil, fmt.Errorf("motor %s: inertia and mass cannot be negative", cfg.Name)
	}
	return &ElectricMotor{id: newID("Converter"), cfg: cfg}, nil
}

func (m *ElectricMotor) ID() string   { return m.id }
func (m *ElectricMotor) Name() string { return m.cfg.Name }

func (m *ElectricMotor) Ports() []model.Port {
	in := model.Port{Direction: model.PortIn, Kind: model.KindElectric}
	if m.Reversible() {
		in.Direction = model.PortBidirectional
	}
	return []model.Port{in, {Direction: model.PortBidirectional, Kind: model.KindMechanical}}
}

func (m *ElectricMotor) Reversible() bool { return m.cfg.RegenEfficiency != nil }

func (m *ElectricMotor) OperatingPoint() OperatingPoint { return m.op }

func (m *ElectricMotor) ShaftInertia() float64 { return m.cfg.Inertia }

func (m *ElectricMotor) checkSpeed(omega float64) error {
	if omega < 0 || omega > m.cfg.MaxSpeed {
		return &model.OperatingPointError{
			Component:       m.cfg.Name,
			AngularVelocity: omega,
			Reason:          fmt.Sprintf("shaft speed outside [0, %.1f] rad/s", m.cfg.MaxSpeed),
		}
	}
	return nil
}

// Drive produces shaft torque at the given speed and throttle. The torque is
// the commanded fraction of the peak torque at that speed, capped by the
// power rating. The returned electric Quantity is the bus draw required to
// sustain it at the speed-dependent efficiency.
func (m *ElectricMotor) Drive(omega, throttle float64) (model.Quantity, model.Quantity, error) {
	if err := m.checkSpeed(omega); err != nil {
		return model.Quantity{}, model.Quantity{}, err
	}
	if throttle < 0 || throttle > 1 {
		return model.Quantity{}, model.Quantity{}, &model.OperatingPointError{
			Component:       m.cfg.Name,
			AngularVelocity: omega,
			Reason:          fmt.Sprintf("throttle %.3f outside [0,1]", throttle),
		}
	}
	torque := throttle * m.cfg.MaxTorque.At(omega)
	if omega > 0 && torque*omega > m.cfg.MaxPower {
		torque = m.cfg.MaxPower / omega
	}
	eff := m.cfg.Efficiency.At(omega)
	mechPower := torque * omega
	elecPower := 0.0
	if torque > 0 {
		elecPower = mechPower / eff
	}
	m.op = OperatingPoint{
		Torque:          torque,
		AngularVelocity: omega,
		Power:           elecPower,
		Command:         throttle,
		Efficiency:      eff,
	}
	in := model.Electric(m.cfg.BusVoltage, elecPower/m.cfg.BusVoltage)
	out := model.Mechanical(torque, omega)
	return in, out, nil
}

// RegenLimit reports the shaft torque the motor can absorb at the given
// speed, bounded by the torque curve and the power rating.
func (m *ElectricMotor) RegenLimit(omega float64) float64 {
	if !m.Reversible() || omega <= 0 {
		return 0
	}
	limit := m.cfg.MaxTorque.At(omega)
	if limit*omega > m.cfg.MaxPower {
		limit = m.cfg.MaxPower / omega
	}
	return limit
}

// Recover absorbs braking torque at the shaft and converts it back to
// electric power at the regen efficiency. The returned Quantity carries
// negative power: it flows toward the source.
func (m *ElectricMotor) Recover(omega, torque float64) (float64, model.Quantity, error) {
	if !m.Reversible() {
		return 0, model.Quantity{}, &model.ReversibilityViolation{
			Component: m.cfg.Name,
			Power:     torque * omega,
		}
	}
	if err := m.checkSpeed(omega); err != nil {
		return 0, model.Quantity{}, err
	}
	absorbed := torque
	if limit := m.RegenLimit(omega); absorbed > limit {
		absorbed = limit
	}
	eff := m.cfg.RegenEfficiency.At(omega)
	elecPower := absorbed * omega * eff
	m.op = OperatingPoint{
		Torque:          -absorbed,
		AngularVelocity: omega,
		Power:           absorbed * omega,
		Efficiency:      eff,
	}
	return absorbed, model.Electric(m.cfg.BusVoltage, -elecPower/m.cfg.BusVoltage), nil
}

// Forward maps an electric input to the mechanical output at the current
// operating point. The shaft speed of the last resolution applies; a motor
// at standstill cannot express input power as torque.
func (m *ElectricMotor) Forward(in model.Quantity, cmd float64) (model.Quantity, error) {
	if in.Kind() != model.KindElectric {
		return model.Quantity{}, fmt.Errorf("motor %s: forward expects electric input, got %s", m.cfg.Name, in.Kind())
	}
	omega := m.op.AngularVelocity
	if omega <= 0 {
		return model.Quantity{}, &model.OperatingPointError{
			Component: m.cfg.Name,
			Reason:    "forward undefined at standstill",
		}
	}
	eff := m.cfg.Efficiency.At(omega)
	m.op = OperatingPoint{
		Torque:          in.Power() * eff / omega,
		AngularVelocity: omega,
		Power:           in.Power(),
		Command:         cmd,
		Efficiency:      eff,
	}
	return model.Mechanical(in.Power()*eff/omega, omega), nil
}

// Backward maps a mechanical output-side Quantity back to the electric input
// side at the regen efficiency.
func (m *ElectricMotor) Backward(out model.Quantity, cmd float64) (model.Quantity, error) {
	if !m.Reversible() {
		return model.Quantity{}, &model.ReversibilityViolation{Component: m.cfg.Name, Power: out.Power()}
	}
	if out.Kind() != model.KindMechanical {
		return model.Quantity{}, fmt.Errorf("motor %s: backward expects mechanical output, got %s", m.cfg.Name, out.Kind())
	}
	if err := m.checkSpeed(out.AngularVelocity()); err != nil {
		return model.Quantity{}, err
	}
	eff := m.cfg.RegenEfficiency.At(out.AngularVelocity())
	elecPower := out.Power() * eff
	m.op = OperatingPoint{
		Torque:          -out.Torque(),
		AngularVelocity: out.AngularVelocity(),
		Power:           out.Power(),
		Command:         cmd,
		Efficiency:      eff,
	}
	return model.Electric(m.cfg.BusVoltage, elecPower/m.cfg.BusVoltage), nil
}
