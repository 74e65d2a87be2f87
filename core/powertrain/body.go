package powertrain

import (
	"fmt"
	"math"
)

const gravity = 9.80665

// BodyConfig describes the inertial and resistive properties of the vehicle
// body as seen at the wheel boundary.
type BodyConfig struct {
	// Mass is the total vehicle mass in kg.
	Mass float64
	// WheelRadius in m.
	WheelRadius float64
	// DragCoefficient is the dimensionless aerodynamic Cd.
	DragCoefficient float64
	// FrontalArea in m².
	FrontalArea float64
	// RollingResistance is the dimensionless rolling coefficient Crr.
	RollingResistance float64
}

// Motion is the body state produced by one integration step.
type Motion struct {
	Velocity        float64 // m/s
	Position        float64 // m
	WheelSpeed      float64 // rad/s
	Acceleration    float64 // m/s²
	NetTorque       float64 // N·m at the wheel
	ResistiveTorque float64 // N·m at the wheel (drag + rolling + slope + load)
}

// Body aggregates the load the drive train sees at the wheels and owns the
// vehicle's motion state. Motion is advanced once per step with
// semi-implicit (symplectic) Euler: the net torque at the start of the step
// yields the new angular velocity, and the new velocity advances position.
// Only forward motion is modeled; resistive torques cannot drive the
// velocity below zero within a step.
type Body struct {
	cfg      BodyConfig
	velocity float64
	position float64
}

// NewBody validates the configuration and returns a body at rest.
func NewBody(cfg BodyConfig) (*Body, error) {
	if cfg.Mass <= 0 {
		return nil, fmt.Errorf("body: mass must be positive")
	}
	if cfg.WheelRadius <= 0 {
		return nil, fmt.Errorf("body: wheel radius must be positive")
	}
	if cfg.DragCoefficient < 0 || cfg.FrontalArea < 0 || cfg.RollingResistance < 0 {
		return nil, fmt.Errorf("body: resistive coefficients cannot be negative")
	}
	return &Body{cfg: cfg}, nil
}

func (b *Body) Velocity() float64 { return b.velocity }
func (b *Body) Position() float64 { return b.position }

// WheelSpeed is the wheel angular velocity implied by the current linear
// velocity, rad/s.
func (b *Body) WheelSpeed() float64 { return b.velocity / b.cfg.WheelRadius }

// WheelRadius in m.
func (b *Body) WheelRadius() float64 { return b.cfg.WheelRadius }

// Mass in kg.
func (b *Body) Mass() float64 { return b.cfg.Mass }

// Inertia is the body's linear mass expressed as rotational inertia at the
// wheel, kg·m².
func (b *Body) Inertia() float64 {
	return b.cfg.Mass * b.cfg.WheelRadius * b.cfg.WheelRadius
}

// DragTorque is the aerodynamic drag at the given velocity and air density,
// expressed as wheel torque.
func (b *Body) DragTorque(velocity, airDensity float64) float64 {
	force := 0.5 * airDensity * b.cfg.DragCoefficient * b.cfg.FrontalArea * velocity * math.Abs(velocity)
	return force * b.cfg.WheelRadius
}

// RollingTorque is the rolling resistance at the given grade, expressed as
// wheel torque. Zero at standstill.
func (b *Body) RollingTorque(velocity, grade float64) float64 {
	if velocity == 0 {
		return 0
	}
	return b.cfg.RollingResistance * b.cfg.Mass * gravity * math.Cos(grade) * b.cfg.WheelRadius
}

// SlopeTorque is the gravity component along the track, expressed as wheel
// torque. Positive uphill.
func (b *Body) SlopeTorque(grade float64) float64 {
	return b.cfg.Mass * gravity * math.Sin(grade) * b.cfg.WheelRadius
}

// Integrate advances the motion state one step. driveTorque is the traction
// delivered by the drive train, retardTorque the total braking torque
// (regenerative plus friction), loadTorque an external resistive torque from
// the load profile, all at the wheel. drivetrainInertia is the rotating
// inertia reflected to the wheel, added to the body's own.
func (b *Body) Integrate(driveTorque, retardTorque, loadTorque, grade, airDensity, drivetrainInertia, dt float64) Motion {
	resist := b.DragTorque(b.velocity, airDensity) +
		b.RollingTorque(b.velocity, grade) +
		b.SlopeTorque(grade) +
		loadTorque

	net := driveTorque - resist
	if b.velocity > 0 {
		net -= retardTorque
	} else if math.Abs(net) <= retardTorque {
		// brakes hold the vehicle at rest
		net = 0
	} else {
		net -= math.Copysign(retardTorque, net)
	}

	inertia := b.Inertia() + drivetrainInertia
	alpha := net / inertia
	omega := b.WheelSpeed() + alpha*dt
	if omega < 0 {
		// reverse motion is out of scope; resistive and braking torques
		// stop at standstill
		omega = 0
	}
	b.velocity = omega * b.cfg.WheelRadius
	b.position += b.velocity * dt

	return Motion{
		Velocity:        b.velocity,
		Position:        b.position,
		WheelSpeed:      omega,
		Acceleration:    alpha * b.cfg.WheelRadius,
		NetTorque:       net,
		ResistiveTorque: resist,
	}
}
