package powertrain

import (
	"math"

	"github.com/evsim/powertrain/core/model"
)

// ECU turns the driver signal and the measured vehicle state into throttle
// and brake commands, once per step in lockstep with the simulation clock.
type ECU interface {
	// Step computes the commands for the given step. signal is the driver
	// demand in [-1,1]: positive requests traction, negative braking.
	Step(step int, signal float64, measured model.Measured) model.Commands
}

// DirectECU maps the driver signal straight to the pedals with no dynamics.
type DirectECU struct{}

func NewDirectECU() *DirectECU { return &DirectECU{} }

func (e *DirectECU) Step(step int, signal float64, measured model.Measured) model.Commands {
	signal = clampSignal(signal)
	if signal >= 0 {
		return model.Commands{Throttle: signal}
	}
	return model.Commands{Brake: -signal}
}

// RampECU rate-limits pedal movement, holding its own pedal state between
// steps so commands approach the driver signal gradually.
type RampECU struct {
	// Rate is the maximum pedal change per step, in pedal fraction.
	rate     float64
	throttle float64
	brake    float64
}

// NewRampECU returns an ECU whose pedals move at most rate per step.
func NewRampECU(rate float64) *RampECU {
	if rate <= 0 || rate > 1 {
		rate = 1
	}
	return &RampECU{rate: rate}
}

func (e *RampECU) Step(step int, signal float64, measured model.Measured) model.Commands {
	signal = clampSignal(signal)
	targetThrottle, targetBrake := 0.0, 0.0
	if signal >= 0 {
		targetThrottle = signal
	} else {
		targetBrake = -signal
	}
	e.throttle = approach(e.throttle, targetThrottle, e.rate)
	e.brake = approach(e.brake, targetBrake, e.rate)
	return model.Commands{Throttle: e.throttle, Brake: e.brake}
}

func approach(current, target, rate float64) float64 {
	delta := target - current
	if math.Abs(delta) <= rate {
		return target
	}
	return current + math.Copysign(rate, delta)
}

func clampSignal(s float64) float64 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
