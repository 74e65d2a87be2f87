package model

import "fmt"

// ConnectivityError reports a malformed component graph. It is returned at
// assembly time; a vehicle that fails connectivity validation never runs.
type ConnectivityError struct {
	Detail string
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("connectivity: %s", e.Detail)
}

// OperatingPointError reports a converter command or state outside the
// component's physical domain. It is fatal to the run and carries the
// offending operating point for post-mortem inspection.
type OperatingPointError struct {
	Component       string
	Torque          float64
	AngularVelocity float64
	Reason          string
}

func (e *OperatingPointError) Error() string {
	return fmt.Sprintf("%s: operating point out of range (torque=%.3f N·m, omega=%.3f rad/s): %s",
		e.Component, e.Torque, e.AngularVelocity, e.Reason)
}

// DepletionError reports an exhausted energy source. The requested energy
// exceeds what the store can deliver over the step; the run transitions to
// Failed with partial results retained.
type DepletionError struct {
	Source    string
	Requested float64 // J demanded over the step
	Available float64 // J left in the store
}

func (e *DepletionError) Error() string {
	return fmt.Sprintf("%s: depleted (requested %.3f J, available %.3f J)",
		e.Source, e.Requested, e.Available)
}

// ReversibilityViolation reports that a non-reversible converter was asked
// to absorb regenerated power. It is recoverable: the resolver diverts the
// power to the friction brakes and records the event.
type ReversibilityViolation struct {
	Component string
	Power     float64 // W that could not be absorbed
}

func (e *ReversibilityViolation) Error() string {
	return fmt.Sprintf("%s: non-reversible converter asked to absorb %.3f W", e.Component, e.Power)
}
