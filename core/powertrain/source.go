package powertrain

import "github.com/evsim/powertrain/core/model"

// EnergySource stores and delivers energy at one domain boundary of the
// drive train. The stored level is bounded to [0, Capacity]; a demand the
// store cannot cover fails with DepletionError rather than clamping.
type EnergySource interface {
	Component

	// BoundaryKind is the energy domain the source exchanges on its port.
	BoundaryKind() model.Kind
	// Capacity is the usable energy in J.
	Capacity() float64
	// Level is the stored energy in J.
	Level() float64
	// SoC is Level normalized to Capacity, in [0,1].
	SoC() float64
	Rechargeable() bool

	// Drain draws the given power in W for dt seconds. It returns the
	// energy actually removed from the store, which exceeds power·dt by the
	// source's internal losses. Fails with DepletionError when the store
	// cannot cover the demand over the step.
	Drain(power, dt float64) (fromStore float64, err error)
	// Absorb stores the given power in W for dt seconds. It returns the
	// power accepted (limited by ratings and remaining headroom) and the
	// energy added to the store after internal losses. Fails with
	// ReversibilityViolation on a non-rechargeable source.
	Absorb(power, dt float64) (accepted, toStore float64, err error)
}
