package sim

// DriveCycle supplies the driver signal for each step, in [-1,1]: positive
// demands traction, negative braking.
type DriveCycle interface {
	SignalAt(step int, simTime float64) float64
}

// SignalFunc adapts a function to a DriveCycle.
type SignalFunc func(step int, simTime float64) float64

func (f SignalFunc) SignalAt(step int, simTime float64) float64 { return f(step, simTime) }

// ConstantSignal holds the driver signal fixed for the whole run.
func ConstantSignal(value float64) DriveCycle {
	return SignalFunc(func(int, float64) float64 { return value })
}

// Signals plays back an explicit per-step signal sequence. The sequence
// length must equal the run's step count; New rejects a mismatch before the
// run starts.
type Signals []float64

func (s Signals) SignalAt(step int, _ float64) float64 {
	if step < 0 || step >= len(s) {
		return 0
	}
	return s[step]
}

// Phase is one segment of a drive cycle: a signal held for Steps steps.
type Phase struct {
	Steps  int
	Signal float64
}

// Phases builds a DriveCycle from consecutive phases. Past the last phase
// the final signal holds.
func Phases(phases ...Phase) DriveCycle {
	return SignalFunc(func(step int, _ float64) float64 {
		for _, p := range phases {
			if step < p.Steps {
				return p.Signal
			}
			step -= p.Steps
		}
		if len(phases) == 0 {
			return 0
		}
		return phases[len(phases)-1].Signal
	})
}

// LoadProfile supplies an external resistive torque at the wheel for each
// step, in N·m. Trailer drag or dynamometer load, anything the body model
// does not already account for.
type LoadProfile interface {
	TorqueAt(step int, simTime float64) float64
}

// LoadFunc adapts a function to a LoadProfile.
type LoadFunc func(step int, simTime float64) float64

func (f LoadFunc) TorqueAt(step int, simTime float64) float64 { return f(step, simTime) }

// ConstantLoad applies a fixed resistive torque for the whole run.
func ConstantLoad(torque float64) LoadProfile {
	return LoadFunc(func(int, float64) float64 { return torque })
}
