package model

// Commands is the per-step output of the ECU, consumed by the drive train
// and the brakes. Both values are normalized to [0,1].
type Commands struct {
	// Throttle is the traction demand as a fraction of the prime mover's
	// capability at the current operating point.
	Throttle float64
	// Brake is the braking demand as a fraction of the combined regenerative
	// and friction braking capability.
	Brake float64
}

// Measured is the vehicle state observed by the ECU at the start of a step.
// It reflects the completed previous step.
type Measured struct {
	Velocity   float64 // m/s
	Position   float64 // m along the track
	WheelSpeed float64 // rad/s
	SoC        float64 // aggregate state of charge across energy sources, [0,1]
}
