package sim

import (
	"math"

	"github.com/evsim/powertrain/core/powertrain"
)

// SourceLevel is the state of one energy source after a step.
type SourceLevel struct {
	Name  string  `json:"name"`
	Level float64 `json:"level"`
	SoC   float64 `json:"soc"`
}

// StepRecord is the full recorded output of one step. Records are keyed by
// component names, so two identically assembled vehicles produce identical
// sequences.
type StepRecord struct {
	Step int     `json:"step"`
	Time float64 `json:"time"`

	Throttle float64 `json:"throttle"`
	Brake    float64 `json:"brake"`

	Velocity     float64 `json:"velocity"`
	Position     float64 `json:"position"`
	WheelSpeed   float64 `json:"wheel_speed"`
	Acceleration float64 `json:"acceleration"`

	DriveTorque    float64 `json:"drive_torque"`
	RegenTorque    float64 `json:"regen_torque"`
	FrictionTorque float64 `json:"friction_torque"`

	// SourcePower at the source boundary in W, positive discharging.
	SourcePower float64 `json:"source_power"`

	Links   []powertrain.LinkFlow `json:"links"`
	Sources []SourceLevel         `json:"sources"`

	FromStore     float64 `json:"from_store"`
	ToStore       float64 `json:"to_store"`
	ConverterLoss float64 `json:"converter_loss"`
	FrictionLoss  float64 `json:"friction_loss"`
	SourceLoss    float64 `json:"source_loss"`
	// CumulativeLoss is the running total of all dissipated energy in J.
	CumulativeLoss float64 `json:"cumulative_loss"`
}

// Recorder accumulates step records, rounding recorded values to a fixed
// number of decimals. Rounding applies to the records only, never to the
// simulation state itself.
type Recorder struct {
	precision  int
	cumulative float64
	records    []StepRecord
}

// NewRecorder returns a recorder rounding to precision decimals. A negative
// precision disables rounding.
func NewRecorder(precision int) *Recorder {
	if precision < -1 {
		precision = -1
	}
	return &Recorder{precision: precision}
}

// Record appends the record for one completed step.
func (r *Recorder) Record(simTime float64, v *powertrain.Vehicle, res *powertrain.StepResult) {
	r.cumulative += res.ConverterLoss + res.FrictionLoss + res.SourceLoss

	rec := StepRecord{
		Step:           res.Step,
		Time:           r.round(simTime),
		Throttle:       r.round(res.Commands.Throttle),
		Brake:          r.round(res.Commands.Brake),
		Velocity:       r.round(res.Motion.Velocity),
		Position:       r.round(res.Motion.Position),
		WheelSpeed:     r.round(res.Motion.WheelSpeed),
		Acceleration:   r.round(res.Motion.Acceleration),
		DriveTorque:    r.round(res.Resolution.DriveTorque),
		RegenTorque:    r.round(res.Resolution.RegenTorque),
		FrictionTorque: r.round(res.Resolution.FrictionTorque),
		SourcePower:    r.round(res.Resolution.SourcePower),
		FromStore:      r.round(res.FromStore),
		ToStore:        r.round(res.ToStore),
		ConverterLoss:  r.round(res.ConverterLoss),
		FrictionLoss:   r.round(res.FrictionLoss),
		SourceLoss:     r.round(res.SourceLoss),
		CumulativeLoss: r.round(r.cumulative),
	}

	rec.Links = make([]powertrain.LinkFlow, len(res.Resolution.Links))
	for i, l := range res.Resolution.Links {
		rec.Links[i] = powertrain.LinkFlow{
			From:            l.From,
			To:              l.To,
			Kind:            l.Kind,
			Torque:          r.round(l.Torque),
			AngularVelocity: r.round(l.AngularVelocity),
			Power:           r.round(l.Power),
		}
	}

	for _, a := range v.Sources() {
		rec.Sources = append(rec.Sources, SourceLevel{
			Name:  a.Source.Name(),
			Level: r.round(a.Source.Level()),
			SoC:   r.round(a.Source.SoC()),
		})
	}

	r.records = append(r.records, rec)
}

// Records returns the accumulated records in step order.
func (r *Recorder) Records() []StepRecord { return r.records }

func (r *Recorder) round(x float64) float64 {
	if r.precision < 0 {
		return x
	}
	f := math.Pow(10, float64(r.precision))
	return math.Round(x*f) / f
}
