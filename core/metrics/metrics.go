package metrics

import "time"

// RunEvent is the end-of-run summary recorded once per simulation.
type RunEvent struct {
	RunID           string
	Vehicle         string
	State           string
	Steps           int
	SimulatedTime   float64 // s
	Distance        float64 // m
	FinalVelocity   float64 // m/s
	EnergyFromStore float64 // J drawn from the sources
	EnergyToStore   float64 // J returned by regeneration
	ConverterLoss   float64 // J
	FrictionLoss    float64 // J
	SourceLoss      float64 // J
	Violations      int
	Error           string
	Time            time.Time
}

// RunRecorder records run summaries.
type RunRecorder interface {
	RecordRun(ev RunEvent) error
}

// StepEvent is a sampled per-step telemetry point.
type StepEvent struct {
	RunID       string
	Vehicle     string
	Step        int
	SimTime     float64 // s since run start
	Velocity    float64 // m/s
	Position    float64 // m
	SourcePower float64 // W, positive discharging
	SoC         float64
	Time        time.Time
}

// StepRecorder records sampled step telemetry.
type StepRecorder interface {
	RecordStep(ev StepEvent) error
}

// Sink records simulation telemetry for observability purposes.
type Sink interface {
	RunRecorder
	StepRecorder
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error   { return nil }
func (NopSink) RecordStep(StepEvent) error { return nil }

// MultiSink fans every event out to all configured sinks, returning the
// first error encountered.
type MultiSink []Sink

func (m MultiSink) RecordRun(ev RunEvent) error {
	for _, s := range m {
		if err := s.RecordRun(ev); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) RecordStep(ev StepEvent) error {
	for _, s := range m {
		if err := s.RecordStep(ev); err != nil {
			return err
		}
	}
	return nil
}

// Config selects and configures the telemetry sinks.
type Config struct {
	// PrometheusEnabled registers run and step metrics on the Prometheus
	// registerer. The HTTP endpoint is served separately.
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
	// StepSampleEvery records one StepEvent every N steps. Zero disables
	// step telemetry.
	StepSampleEvery int `json:"step_sample_every"`
}
