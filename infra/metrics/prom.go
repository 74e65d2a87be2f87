package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/evsim/powertrain/core/metrics"
)

// PromSink records simulation telemetry in Prometheus metrics.
type PromSink struct {
	runs       *prometheus.CounterVec
	energyFrom prometheus.Counter
	energyTo   prometheus.Counter
	distance   prometheus.Counter
	violations prometheus.Counter
	velocity   *prometheus.GaugeVec
	soc        *prometheus.GaugeVec
}

// NewPromSink registers simulation metrics on the default Prometheus
// registerer. The Prometheus server should be started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simulation_runs_total",
		Help: "Total number of simulation runs by final state",
	}, []string{"vehicle", "state"})
	energyFrom := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulation_energy_from_store_joules_total",
		Help: "Energy drawn from the energy sources across runs",
	})
	energyTo := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulation_energy_to_store_joules_total",
		Help: "Energy returned to the energy sources by regeneration across runs",
	})
	distance := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulation_distance_meters_total",
		Help: "Distance covered across runs",
	})
	violations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulation_reversibility_violations_total",
		Help: "Regeneration demands diverted to the friction brakes",
	})
	velocity := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "simulation_velocity_meters_per_second",
		Help: "Vehicle velocity at the last sampled step",
	}, []string{"vehicle"})
	soc := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "simulation_state_of_charge",
		Help: "Aggregate state of charge at the last sampled step",
	}, []string{"vehicle"})

	s := &PromSink{
		runs:       runs,
		energyFrom: energyFrom,
		energyTo:   energyTo,
		distance:   distance,
		violations: violations,
		velocity:   velocity,
		soc:        soc,
	}
	for _, c := range []prometheus.Collector{runs, energyFrom, energyTo, distance, violations, velocity, soc} {
		if err := register(reg, c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func register(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// RecordRun increments the run counters with the summary totals.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(ev.Vehicle, ev.State).Inc()
	s.energyFrom.Add(ev.EnergyFromStore)
	s.energyTo.Add(ev.EnergyToStore)
	s.distance.Add(ev.Distance)
	s.violations.Add(float64(ev.Violations))
	return nil
}

// RecordStep updates the last-sample gauges.
func (s *PromSink) RecordStep(ev coremetrics.StepEvent) error {
	s.velocity.WithLabelValues(ev.Vehicle).Set(ev.Velocity)
	s.soc.WithLabelValues(ev.Vehicle).Set(ev.SoC)
	return nil
}
