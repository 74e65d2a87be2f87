package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/evsim/powertrain/core/metrics"
)

func TestPromSinkRecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("NewPromSinkWithRegistry: %v", err)
	}
	ev := coremetrics.RunEvent{
		Vehicle:         "ev",
		State:           "completed",
		EnergyFromStore: 1200,
		EnergyToStore:   300,
		Distance:        450,
		Violations:      2,
	}
	if err := sink.RecordRun(ev); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := sink.RecordStep(coremetrics.StepEvent{Vehicle: "ev", Velocity: 12.5, SoC: 0.8}); err != nil {
		t.Fatalf("RecordStep: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	got := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				got[mf.GetName()] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				got[mf.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	checks := map[string]float64{
		"simulation_runs_total":                     1,
		"simulation_energy_from_store_joules_total": 1200,
		"simulation_energy_to_store_joules_total":   300,
		"simulation_distance_meters_total":          450,
		"simulation_reversibility_violations_total": 2,
		"simulation_velocity_meters_per_second":     12.5,
		"simulation_state_of_charge":                0.8,
	}
	for name, want := range checks {
		if got[name] != want {
			t.Errorf("%s = %v, want %v", name, got[name], want)
		}
	}
}

func TestPromSinkDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("second registration: %v", err)
	}
}
