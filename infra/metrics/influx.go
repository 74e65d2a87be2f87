package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/evsim/powertrain/core/metrics"
	"github.com/evsim/powertrain/infra/logger"
)

// InfluxSink writes simulation telemetry to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns
// a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes the run summary as a single point.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("simulation_run").
		AddTag("run_id", ev.RunID).
		AddTag("vehicle", ev.Vehicle).
		AddTag("state", ev.State).
		AddField("steps", ev.Steps).
		AddField("simulated_time_s", round3(ev.SimulatedTime)).
		AddField("distance_m", round3(ev.Distance)).
		AddField("final_velocity_ms", round3(ev.FinalVelocity)).
		AddField("energy_from_store_j", round3(ev.EnergyFromStore)).
		AddField("energy_to_store_j", round3(ev.EnergyToStore)).
		AddField("converter_loss_j", round3(ev.ConverterLoss)).
		AddField("friction_loss_j", round3(ev.FrictionLoss)).
		AddField("source_loss_j", round3(ev.SourceLoss)).
		AddField("violations", ev.Violations).
		AddField("errors", ev.Error).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordStep writes a sampled step point.
func (s *InfluxSink) RecordStep(ev coremetrics.StepEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("simulation_step").
		AddTag("run_id", ev.RunID).
		AddTag("vehicle", ev.Vehicle).
		AddTag("step", strconv.Itoa(ev.Step)).
		AddField("sim_time_s", round3(ev.SimTime)).
		AddField("velocity_ms", round3(ev.Velocity)).
		AddField("position_m", round3(ev.Position)).
		AddField("source_power_w", round3(ev.SourcePower)).
		AddField("soc", round3(ev.SoC)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close shuts the underlying client down.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
