package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/evsim/powertrain/core/logger"
	"github.com/evsim/powertrain/core/metrics"
	"github.com/evsim/powertrain/core/powertrain"
)

// RunState is the simulator lifecycle state.
type RunState int

const (
	StateIdle RunState = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SimulatorConfig assembles a run. Vehicle, Steps and Dt are required; the
// rest defaults to a flat track, zero external load, a silent logger and no
// telemetry.
type SimulatorConfig struct {
	Name  string
	Steps int
	// Dt is the fixed step duration in s.
	Dt float64
	// Precision rounds recorded values to this many decimals. Negative
	// disables rounding.
	Precision int
	Vehicle   *powertrain.Vehicle
	Cycle     DriveCycle
	Load      LoadProfile
	Track     Track
	Log       logger.Logger
	Sink      metrics.Sink
	// StepSampleEvery emits one telemetry point every N steps. Zero
	// disables step telemetry.
	StepSampleEvery int
}

// Result is the outcome of a run. On failure the records cover every step
// before the failing one; the failing step leaves no record.
type Result struct {
	RunID string
	State RunState
	// Err is the error that failed the run, nil when completed.
	Err error
	// FailedStep is the index of the failing step, -1 when completed.
	FailedStep int
	Records    []StepRecord
	Summary    metrics.RunEvent
}

// Simulator drives a vehicle through a fixed-step run: per step it reads the
// drive cycle, advances the vehicle once and records the outcome. The first
// fatal error stops the run with every earlier record retained. A simulator
// runs exactly once; build a new one for another run.
type Simulator struct {
	id    string
	cfg   SimulatorConfig
	state RunState
}

// New validates the configuration and returns an idle simulator.
func New(cfg SimulatorConfig) (*Simulator, error) {
	if cfg.Vehicle == nil {
		return nil, fmt.Errorf("simulator: vehicle is required")
	}
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("simulator: steps must be positive, got %d", cfg.Steps)
	}
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("simulator: dt must be positive, got %g", cfg.Dt)
	}
	if cfg.Cycle == nil {
		cfg.Cycle = ConstantSignal(0)
	}
	if seq, ok := cfg.Cycle.(Signals); ok && len(seq) != cfg.Steps {
		return nil, fmt.Errorf("simulator: %d signals for %d steps", len(seq), cfg.Steps)
	}
	if cfg.Track == nil {
		cfg.Track = FlatTrack{}
	}
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	if cfg.Sink == nil {
		cfg.Sink = metrics.NopSink{}
	}
	return &Simulator{id: uuid.NewString(), cfg: cfg, state: StateIdle}, nil
}

// State reports the current lifecycle state.
func (s *Simulator) State() RunState { return s.state }

// Run executes the simulation. It is not reentrant: a second call fails.
// Cancelling the context fails the run at the next step boundary.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if s.state != StateIdle {
		return nil, fmt.Errorf("simulator: already ran (state %s)", s.state)
	}
	s.state = StateRunning
	cfg := s.cfg
	cfg.Log.Infof("run %s: %d steps of %g s for vehicle %s", s.id, cfg.Steps, cfg.Dt, cfg.Vehicle.Name())

	rec := NewRecorder(cfg.Precision)
	summary := metrics.RunEvent{
		RunID:   s.id,
		Vehicle: cfg.Vehicle.Name(),
	}
	var runErr error
	failedStep := -1

	for step := 0; step < cfg.Steps; step++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			failedStep = step
			break
		}
		simTime := float64(step) * cfg.Dt
		signal := cfg.Cycle.SignalAt(step, simTime)
		load := 0.0
		if cfg.Load != nil {
			load = cfg.Load.TorqueAt(step, simTime)
		}
		pos := cfg.Vehicle.Body().Position()
		grade := cfg.Track.GradeAt(pos)
		density := cfg.Track.AirDensityAt(pos)

		res, err := cfg.Vehicle.Step(step, signal, load, grade, density, cfg.Dt)
		if err != nil {
			cfg.Log.Errorf("run %s failed at step %d: %v", s.id, step, err)
			runErr = err
			failedStep = step
			break
		}

		summary.Steps++
		summary.EnergyFromStore += res.FromStore
		summary.EnergyToStore += res.ToStore
		summary.ConverterLoss += res.ConverterLoss
		summary.FrictionLoss += res.FrictionLoss
		summary.SourceLoss += res.SourceLoss
		if res.Resolution.Violation != nil {
			summary.Violations++
		}
		rec.Record(simTime+cfg.Dt, cfg.Vehicle, res)

		if cfg.StepSampleEvery > 0 && step%cfg.StepSampleEvery == 0 {
			ev := metrics.StepEvent{
				RunID:       s.id,
				Vehicle:     cfg.Vehicle.Name(),
				Step:        step,
				SimTime:     simTime + cfg.Dt,
				Velocity:    res.Motion.Velocity,
				Position:    res.Motion.Position,
				SourcePower: res.Resolution.SourcePower,
				SoC:         cfg.Vehicle.SoC(),
				Time:        time.Now(),
			}
			if err := cfg.Sink.RecordStep(ev); err != nil {
				cfg.Log.Warnf("run %s: step telemetry: %v", s.id, err)
			}
		}
	}

	if runErr != nil {
		s.state = StateFailed
	} else {
		s.state = StateCompleted
	}
	summary.State = s.state.String()
	summary.SimulatedTime = float64(summary.Steps) * cfg.Dt
	summary.Distance = cfg.Vehicle.Body().Position()
	summary.FinalVelocity = cfg.Vehicle.Body().Velocity()
	if runErr != nil {
		summary.Error = runErr.Error()
	}
	summary.Time = time.Now()
	if err := cfg.Sink.RecordRun(summary); err != nil {
		cfg.Log.Warnf("run %s: run telemetry: %v", s.id, err)
	}
	cfg.Log.Infof("run %s %s: %d steps, %.1f m, %.1f J drawn",
		s.id, s.state, summary.Steps, summary.Distance, summary.EnergyFromStore)

	return &Result{
		RunID:      s.id,
		State:      s.state,
		Err:        runErr,
		FailedStep: failedStep,
		Records:    rec.Records(),
		Summary:    summary,
	}, nil
}
