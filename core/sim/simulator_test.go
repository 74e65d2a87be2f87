package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evsim/powertrain/core/curve"
	"github.com/evsim/powertrain/core/model"
	"github.com/evsim/powertrain/core/powertrain"
)

// buildEV assembles a battery electric vehicle: battery -> motor ->
// gearbox -> differential -> wheels.
func buildEV(t *testing.T, batteryEnergy float64) *powertrain.Vehicle {
	t.Helper()
	motor, err := powertrain.NewElectricMotor(powertrain.MotorConfig{
		Name:            "motor",
		MaxTorque:       curve.Linear(0, 250, 900, 150),
		MaxPower:        80000,
		MaxSpeed:        1200,
		Efficiency:      curve.Constant(0.92),
		RegenEfficiency: curve.Constant(0.85),
		BusVoltage:      400,
		Inertia:         0.05,
	})
	require.NoError(t, err)
	gearbox, err := powertrain.NewGearbox("gearbox", 3.5, 0.95, 0.01, 30)
	require.NoError(t, err)
	diff, err := powertrain.NewDifferential("diff", 2.6, 0.96, 0.01, 15)
	require.NoError(t, err)
	brakes, err := powertrain.NewBrakes("brakes", 2500)
	require.NoError(t, err)

	axle := powertrain.Axle{NumWheels: 2, Wheel: powertrain.Wheel{Radius: 0.3, Width: 0.2, Mass: 18}}
	train, err := powertrain.NewDriveTrain(powertrain.DriveTrainConfig{
		Prime:     motor,
		Stages:    []powertrain.MechStage{gearbox, diff},
		Brakes:    brakes,
		FrontAxle: axle,
		RearAxle:  axle,
		Drive:     powertrain.FrontDrive,
	})
	require.NoError(t, err)

	battery, err := powertrain.NewBattery(powertrain.BatteryConfig{
		Name:                "battery",
		NominalEnergy:       batteryEnergy,
		Energy:              batteryEnergy,
		DischargeEfficiency: 0.95,
		ChargeEfficiency:    0.95,
		MaxPower:            120000,
		NominalVoltage:      400,
		Rechargeable:        true,
	})
	require.NoError(t, err)

	body, err := powertrain.NewBody(powertrain.BodyConfig{
		Mass:              1400,
		WheelRadius:       0.3,
		DragCoefficient:   0.28,
		FrontalArea:       2.3,
		RollingResistance: 0.012,
	})
	require.NoError(t, err)

	v, err := powertrain.NewVehicle(powertrain.VehicleConfig{
		Name:       "test-ev",
		Sources:    []powertrain.SourceAllocation{{Source: battery, Share: 1}},
		DriveTrain: train,
		Body:       body,
	})
	require.NoError(t, err)
	return v
}

func evSimulator(t *testing.T, batteryEnergy float64) *Simulator {
	t.Helper()
	s, err := New(SimulatorConfig{
		Name:      "drive-brake",
		Steps:     300,
		Dt:        0.1,
		Precision: -1,
		Vehicle:   buildEV(t, batteryEnergy),
		Cycle: Phases(
			Phase{Steps: 150, Signal: 0.6},
			Phase{Steps: 150, Signal: -0.5},
		),
	})
	require.NoError(t, err)
	return s
}

func TestRunDriveAndBrake(t *testing.T) {
	s := evSimulator(t, 5e6)
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateCompleted, res.State)
	require.Equal(t, StateCompleted, s.State())
	require.Len(t, res.Records, 300)
	require.Equal(t, -1, res.FailedStep)

	// the vehicle accelerates through the drive phase and slows during
	// braking
	require.Greater(t, res.Records[149].Velocity, 1.0)
	require.Less(t, res.Records[299].Velocity, res.Records[149].Velocity)

	// regeneration put energy back
	require.Greater(t, res.Summary.EnergyToStore, 0.0)
	require.Greater(t, res.Summary.EnergyFromStore, res.Summary.EnergyToStore)
	require.Greater(t, res.Summary.Distance, 0.0)
}

func TestRunEnergyConservation(t *testing.T) {
	s := evSimulator(t, 5e6)
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateCompleted, res.State)

	dt := 0.1
	omega := 0.0
	for i, rec := range res.Records {
		wheelWork := (rec.DriveTorque - rec.RegenTorque) * omega * dt
		got := rec.FromStore - rec.ToStore
		want := wheelWork + rec.ConverterLoss + rec.SourceLoss
		require.InDeltaf(t, want, got, 1e-6, "step %d ledger", i)
		omega = rec.WheelSpeed
	}
}

func TestRunIdempotence(t *testing.T) {
	first, err := evSimulator(t, 5e6).Run(context.Background())
	require.NoError(t, err)
	second, err := evSimulator(t, 5e6).Run(context.Background())
	require.NoError(t, err)

	// identically assembled vehicles under the same cycle produce
	// identical records
	require.Equal(t, first.Records, second.Records)
}

func TestRunMonotonicDepletion(t *testing.T) {
	s, err := New(SimulatorConfig{
		Steps:     200,
		Dt:        0.1,
		Precision: -1,
		Vehicle:   buildEV(t, 5e6),
		Cycle:     ConstantSignal(0.5), // no braking, so no regeneration
	})
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateCompleted, res.State)

	prev := math.Inf(1)
	for i, rec := range res.Records {
		require.Len(t, rec.Sources, 1)
		require.LessOrEqualf(t, rec.Sources[0].Level, prev, "step %d", i)
		prev = rec.Sources[0].Level
	}
}

func TestRunFailsOnDepletion(t *testing.T) {
	s, err := New(SimulatorConfig{
		Steps:   300,
		Dt:      0.1,
		Vehicle: buildEV(t, 20000), // 20 kJ drains within the run
		Cycle:   ConstantSignal(1),
	})
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateFailed, res.State)

	var dep *model.DepletionError
	require.True(t, errors.As(res.Err, &dep), "got %v", res.Err)
	require.GreaterOrEqual(t, res.FailedStep, 0)
	// the failing step leaves no record
	require.Len(t, res.Records, res.FailedStep)
	require.Equal(t, "failed", res.Summary.State)
	require.NotEmpty(t, res.Summary.Error)
}

func TestRunWithExternalLoad(t *testing.T) {
	signals := make(Signals, 200)
	for i := range signals {
		signals[i] = 0.5
	}
	loaded, err := New(SimulatorConfig{
		Steps:     200,
		Dt:        0.1,
		Precision: -1,
		Vehicle:   buildEV(t, 5e6),
		Cycle:     signals,
		Load:      ConstantLoad(100),
	})
	require.NoError(t, err)
	free, err := New(SimulatorConfig{
		Steps:     200,
		Dt:        0.1,
		Precision: -1,
		Vehicle:   buildEV(t, 5e6),
		Cycle:     signals,
	})
	require.NoError(t, err)

	loadedRes, err := loaded.Run(context.Background())
	require.NoError(t, err)
	freeRes, err := free.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateCompleted, loadedRes.State)
	require.Equal(t, StateCompleted, freeRes.State)

	// the external torque holds the vehicle back
	require.Less(t, loadedRes.Summary.Distance, freeRes.Summary.Distance)
	require.Less(t, loadedRes.Summary.FinalVelocity, freeRes.Summary.FinalVelocity)
}

func TestRunLoadedDepletion(t *testing.T) {
	s, err := New(SimulatorConfig{
		Steps:   300,
		Dt:      0.1,
		Vehicle: buildEV(t, 20000),
		Cycle:   ConstantSignal(1),
		Load:    ConstantLoad(100),
	})
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateFailed, res.State)

	var dep *model.DepletionError
	require.True(t, errors.As(res.Err, &dep), "got %v", res.Err)
	require.Len(t, res.Records, res.FailedStep)
}

func TestRunZeroSignal(t *testing.T) {
	s, err := New(SimulatorConfig{
		Steps:     50,
		Dt:        0.1,
		Precision: -1,
		Vehicle:   buildEV(t, 5e6),
	})
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateCompleted, res.State)
	for _, rec := range res.Records {
		require.Zero(t, rec.Velocity)
		require.Zero(t, rec.FromStore)
		require.Zero(t, rec.SourcePower)
	}
}

func TestRunNotReentrant(t *testing.T) {
	s := evSimulator(t, 5e6)
	_, err := s.Run(context.Background())
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	require.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	s := evSimulator(t, 5e6)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, StateFailed, res.State)
	require.ErrorIs(t, res.Err, context.Canceled)
	require.Empty(t, res.Records)
}

func TestNewValidation(t *testing.T) {
	v := buildEV(t, 5e6)
	if _, err := New(SimulatorConfig{Steps: 10, Dt: 0.1}); err == nil {
		t.Error("missing vehicle accepted")
	}
	if _, err := New(SimulatorConfig{Vehicle: v, Steps: 0, Dt: 0.1}); err == nil {
		t.Error("zero steps accepted")
	}
	if _, err := New(SimulatorConfig{Vehicle: v, Steps: 10, Dt: 0}); err == nil {
		t.Error("zero dt accepted")
	}
	if _, err := New(SimulatorConfig{Vehicle: v, Steps: 10, Dt: 0.1, Cycle: Signals{0.5, 0.5}}); err == nil {
		t.Error("signal sequence shorter than the run accepted")
	}
}
