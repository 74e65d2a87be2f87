package powertrain

import (
	"errors"
	"math"
	"testing"

	"github.com/evsim/powertrain/core/curve"
	"github.com/evsim/powertrain/core/model"
)

func testBattery(t *testing.T, rechargeable bool) *Battery {
	t.Helper()
	b, err := NewBattery(BatteryConfig{
		Name:                "battery",
		NominalEnergy:       1000,
		Energy:              1000,
		DischargeEfficiency: 0.9,
		ChargeEfficiency:    0.8,
		MaxPower:            1000,
		NominalVoltage:      400,
		Rechargeable:        rechargeable,
	})
	if err != nil {
		t.Fatalf("NewBattery: %v", err)
	}
	return b
}

func TestBatteryDrain(t *testing.T) {
	b := testBattery(t, true)
	fromStore, err := b.Drain(90, 1)
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	// the store covers the demand plus the discharge loss
	if math.Abs(fromStore-100) > 1e-9 {
		t.Errorf("fromStore = %v, want 100", fromStore)
	}
	if got := b.Level(); math.Abs(got-900) > 1e-9 {
		t.Errorf("level = %v, want 900", got)
	}
}

func TestBatteryDepletion(t *testing.T) {
	b := testBattery(t, true)
	if _, err := b.Drain(90, 1); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	_, err := b.Drain(900, 1)
	var dep *model.DepletionError
	if !errors.As(err, &dep) {
		t.Fatalf("want DepletionError, got %v", err)
	}
	if dep.Source != "battery" {
		t.Errorf("source = %q", dep.Source)
	}
	// a failed drain leaves the store untouched
	if got := b.Level(); math.Abs(got-900) > 1e-9 {
		t.Errorf("level after failed drain = %v, want 900", got)
	}
}

func TestBatteryDrainOverRating(t *testing.T) {
	b := testBattery(t, true)
	var op *model.OperatingPointError
	if _, err := b.Drain(2000, 1); !errors.As(err, &op) {
		t.Errorf("over-rating drain: %v", err)
	}
}

func TestBatteryAbsorb(t *testing.T) {
	b := testBattery(t, true)
	if _, err := b.Drain(90, 1); err != nil { // level 900
		t.Fatalf("Drain: %v", err)
	}
	accepted, toStore, err := b.Absorb(50, 1)
	if err != nil {
		t.Fatalf("Absorb: %v", err)
	}
	if accepted != 50 || math.Abs(toStore-40) > 1e-9 {
		t.Errorf("accepted %v, toStore %v", accepted, toStore)
	}
	if got := b.Level(); math.Abs(got-940) > 1e-9 {
		t.Errorf("level = %v, want 940", got)
	}

	// headroom is 60 J: a 100 W second only partially fits
	accepted, toStore, err = b.Absorb(100, 1)
	if err != nil {
		t.Fatalf("Absorb: %v", err)
	}
	if math.Abs(toStore-60) > 1e-9 {
		t.Errorf("toStore = %v, want 60", toStore)
	}
	if math.Abs(accepted-75) > 1e-9 {
		t.Errorf("accepted = %v, want 75", accepted)
	}
	if got := b.Level(); math.Abs(got-b.Capacity()) > 1e-9 {
		t.Errorf("level = %v, want full", got)
	}
}

func TestBatteryNotRechargeable(t *testing.T) {
	b := testBattery(t, false)
	var rv *model.ReversibilityViolation
	if _, _, err := b.Absorb(50, 1); !errors.As(err, &rv) {
		t.Errorf("Absorb: %v", err)
	}
}

func TestBatterySOH(t *testing.T) {
	b, err := NewBattery(BatteryConfig{
		Name:           "aged",
		NominalEnergy:  1000,
		Energy:         1000,
		SOH:            0.8,
		MaxPower:       1000,
		NominalVoltage: 400,
	})
	if err != nil {
		t.Fatalf("NewBattery: %v", err)
	}
	if got := b.Capacity(); math.Abs(got-800) > 1e-9 {
		t.Errorf("capacity = %v, want 800", got)
	}
	// initial energy clamps to the degraded capacity
	if got := b.Level(); math.Abs(got-800) > 1e-9 {
		t.Errorf("level = %v, want 800", got)
	}
	if got := b.SoC(); math.Abs(got-1) > 1e-9 {
		t.Errorf("soc = %v, want 1", got)
	}
}

func TestBatteryOCV(t *testing.T) {
	b, err := NewBattery(BatteryConfig{
		Name:           "battery",
		NominalEnergy:  1000,
		Energy:         500,
		MaxPower:       1000,
		NominalVoltage: 400,
		OCV:            curve.Linear(0, 330, 1, 410),
	})
	if err != nil {
		t.Fatalf("NewBattery: %v", err)
	}
	if got := b.Voltage(); math.Abs(got-370) > 1e-9 {
		t.Errorf("voltage at half charge = %v, want 370", got)
	}
}

func TestBatteryMonotonicDepletion(t *testing.T) {
	b := testBattery(t, true)
	prev := b.Level()
	for i := 0; i < 8; i++ {
		if _, err := b.Drain(100, 1); err != nil {
			t.Fatalf("Drain %d: %v", i, err)
		}
		if b.Level() > prev {
			t.Fatalf("level rose from %v to %v", prev, b.Level())
		}
		prev = b.Level()
	}
}
