package powertrain

import (
	"math"
	"testing"

	"github.com/evsim/powertrain/core/model"
)

func TestGearForward(t *testing.T) {
	g, err := NewGearbox("gearbox", 3, 0.9, 0.01, 25)
	if err != nil {
		t.Fatalf("NewGearbox: %v", err)
	}
	out, err := g.Forward(model.Mechanical(10, 30), 0)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if got := out.Torque(); math.Abs(got-27) > 1e-12 {
		t.Errorf("torque = %v, want 27", got)
	}
	if got := out.AngularVelocity(); math.Abs(got-10) > 1e-12 {
		t.Errorf("omega = %v, want 10", got)
	}
	// power scales by exactly the efficiency
	if got, want := out.Power(), 300*0.9; math.Abs(got-want) > 1e-9 {
		t.Errorf("power = %v, want %v", got, want)
	}
}

func TestGearBackward(t *testing.T) {
	g, err := NewGearbox("gearbox", 3, 0.9, 0.01, 25)
	if err != nil {
		t.Fatalf("NewGearbox: %v", err)
	}
	in, err := g.Backward(model.Mechanical(27, 10), 0)
	if err != nil {
		t.Fatalf("Backward: %v", err)
	}
	if got := in.Torque(); math.Abs(got-8.1) > 1e-12 {
		t.Errorf("torque = %v, want 8.1", got)
	}
	if got := in.AngularVelocity(); math.Abs(got-30) > 1e-12 {
		t.Errorf("omega = %v, want 30", got)
	}
}

func TestGearRoundTrip(t *testing.T) {
	g, err := NewGearbox("gearbox", 4, 0.92, 0, 0)
	if err != nil {
		t.Fatalf("NewGearbox: %v", err)
	}
	if _, err := g.WithReverseEfficiency(0.88); err != nil {
		t.Fatalf("WithReverseEfficiency: %v", err)
	}
	in := model.Mechanical(50, 100)
	out, err := g.Forward(in, 0)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	back, err := g.Backward(out, 0)
	if err != nil {
		t.Fatalf("Backward: %v", err)
	}
	// a forward-backward round trip returns the product of both
	// efficiencies, never more
	want := in.Power() * 0.92 * 0.88
	if got := back.Power(); math.Abs(got-want) > 1e-9 {
		t.Errorf("round trip power = %v, want %v", got, want)
	}
	if back.Power() > in.Power() {
		t.Error("round trip gained power")
	}
	if got := back.AngularVelocity(); math.Abs(got-in.AngularVelocity()) > 1e-12 {
		t.Errorf("round trip omega = %v, want %v", got, in.AngularVelocity())
	}
}

func TestGearRejectsKindMismatch(t *testing.T) {
	g, err := NewDifferential("diff", 2, 0.95, 0, 0)
	if err != nil {
		t.Fatalf("NewDifferential: %v", err)
	}
	if _, err := g.Forward(model.Electric(400, 10), 0); err == nil {
		t.Error("electric quantity accepted on a mechanical stage")
	}
}

func TestGearValidation(t *testing.T) {
	if _, err := NewGearbox("", 3, 0.9, 0, 0); err == nil {
		t.Error("empty name accepted")
	}
	if _, err := NewGearbox("g", 0, 0.9, 0, 0); err == nil {
		t.Error("zero ratio accepted")
	}
	if _, err := NewGearbox("g", 3, 1.2, 0, 0); err == nil {
		t.Error("efficiency above 1 accepted")
	}
}
