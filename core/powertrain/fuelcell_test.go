package powertrain

import (
	"errors"
	"math"
	"testing"

	"github.com/evsim/powertrain/core/curve"
	"github.com/evsim/powertrain/core/model"
)

func testFuelCell(t *testing.T) *FuelCell {
	t.Helper()
	fc, err := NewFuelCell(FuelCellConfig{
		Name:       "stack",
		MaxPower:   80000,
		Efficiency: curve.Constant(0.55),
		BusVoltage: 400,
	})
	if err != nil {
		t.Fatalf("NewFuelCell: %v", err)
	}
	return fc
}

func TestFuelCellSupply(t *testing.T) {
	fc := testFuelCell(t)
	in, err := fc.Supply(model.Electric(400, 50))
	if err != nil {
		t.Fatalf("Supply: %v", err)
	}
	want := 400.0 * 50 / 0.55
	if got := in.Power(); math.Abs(got-want) > 1e-6 {
		t.Errorf("fuel power = %v, want %v", got, want)
	}
	if in.Kind() != model.KindChemical {
		t.Errorf("input kind = %v", in.Kind())
	}
}

func TestFuelCellOverRating(t *testing.T) {
	fc := testFuelCell(t)
	var op *model.OperatingPointError
	if _, err := fc.Supply(model.Electric(400, 300)); !errors.As(err, &op) {
		t.Errorf("over-rating demand: %v", err)
	}
}

func TestFuelCellRejectsReverseFlow(t *testing.T) {
	fc := testFuelCell(t)
	if fc.Reversible() {
		t.Error("fuel cell reports reversible")
	}
	var rv *model.ReversibilityViolation
	if _, err := fc.Supply(model.Electric(400, -10)); !errors.As(err, &rv) {
		t.Errorf("negative demand: %v", err)
	}
	if _, err := fc.Backward(model.Electric(400, -10), 0); !errors.As(err, &rv) {
		t.Errorf("Backward: %v", err)
	}
}
