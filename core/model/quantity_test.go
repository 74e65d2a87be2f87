package model

import (
	"errors"
	"math"
	"testing"
)

func TestQuantityPower(t *testing.T) {
	cases := []struct {
		name string
		q    Quantity
		want float64
	}{
		{"mechanical", Mechanical(50, 20), 1000},
		{"electric", Electric(400, 2.5), 1000},
		{"chemical", Chemical(1000), 1000},
		{"negative current charges", Electric(400, -2.5), -1000},
		{"zero speed", Mechanical(50, 0), 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.q.Power(); math.Abs(got-c.want) > 1e-12 {
				t.Errorf("power = %v, want %v", got, c.want)
			}
		})
	}
}

func TestQuantityAccessors(t *testing.T) {
	m := Mechanical(12, 34)
	if m.Kind() != KindMechanical || m.Torque() != 12 || m.AngularVelocity() != 34 {
		t.Errorf("mechanical accessors: %+v", m)
	}
	e := Electric(400, 5)
	if e.Kind() != KindElectric || e.Voltage() != 400 || e.Current() != 5 {
		t.Errorf("electric accessors: %+v", e)
	}
	// non-mechanical quantities carry no shaft values
	if e.Torque() != 0 || e.AngularVelocity() != 0 {
		t.Errorf("electric quantity leaked shaft values: %+v", e)
	}
}

func TestKindString(t *testing.T) {
	if KindMechanical.String() != "mechanical" || KindElectric.String() != "electric" || KindChemical.String() != "chemical" {
		t.Error("kind strings")
	}
}

func TestPortCompatibility(t *testing.T) {
	mechOut := Port{Direction: PortOut, Kind: KindMechanical}
	mechIn := Port{Direction: PortIn, Kind: KindMechanical}
	mechBi := Port{Direction: PortBidirectional, Kind: KindMechanical}
	elecIn := Port{Direction: PortIn, Kind: KindElectric}

	if !mechOut.CompatibleWith(mechIn) {
		t.Error("out should mate with in")
	}
	if mechOut.CompatibleWith(mechOut) {
		t.Error("two outputs should not mate")
	}
	if !mechBi.CompatibleWith(mechOut) || !mechBi.CompatibleWith(mechIn) {
		t.Error("bidirectional should mate with either direction")
	}
	if mechOut.CompatibleWith(elecIn) {
		t.Error("kinds must match")
	}
}

func TestErrorTypes(t *testing.T) {
	var err error = &DepletionError{Source: "batt", Requested: 10, Available: 5}
	var dep *DepletionError
	if !errors.As(err, &dep) || dep.Source != "batt" {
		t.Fatalf("depletion error: %v", err)
	}

	err = &ReversibilityViolation{Component: "engine", Power: 100}
	var rv *ReversibilityViolation
	if !errors.As(err, &rv) || rv.Power != 100 {
		t.Fatalf("reversibility violation: %v", err)
	}

	err = &OperatingPointError{Component: "motor", AngularVelocity: -1, Reason: "negative speed"}
	var op *OperatingPointError
	if !errors.As(err, &op) {
		t.Fatalf("operating point error: %v", err)
	}

	err = &ConnectivityError{Detail: "dangling link"}
	var conn *ConnectivityError
	if !errors.As(err, &conn) {
		t.Fatalf("connectivity error: %v", err)
	}
}
