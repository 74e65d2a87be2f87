// Package curve provides the one-dimensional characteristic curves used by
// converters and energy sources: maximum torque or power versus shaft speed,
// efficiency versus operating point and open-circuit voltage versus state of
// charge. Tabulated curves are interpolated with gonum.
package curve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// Curve maps one scalar operating variable to another.
type Curve interface {
	At(x float64) float64
}

// Func adapts a plain function to the Curve interface.
type Func func(x float64) float64

func (f Func) At(x float64) float64 { return f(x) }

// Constant returns a curve with the same value everywhere.
func Constant(y float64) Curve {
	return Func(func(float64) float64 { return y })
}

// Linear returns a curve interpolating linearly between (x0,y0) and (x1,y1),
// clamped outside the interval.
func Linear(x0, y0, x1, y1 float64) Curve {
	return Func(func(x float64) float64 {
		if x <= x0 {
			return y0
		}
		if x >= x1 {
			return y1
		}
		return y0 + (y1-y0)*(x-x0)/(x1-x0)
	})
}

type table struct {
	pl   interp.PiecewiseLinear
	xmin float64
	xmax float64
}

// Table returns a piecewise-linear curve through the given sample points,
// clamped to the first and last sample outside the tabulated range. The xs
// must be strictly increasing and at least two points long.
func Table(xs, ys []float64) (Curve, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("curve: %d xs vs %d ys", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("curve: need at least two points, got %d", len(xs))
	}
	var t table
	if err := t.pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("curve: %w", err)
	}
	t.xmin = xs[0]
	t.xmax = xs[len(xs)-1]
	return &t, nil
}

func (t *table) At(x float64) float64 {
	if x < t.xmin {
		x = t.xmin
	}
	if x > t.xmax {
		x = t.xmax
	}
	return t.pl.Predict(x)
}

// Peaked returns a curve rising from (minX,minY) to a maximum at
// (peakX,peakY) and falling to (maxX,maxY), shaped as two Gaussian lobes.
// It is zero outside [minX,maxX]. This is the classic power-versus-speed
// shape of a combustion engine.
func Peaked(minX, minY, peakX, peakY, maxX, maxY float64) Curve {
	alpha1 := 1 / (2 * (peakX - minX) * (peakX - minX))
	k2 := (minY - peakY) / (math.Exp(-0.5) - 1)
	k1 := peakY - k2
	alpha2 := 1 / (2 * (peakX - maxX) * (peakX - maxX))
	k4 := (maxY - peakY) / (math.Exp(-0.5) - 1)
	k3 := peakY - k4
	return Func(func(x float64) float64 {
		if x < minX || x > maxX {
			return 0
		}
		alpha, a, b := alpha1, k1, k2
		if x > peakX {
			alpha, a, b = alpha2, k3, k4
		}
		return a + b*math.Exp(-alpha*(x-peakX)*(x-peakX))
	})
}
