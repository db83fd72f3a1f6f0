package nn

import (
	"fmt"
	"math"
)

// Loss is a scalar regression loss.
type Loss interface {
	Name() string
	Value(pred, target float64) float64
	Grad(pred, target float64) float64 // dLoss/dpred
}

// Huber is quadratic within Delta of the target and linear beyond.
type Huber struct {
	Delta float64
}

func (h Huber) Name() string { return "huber" }

func (h Huber) Value(pred, target float64) float64 {
	e := math.Abs(pred - target)
	if e <= h.Delta {
		return 0.5 * e * e
	}
	return h.Delta * (e - 0.5*h.Delta)
}

func (h Huber) Grad(pred, target float64) float64 {
	e := pred - target
	switch {
	case e > h.Delta:
		return h.Delta
	case e < -h.Delta:
		return -h.Delta
	default:
		return e
	}
}

// MSE is the squared error.
type MSE struct{}

func (MSE) Name() string                       { return "mse" }
func (MSE) Value(pred, target float64) float64 { d := pred - target; return d * d }
func (MSE) Grad(pred, target float64) float64  { return 2 * (pred - target) }

// LossByName resolves "huber" (with delta) or "mse".
func LossByName(name string, delta float64) (Loss, error) {
	switch name {
	case "", "huber":
		if !(delta > 0) {
			return nil, fmt.Errorf("nn: huber delta must be positive, got %v", delta)
		}
		return Huber{Delta: delta}, nil
	case "mse":
		return MSE{}, nil
	default:
		return nil, fmt.Errorf("nn: unknown loss %q", name)
	}
}
