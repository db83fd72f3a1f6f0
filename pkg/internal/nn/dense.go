package nn

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Dense is a fully connected layer y = Wx + b.
type Dense struct {
	In, Out int

	Weight *Param // [out][in]
	Bias   *Param // [out]
}

// NewDense returns a zero-initialised dense layer.
func NewDense(name string, in, out int) (*Dense, error) {
	if in < 1 || out < 1 {
		return nil, fmt.Errorf("nn: %s: invalid dense shape %dx%d", name, in, out)
	}
	return &Dense{
		In: in, Out: out,
		Weight: &Param{Name: name + ".weight", Value: make([]float64, in*out)},
		Bias:   &Param{Name: name + ".bias", Value: make([]float64, out)},
	}, nil
}

func (d *Dense) InSize() int      { return d.In }
func (d *Dense) OutSize() int     { return d.Out }
func (d *Dense) Params() []*Param { return []*Param{d.Weight, d.Bias} }

// Init draws He-uniform weights; biases stay zero.
func (d *Dense) Init(rng *rand.Rand) {
	HeUniform(rng, d.Weight.Value, d.In)
	clear(d.Bias.Value)
}

func (d *Dense) row(o int) []float64 { return d.Weight.Value[o*d.In : (o+1)*d.In] }

func (d *Dense) Forward(x []float64) ([]float64, Cache) {
	checkLen("dense", len(x), d.In)
	y := make([]float64, d.Out)
	for o := range y {
		y[o] = floats.Dot(d.row(o), x) + d.Bias.Value[o]
	}
	return y, x
}

func (d *Dense) Backward(cache Cache, dy []float64, grads [][]float64) []float64 {
	x := cache.([]float64)
	dW, dB := grads[0], grads[1]
	dx := make([]float64, d.In)
	for o, g := range dy {
		if g == 0 {
			continue
		}
		floats.AddScaled(dW[o*d.In:(o+1)*d.In], g, x)
		dB[o] += g
		floats.AddScaled(dx, g, d.row(o))
	}
	return dx
}
