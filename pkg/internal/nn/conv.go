package nn

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Conv1D is a valid-padding, stride-1 one dimensional convolution.
type Conv1D struct {
	InChannels, OutChannels, Kernel, InLength int

	Weight *Param // [out][in][kernel]
	Bias   *Param // [out]
}

// NewConv1D returns a zero-initialised convolution over inputs of inLength samples.
func NewConv1D(name string, in, out, kernel, inLength int) (*Conv1D, error) {
	if in < 1 || out < 1 || kernel < 1 || inLength < kernel {
		return nil, fmt.Errorf("nn: %s: invalid conv shape in=%d out=%d kernel=%d length=%d", name, in, out, kernel, inLength)
	}
	return &Conv1D{
		InChannels: in, OutChannels: out, Kernel: kernel, InLength: inLength,
		Weight: &Param{Name: name + ".weight", Value: make([]float64, out*in*kernel)},
		Bias:   &Param{Name: name + ".bias", Value: make([]float64, out)},
	}, nil
}

// OutLength is the output length per channel.
func (c *Conv1D) OutLength() int { return c.InLength - c.Kernel + 1 }

func (c *Conv1D) InSize() int      { return c.InChannels * c.InLength }
func (c *Conv1D) OutSize() int     { return c.OutChannels * c.OutLength() }
func (c *Conv1D) Params() []*Param { return []*Param{c.Weight, c.Bias} }

// Init draws He-uniform weights; biases stay zero.
func (c *Conv1D) Init(rng *rand.Rand) {
	HeUniform(rng, c.Weight.Value, c.InChannels*c.Kernel)
	clear(c.Bias.Value)
}

func (c *Conv1D) w(o, i int) []float64 {
	off := (o*c.InChannels + i) * c.Kernel
	return c.Weight.Value[off : off+c.Kernel]
}

func (c *Conv1D) Forward(x []float64) ([]float64, Cache) {
	checkLen("conv1d", len(x), c.InSize())
	n := c.OutLength()
	y := make([]float64, c.OutSize())
	for o := 0; o < c.OutChannels; o++ {
		yo := y[o*n : (o+1)*n]
		for t := range yo {
			yo[t] = c.Bias.Value[o]
		}
		for i := 0; i < c.InChannels; i++ {
			xi := x[i*c.InLength : (i+1)*c.InLength]
			for k, wk := range c.w(o, i) {
				floats.AddScaled(yo, wk, xi[k:k+n])
			}
		}
	}
	return y, x
}

func (c *Conv1D) Backward(cache Cache, dy []float64, grads [][]float64) []float64 {
	x := cache.([]float64)
	n := c.OutLength()
	dW, dB := grads[0], grads[1]
	dx := make([]float64, c.InSize())
	for o := 0; o < c.OutChannels; o++ {
		dyo := dy[o*n : (o+1)*n]
		dB[o] += floats.Sum(dyo)
		for i := 0; i < c.InChannels; i++ {
			xi := x[i*c.InLength : (i+1)*c.InLength]
			dxi := dx[i*c.InLength : (i+1)*c.InLength]
			off := (o*c.InChannels + i) * c.Kernel
			for k, wk := range c.w(o, i) {
				dW[off+k] += floats.Dot(dyo, xi[k:k+n])
				floats.AddScaled(dxi[k:k+n], wk, dyo)
			}
		}
	}
	return dx
}
