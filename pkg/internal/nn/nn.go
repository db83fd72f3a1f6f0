// Package nn implements the small set of neural network building blocks used by the hybrid
// regressor. Tensors are flat []float64 in channel-major order: a signal with C channels of
// length T is stored as C consecutive runs of T samples.
//
// Layers hold parameters but no activations. Forward returns a cache that Backward consumes,
// and Backward accumulates into caller-owned gradient buffers, so one layer value can serve any
// number of goroutines computing gradients concurrently.
package nn

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Param is a named parameter tensor.
type Param struct {
	Name  string
	Value []float64
}

// Cache is the per-call state a layer needs for its backward pass.
type Cache any

// Layer is a differentiable function with parameters.
type Layer interface {
	InSize() int
	OutSize() int
	Params() []*Param
	Forward(x []float64) ([]float64, Cache)
	// Backward returns dL/dx given dL/dy and accumulates parameter gradients into grads,
	// which is aligned with Params().
	Backward(c Cache, dy []float64, grads [][]float64) []float64
}

// Initializer is implemented by layers with trainable weights.
type Initializer interface {
	Init(rng *rand.Rand)
}

// HeUniform fills w with samples from U(-sqrt(6/fanIn), sqrt(6/fanIn)).
func HeUniform(rng *rand.Rand, w []float64, fanIn int) {
	limit := math.Sqrt(6 / float64(fanIn))
	for i := range w {
		w[i] = (2*rng.Float64() - 1) * limit
	}
}

// NewRand returns the PCG source used for initialisation.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0x9e3779b97f4a7c15))
}

// Sequential chains layers.
type Sequential struct {
	Layers []Layer
}

// NewSequential checks that adjacent layer sizes agree.
func NewSequential(layers ...Layer) (*Sequential, error) {
	for i := 1; i < len(layers); i++ {
		if layers[i-1].OutSize() != layers[i].InSize() {
			return nil, fmt.Errorf("nn: layer %d outputs %d values but layer %d expects %d",
				i-1, layers[i-1].OutSize(), i, layers[i].InSize())
		}
	}
	return &Sequential{Layers: layers}, nil
}

func (s *Sequential) InSize() int  { return s.Layers[0].InSize() }
func (s *Sequential) OutSize() int { return s.Layers[len(s.Layers)-1].OutSize() }

// Params returns every parameter in layer order.
func (s *Sequential) Params() []*Param {
	var out []*Param
	for _, l := range s.Layers {
		out = append(out, l.Params()...)
	}
	return out
}

// Init initialises every layer that has weights, in layer order.
func (s *Sequential) Init(rng *rand.Rand) {
	for _, l := range s.Layers {
		if in, ok := l.(Initializer); ok {
			in.Init(rng)
		}
	}
}

// Forward runs the chain.
func (s *Sequential) Forward(x []float64) ([]float64, Cache) {
	caches := make([]Cache, len(s.Layers))
	for i, l := range s.Layers {
		x, caches[i] = l.Forward(x)
	}
	return x, caches
}

// Backward runs the chain in reverse.
func (s *Sequential) Backward(c Cache, dy []float64, grads [][]float64) []float64 {
	caches := c.([]Cache)
	offsets := make([]int, len(s.Layers)+1)
	for i, l := range s.Layers {
		offsets[i+1] = offsets[i] + len(l.Params())
	}
	for i := len(s.Layers) - 1; i >= 0; i-- {
		dy = s.Layers[i].Backward(caches[i], dy, grads[offsets[i]:offsets[i+1]])
	}
	return dy
}

// NewGrads allocates zeroed gradient buffers aligned with params.
func NewGrads(params []*Param) [][]float64 {
	g := make([][]float64, len(params))
	for i, p := range params {
		g[i] = make([]float64, len(p.Value))
	}
	return g
}

// ZeroGrads clears g.
func ZeroGrads(g [][]float64) {
	for _, b := range g {
		clear(b)
	}
}

// CountParams returns the number of scalar parameters.
func CountParams(params []*Param) int {
	n := 0
	for _, p := range params {
		n += len(p.Value)
	}
	return n
}

func checkLen(name string, got, want int) {
	if got != want {
		panic(fmt.Sprintf("nn: %s: input has %d values, want %d", name, got, want))
	}
}
