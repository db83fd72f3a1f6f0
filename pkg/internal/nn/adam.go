package nn

import "math"

// Adam is the Adam optimiser with bias correction.
type Adam struct {
	LR, Beta1, Beta2, Epsilon float64

	step int
	m, v [][]float64
}

// NewAdam returns Adam with the usual defaults for the moment decay rates.
func NewAdam(lr float64) *Adam {
	return &Adam{LR: lr, Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-8}
}

// Step applies one update to params using grads aligned with them.
func (a *Adam) Step(params []*Param, grads [][]float64) {
	if a.m == nil {
		a.m = NewGrads(params)
		a.v = NewGrads(params)
	}
	a.step++
	c1 := 1 - math.Pow(a.Beta1, float64(a.step))
	c2 := 1 - math.Pow(a.Beta2, float64(a.step))
	for i, p := range params {
		m, v, g := a.m[i], a.v[i], grads[i]
		for j := range p.Value {
			m[j] = a.Beta1*m[j] + (1-a.Beta1)*g[j]
			v[j] = a.Beta2*v[j] + (1-a.Beta2)*g[j]*g[j]
			p.Value[j] -= a.LR * (m[j] / c1) / (math.Sqrt(v[j]/c2) + a.Epsilon)
		}
	}
}

// Steps returns the number of updates applied.
func (a *Adam) Steps() int { return a.step }
