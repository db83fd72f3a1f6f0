package nn

import "fmt"

// MaxPool1D takes the maximum over non-overlapping windows of Size samples per channel.
// Trailing samples that do not fill a window are dropped.
type MaxPool1D struct {
	Channels, InLength, Size int
}

// NewMaxPool1D validates the pooling shape.
func NewMaxPool1D(channels, inLength, size int) (*MaxPool1D, error) {
	if size < 1 || inLength < size {
		return nil, fmt.Errorf("nn: invalid pool: length %d, size %d", inLength, size)
	}
	return &MaxPool1D{Channels: channels, InLength: inLength, Size: size}, nil
}

// OutLength is the output length per channel.
func (p *MaxPool1D) OutLength() int { return p.InLength / p.Size }

func (p *MaxPool1D) InSize() int      { return p.Channels * p.InLength }
func (p *MaxPool1D) OutSize() int     { return p.Channels * p.OutLength() }
func (p *MaxPool1D) Params() []*Param { return nil }

func (p *MaxPool1D) Forward(x []float64) ([]float64, Cache) {
	checkLen("maxpool1d", len(x), p.InSize())
	n := p.OutLength()
	y := make([]float64, p.OutSize())
	arg := make([]int, len(y))
	for c := 0; c < p.Channels; c++ {
		for t := 0; t < n; t++ {
			base := c*p.InLength + t*p.Size
			best := base
			for j := base + 1; j < base+p.Size; j++ {
				if x[j] > x[best] {
					best = j
				}
			}
			y[c*n+t] = x[best]
			arg[c*n+t] = best
		}
	}
	return y, arg
}

func (p *MaxPool1D) Backward(cache Cache, dy []float64, _ [][]float64) []float64 {
	arg := cache.([]int)
	dx := make([]float64, p.InSize())
	for i, g := range dy {
		dx[arg[i]] += g
	}
	return dx
}
