package nn

// ReLU is max(0, x) applied elementwise.
type ReLU struct {
	Size int
}

func (r ReLU) InSize() int      { return r.Size }
func (r ReLU) OutSize() int     { return r.Size }
func (r ReLU) Params() []*Param { return nil }

func (r ReLU) Forward(x []float64) ([]float64, Cache) {
	checkLen("relu", len(x), r.Size)
	y := make([]float64, len(x))
	for i, v := range x {
		if v > 0 {
			y[i] = v
		}
	}
	return y, y
}

func (r ReLU) Backward(cache Cache, dy []float64, _ [][]float64) []float64 {
	y := cache.([]float64)
	dx := make([]float64, len(dy))
	for i, g := range dy {
		if y[i] > 0 {
			dx[i] = g
		}
	}
	return dx
}

// Flatten marks the point where a channel-major feature map is read as a plain vector.
// The storage order already is the flattened order, so it only checks the size.
type Flatten struct {
	Size int
}

func (f Flatten) InSize() int      { return f.Size }
func (f Flatten) OutSize() int     { return f.Size }
func (f Flatten) Params() []*Param { return nil }

func (f Flatten) Forward(x []float64) ([]float64, Cache) {
	checkLen("flatten", len(x), f.Size)
	return x, nil
}

func (f Flatten) Backward(_ Cache, dy []float64, _ [][]float64) []float64 { return dy }
