package model

import (
	"fmt"
	"time"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// Checkpoint snapshots the parameters and scaler.
func (m *Hybrid) Checkpoint(runID string, epoch int, valLoss float64) types.Checkpoint {
	params := make([][]float64, len(m.params))
	for i, p := range m.params {
		params[i] = append([]float64(nil), p.Value...)
	}
	return types.Checkpoint{
		Version:        types.CheckpointVersion,
		RunID:          runID,
		CreatedAt:      time.Now().UTC(),
		Epoch:          epoch,
		ValidationLoss: valLoss,
		Spec:           m.spec,
		Params:         params,
		ScalerMean:     append([]float64(nil), m.scaler.Mean...),
		ScalerStd:      append([]float64(nil), m.scaler.Std...),
	}
}

// Restore overwrites the parameters and scaler with those of c, which must have been taken
// from a model with the same architecture.
func (m *Hybrid) Restore(c types.Checkpoint) error {
	if c.Version != types.CheckpointVersion {
		return fmt.Errorf("model: unsupported checkpoint version %d", c.Version)
	}
	if len(c.Params) != len(m.params) {
		return fmt.Errorf("model: checkpoint has %d tensors, model has %d", len(c.Params), len(m.params))
	}
	for i, p := range m.params {
		if len(c.Params[i]) != len(p.Value) {
			return fmt.Errorf("model: %s: checkpoint has %d values, model has %d", p.Name, len(c.Params[i]), len(p.Value))
		}
	}
	scaler := Scaler{Mean: append([]float64(nil), c.ScalerMean...), Std: append([]float64(nil), c.ScalerStd...)}
	if len(c.ScalerMean) == 0 {
		scaler = IdentityScaler(m.spec.FeatureDim)
	}
	if err := m.SetScaler(scaler); err != nil {
		return err
	}
	for i, p := range m.params {
		copy(p.Value, c.Params[i])
	}
	return nil
}

// FromCheckpoint rebuilds a model from a checkpoint alone.
func FromCheckpoint(c types.Checkpoint) (*Hybrid, error) {
	m, err := New(c.Spec)
	if err != nil {
		return nil, fmt.Errorf("model: checkpoint spec: %w", err)
	}
	if err := m.Restore(c); err != nil {
		return nil, err
	}
	return m, nil
}
