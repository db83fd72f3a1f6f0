package trainer

import (
	"fmt"
	"runtime"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// Config holds the optimisation settings.
type Config struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	Loss         string // "huber" or "mse"
	HuberDelta   float64
	Patience     int // Consecutive non-improving epochs before stopping; 0 disables.
	Shuffle      bool
	Seed         uint64
	Workers      int
}

// DefaultConfig returns the reference training settings.
func DefaultConfig() Config {
	return Config{
		Epochs:       50,
		BatchSize:    32,
		LearningRate: 1e-3,
		Loss:         "huber",
		HuberDelta:   1.0,
		Patience:     5,
		Shuffle:      true,
		Seed:         42,
		Workers:      runtime.NumCPU(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	bad := func(field, reason string) error {
		return &types.ConfigurationError{Field: "train." + field, Reason: reason}
	}
	switch {
	case c.Epochs < 1:
		return bad("epochs", fmt.Sprintf("must be at least 1, got %d", c.Epochs))
	case c.BatchSize < 1:
		return bad("batch_size", fmt.Sprintf("must be at least 1, got %d", c.BatchSize))
	case !(c.LearningRate > 0):
		return bad("learning_rate", "must be positive")
	case c.Patience < 0:
		return bad("patience", "must not be negative")
	case c.Workers < 1:
		return bad("workers", "must be at least 1")
	case c.Loss != "huber" && c.Loss != "mse":
		return bad("loss", fmt.Sprintf("unknown loss %q", c.Loss))
	case c.Loss == "huber" && !(c.HuberDelta > 0):
		return bad("huber_delta", "must be positive")
	}
	return nil
}
