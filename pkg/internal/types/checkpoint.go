package types

import "time"

// CheckpointVersion is the current checkpoint format version.
const CheckpointVersion = 1

// ModelSpec describes the architecture of the hybrid regressor. It is stored alongside the
// parameters so that a checkpoint can be rebuilt without the original configuration.
type ModelSpec struct {
	InputLength    int    // Conditioned waveform length L.
	FeatureDim     int    // Length of the feature vector.
	ConvChannels   []int  // Output channels of each temporal convolution stage.
	ConvKernels    []int  // Kernel width of each temporal convolution stage.
	PoolSize       int    // Max-pool width after each convolution.
	TemporalEmbed  int    // Size of the temporal branch embedding.
	SpectralHidden int    // Hidden width of the spectral branch.
	SpectralEmbed  int    // Size of the spectral branch embedding.
	FusionHidden   int    // Hidden width of the fusion head.
	InitSeed       uint64 // Seed used for parameter initialisation.
	Wavelet        string // Wavelet the features were computed with.
	WaveletLevels  int    // Decomposition levels the features were computed with.
}

// Checkpoint is a versioned snapshot of trained parameters.
type Checkpoint struct {
	Version        int
	RunID          string
	CreatedAt      time.Time
	Epoch          int
	ValidationLoss float64
	Spec           ModelSpec
	Params         [][]float64 // One flat slice per parameter tensor, in model order.
	ScalerMean     []float64
	ScalerStd      []float64
}
