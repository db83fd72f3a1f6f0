package builder

import (
	"github.com/joeydtaylor/tremor/pkg/internal/inspect"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/internal/utils"
)

// Map applies a function to each element in the slice.
func Map[T, U any](elems []T, f func(T) U) []U {
	return utils.Map(elems, f)
}

// Filter returns a new slice holding only the elements of elems that satisfy f().
func Filter[T any](elems []T, f func(T) bool) []T {
	return utils.Filter(elems, f)
}

// Chunk splits elems into consecutive slices of at most size elements.
func Chunk[T any](elems []T, size int) [][]T {
	return utils.Chunk(elems, size)
}

// SortedUnique returns the distinct ids in ascending order.
func SortedUnique(ids []string) []string {
	return utils.SortedUnique(ids)
}

// Fingerprint returns a stable digest of a configuration value.
func Fingerprint[T any](data T) string {
	return utils.Fingerprint(data)
}

// NewTransformerSequence groups transformation functions for use in a Wire.
func NewTransformerSequence[T any](transforms ...types.Transformer[T]) []types.Transformer[T] {
	return transforms
}

type SpectralSummary = inspect.SpectralSummary

// AnalyzeWaveform summarizes the power spectrum of a waveform against a pass band.
func AnalyzeWaveform(w Waveform, lowHz, highHz float64) (SpectralSummary, error) {
	return inspect.Spectrum(w.Samples, w.SamplingRate, lowHz, highHz)
}
