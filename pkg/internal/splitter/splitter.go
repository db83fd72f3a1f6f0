// Package splitter assigns source identities to the train, validation and test partitions.
// Membership depends only on the set of identities, the seed and the ratios: identities are
// de-duplicated and sorted before a seeded permutation, so input order never matters.
package splitter

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/internal/utils"
)

// Config holds the split ratios and seed.
type Config struct {
	TestFraction float64 // Share of all identities held out for test.
	ValFraction  float64 // Share of the remaining identities held out for validation.
	Seed         uint64
}

// DefaultConfig is an 80/20 train+val/test split with 20% of train+val used for validation.
func DefaultConfig() Config {
	return Config{TestFraction: 0.2, ValFraction: 0.2, Seed: 42}
}

// Validate checks that both fractions lie in [0, 1).
func (c Config) Validate() error {
	if c.TestFraction < 0 || c.TestFraction >= 1 || math.IsNaN(c.TestFraction) {
		return &types.ConfigurationError{Field: "split.test_fraction", Reason: fmt.Sprintf("must be in [0, 1), got %v", c.TestFraction)}
	}
	if c.ValFraction < 0 || c.ValFraction >= 1 || math.IsNaN(c.ValFraction) {
		return &types.ConfigurationError{Field: "split.val_fraction", Reason: fmt.Sprintf("must be in [0, 1), got %v", c.ValFraction)}
	}
	return nil
}

// Assignment maps each source identity to exactly one partition.
type Assignment map[string]types.PartitionName

// Split assigns ids to partitions. Test identities are carved first, then validation
// identities from the remainder; counts are rounded to the nearest integer.
func Split(ids []string, cfg Config) (Assignment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	unique := utils.SortedUnique(ids)
	rng := rand.New(rand.NewPCG(cfg.Seed, 0x5eed5eed5eed5eed))
	rng.Shuffle(len(unique), func(i, j int) { unique[i], unique[j] = unique[j], unique[i] })

	nTest := int(math.Round(float64(len(unique)) * cfg.TestFraction))
	rest := len(unique) - nTest
	nVal := int(math.Round(float64(rest) * cfg.ValFraction))

	a := make(Assignment, len(unique))
	for i, id := range unique {
		switch {
		case i < nTest:
			a[id] = types.PartitionTest
		case i < nTest+nVal:
			a[id] = types.PartitionVal
		default:
			a[id] = types.PartitionTrain
		}
	}
	return a, nil
}

// IDs returns the identities assigned to name in ascending order.
func (a Assignment) IDs(name types.PartitionName) []string {
	var out []string
	for id, p := range a {
		if p == name {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Counts returns the number of identities per partition.
func (a Assignment) Counts() map[types.PartitionName]int {
	out := make(map[types.PartitionName]int, len(types.Partitions))
	for _, p := range a {
		out[p]++
	}
	return out
}

// Partition groups examples by the partition of their Parent identity. Within a partition
// examples are ordered by ID, which keeps every artifact derived from it index-aligned and
// reproducible. Examples whose parent has no assignment are dropped and counted as
// LabelMismatch skips in the returned report.
func (a Assignment) Partition(examples []types.Example) (map[types.PartitionName]types.Partition, types.BatchReport) {
	report := types.NewBatchReport("splitter")
	out := make(map[types.PartitionName]types.Partition, len(types.Partitions))
	for _, name := range types.Partitions {
		out[name] = types.Partition{Name: name}
	}
	for _, ex := range examples {
		report.Submitted++
		parent := ex.Parent
		if parent == "" {
			parent = ex.ID
		}
		name, ok := a[parent]
		if !ok {
			report.AddSkip(types.LabelMismatch)
			continue
		}
		p := out[name]
		p.Examples = append(p.Examples, ex)
		out[name] = p
		report.Processed++
	}
	for name, p := range out {
		sort.Slice(p.Examples, func(i, j int) bool { return p.Examples[i].ID < p.Examples[j].ID })
		out[name] = p
	}
	return out, report
}

// VerifyDisjoint returns an error if any source identity occurs in more than one partition.
func VerifyDisjoint(partitions ...types.Partition) error {
	owner := make(map[string]types.PartitionName)
	for _, p := range partitions {
		for _, ex := range p.Examples {
			id := ex.Parent
			if id == "" {
				id = ex.ID
			}
			if prev, ok := owner[id]; ok && prev != p.Name {
				return fmt.Errorf("splitter: identity %q appears in both %s and %s", id, prev, p.Name)
			}
			owner[id] = p.Name
		}
	}
	return nil
}
