// Package hash implements the deterministic bucketing function used for
// experiment assignment.
package hash

import (
	"github.com/zeebo/xxh3"

	"github.com/arloliu/sortition/types"
)

// Bucket maps a (subjectKey, experimentKey) pair to a uniform value in [0,1).
//
// The experiment key is hashed first and used as the seed for the subject
// key hash. Folding the keys through the seed avoids building an
// intermediate concatenated string (zero-allocation) while still making
// the result depend on both keys: the same subject lands at independent
// positions across different experiments, which prevents correlated
// bucketing artifacts between experiments.
//
// The function is pure and deterministic. XXH3 is stable across processes
// and platforms, so the same inputs produce the same bucket value across
// restarts.
//
// Parameters:
//   - subjectKey: Stable subject identifier (user, session, device)
//   - experimentKey: Experiment identifier
//
// Returns:
//   - float64: Uniform value in [0,1)
func Bucket(subjectKey, experimentKey string) float64 {
	seed := xxh3.HashString(experimentKey)
	h := xxh3.HashStringSeed(subjectKey, seed)

	// Keep the top 53 bits so the quotient is exactly representable as a
	// float64; dividing the full 64-bit value would round and could
	// produce 1.0.
	return float64(h>>11) / float64(1<<53)
}

// ChooseVariant maps a bucket value to a variant index.
//
// Partitions [0,1) into variantCount equal-width intervals in variant-list
// order and returns the interval containing v. Equal-width partitioning
// assumes equal-weight variants.
//
// Parameters:
//   - v: Bucket value in [0,1)
//   - variantCount: Number of variants, must be >= 1
//
// Returns:
//   - int: Variant index in [0, variantCount)
//   - error: types.ErrNoVariants if variantCount <= 0; a validated
//     experiment can never trigger this
func ChooseVariant(v float64, variantCount int) (int, error) {
	if variantCount <= 0 {
		return 0, types.ErrNoVariants
	}

	idx := int(v * float64(variantCount))

	// Clamp defends the boundaries against float rounding when v is
	// rescaled by the caller (v/sampling can land exactly on 1.0).
	if idx >= variantCount {
		idx = variantCount - 1
	}
	if idx < 0 {
		idx = 0
	}

	return idx, nil
}
