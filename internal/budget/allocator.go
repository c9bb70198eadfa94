// Package budget holds the allocation, spending analytics and monthly
// rollover logic. Everything here operates on snapshots passed in by the
// caller and returns new values; only the Rollover service touches storage.
package budget

import (
	"math"

	"github.com/theirongolddev/mobius/internal/model"
)

// AllocationTolerance is how far the category total may drift from 100
// and still count as a complete allocation.
const AllocationTolerance = 1.0

// Rebalance sets categories[index] to newPercentage and, when that pushes
// the total above 100, shrinks every other category in proportion to its
// share of the remaining total. Reductions are rounded to whole points and
// no category drops below 0.
//
// If the other categories are all at 0 nothing can be taken from them and
// the total is left above 100; callers surface that through
// IsAllocationValid. The same holds when fractional shares round to a
// zero reduction. newPercentage is expected to be clamped already.
//
// The input slice is never modified.
func Rebalance(categories []model.Category, index int, newPercentage float64) []model.Category {
	out := make([]model.Category, len(categories))
	copy(out, categories)
	if index < 0 || index >= len(out) {
		return out
	}

	out[index].Percentage = newPercentage

	total := TotalPercentage(out)
	if total <= 100 {
		return out
	}
	excess := total - 100
	sumOthers := total - newPercentage
	if sumOthers <= 0 {
		return out
	}

	for i := range out {
		if i == index {
			continue
		}
		reduction := math.Round(out[i].Percentage / sumOthers * excess)
		out[i].Percentage = math.Max(0, out[i].Percentage-reduction)
	}
	return out
}

// TotalPercentage sums the category shares.
func TotalPercentage(categories []model.Category) float64 {
	var total float64
	for _, c := range categories {
		total += c.Percentage
	}
	return total
}

// IsAllocationValid reports whether the shares add up to 100 within tolerance.
func IsAllocationValid(categories []model.Category) bool {
	return len(categories) > 0 && math.Abs(TotalPercentage(categories)-100) <= AllocationTolerance
}

// MissingPercentage is how much is left to allocate. Negative when over.
func MissingPercentage(categories []model.Category) float64 {
	return 100 - TotalPercentage(categories)
}

// ClampPercentage bounds a user-entered share to [0, 100].
func ClampPercentage(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}
