package cpc

import "golang.org/x/exp/constraints"

// maxOf and minOf are small generic helpers used by the buffer-sizing
// formulas, mirroring how the HLL and KLL packages lean on
// golang.org/x/exp/constraints for generic numeric helpers rather than
// hand-duplicating int/int64/float64 variants.
func maxOf[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func minOf[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}
