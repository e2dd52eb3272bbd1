package cpc

import "math"

// powerSeriesNextDouble returns the next point in a logarithmically spaced
// series with ppo (points-per-octave) steps per factor of base, strictly
// greater than curPoint. Used by the benchmarking harness to sweep n across
// many octaves without visiting every integer.
func powerSeriesNextDouble(ppo int, curPoint float64, roundToNearestInteger bool, base float64) float64 {
	gi := int(math.Round(math.Log(curPoint) / math.Log(base) * float64(ppo)))
	var gPt float64
	for {
		gi++
		gPt = math.Pow(base, float64(gi)/float64(ppo))
		if gPt > curPoint {
			break
		}
	}
	if roundToNearestInteger {
		return math.Round(gPt)
	}
	return gPt
}

// inverseGoldenU64 is an odd 64-bit increment derived from the golden ratio
// (2^64 / phi, rounded to the nearest odd integer). Repeatedly adding it to a
// running counter produces a low-discrepancy sequence of pseudo-random-looking
// uint64 values cheaply, which the benchmarking harness uses to avoid a full
// hash-based RNG for every synthetic update.
const inverseGoldenU64 uint64 = 0x9E3779B97F4A7C15
