package srs

import (
	"math"
	"math/rand"
)

// Fuzzing desynchronizes items that would otherwise stay scheduled
// together. Each band contributes factor·(days inside the band) to the
// fuzz half-width; short intervals get proportionally more fuzz.
type fuzzEntry struct {
	start, end float64
	factor     float64
}

var fuzzRanges = []fuzzEntry{
	{2.5, 7.0, 0.15},
	{7.0, 20.0, 0.10},
	{20.0, math.Inf(1), 0.05},
}

// minFuzzInterval is the interval below which no fuzz is applied.
const minFuzzInterval = 2.5

// fuzzDelta computes the fuzz range delta for a given interval.
// delta = 1.0 + Σ(factor * max(min(interval, end) - start, 0))
func fuzzDelta(interval float64) float64 {
	delta := 1.0
	for _, r := range fuzzRanges {
		delta += r.factor * math.Max(math.Min(interval, r.end)-r.start, 0)
	}
	return delta
}

// applyFuzz randomizes the interval within its fuzz band. The result never
// leaves [minIvl, maxIvl]. Intervals under minFuzzInterval are returned
// unchanged. Determinism follows from the caller's seeded rng.
func applyFuzz(interval, minIvl, maxIvl int, rng *rand.Rand) int {
	if float64(interval) < minFuzzInterval {
		return interval
	}

	ivl := float64(interval)
	delta := fuzzDelta(ivl)

	lo := max(minIvl, max(2, int(math.Round(ivl-delta))))
	hi := min(int(math.Round(ivl+delta)), maxIvl)
	lo = min(lo, hi)

	fuzzed := lo + int(math.Round(rng.Float64()*float64(hi-lo)))
	fuzzed = min(max(fuzzed, minIvl), maxIvl)
	return fuzzed
}
