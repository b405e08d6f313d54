package optimizer

import (
	"math"

	"github.com/revisehq/revise/srs"
)

const bceClamp = 1e-7

// bceLoss computes the binary cross-entropy loss: -[y*ln(p) + (1-y)*ln(1-p)].
// rPred is clamped to [bceClamp, 1-bceClamp] to avoid log(0).
func bceLoss(rPred, y float64) float64 {
	p := math.Max(bceClamp, math.Min(rPred, 1-bceClamp))
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}

// replayItemLoss replays one item's memory trajectory from its first review
// under the candidate weights and accumulates BCE loss over cross-day
// reviews. It returns the summed loss and the number of contributing
// reviews.
func replayItemLoss(m srs.Model, reviews []review) (float64, int) {
	var (
		loss       float64
		count      int
		stability  float64
		difficulty float64
		seen       bool
	)

	for _, rev := range reviews {
		if !seen {
			// First review initializes the memory state; no prediction exists.
			stability = m.InitStability(rev.rating)
			difficulty = m.InitDifficulty(rev.rating)
			seen = true
			continue
		}

		r := m.Retrievability(stability, rev.elapsedDays)
		if rev.elapsedDays >= 1.0 {
			loss += bceLoss(r, rev.label)
			count++
		}

		stability = m.NextStability(difficulty, stability, r, rev.rating)
		difficulty = m.NextDifficulty(difficulty, rev.rating)
	}

	return loss, count
}

// computeBatchLoss computes the average BCE loss over all cross-day reviews
// in data, replaying every item's trajectory under params.
// Returns 0 if there are no cross-day reviews.
func computeBatchLoss(params srs.Parameters, data map[string][]review) float64 {
	m := srs.NewModel(params)

	var totalLoss float64
	var count int

	for _, reviews := range data {
		l, n := replayItemLoss(m, reviews)
		totalLoss += l
		count += n
	}

	if count == 0 {
		return 0
	}
	return totalLoss / float64(count)
}

const gradEps = 1e-5

// numericalGradient computes the gradient of the batch loss w.r.t. each
// parameter using central differences:
// dL/dw[i] ≈ (L(w[i]+ε) - L(w[i]-ε)) / (2ε).
func numericalGradient(params srs.Parameters, data map[string][]review) srs.Parameters {
	var grad srs.Parameters
	for i := 0; i < len(params); i++ {
		pPlus := params
		pPlus[i] += gradEps
		pMinus := params
		pMinus[i] -= gradEps

		lPlus := computeBatchLoss(pPlus, data)
		lMinus := computeBatchLoss(pMinus, data)

		grad[i] = (lPlus - lMinus) / (2 * gradEps)
	}
	return grad
}
