package srs

import "math"

// Forgetting-curve constants. Fixed by the model, not fitted: with
// decay = 0.5 and factor = 19/81, R(S, S) = (100/81)^-0.5 = 0.9 exactly,
// which is the definition of stability.
const (
	decay  = 0.5
	factor = 19.0 / 81.0
)

// Domain bounds for memory state.
const (
	MinStability  = 0.01
	MinDifficulty = 1.0
	MaxDifficulty = 10.0
)

// Model evaluates the memory recurrences for a fixed weight vector.
// It is pure and holds no per-item state.
type Model struct {
	w Parameters
}

// NewModel creates a Model over the given weights. The weights are not
// validated here; see Parameters.Validate.
func NewModel(p Parameters) Model {
	return Model{w: p}
}

// Weights returns the weight vector the model was built with.
func (m Model) Weights() Parameters {
	return m.w
}

// Retrievability computes R(t, S) = (1 + factor·t/S)^(-decay), the
// predicted recall probability after elapsedDays. R(0) = 1 and R is
// strictly decreasing in t.
func (m Model) Retrievability(stability, elapsedDays float64) float64 {
	return math.Pow(1+factor*elapsedDays/stability, -decay)
}

// InitStability returns the initial stability S₀(G) = clamp_s(w[G-1])
// for an item's very first rating.
func (m Model) InitStability(r Rating) float64 {
	return clampS(m.w[r-1])
}

// InitDifficulty returns the initial difficulty for an item's very first
// rating, D₀(G) = w[4] - e^(w[5]·(G-1)) + 1, clamped to [1, 10].
func (m Model) InitDifficulty(r Rating) float64 {
	return clampD(m.initDifficultyRaw(r))
}

// initDifficultyRaw is D₀(G) without the clamp; the mean-reversion target
// in NextDifficulty uses the unclamped value.
func (m Model) initDifficultyRaw(r Rating) float64 {
	return m.w[4] - math.Exp(m.w[5]*float64(r-1)) + 1
}

// NextDifficulty computes the updated difficulty after a review.
//
//	ΔD  = -w[6]·(G - 3)
//	D'  = D + (10 - D)·ΔD/9          (linear damping)
//	D'' = w[7]·D₀(Easy) + (1-w[7])·D'  (mean reversion)
//
// The result is clamped to [1, 10].
func (m Model) NextDifficulty(difficulty float64, r Rating) float64 {
	deltaD := -m.w[6] * (float64(r) - 3)
	dPrime := difficulty + (10-difficulty)*deltaD/9
	dDoublePrime := m.w[7]*m.initDifficultyRaw(Easy) + (1-m.w[7])*dPrime
	return clampD(dDoublePrime)
}

// NextStability dispatches to NextRecallStability or NextForgetStability.
func (m Model) NextStability(difficulty, stability, retrievability float64, r Rating) float64 {
	if r == Again {
		return m.NextForgetStability(difficulty, stability, retrievability)
	}
	return m.NextRecallStability(difficulty, stability, retrievability, r)
}

// NextRecallStability computes stability after a successful recall
// (Hard/Good/Easy):
//
//	S' = S·(1 + e^w[8]·(11-D)^w[11]·S^(-w[9])·(e^((1-R)·w[10]) - 1)·P_hard·B_easy)
//
// with P_hard = w[12] for Hard and B_easy = w[13] for Easy. Lower
// retrievability at review time yields a strictly larger gain (the spacing
// effect); higher difficulty yields a smaller one.
func (m Model) NextRecallStability(difficulty, stability, retrievability float64, r Rating) float64 {
	hardPenalty := 1.0
	if r == Hard {
		hardPenalty = m.w[12]
	}
	easyBonus := 1.0
	if r == Easy {
		easyBonus = m.w[13]
	}
	return stability * (1 + math.Exp(m.w[8])*
		math.Pow(11-difficulty, m.w[11])*
		math.Pow(stability, -m.w[9])*
		(math.Exp((1-retrievability)*m.w[10])-1)*
		hardPenalty*easyBonus)
}

// NextForgetStability computes stability after a lapse (Again):
//
//	S' = w[14]·D^(-w[15])·((S+1)^w[16] - 1)·e^(1-R)
//
// bounded above by the pre-lapse stability and below by MinStability, so a
// lapse never increases stability and never collapses it to zero.
func (m Model) NextForgetStability(difficulty, stability, retrievability float64) float64 {
	s := m.w[14] *
		math.Pow(difficulty, -m.w[15]) *
		(math.Pow(stability+1, m.w[16]) - 1) *
		math.Exp(1-retrievability)
	return math.Min(stability, clampS(s))
}

// NextInterval computes the next review interval in whole days by inverting
// the forgetting curve at the desired retention:
//
//	t = (S/factor)·(r^(-1/decay) - 1)
//
// The result is rounded and clamped to [minIvl, maxIvl].
func (m Model) NextInterval(stability, desiredRetention float64, minIvl, maxIvl int) int {
	ivl := stability / factor * (math.Pow(desiredRetention, -1.0/decay) - 1)
	rounded := int(math.Round(ivl))
	if rounded < minIvl {
		rounded = minIvl
	}
	if rounded > maxIvl {
		rounded = maxIvl
	}
	return rounded
}

// clampS clamps stability to MinStability.
func clampS(s float64) float64 {
	return math.Max(s, MinStability)
}

// clampD clamps difficulty to [MinDifficulty, MaxDifficulty].
func clampD(d float64) float64 {
	return math.Min(math.Max(d, MinDifficulty), MaxDifficulty)
}
