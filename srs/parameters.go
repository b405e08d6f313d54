package srs

import "fmt"

// Parameters is the 17-element weight vector driving the memory model:
//
//	w[0..3]   initial stability S₀(G) per first rating
//	w[4..7]   difficulty: D₀ base, D₀ exponent, per-rating delta, mean reversion
//	w[8..13]  recall stability: scale, saturation, retrievability sensitivity,
//	          difficulty exponent, hard penalty, easy bonus
//	w[14..16] lapse stability: scale, difficulty power, stability exponent
type Parameters [17]float64

// DefaultParameters are the shipped weight values, used until a fitted
// vector is adopted.
var DefaultParameters = Parameters{
	0.4872, 1.4003, 3.7145, 13.8206, // w[0..3]  initial stability S₀(G)
	6.4133, 0.8334, 3.0194, 0.001, // w[4..7]  difficulty params
	1.6474, 0.1367, 1.0461, 1.0, // w[8..11] recall stability params
	0.2272, 2.8755, // w[12..13] hard penalty, easy bonus
	2.1072, 0.0793, 0.3246, // w[14..16] lapse stability params
}

// LowerBounds defines the minimum allowed value for each parameter.
var LowerBounds = Parameters{
	0.001, 0.001, 0.001, 0.001,
	1.0, 0.001, 0.001, 0.001,
	0.0, 0.0, 0.001, 0.1,
	0.001, 1.0,
	0.1, 0.001, 0.001,
}

// UpperBounds defines the maximum allowed value for each parameter.
var UpperBounds = Parameters{
	100.0, 100.0, 100.0, 100.0,
	10.0, 4.0, 4.0, 0.75,
	4.5, 0.8, 3.5, 3.0,
	1.0, 6.0,
	5.0, 0.9, 1.0,
}

// Validate checks that all 17 parameters are within [LowerBounds, UpperBounds].
func (p Parameters) Validate() error {
	for i := 0; i < len(p); i++ {
		if p[i] < LowerBounds[i] || p[i] > UpperBounds[i] {
			return fmt.Errorf("%w: w[%d] = %f, bounds [%f, %f]",
				ErrInvalidParameters, i, p[i], LowerBounds[i], UpperBounds[i])
		}
	}
	return nil
}

// Clamp returns a copy of p with every weight hard-clamped to its bounds.
func (p Parameters) Clamp() Parameters {
	out := p
	for i := 0; i < len(out); i++ {
		if out[i] < LowerBounds[i] {
			out[i] = LowerBounds[i]
		}
		if out[i] > UpperBounds[i] {
			out[i] = UpperBounds[i]
		}
	}
	return out
}
