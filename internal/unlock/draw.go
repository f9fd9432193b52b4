package unlock

import "math"

// clampProb maps p into [0,1]. NaN and -Inf become 0, +Inf becomes 1.
func clampProb(p float64) float64 {
	if math.IsNaN(p) || p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	return p
}

// draw is one Bernoulli trial.
// p <= 0 => no hit. p >= 1 => must hit. otherwise, rng.Float64() < p
func draw(p float64, rng RandomSource) bool {
	p = clampProb(p)
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return rng.Float64() < p
}
