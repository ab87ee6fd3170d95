package utils

import "math"

// SearchOpts controls BinarySearch. Zero values select the defaults used
// by the certification adaptors (15 steps, 1e-5 bracket precision).
type SearchOpts struct {
	MaxSteps  int
	Precision float64
}

// BinarySearch finds the largest certified value of a monotone scalar
// predicate. cond reports whether its argument is certified, along with the
// certified value to record (usually the argument itself, or a lower bound
// reported by the engine). The search starts at start: successes grow the
// bracket (doubling until a failure bounds it from above), failures bisect
// downward. Returns 0 when nothing certifies.
func BinarySearch(cond func(float64) (bool, float64), start float64, opts SearchOpts) float64 {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 15
	}
	if opts.Precision <= 0 {
		opts.Precision = 1e-5
	}

	lo, hi := 0.0, math.Inf(1)
	best := 0.0
	cur := start
	for step := 0; step < opts.MaxSteps; step++ {
		ok, val := cond(cur)
		if ok {
			if val > best {
				best = val
			}
			lo = cur
			if math.IsInf(hi, 1) {
				cur *= 2
			} else {
				cur = (lo + hi) / 2
			}
		} else {
			hi = cur
			cur = (lo + hi) / 2
		}
		if hi-lo < opts.Precision {
			break
		}
	}
	return best
}
