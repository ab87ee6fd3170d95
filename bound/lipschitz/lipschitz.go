// Package lipschitz is a reference bound.Engine built on the classical
// global Lipschitz certificate: the logit-gap function for each attack
// target is Lipschitz with constant at most the product of the induced
// operator norms of the hidden weight matrices times the dual norm of the
// output-row difference. It exists so the adaptor pipeline is executable
// and testable end to end; it is far looser than CROWN or RecurJac style
// engines, which plug in behind the same interface.
package lipschitz

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"certkit/bound"
	"certkit/graph"
)

// Engine implements bound.Engine with closed-form global bounds. The
// algorithm selection knobs in the queries (layer algorithm, Jacobian
// algorithm, integration steps) do not change its behavior.
type Engine struct{}

func New() *Engine { return &Engine{} }

var _ bound.Engine = (*Engine)(nil)

// opNorm returns the operator norm of w induced by the given vector norm.
func opNorm(w *mat.Dense, n bound.Norm) float64 {
	r, c := w.Dims()
	switch n {
	case bound.L1:
		// max absolute column sum
		best := 0.0
		for j := 0; j < c; j++ {
			s := 0.0
			for i := 0; i < r; i++ {
				s += math.Abs(w.At(i, j))
			}
			if s > best {
				best = s
			}
		}
		return best
	case bound.LInf:
		// max absolute row sum
		best := 0.0
		for i := 0; i < r; i++ {
			s := 0.0
			for j := 0; j < c; j++ {
				s += math.Abs(w.At(i, j))
			}
			if s > best {
				best = s
			}
		}
		return best
	default:
		var svd mat.SVD
		if !svd.Factorize(w, mat.SVDNone) {
			// Factorization failure only happens for pathological inputs;
			// fall back to the Frobenius norm, a valid upper bound.
			return mat.Norm(w, 2)
		}
		return svd.Values(nil)[0]
	}
}

// vecNorm returns the q-norm of v for q in {1, 2, inf}.
func vecNorm(v []float64, n bound.Norm) float64 {
	switch n {
	case bound.L1:
		s := 0.0
		for _, x := range v {
			s += math.Abs(x)
		}
		return s
	case bound.L2:
		s := 0.0
		for _, x := range v {
			s += x * x
		}
		return math.Sqrt(s)
	default:
		best := 0.0
		for _, x := range v {
			if a := math.Abs(x); a > best {
				best = a
			}
		}
		return best
	}
}

// hiddenLipschitz bounds the Lipschitz constant of the network up to (and
// including) the last hidden activation, with respect to the input norm.
func hiddenLipschitz(net *graph.Network, n bound.Norm) float64 {
	lip := 1.0
	actLip := net.Activation.Lipschitz(net.ActivationParam)
	for i := 0; i < net.Depth()-1; i++ {
		lip *= opNorm(net.Weights[i], n) * actLip
	}
	return lip
}

// gap holds, for one attack target, the logit gap at the input and an
// upper bound on the Lipschitz constant of that gap.
type gap struct {
	target int
	value  float64
	lip    float64
}

func (e *Engine) gaps(net *graph.Network, input []float64, predLabel, targetLabel int, n bound.Norm) ([]gap, error) {
	logits, err := net.Predict(input)
	if err != nil {
		return nil, err
	}
	if predLabel < 0 || predLabel >= len(logits) {
		return nil, fmt.Errorf("predicted label %d out of range [0,%d)", predLabel, len(logits))
	}

	last := net.Weights[net.Depth()-1]
	_, cols := last.Dims()
	front := hiddenLipschitz(net, n)
	dual := n.Dual()

	var out []gap
	for j := range logits {
		if j == predLabel {
			continue
		}
		if targetLabel >= 0 && j != targetLabel {
			continue
		}
		diff := make([]float64, cols)
		for c := 0; c < cols; c++ {
			diff[c] = last.At(predLabel, c) - last.At(j, c)
		}
		out = append(out, gap{
			target: j,
			value:  logits[predLabel] - logits[j],
			lip:    vecNorm(diff, dual) * front,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no attack targets for label %d", predLabel)
	}
	return out, nil
}

// Margin returns min_j (gap_j - K_j * radius): nonnegative iff every
// target's logit gap survives the worst perturbation of the given radius.
func (e *Engine) Margin(net *graph.Network, q bound.MarginQuery) (float64, error) {
	gaps, err := e.gaps(net, q.Input, q.PredLabel, q.TargetLabel, q.Norm)
	if err != nil {
		return 0, err
	}
	margin := math.Inf(1)
	for _, g := range gaps {
		if m := g.value - g.lip*q.Radius; m < margin {
			margin = m
		}
	}
	return margin, nil
}

func (e *Engine) radius(net *graph.Network, input []float64, predLabel, targetLabel int, n bound.Norm) (float64, error) {
	gaps, err := e.gaps(net, input, predLabel, targetLabel, n)
	if err != nil {
		return 0, err
	}
	r := math.Inf(1)
	for _, g := range gaps {
		if g.value <= 0 {
			return 0, nil
		}
		if g.lip == 0 {
			// the gap is constant in the input, this target can never flip
			continue
		}
		if rv := g.value / g.lip; rv < r {
			r = rv
		}
	}
	if math.IsInf(r, 1) {
		// no target depends on the input at all
		return math.MaxFloat64, nil
	}
	return r, nil
}

// CertifiedRadius returns min(closed-form radius, q.Radius), so the result
// equals q.Radius exactly when the queried radius is certified.
func (e *Engine) CertifiedRadius(net *graph.Network, q bound.RadiusQuery) (float64, error) {
	r, err := e.radius(net, q.Input, q.PredLabel, q.TargetLabel, q.Norm)
	if err != nil {
		return 0, err
	}
	if r > q.Radius {
		return q.Radius, nil
	}
	return r, nil
}

// SpectralRadius returns the uncapped closed-form radius.
func (e *Engine) SpectralRadius(net *graph.Network, q bound.SpectralQuery) (float64, error) {
	return e.radius(net, q.Input, q.PredLabel, q.TargetLabel, q.Norm)
}
