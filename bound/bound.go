// Package bound defines the calling conventions of the robustness
// certification engine: perturbation norms, bounding algorithm names, and
// the Engine interface the adaptors drive. The bound propagation itself
// (CROWN-style layer bounds, recursive Jacobian bounds, spectral bounds)
// belongs to the engine implementation, not to this package.
package bound

import (
	"fmt"
	"math"

	"certkit/graph"
)

// Norm selects the perturbation norm of the threat model.
type Norm int

const (
	L1 Norm = iota
	L2
	LInf
)

// ParseNorm maps the wire form ("1", "2", "inf") to a Norm.
func ParseNorm(s string) (Norm, error) {
	switch s {
	case "1":
		return L1, nil
	case "2":
		return L2, nil
	case "inf":
		return LInf, nil
	}
	return 0, fmt.Errorf("unknown norm: %q (want 1, 2 or inf)", s)
}

func (n Norm) String() string {
	switch n {
	case L1:
		return "1"
	case L2:
		return "2"
	case LInf:
		return "inf"
	}
	return fmt.Sprintf("Norm(%d)", int(n))
}

// P returns the norm order as a float (inf for LInf).
func (n Norm) P() float64 {
	switch n {
	case L1:
		return 1
	case L2:
		return 2
	default:
		return math.Inf(1)
	}
}

// Dual returns the dual norm (1/p + 1/q = 1).
func (n Norm) Dual() Norm {
	switch n {
	case L1:
		return LInf
	case LInf:
		return L1
	default:
		return L2
	}
}

// LayerAlg names the per-layer bounding algorithm.
type LayerAlg string

const (
	LayerCROWNAdaptive LayerAlg = "crown-adaptive"
	LayerCROWNGeneral  LayerAlg = "crown-general"
	LayerFastLin       LayerAlg = "fastlin"
	LayerSpectral      LayerAlg = "spectral"
)

// JacAlg names the Jacobian bounding algorithm, JacDisable selects the
// linear outer-bound path instead.
type JacAlg string

const (
	JacFastLip JacAlg = "fastlip"
	JacRecur   JacAlg = "recurjac"
	JacDisable JacAlg = "disable"
)

// MarginQuery asks for a certified lower bound on the worst-case logit gap
// at a fixed radius (the linear outer-bound path).
type MarginQuery struct {
	Input        []float64
	PredLabel    int
	TargetLabel  int // -1 for untargeted
	Norm         Norm
	Radius       float64
	LayerAlg     LayerAlg
	BoundedInput bool
}

// RadiusQuery asks for a certified radius lower bound via local Lipschitz
// integration out to Radius (the Jacobian path).
type RadiusQuery struct {
	Input       []float64
	PredLabel   int
	TargetLabel int // -1 for untargeted
	Norm        Norm
	Radius      float64
	LipSteps    int
	LayerAlg    LayerAlg
	JacAlg      JacAlg
	LipsDir     int
	LipsShift   int
}

// SpectralQuery asks for a closed-form global Lipschitz radius.
type SpectralQuery struct {
	Input        []float64
	PredLabel    int
	TargetLabel  int // -1 for untargeted
	Norm         Norm
	BoundedInput bool
}

// Engine is implemented by certification backends. A nonnegative Margin
// certifies the queried radius; CertifiedRadius certifies the queried
// radius iff the returned value equals it.
type Engine interface {
	Margin(net *graph.Network, q MarginQuery) (float64, error)
	CertifiedRadius(net *graph.Network, q RadiusQuery) (float64, error)
	SpectralRadius(net *graph.Network, q SpectralQuery) (float64, error)
}
