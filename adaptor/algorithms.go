package adaptor

import (
	"fmt"

	"certkit/bound"
	"certkit/datasets"
	"certkit/nn"
	"certkit/tensor"
)

// FastLip certifies via the FastLip Jacobian bounding algorithm.
type FastLip struct{ *Base }

func NewFastLip(info datasets.Info, model *nn.Sequential, engine bound.Engine) (*FastLip, error) {
	b, err := newBase(info, model, engine)
	if err != nil {
		return nil, err
	}
	b.JacAlg = bound.JacFastLip
	return &FastLip{Base: b}, nil
}

// RecurJac certifies via the recursive Jacobian bounding algorithm.
type RecurJac struct{ *Base }

func NewRecurJac(info datasets.Info, model *nn.Sequential, engine bound.Engine) (*RecurJac, error) {
	b, err := newBase(info, model, engine)
	if err != nil {
		return nil, err
	}
	b.JacAlg = bound.JacRecur
	return &RecurJac{Base: b}, nil
}

// FastLin certifies via fastlin layer bounds with Jacobian bounding disabled.
type FastLin struct{ *Base }

func NewFastLin(info datasets.Info, model *nn.Sequential, engine bound.Engine) (*FastLin, error) {
	b, err := newBase(info, model, engine)
	if err != nil {
		return nil, err
	}
	b.JacAlg = bound.JacDisable
	b.LayerAlg = bound.LayerFastLin
	return &FastLin{Base: b}, nil
}

// Spectral certifies via the closed-form spectral bound; no search is
// involved, the engine reports the radius directly.
type Spectral struct{ *Base }

func NewSpectral(info datasets.Info, model *nn.Sequential, engine bound.Engine) (*Spectral, error) {
	b, err := newBase(info, model, engine)
	if err != nil {
		return nil, err
	}
	b.LayerAlg = bound.LayerSpectral
	return &Spectral{Base: b}, nil
}

// CalcRadius queries the closed-form bound directly.
func (s *Spectral) CalcRadius(input *tensor.Tensor, label int, norm bound.Norm, opts RadiusOpts) (float64, error) {
	ok, err := s.predict(input, label)
	if err != nil || !ok {
		return 0, err
	}
	return s.Engine.SpectralRadius(s.Net, bound.SpectralQuery{
		Input:        input.Data,
		PredLabel:    label,
		TargetLabel:  -1,
		Norm:         norm,
		BoundedInput: s.BoundedInput,
	})
}

// Verify holds iff the queried radius is within the closed-form radius.
func (s *Spectral) Verify(input *tensor.Tensor, label int, norm bound.Norm, radius float64) (bool, error) {
	r, err := s.CalcRadius(input, label, norm, RadiusOpts{})
	if err != nil {
		return false, err
	}
	return radius <= r, nil
}

// New builds the named adaptor; names follow utils.AdaptorNames.
func New(name string, info datasets.Info, model *nn.Sequential, engine bound.Engine) (Adaptor, error) {
	switch name {
	case "fastlip":
		return NewFastLip(info, model, engine)
	case "recurjac":
		return NewRecurJac(info, model, engine)
	case "fastlin":
		return NewFastLin(info, model, engine)
	case "spectral":
		return NewSpectral(info, model, engine)
	}
	return nil, fmt.Errorf("unknown adaptor: %q", name)
}
