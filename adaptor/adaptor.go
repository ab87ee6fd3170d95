// Package adaptor presents a uniform verification interface over the
// bounding-algorithm choices of the certification engine. Each adaptor owns
// a converted layer-graph network plus the hyperparameters its algorithm
// expects, and exposes point verification at a fixed radius and maximum
// certified radius search.
package adaptor

import (
	"fmt"

	"certkit/bound"
	"certkit/datasets"
	"certkit/graph"
	"certkit/nn"
	"certkit/tensor"
	"certkit/utils"
)

// Adaptor is the uniform surface over the underlying bounding algorithms.
type Adaptor interface {
	// Verify reports whether the model is certifiably robust around input
	// at the given radius. A misclassified input is never robust.
	Verify(input *tensor.Tensor, label int, norm bound.Norm, radius float64) (bool, error)
	// CalcRadius returns the maximum certifiable perturbation radius around
	// input, 0 for misclassified inputs.
	CalcRadius(input *tensor.Tensor, label int, norm bound.Norm, opts RadiusOpts) (float64, error)
}

// RadiusOpts tunes the radius search. Zero values select the defaults
// (upper 0.5, eps 1e-4).
type RadiusOpts struct {
	// Upper is the starting radius for the Jacobian search path.
	Upper float64
	// Eps is the starting radius for the linear outer-bound search path.
	Eps float64
	// Precision is the bracket width at which the search stops early.
	Precision float64
	// Steps overrides the adaptor's search step count when positive.
	Steps int
}

func (o *RadiusOpts) applyDefaults() {
	if o.Upper == 0 {
		o.Upper = 0.5
	}
	if o.Eps == 0 {
		o.Eps = 1e-4
	}
}

// Base carries the converted network, the engine, and the hyperparameters
// shared by all bounding algorithms.
type Base struct {
	Net    *graph.Network
	Engine bound.Engine

	// hyperparameters
	LipSteps     int
	SearchSteps  int
	BoundedInput bool
	LayerAlg     bound.LayerAlg
	JacAlg       bound.JacAlg
	LipsDir      int
	LipsShift    int
}

func newBase(info datasets.Info, model *nn.Sequential, engine bound.Engine) (*Base, error) {
	if engine == nil {
		return nil, fmt.Errorf("nil bounding engine")
	}
	net, err := graph.FromSequential(info, model)
	if err != nil {
		return nil, fmt.Errorf("model conversion: %w", err)
	}
	layerAlg := bound.LayerCROWNGeneral
	if net.Activation == graph.ActReLU {
		layerAlg = bound.LayerCROWNAdaptive
	}
	return &Base{
		Net:          net,
		Engine:       engine,
		LipSteps:     15,
		SearchSteps:  15,
		BoundedInput: true,
		LayerAlg:     layerAlg,
		LipsDir:      -1,
		LipsShift:    1,
	}, nil
}

// predict gates certification: a misclassified input certifies to nothing.
func (b *Base) predict(input *tensor.Tensor, label int) (bool, error) {
	pred, err := b.Net.PredictLabel(input.Data)
	if err != nil {
		return false, err
	}
	return pred == label, nil
}

func (b *Base) jacobianPath() bool {
	return b.JacAlg != "" && b.JacAlg != bound.JacDisable
}

// Verify implements the fixed-radius certification query.
func (b *Base) Verify(input *tensor.Tensor, label int, norm bound.Norm, radius float64) (bool, error) {
	ok, err := b.predict(input, label)
	if err != nil || !ok {
		return false, err
	}

	if b.jacobianPath() {
		lb, err := b.Engine.CertifiedRadius(b.Net, b.radiusQuery(input, label, norm, radius))
		if err != nil {
			return false, err
		}
		return lb == radius, nil
	}

	m, err := b.Engine.Margin(b.Net, b.marginQuery(input, label, norm, radius))
	if err != nil {
		return false, err
	}
	return m >= 0, nil
}

// CalcRadius binary-searches the maximum certifiable radius.
func (b *Base) CalcRadius(input *tensor.Tensor, label int, norm bound.Norm, opts RadiusOpts) (float64, error) {
	opts.applyDefaults()

	ok, err := b.predict(input, label)
	if err != nil || !ok {
		return 0, err
	}

	steps := b.SearchSteps
	if opts.Steps > 0 {
		steps = opts.Steps
	}

	var condErr error
	var radius float64
	if b.jacobianPath() {
		// Using local Lipschitz bounds: the engine reports a certified
		// radius lower bound, certification holds when it reaches the probe.
		radius = utils.BinarySearch(func(current float64) (bool, float64) {
			lb, err := b.Engine.CertifiedRadius(b.Net, b.radiusQuery(input, label, norm, current))
			if err != nil {
				condErr = err
				return false, 0
			}
			return lb == current, lb
		}, opts.Upper, utils.SearchOpts{MaxSteps: steps, Precision: opts.Precision})
	} else {
		// Using linear outer bounds: certification holds while the
		// worst-case logit gap stays nonnegative.
		radius = utils.BinarySearch(func(current float64) (bool, float64) {
			m, err := b.Engine.Margin(b.Net, b.marginQuery(input, label, norm, current))
			if err != nil {
				condErr = err
				return false, 0
			}
			return m >= 0, current
		}, opts.Eps, utils.SearchOpts{MaxSteps: steps, Precision: opts.Precision})
	}
	if condErr != nil {
		return 0, condErr
	}
	return radius, nil
}

func (b *Base) marginQuery(input *tensor.Tensor, label int, norm bound.Norm, radius float64) bound.MarginQuery {
	return bound.MarginQuery{
		Input:        input.Data,
		PredLabel:    label,
		TargetLabel:  -1,
		Norm:         norm,
		Radius:       radius,
		LayerAlg:     b.LayerAlg,
		BoundedInput: b.BoundedInput,
	}
}

func (b *Base) radiusQuery(input *tensor.Tensor, label int, norm bound.Norm, radius float64) bound.RadiusQuery {
	return bound.RadiusQuery{
		Input:       input.Data,
		PredLabel:   label,
		TargetLabel: -1,
		Norm:        norm,
		Radius:      radius,
		LipSteps:    b.LipSteps,
		LayerAlg:    b.LayerAlg,
		JacAlg:      b.JacAlg,
		LipsDir:     b.LipsDir,
		LipsShift:   b.LipsShift,
	}
}
