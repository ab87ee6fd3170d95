package adaptor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"certkit/bound"
	"certkit/bound/lipschitz"
	"certkit/datasets"
	"certkit/graph"
	"certkit/nn"
	"certkit/nn/layers"
	"certkit/tensor"
)

func toyInfo() datasets.Info {
	return datasets.Info{Name: "toy", InputShape: []int{2}, NumClasses: 2, Max: 1}
}

// reluModel: logits = I * relu(2I * x); around (1,0) the closed-form
// certified radius in the inf norm is 0.5.
func reluModel() *nn.Sequential {
	l1 := layers.NewLinear(2, 2)
	copy(l1.W.Data, []float64{2, 0, 0, 2})
	l2 := layers.NewLinear(2, 2)
	copy(l2.W.Data, []float64{1, 0, 0, 1})
	return nn.NewSequential(layers.NewFlatten(), l1, layers.NewReLU(), l2)
}

func tanhModel() *nn.Sequential {
	l1 := layers.NewLinear(2, 2)
	copy(l1.W.Data, []float64{2, 0, 0, 2})
	l2 := layers.NewLinear(2, 2)
	copy(l2.W.Data, []float64{1, 0, 0, 1})
	return nn.NewSequential(l1, layers.NewTanh(), l2)
}

// stubEngine records the queries it receives and returns canned results.
type stubEngine struct {
	marginQ   []bound.MarginQuery
	radiusQ   []bound.RadiusQuery
	spectralQ []bound.SpectralQuery

	margin float64
	radius float64
}

func (s *stubEngine) Margin(_ *graph.Network, q bound.MarginQuery) (float64, error) {
	s.marginQ = append(s.marginQ, q)
	return s.margin, nil
}

func (s *stubEngine) CertifiedRadius(_ *graph.Network, q bound.RadiusQuery) (float64, error) {
	s.radiusQ = append(s.radiusQ, q)
	if s.radius < q.Radius {
		return s.radius, nil
	}
	return q.Radius, nil
}

func (s *stubEngine) SpectralRadius(_ *graph.Network, q bound.SpectralQuery) (float64, error) {
	s.spectralQ = append(s.spectralQ, q)
	return s.radius, nil
}

func input10() *tensor.Tensor { return tensor.NewWithData([]float64{1, 0}) }

func TestFastLinVerify(t *testing.T) {
	a, err := NewFastLin(toyInfo(), reluModel(), lipschitz.New())
	require.NoError(t, err)

	ok, err := a.Verify(input10(), 0, bound.LInf, 0.25)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = a.Verify(input10(), 0, bound.LInf, 0.75)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFastLinCalcRadius(t *testing.T) {
	a, err := NewFastLin(toyInfo(), reluModel(), lipschitz.New())
	require.NoError(t, err)

	r, err := a.CalcRadius(input10(), 0, bound.LInf, RadiusOpts{})
	require.NoError(t, err)
	// the search grows from eps toward the true 0.5 and must not overshoot
	require.Greater(t, r, 0.35)
	require.LessOrEqual(t, r, 0.5)
}

func TestRecurJacCalcRadius(t *testing.T) {
	a, err := NewRecurJac(toyInfo(), reluModel(), lipschitz.New())
	require.NoError(t, err)

	r, err := a.CalcRadius(input10(), 0, bound.LInf, RadiusOpts{})
	require.NoError(t, err)
	// the engine reports 0.5 as its certified lower bound at the first probe
	require.InDelta(t, 0.5, r, 1e-9)
}

func TestRecurJacVerify(t *testing.T) {
	a, err := NewRecurJac(toyInfo(), reluModel(), lipschitz.New())
	require.NoError(t, err)

	ok, err := a.Verify(input10(), 0, bound.LInf, 0.25)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = a.Verify(input10(), 0, bound.LInf, 0.75)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSpectral(t *testing.T) {
	a, err := NewSpectral(toyInfo(), reluModel(), lipschitz.New())
	require.NoError(t, err)

	r, err := a.CalcRadius(input10(), 0, bound.LInf, RadiusOpts{})
	require.NoError(t, err)
	require.InDelta(t, 0.5, r, 1e-12)

	ok, err := a.Verify(input10(), 0, bound.LInf, 0.5)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = a.Verify(input10(), 0, bound.LInf, 0.51)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMisclassifiedInput(t *testing.T) {
	eng := &stubEngine{margin: 1, radius: 1}
	a, err := NewFastLip(toyInfo(), reluModel(), eng)
	require.NoError(t, err)

	// model predicts 0 around (1,0); claiming label 1 must short-circuit
	ok, err := a.Verify(input10(), 1, bound.LInf, 0.1)
	require.NoError(t, err)
	require.False(t, ok)

	r, err := a.CalcRadius(input10(), 1, bound.LInf, RadiusOpts{})
	require.NoError(t, err)
	require.Zero(t, r)

	require.Empty(t, eng.radiusQ, "no engine call for misclassified input")
	require.Empty(t, eng.marginQ)
}

func TestHyperparameterPlumbing(t *testing.T) {
	eng := &stubEngine{radius: 0.1}
	a, err := NewFastLip(toyInfo(), reluModel(), eng)
	require.NoError(t, err)

	_, err = a.Verify(input10(), 0, bound.LInf, 0.1)
	require.NoError(t, err)
	require.Len(t, eng.radiusQ, 1)

	q := eng.radiusQ[0]
	require.Equal(t, bound.JacFastLip, q.JacAlg)
	require.Equal(t, bound.LayerCROWNAdaptive, q.LayerAlg) // relu model
	require.Equal(t, 15, q.LipSteps)
	require.Equal(t, -1, q.LipsDir)
	require.Equal(t, 1, q.LipsShift)
	require.Equal(t, -1, q.TargetLabel) // untargeted
}

func TestLayerAlgForTanh(t *testing.T) {
	eng := &stubEngine{radius: 0.1}
	a, err := NewRecurJac(toyInfo(), tanhModel(), eng)
	require.NoError(t, err)

	_, err = a.Verify(input10(), 0, bound.LInf, 0.1)
	require.NoError(t, err)
	require.Len(t, eng.radiusQ, 1)
	require.Equal(t, bound.LayerCROWNGeneral, eng.radiusQ[0].LayerAlg)
	require.Equal(t, bound.JacRecur, eng.radiusQ[0].JacAlg)
}

func TestFastLinUsesMarginPath(t *testing.T) {
	eng := &stubEngine{margin: -1}
	a, err := NewFastLin(toyInfo(), reluModel(), eng)
	require.NoError(t, err)

	ok, err := a.Verify(input10(), 0, bound.LInf, 0.1)
	require.NoError(t, err)
	require.False(t, ok)
	require.Len(t, eng.marginQ, 1)
	require.Empty(t, eng.radiusQ)
	require.Equal(t, bound.LayerFastLin, eng.marginQ[0].LayerAlg)
	require.True(t, eng.marginQ[0].BoundedInput)
}

func TestFactory(t *testing.T) {
	eng := lipschitz.New()
	for _, name := range []string{"fastlip", "recurjac", "spectral", "fastlin"} {
		a, err := New(name, toyInfo(), reluModel(), eng)
		require.NoError(t, err, name)
		require.NotNil(t, a, name)
	}
	_, err := New("crown-ibp", toyInfo(), reluModel(), eng)
	require.Error(t, err)
}

func TestConversionErrorSurfaces(t *testing.T) {
	model := nn.NewSequential(layers.NewLinear(2, 2)) // no activation kind
	_, err := NewFastLip(toyInfo(), model, lipschitz.New())
	require.Error(t, err)
}
