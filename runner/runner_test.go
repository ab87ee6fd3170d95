package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"certkit/adaptor"
	"certkit/bound"
	"certkit/bound/lipschitz"
	"certkit/datasets"
	"certkit/nn"
	"certkit/nn/layers"
)

func toyInfo() datasets.Info {
	return datasets.Info{Name: "toy", InputShape: []int{2}, NumClasses: 2, Max: 1}
}

func toyAdaptor(t *testing.T) adaptor.Adaptor {
	t.Helper()
	l1 := layers.NewLinear(2, 2)
	copy(l1.W.Data, []float64{2, 0, 0, 2})
	l2 := layers.NewLinear(2, 2)
	copy(l2.W.Data, []float64{1, 0, 0, 1})
	model := nn.NewSequential(l1, layers.NewReLU(), l2)

	a, err := adaptor.NewSpectral(toyInfo(), model, lipschitz.New())
	require.NoError(t, err)
	return a
}

func testSamples() []datasets.Sample {
	return []datasets.Sample{
		{Input: []float64{1, 0}, Label: 0},
		{Input: []float64{0, 1}, Label: 1},
		{Input: []float64{1, 0}, Label: 1}, // misclassified
	}
}

func TestVerifyBatch(t *testing.T) {
	r := New(toyAdaptor(t), bound.LInf, 2, nil)
	report, err := r.VerifyBatch(context.Background(), toyInfo(), testSamples(), 0.25)
	require.NoError(t, err)

	require.NotEmpty(t, report.ID)
	require.Equal(t, 3, report.Samples)
	require.Equal(t, 2, report.Verified)
	require.True(t, report.Results[0].Verified)
	require.True(t, report.Results[1].Verified)
	require.False(t, report.Results[2].Verified)
}

func TestRadiusBatch(t *testing.T) {
	r := New(toyAdaptor(t), bound.LInf, 2, nil)
	report, err := r.RadiusBatch(context.Background(), toyInfo(), testSamples())
	require.NoError(t, err)

	require.Equal(t, 3, report.Samples)
	require.Equal(t, 2, report.Verified)
	require.InDelta(t, 0.5, report.Results[0].Radius, 1e-9)
	require.Zero(t, report.Results[2].Radius)
	require.Zero(t, report.MinRadius)
	require.InDelta(t, 1.0/3.0, report.MeanRadius, 1e-9)
}

func TestBatchCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(toyAdaptor(t), bound.LInf, 1, nil)
	_, err := r.VerifyBatch(ctx, toyInfo(), testSamples(), 0.25)
	require.Error(t, err)
}

func TestEmptyBatch(t *testing.T) {
	r := New(toyAdaptor(t), bound.LInf, 1, nil)
	report, err := r.RadiusBatch(context.Background(), toyInfo(), nil)
	require.NoError(t, err)
	require.Zero(t, report.Samples)
	require.Zero(t, report.MeanRadius)
}
