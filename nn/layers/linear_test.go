package layers

import (
	"testing"

	"certkit/tensor"
)

func TestLinearForwardVector(t *testing.T) {
	l := NewLinear(2, 2)
	// W = [[1 2],[3 4]], B = [0.5, -0.5]
	copy(l.W.Data, []float64{1, 2, 3, 4})
	copy(l.B.Data, []float64{0.5, -0.5})

	out, err := l.Forward(tensor.NewWithData([]float64{1, 1}))
	if err != nil {
		t.Fatalf("forward error: %v", err)
	}
	want := []float64{3.5, 6.5}
	for i := range want {
		if out.Data[i] != want[i] {
			t.Errorf("at %d, got %f, want %f", i, out.Data[i], want[i])
		}
	}
	if len(out.Shape) != 1 || out.Shape[0] != 2 {
		t.Errorf("vector input should give vector output, got shape %v", out.Shape)
	}
}

func TestLinearForwardBatch(t *testing.T) {
	l := NewLinear(2, 1)
	copy(l.W.Data, []float64{1, -1})
	copy(l.B.Data, []float64{1})

	// two samples: (3,1) and (0,2)
	in := &tensor.Tensor{Data: []float64{3, 0, 1, 2}, Shape: []int{2, 2}}
	out, err := l.Forward(in)
	if err != nil {
		t.Fatalf("forward error: %v", err)
	}
	want := []float64{3, -1}
	for i := range want {
		if out.Data[i] != want[i] {
			t.Errorf("at %d, got %f, want %f", i, out.Data[i], want[i])
		}
	}
}

func TestLinearDims(t *testing.T) {
	l := NewLinear(3, 5)
	if l.InDim() != 3 || l.OutDim() != 5 {
		t.Fatalf("got dims (%d,%d), want (3,5)", l.InDim(), l.OutDim())
	}
}
