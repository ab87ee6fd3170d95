package nn

import (
	"math"
	"testing"

	"certkit/nn/layers"
	"certkit/tensor"
)

func TestSequentialForward(t *testing.T) {
	l1 := layers.NewLinear(2, 2)
	copy(l1.W.Data, []float64{1, 0, 0, 1})
	l2 := layers.NewLinear(2, 1)
	copy(l2.W.Data, []float64{1, 1})

	model := NewSequential(layers.NewFlatten(), l1, layers.NewReLU(), l2)
	out, err := model.Forward(tensor.NewWithData([]float64{2, -3}))
	if err != nil {
		t.Fatalf("forward error: %v", err)
	}
	// relu([2,-3]) = [2,0], sum = 2
	if out.Data[0] != 2 {
		t.Errorf("got %f, want 2", out.Data[0])
	}
}

func TestSoftmax(t *testing.T) {
	s := Softmax(tensor.NewWithData([]float64{1, 1, 1}))
	sum := 0.0
	for _, v := range s.Data {
		if math.Abs(v-1.0/3.0) > 1e-12 {
			t.Errorf("uniform logits should give uniform softmax, got %v", s.Data)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("softmax must sum to 1, got %f", sum)
	}
}
