package layers

import (
	"math"

	"certkit/tensor"
)

// ReLU applies max(0, v) element-wise.
type ReLU struct{}

func NewReLU() *ReLU { return &ReLU{} }

func (r *ReLU) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	out := tensor.New(x.Shape...)
	for i, v := range x.Data {
		if v > 0 {
			out.Data[i] = v
		}
	}
	return out, nil
}

func (r *ReLU) Tag() string { return "ReLU" }

// Tanh applies tanh element-wise.
type Tanh struct{}

func NewTanh() *Tanh { return &Tanh{} }

func (t *Tanh) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	out := tensor.New(x.Shape...)
	for i, v := range x.Data {
		out.Data[i] = math.Tanh(v)
	}
	return out, nil
}

func (t *Tanh) Tag() string { return "Tanh" }

// LeakyReLU applies v for v >= 0 and Slope*v otherwise.
type LeakyReLU struct {
	Slope float64
}

func NewLeakyReLU(slope float64) *LeakyReLU { return &LeakyReLU{Slope: slope} }

func (l *LeakyReLU) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	out := tensor.New(x.Shape...)
	for i, v := range x.Data {
		if v >= 0 {
			out.Data[i] = v
		} else {
			out.Data[i] = l.Slope * v
		}
	}
	return out, nil
}

func (l *LeakyReLU) Tag() string { return "LeakyReLU" }
