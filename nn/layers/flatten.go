package layers

import (
	"certkit/tensor"
)

// Flatten reshapes any tensor to 1-D.
type Flatten struct{}

func NewFlatten() *Flatten { return &Flatten{} }

func (f *Flatten) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	y := tensor.New(len(x.Data))
	copy(y.Data, x.Data)
	return y, nil
}

func (f *Flatten) Tag() string { return "Flatten" }
