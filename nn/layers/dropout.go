package layers

import (
	"certkit/tensor"
)

// Dropout is a no-op at evaluation time; the rate is kept only so that
// imported models round-trip through serialization.
type Dropout struct {
	Rate float64
}

func NewDropout(rate float64) *Dropout { return &Dropout{Rate: rate} }

func (d *Dropout) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	return x, nil
}

func (d *Dropout) Tag() string { return "Dropout" }
