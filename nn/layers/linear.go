package layers

import (
	"fmt"

	"certkit/tensor"
)

// Linear is a fully-connected layer: y = Wx + B.
type Linear struct {
	W, B *tensor.Tensor
}

// NewLinear allocates a Linear with zeroed weights, W is (outDim, inDim).
func NewLinear(inDim, outDim int) *Linear {
	return &Linear{W: tensor.New(outDim, inDim), B: tensor.New(outDim)}
}

// InDim returns the input dimension of the layer.
func (l *Linear) InDim() int { return l.W.Shape[1] }

// OutDim returns the output dimension of the layer.
func (l *Linear) OutDim() int { return l.W.Shape[0] }

// Forward computes y = Wx + B for a vector or (inDim, batch) matrix input.
func (l *Linear) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if len(x.Shape) == 1 {
		// x is a vector, treat as (inDim, 1)
		x = &tensor.Tensor{Data: x.Data, Shape: []int{x.Shape[0], 1}}
	}
	if len(l.W.Shape) != 2 || len(x.Shape) != 2 {
		return nil, fmt.Errorf("expected 2D weights and 2D input, got %v and %v", l.W.Shape, x.Shape)
	}
	wx, err := tensor.MatMul(l.W, x)
	if err != nil {
		return nil, err
	}
	// wx is (outDim, batch); broadcast bias across the batch
	outDim, batch := wx.Shape[0], wx.Shape[1]
	for i := 0; i < outDim; i++ {
		for j := 0; j < batch; j++ {
			wx.Data[i*batch+j] += l.B.Data[i]
		}
	}
	if batch == 1 {
		return tensor.NewWithData(wx.Data), nil
	}
	return wx, nil
}

func (l *Linear) Tag() string {
	return fmt.Sprintf("Linear_%d_%d", l.InDim(), l.OutDim())
}
