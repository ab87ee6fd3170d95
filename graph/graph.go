// Package graph holds the dense layer-graph form of a model: the calling
// convention expected by certification engines. A module-graph model
// (nn.Sequential) is lowered into an ordered list of weight matrices and
// bias vectors with a single activation kind between consecutive layers.
package graph

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"certkit/datasets"
	"certkit/nn"
	"certkit/nn/layers"
	"certkit/tensor"
)

// Activation identifies the nonlinearity used between layers.
type Activation string

const (
	ActReLU      Activation = "relu"
	ActTanh      Activation = "tanh"
	ActLeakyReLU Activation = "leaky"
)

// Lipschitz returns the global Lipschitz constant of the activation.
func (a Activation) Lipschitz(param float64) float64 {
	if a == ActLeakyReLU && param > 1 {
		return param
	}
	return 1
}

// Network is the converted model: Weights[i] is (out_i, in_i), Biases[i]
// has out_i entries, and Activation is applied after every layer except
// the last.
type Network struct {
	Weights []*mat.Dense
	Biases  []*mat.VecDense

	Activation      Activation
	ActivationParam float64 // leaky slope; 0 otherwise

	Dataset datasets.Info
}

// Depth returns the number of weight layers.
func (n *Network) Depth() int { return len(n.Weights) }

// InputDim returns the flattened input dimension.
func (n *Network) InputDim() int {
	_, c := n.Weights[0].Dims()
	return c
}

// OutputDim returns the number of classes.
func (n *Network) OutputDim() int {
	r, _ := n.Weights[len(n.Weights)-1].Dims()
	return r
}

// FromSequential lowers a sequential module graph into a Network.
// Supported modules: Flatten and Dropout (structural no-ops), Linear, and
// exactly one of the ReLU / Tanh / LeakyReLU activation kinds; models
// mixing activation kinds are rejected.
func FromSequential(info datasets.Info, model *nn.Sequential) (*Network, error) {
	net := &Network{Dataset: info}
	kinds := map[Activation]bool{}

	for i, layer := range model.Layers {
		switch l := layer.(type) {
		case *layers.Flatten:
			// shape bookkeeping only; the layer graph is already flat
		case *layers.Dropout:
			// evaluation-only model, dropout is identity
		case *layers.Linear:
			w := mat.NewDense(l.OutDim(), l.InDim(), append([]float64(nil), l.W.Data...))
			b := mat.NewVecDense(l.OutDim(), append([]float64(nil), l.B.Data...))
			net.Weights = append(net.Weights, w)
			net.Biases = append(net.Biases, b)
		case *layers.ReLU:
			kinds[ActReLU] = true
			net.Activation = ActReLU
		case *layers.Tanh:
			kinds[ActTanh] = true
			net.Activation = ActTanh
		case *layers.LeakyReLU:
			kinds[ActLeakyReLU] = true
			net.Activation = ActLeakyReLU
			net.ActivationParam = l.Slope
		default:
			return nil, fmt.Errorf("layer %d: unsupported module type %T", i, layer)
		}
	}

	if len(net.Weights) == 0 {
		return nil, fmt.Errorf("model has no linear layers")
	}
	// only one type of activation is permitted
	if len(kinds) != 1 {
		return nil, fmt.Errorf("model must use exactly one activation kind, found %d", len(kinds))
	}
	if got, want := net.InputDim(), info.InputDim(); got != want {
		return nil, fmt.Errorf("first layer input dim %d does not match dataset %s dim %d", got, info.Name, want)
	}
	for i := 1; i < len(net.Weights); i++ {
		rPrev, _ := net.Weights[i-1].Dims()
		_, cCur := net.Weights[i].Dims()
		if rPrev != cCur {
			return nil, fmt.Errorf("layer %d input dim %d does not match layer %d output dim %d", i, cCur, i-1, rPrev)
		}
	}
	return net, nil
}

func (n *Network) applyActivation(v *mat.VecDense) {
	for i := 0; i < v.Len(); i++ {
		x := v.AtVec(i)
		switch n.Activation {
		case ActReLU:
			if x < 0 {
				v.SetVec(i, 0)
			}
		case ActTanh:
			v.SetVec(i, math.Tanh(x))
		case ActLeakyReLU:
			if x < 0 {
				v.SetVec(i, n.ActivationParam*x)
			}
		}
	}
}

// Predict runs a forward pass and returns the logits.
func (n *Network) Predict(input []float64) ([]float64, error) {
	if len(input) != n.InputDim() {
		return nil, fmt.Errorf("input dim %d, want %d", len(input), n.InputDim())
	}
	x := mat.NewVecDense(len(input), append([]float64(nil), input...))
	for i, w := range n.Weights {
		r, _ := w.Dims()
		y := mat.NewVecDense(r, nil)
		y.MulVec(w, x)
		y.AddVec(y, n.Biases[i])
		if i < len(n.Weights)-1 {
			n.applyActivation(y)
		}
		x = y
	}
	out := make([]float64, x.Len())
	copy(out, x.RawVector().Data)
	return out, nil
}

// PredictLabel returns the argmax class of the logits.
func (n *Network) PredictLabel(input []float64) (int, error) {
	logits, err := n.Predict(input)
	if err != nil {
		return 0, err
	}
	return tensor.NewWithData(logits).Argmax(), nil
}
