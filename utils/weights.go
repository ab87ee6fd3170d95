package utils

import (
	"encoding/json"
	"fmt"
	"os"

	"certkit/nn"
	"certkit/nn/layers"
	"certkit/tensor"
)

// WeightData represents serializable weight data for a layer
type WeightData struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// LayerSpec is one serialized layer. Type is one of linear, flatten, relu,
// tanh, leaky, dropout; Param holds the leaky slope or dropout rate.
type LayerSpec struct {
	Type   string      `json:"type"`
	Param  float64     `json:"param,omitempty"`
	Weight *WeightData `json:"weight,omitempty"`
	Bias   *WeightData `json:"bias,omitempty"`
}

// ModelWeights represents an ordered serialized model.
type ModelWeights struct {
	Version string      `json:"version"`
	Dataset string      `json:"dataset,omitempty"`
	Layers  []LayerSpec `json:"layers"`
}

// SaveWeights saves model weights to a JSON file
func SaveWeights(filepath string, weights *ModelWeights) error {
	data, err := json.MarshalIndent(weights, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}
	return os.WriteFile(filepath, data, 0644)
}

// LoadWeights loads model weights from a JSON file
func LoadWeights(filepath string) (*ModelWeights, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}
	var weights ModelWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
	}
	return &weights, nil
}

// TensorToWeightData converts a tensor to serializable weight data
func TensorToWeightData(name string, t *tensor.Tensor) *WeightData {
	return &WeightData{
		Name:  name,
		Shape: t.Shape,
		Data:  append([]float64{}, t.Data...), // copy
	}
}

// WeightDataToTensor converts weight data back to a tensor
func WeightDataToTensor(wd *WeightData) *tensor.Tensor {
	t := tensor.New(wd.Shape...)
	copy(t.Data, wd.Data)
	return t
}

// BuildSequential reconstructs the module graph from serialized weights.
func BuildSequential(weights *ModelWeights) (*nn.Sequential, error) {
	model := &nn.Sequential{}
	for i, spec := range weights.Layers {
		switch spec.Type {
		case "linear":
			if spec.Weight == nil || len(spec.Weight.Shape) != 2 {
				return nil, fmt.Errorf("layer %d: linear layer needs a 2-D weight", i)
			}
			lin := layers.NewLinear(spec.Weight.Shape[1], spec.Weight.Shape[0])
			copy(lin.W.Data, spec.Weight.Data)
			if spec.Bias != nil {
				copy(lin.B.Data, spec.Bias.Data)
			}
			model.Layers = append(model.Layers, lin)
		case "flatten":
			model.Layers = append(model.Layers, layers.NewFlatten())
		case "relu":
			model.Layers = append(model.Layers, layers.NewReLU())
		case "tanh":
			model.Layers = append(model.Layers, layers.NewTanh())
		case "leaky":
			model.Layers = append(model.Layers, layers.NewLeakyReLU(spec.Param))
		case "dropout":
			model.Layers = append(model.Layers, layers.NewDropout(spec.Param))
		default:
			return nil, fmt.Errorf("layer %d: unknown layer type %q", i, spec.Type)
		}
	}
	if len(model.Layers) == 0 {
		return nil, fmt.Errorf("weights file has no layers")
	}
	return model, nil
}

// SequentialToWeights serializes a module graph.
func SequentialToWeights(dataset string, model *nn.Sequential) (*ModelWeights, error) {
	weights := &ModelWeights{Version: "1.0", Dataset: dataset}
	for i, layer := range model.Layers {
		switch l := layer.(type) {
		case *layers.Linear:
			weights.Layers = append(weights.Layers, LayerSpec{
				Type:   "linear",
				Weight: TensorToWeightData(fmt.Sprintf("layer%d_weight", i), l.W),
				Bias:   TensorToWeightData(fmt.Sprintf("layer%d_bias", i), l.B),
			})
		case *layers.Flatten:
			weights.Layers = append(weights.Layers, LayerSpec{Type: "flatten"})
		case *layers.ReLU:
			weights.Layers = append(weights.Layers, LayerSpec{Type: "relu"})
		case *layers.Tanh:
			weights.Layers = append(weights.Layers, LayerSpec{Type: "tanh"})
		case *layers.LeakyReLU:
			weights.Layers = append(weights.Layers, LayerSpec{Type: "leaky", Param: l.Slope})
		case *layers.Dropout:
			weights.Layers = append(weights.Layers, LayerSpec{Type: "dropout", Param: l.Rate})
		default:
			return nil, fmt.Errorf("layer %d: unsupported module type %T", i, layer)
		}
	}
	return weights, nil
}
