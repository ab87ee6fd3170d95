// Package datasets holds metadata for the image classification datasets the
// certification pipeline understands, plus JSON sample loading.
package datasets

import (
	"encoding/json"
	"fmt"
	"os"
)

// Info describes one dataset.
type Info struct {
	Name       string
	InputShape []int // (channels, height, width)
	NumClasses int
	// Pixel value range after normalization; certification treats inputs
	// as box-bounded to this range when the bounded-input flag is set.
	Min, Max float64
}

var registry = map[string]Info{
	"mnist": {
		Name:       "mnist",
		InputShape: []int{1, 28, 28},
		NumClasses: 10,
		Min:        0, Max: 1,
	},
	"fashion-mnist": {
		Name:       "fashion-mnist",
		InputShape: []int{1, 28, 28},
		NumClasses: 10,
		Min:        0, Max: 1,
	},
	"cifar10": {
		Name:       "cifar10",
		InputShape: []int{3, 32, 32},
		NumClasses: 10,
		Min:        0, Max: 1,
	},
}

// Get returns metadata for a dataset by name.
func Get(name string) (Info, error) {
	info, ok := registry[name]
	if !ok {
		return Info{}, fmt.Errorf("unknown dataset: %q", name)
	}
	return info, nil
}

// GetInputShape returns the (channels, height, width) input shape.
func GetInputShape(name string) ([]int, error) {
	info, err := Get(name)
	if err != nil {
		return nil, err
	}
	return append([]int(nil), info.InputShape...), nil
}

// InputDim returns the flattened input dimension.
func (i Info) InputDim() int {
	dim := 1
	for _, d := range i.InputShape {
		dim *= d
	}
	return dim
}

// Sample is one labeled input.
type Sample struct {
	Input []float64 `json:"input"`
	Label int       `json:"label"`
}

// LoadSamples reads labeled samples from a JSON file and validates them
// against the dataset's input dimension and class count.
func LoadSamples(filepath string, info Info) ([]Sample, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read samples file: %w", err)
	}
	var samples []Sample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("failed to unmarshal samples: %w", err)
	}
	for i, s := range samples {
		if len(s.Input) != info.InputDim() {
			return nil, fmt.Errorf("sample %d: input dim %d, want %d", i, len(s.Input), info.InputDim())
		}
		if s.Label < 0 || s.Label >= info.NumClasses {
			return nil, fmt.Errorf("sample %d: label %d out of range [0,%d)", i, s.Label, info.NumClasses)
		}
	}
	return samples, nil
}
