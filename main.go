// Demo: build a small random MLP, convert it, and certify a random input
// with each adaptor using the reference Lipschitz engine.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"certkit/adaptor"
	"certkit/bound"
	"certkit/bound/lipschitz"
	"certkit/datasets"
	"certkit/nn"
	"certkit/nn/layers"
	"certkit/tensor"
	"certkit/utils"
)

var (
	flagNorm = flag.String("norm", "inf", "perturbation norm: 1, 2 or inf")
	flagSeed = flag.Int64("seed", 1, "seed for the random model and input")
)

func main() {
	flag.Parse()

	norm, err := bound.ParseNorm(*flagNorm)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*flagSeed))
	info, _ := datasets.Get("mnist")
	model := randomModel(rng, info.InputDim())

	input := tensor.New(info.InputShape...)
	for i := range input.Data {
		input.Data[i] = rng.Float64()
	}

	// label the input with the model's own prediction so certification
	// is not short-circuited by a misprediction
	flat, err := model.Forward(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	label := flat.Argmax()
	fmt.Printf("Demo model predicts class %d; certifying with L%s norm\n\n", label, norm)

	engine := lipschitz.New()
	for _, name := range utils.AdaptorNames {
		a, err := adaptor.New(name, info, model, engine)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		r, err := a.CalcRadius(input, label, norm, adaptor.RadiusOpts{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		ok, err := a.Verify(input, label, norm, r/2)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  %-9s radius %.6f  verified at radius/2: %v\n", name, r, ok)
	}
}

func randomModel(rng *rand.Rand, inputDim int) *nn.Sequential {
	l1 := layers.NewLinear(inputDim, 32)
	l2 := layers.NewLinear(32, 10)
	for _, l := range []*layers.Linear{l1, l2} {
		for i := range l.W.Data {
			l.W.Data[i] = (rng.Float64() - 0.5) * 0.1
		}
		for i := range l.B.Data {
			l.B.Data[i] = (rng.Float64() - 0.5) * 0.1
		}
	}
	return nn.NewSequential(layers.NewFlatten(), l1, layers.NewReLU(), l2)
}
