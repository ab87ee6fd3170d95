// certkit-radius: compute the maximum certifiable radius per sample.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"certkit/adaptor"
	"certkit/bound"
	"certkit/bound/lipschitz"
	"certkit/datasets"
	"certkit/runner"
	"certkit/utils"
)

var (
	configFile  = flag.String("config", "", "YAML run configuration (overrides the other flags)")
	weightsFile = flag.String("weights", "", "Model weights JSON file")
	samplesFile = flag.String("samples", "", "Samples JSON file")
	dataset     = flag.String("dataset", "mnist", "Dataset name")
	adaptorName = flag.String("adaptor", "recurjac", "Bounding algorithm adaptor")
	normFlag    = flag.String("norm", "inf", "Perturbation norm: 1, 2 or inf")
	upper       = flag.Float64("upper", 0.5, "Starting radius for the search")
	eps         = flag.Float64("eps", 1e-4, "Starting radius for the linear-bound search")
	steps       = flag.Int("steps", 15, "Binary search steps")
	workers     = flag.Int("workers", 1, "Concurrent certification workers")
	verbose     = flag.Bool("verbose", true, "Verbose output")
	perSample   = flag.Bool("per-sample", false, "Print the radius of every sample")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	cfg := &utils.RunConfig{
		Dataset: *dataset,
		Adaptor: *adaptorName,
		Norm:    *normFlag,
		Upper:   *upper,
		Eps:     *eps,
		Steps:   *steps,
		Workers: *workers,
		Weights: *weightsFile,
		Samples: *samplesFile,
	}
	utils.ApplyDefaults(cfg)
	if *configFile != "" {
		var err error
		cfg, err = utils.LoadConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if err := utils.ValidateConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	log := zap.NewNop()
	if *verbose {
		log, _ = zap.NewDevelopment()
	}
	defer log.Sync()

	report, stats, err := run(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Run %s: %d samples, mean radius %.6f, min radius %.6f (L%s norm)\n",
		report.ID, report.Samples, report.MeanRadius, report.MinRadius, report.Norm)
	if *perSample {
		for _, res := range report.Results {
			fmt.Printf("  sample %3d  label %d  radius %.6f\n", res.Index, res.Label, res.Radius)
		}
	}
	utils.PrintTimingStats(stats, report.Samples)
}

func run(cfg *utils.RunConfig, log *zap.Logger) (*runner.Report, *utils.TimingStats, error) {
	stats := &utils.TimingStats{}
	total := time.Now()

	info, err := datasets.Get(cfg.Dataset)
	if err != nil {
		return nil, nil, err
	}
	norm, err := bound.ParseNorm(cfg.Norm)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	weights, err := utils.LoadWeights(cfg.Weights)
	if err != nil {
		return nil, nil, err
	}
	model, err := utils.BuildSequential(weights)
	if err != nil {
		return nil, nil, err
	}
	samples, err := datasets.LoadSamples(cfg.Samples, info)
	if err != nil {
		return nil, nil, err
	}
	stats.DataLoadingTime = time.Since(start)

	start = time.Now()
	a, err := adaptor.New(cfg.Adaptor, info, model, lipschitz.New())
	if err != nil {
		return nil, nil, err
	}
	stats.ConversionTime = time.Since(start)

	r := runner.New(a, norm, cfg.Workers, log)
	r.Opts = adaptor.RadiusOpts{Upper: cfg.Upper, Eps: cfg.Eps, Steps: cfg.Steps}

	log.Info("computing radii",
		zap.String("dataset", cfg.Dataset),
		zap.String("adaptor", cfg.Adaptor),
		zap.Int("samples", len(samples)))

	start = time.Now()
	report, err := r.RadiusBatch(context.Background(), info, samples)
	if err != nil {
		return nil, nil, err
	}
	stats.SearchTime = time.Since(start)
	stats.TotalTime = time.Since(total)
	return report, stats, nil
}
