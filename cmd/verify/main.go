// certkit-verify: certify robustness of every sample at a fixed radius.
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
	radius      = flag.Float64("radius", 0.1, "Radius to certify")
	workers     = flag.Int("workers", 1, "Concurrent certification workers")
	verbose     = flag.Bool("verbose", true, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	cfg := &utils.RunConfig{
		Dataset: *dataset,
		Adaptor: *adaptorName,
		Norm:    *normFlag,
		Radius:  *radius,
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

	fmt.Printf("Run %s: %d/%d samples robust at radius %.4g (L%s norm)\n",
		report.ID, report.Verified, report.Samples, cfg.Radius, report.Norm)
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

	log.Info("verifying batch",
		zap.String("dataset", cfg.Dataset),
		zap.String("adaptor", cfg.Adaptor),
		zap.Int("samples", len(samples)),
		zap.Float64("radius", cfg.Radius))

	start = time.Now()
	report, err := runner.New(a, norm, cfg.Workers, log).
		VerifyBatch(context.Background(), info, samples, cfg.Radius)
	if err != nil {
		return nil, nil, err
	}
	stats.BoundTime = time.Since(start)
	stats.TotalTime = time.Since(total)
	return report, stats, nil
}
