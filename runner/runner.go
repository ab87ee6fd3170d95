// Package runner drives certification over a batch of samples.
package runner

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"certkit/adaptor"
	"certkit/bound"
	"certkit/datasets"
	"certkit/tensor"
)

// Result is the outcome for one sample.
type Result struct {
	Index    int     `json:"index"`
	Label    int     `json:"label"`
	Verified bool    `json:"verified"`
	Radius   float64 `json:"radius"`
}

// Report aggregates a batch run.
type Report struct {
	ID         string        `json:"id"`
	Dataset    string        `json:"dataset"`
	Norm       string        `json:"norm"`
	Radius     float64       `json:"radius,omitempty"`
	Samples    int           `json:"samples"`
	Verified   int           `json:"verified"`
	MeanRadius float64       `json:"mean_radius"`
	MinRadius  float64       `json:"min_radius"`
	Elapsed    time.Duration `json:"elapsed"`
	Results    []Result      `json:"results"`
}

// Runner certifies batches of samples with a fixed adaptor.
type Runner struct {
	Adaptor adaptor.Adaptor
	Norm    bound.Norm
	Workers int
	Opts    adaptor.RadiusOpts
	Log     *zap.Logger
}

// New builds a Runner; a nil logger disables logging.
func New(a adaptor.Adaptor, norm bound.Norm, workers int, log *zap.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{Adaptor: a, Norm: norm, Workers: workers, Log: log}
}

// VerifyBatch verifies every sample at a fixed radius.
func (r *Runner) VerifyBatch(ctx context.Context, info datasets.Info, samples []datasets.Sample, radius float64) (*Report, error) {
	report := r.newReport(info, len(samples))
	report.Radius = radius
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)
	for i, s := range samples {
		i, s := i, s
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ok, err := r.Adaptor.Verify(tensor.NewWithData(s.Input), s.Label, r.Norm, radius)
			if err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}
			report.Results[i] = Result{Index: i, Label: s.Label, Verified: ok}
			r.Log.Debug("verified sample",
				zap.Int("index", i),
				zap.Bool("robust", ok),
				zap.Float64("radius", radius))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Elapsed = time.Since(start)
	for _, res := range report.Results {
		if res.Verified {
			report.Verified++
		}
	}
	r.Log.Info("verification batch done",
		zap.String("run", report.ID),
		zap.Int("verified", report.Verified),
		zap.Int("samples", report.Samples),
		zap.Duration("elapsed", report.Elapsed))
	return report, nil
}

// RadiusBatch computes the maximum certifiable radius for every sample.
func (r *Runner) RadiusBatch(ctx context.Context, info datasets.Info, samples []datasets.Sample) (*Report, error) {
	report := r.newReport(info, len(samples))
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)
	for i, s := range samples {
		i, s := i, s
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			radius, err := r.Adaptor.CalcRadius(tensor.NewWithData(s.Input), s.Label, r.Norm, r.Opts)
			if err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}
			report.Results[i] = Result{Index: i, Label: s.Label, Verified: radius > 0, Radius: radius}
			r.Log.Debug("computed radius",
				zap.Int("index", i),
				zap.Float64("radius", radius))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Elapsed = time.Since(start)
	sum := 0.0
	min := math.Inf(1)
	for _, res := range report.Results {
		if res.Verified {
			report.Verified++
		}
		sum += res.Radius
		if res.Radius < min {
			min = res.Radius
		}
	}
	if report.Samples > 0 {
		report.MeanRadius = sum / float64(report.Samples)
		report.MinRadius = min
	}
	r.Log.Info("radius batch done",
		zap.String("run", report.ID),
		zap.Int("samples", report.Samples),
		zap.Float64("mean_radius", report.MeanRadius),
		zap.Duration("elapsed", report.Elapsed))
	return report, nil
}

func (r *Runner) newReport(info datasets.Info, n int) *Report {
	return &Report{
		ID:      uuid.NewString(),
		Dataset: info.Name,
		Norm:    r.Norm.String(),
		Samples: n,
		Results: make([]Result, n),
	}
}
