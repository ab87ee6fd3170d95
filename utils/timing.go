package utils

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Verbose controls whether timing statistics are printed.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where timing statistics are printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// TimingStats holds timing information for the phases of a certification run
type TimingStats struct {
	TotalTime       time.Duration
	DataLoadingTime time.Duration
	ConversionTime  time.Duration
	PredictionTime  time.Duration
	BoundTime       time.Duration
	SearchTime      time.Duration
}

// PrintTimingStats prints detailed timing statistics.
// Respects the Verbose flag - does nothing if Verbose is false.
func PrintTimingStats(stats *TimingStats, samples int) {
	if !Verbose {
		return
	}
	fmt.Fprintln(Output, "\n=== TIMING STATISTICS ===")
	fmt.Fprintf(Output, "Total certification time: %v\n", stats.TotalTime)
	if samples > 0 {
		fmt.Fprintf(Output, "Average time per sample: %v\n", stats.TotalTime/time.Duration(samples))
	}
	fmt.Fprintf(Output, "Samples certified: %d\n", samples)
	fmt.Fprintln(Output, "\nBreakdown by phase:")
	fmt.Fprintf(Output, "  Data loading: %v (%.1f%%)\n", stats.DataLoadingTime, float64(stats.DataLoadingTime)/float64(stats.TotalTime)*100)
	fmt.Fprintf(Output, "  Model conversion: %v (%.1f%%)\n", stats.ConversionTime, float64(stats.ConversionTime)/float64(stats.TotalTime)*100)
	fmt.Fprintf(Output, "  Prediction: %v (%.1f%%)\n", stats.PredictionTime, float64(stats.PredictionTime)/float64(stats.TotalTime)*100)
	fmt.Fprintf(Output, "  Bound computation: %v (%.1f%%)\n", stats.BoundTime, float64(stats.BoundTime)/float64(stats.TotalTime)*100)
	fmt.Fprintf(Output, "  Radius search: %v (%.1f%%)\n", stats.SearchTime, float64(stats.SearchTime)/float64(stats.TotalTime)*100)
}

// DurationUS converts any time.Duration to micro-seconds as float64
func DurationUS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000.0
}
