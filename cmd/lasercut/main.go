package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"lasercut/pkg/cfg"
	"lasercut/pkg/gcode"
	"lasercut/pkg/job"
	"lasercut/pkg/optimizer"

	"github.com/pkg/errors"
)

func strategyNames() string {
	var names []string
	for _, s := range optimizer.Strategies() {
		names = append(names, s.String())
	}
	return strings.Join(names, ", ")
}

func main() {
	cfg.Load()

	var (
		inputFile     = flag.String("input", "", "G-code job to optimize")
		outputFile    = flag.String("output", "", "Where to write the result (default stdout)")
		strategyName  = flag.String("strategy", "NEAREST", "Ordering strategy: "+strategyNames())
		join          = flag.Bool("join", false, "Join strokes sharing an endpoint before sorting")
		joinBothWays  = flag.Bool("join-bidirectional", false, "Also extend joined strokes backwards")
		skipJunctions = flag.Bool("join-skip-junctions", false, "Do not join where three or more strokes meet")
		joinTolerance = flag.Float64("join-tolerance", 0, "Join ends closer than this Manhattan distance (dots)")
		fallbackName  = flag.String("fallback", "", "Strategy to use if the solver fails")
		tspMax        = flag.Int("tsp-max", cfg.TSPMaxElements, "Largest element count handed to the TSP solver")
		tspTimeout    = flag.Duration("tsp-timeout", cfg.TSPTimeout, "Time budget for one TSP solve")
		precision     = flag.Int("precision", cfg.GCodePrecision, "Decimals written for coordinates")
		verbose       = flag.Bool("v", false, "Log debug output")
	)
	flag.Parse()
	if len(flag.Args()) > 0 || *inputFile == "" {
		fmt.Fprintf(os.Stderr, "Error: No input file provided\n")
		flag.Usage()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	optimizer.SetLogger(logger)

	strategy, err := optimizer.ParseStrategy(*strategyName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	opts := []optimizer.Option{
		optimizer.WithTSPMaxElements(*tspMax),
		optimizer.WithTSPTimeout(*tspTimeout),
	}
	if *joinTolerance < 0 {
		fmt.Fprintf(os.Stderr, "Error: -join-tolerance must not be negative\n")
		os.Exit(1)
	}
	if *join || *joinBothWays || *skipJunctions || *joinTolerance > 0 {
		opts = append(opts, optimizer.WithJoin(optimizer.JoinOptions{
			Bidirectional: *joinBothWays,
			SkipJunctions: *skipJunctions,
			Tolerance:     *joinTolerance,
		}))
	}
	if *fallbackName != "" {
		fallback, err := optimizer.ParseStrategy(*fallbackName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: fallback: %s\n", err)
			os.Exit(1)
		}
		opts = append(opts, optimizer.WithFallback(fallback))
	}
	opt, err := optimizer.New(strategy, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	in, err := os.Open(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Could not open file: %s\n", err)
		os.Exit(2)
	}
	part, err := gcode.Parse(in)
	in.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(2)
	}

	result, err := opt.Optimize(context.Background(), part)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Optimization failed: %s\n", err)
		os.Exit(3)
	}
	logger.Info("optimized",
		"strategy", opt.Strategy(),
		"instructions", len(result.Instructions),
		"travel_before", part.TravelDistance(),
		"travel_after", result.TravelDistance())

	if err := writeOutput(*outputFile, result, *precision); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(2)
	}
}

// writeOutput encodes part to path, or to stdout when path is empty. The
// file is closed before returning so a failed flush is reported.
func writeOutput(path string, part *job.Part, precision int) error {
	if path == "" {
		return errors.Wrap(gcode.Write(os.Stdout, part, precision), "Could not write output")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "Could not create file")
	}
	if err := gcode.Write(f, part, precision); err != nil {
		f.Close()
		return errors.Wrap(err, "Could not write output")
	}
	return errors.Wrap(f.Close(), "Could not write output")
}
