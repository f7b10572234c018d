// Command hazard computes a probabilistic seismic hazard curve for one site
// from an HCL hazard model document and prints the per-type aggregate curves.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"

	"github.com/pmpowers-usgs/nshmp-sha/internal/calc"
	"github.com/pmpowers-usgs/nshmp-sha/internal/ctxlog"
	"github.com/pmpowers-usgs/nshmp-sha/internal/geo"
	"github.com/pmpowers-usgs/nshmp-sha/internal/gmm"
	"github.com/pmpowers-usgs/nshmp-sha/internal/loader"
	"github.com/pmpowers-usgs/nshmp-sha/internal/pool"
)

func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing.
func run(outW io.Writer, args []string) error {
	flagSet := flag.NewFlagSet("hazard", flag.ContinueOnError)
	flagSet.SetOutput(outW)

	modelFlag := flagSet.String("model", "", "Path to the HCL hazard model document.")
	latFlag := flagSet.Float64("lat", 0, "Site latitude in decimal degrees.")
	lonFlag := flagSet.Float64("lon", 0, "Site longitude in decimal degrees.")
	vs30Flag := flagSet.Float64("vs30", 760, "Site vs30 in m/s.")
	siteNameFlag := flagSet.String("site", "", "Site name.")
	workersFlag := flagSet.Int("workers", 8, "Number of concurrent workers for the pool.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Log level: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if *modelFlag == "" {
		return fmt.Errorf("a hazard model document is required; see -model")
	}

	logger := newLogger(*logLevelFlag, *logFormatFlag, os.Stderr)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	loc, err := geo.NewLocation(*latFlag, *lonFlag)
	if err != nil {
		return err
	}
	site, err := calc.NewSite(*siteNameFlag, loc, *vs30Flag)
	if err != nil {
		return err
	}

	m, cfg, err := loader.Load(ctx, *modelFlag, referenceGmms())
	if err != nil {
		return err
	}

	p := pool.New(*workersFlag)
	defer p.Close()

	result, err := calc.HazardCurve(ctx, m, cfg, site, p)
	if err != nil {
		return err
	}
	printResult(outW, result)
	return nil
}

// newLogger creates and configures a new slog.Logger instance.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}
	return slog.New(handler)
}

func printResult(w io.Writer, r *calc.Result) {
	fmt.Fprintf(w, "site: %s (%s)\n", r.Site.Name, r.Site.Loc)
	imts := make([]string, 0, len(r.Total))
	for imt := range r.Total {
		imts = append(imts, string(imt))
	}
	sort.Strings(imts)
	for _, imt := range imts {
		curve := r.Total[gmm.Imt(imt)]
		fmt.Fprintf(w, "\n%s\n", imt)
		for i := 0; i < curve.Len(); i++ {
			fmt.Fprintf(w, "  %10.5g  %12.6g\n", curve.X(i), curve.Y(i))
		}
	}
	fmt.Fprintf(w, "\ncontributing source sets: %d\n", len(r.CurveSets))
	for _, cs := range r.CurveSets {
		fmt.Fprintf(w, "  %-30s %-8s weight %.3f\n", cs.SetName, cs.SetType, cs.Weight)
	}
}

// referenceGmms returns the built-in example ground-motion models available
// to model documents. Production models live outside this module; these exist
// so the command is usable end to end.
func referenceGmms() map[string]gmm.GroundMotionModel {
	return map[string]gmm.GroundMotionModel{
		"REFERENCE": &referenceGmm{name: "REFERENCE"},
	}
}

// referenceGmm is a simple attenuation relation standing in for the external
// ground-motion collaborator.
type referenceGmm struct {
	name string
}

func (g *referenceGmm) Name() string { return g.name }

func (g *referenceGmm) Calc(imt gmm.Imt, in gmm.Input) (gmm.ScalarGroundMotion, error) {
	mean := -1.0 + 1.1*(in.Mag-6.0) -
		1.7*math.Log(in.Distance+10.0) -
		0.4*math.Log(in.Vs30/760.0)
	if imt != gmm.PGA {
		mean -= 0.5
	}
	return gmm.ScalarGroundMotion{Mean: mean, Sigma: 0.65}, nil
}
