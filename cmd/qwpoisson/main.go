package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"qwpoisson/internal/consts"
	"qwpoisson/pkg/grid"
	"qwpoisson/pkg/material"
	"qwpoisson/pkg/optics"
	"qwpoisson/pkg/output"
	"qwpoisson/pkg/solver"
	"qwpoisson/pkg/structure"
	"qwpoisson/pkg/util"
)

var (
	outDir    = flag.String("out", "outputs", "directory for the .dat result files")
	plotFile  = flag.String("plot", "", "write a 2x2 diagnostic PNG panel to this path")
	showISBT  = flag.Bool("optics", false, "print the intersubband transition table")
	lPeriod   = flag.Float64("lperiod", 0, "effective-medium thickness in nm (0 = whole structure)")
	linewidth = flag.Float64("linewidth", 1.0, "transition broadening in THz")
	timeout   = flag.Duration("timeout", 0, "wall-clock budget for the solver (0 = none)")
	verbose   = flag.Bool("v", false, "verbose iteration logging")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("Usage: qwpoisson [flags] <structure_file.yaml>")
	}

	logger, err := buildLogger(*verbose)
	if err != nil {
		log.Fatalf("Creating logger: %v", err)
	}
	defer logger.Sync()

	st, err := structure.Load(flag.Arg(0))
	if err != nil {
		logger.Fatal("Reading structure file", zap.Error(err))
	}
	logger.Info("structure loaded",
		zap.String("title", st.Title),
		zap.Int("layers", len(st.Layers)),
		zap.Int("subbands", st.Subbands),
	)

	g, err := grid.Build(st, material.Default())
	if err != nil {
		logger.Fatal("Building grid", zap.Error(err))
	}
	logger.Info("grid built", zap.Int("points", g.N), zap.Float64("dx_m", g.Dx))

	drv := solver.NewDriver(g, st.Subbands, st.PopulationRatio)
	drv.MaxIterations = st.MaxIterations
	drv.Logger = logger
	if st.Scheme == structure.SchemeUniform {
		drv.Scheme = solver.UniformMass
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	startTime := time.Now()
	res, err := drv.Run(ctx)
	if err != nil {
		logger.Fatal("Solving", zap.Error(err))
	}
	logger.Info("run finished",
		zap.Int("iterations", res.Iterations),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	printStates(res)

	if err := output.WriteResult(*outDir, res); err != nil {
		logger.Fatal("Writing results", zap.Error(err))
	}
	fmt.Printf("\nResult files written to %s\n", *outDir)

	if *plotFile != "" {
		if err := output.PlotResult(*plotFile, res); err != nil {
			logger.Fatal("Plotting", zap.Error(err))
		}
		fmt.Printf("Diagnostic plot written to %s\n", *plotFile)
	}

	if *showISBT {
		if err := printTransitions(st, g, res); err != nil {
			logger.Fatal("Intersubband transitions", zap.Error(err))
		}
	}
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	return cfg.Build()
}

func printStates(res *solver.Result) {
	fmt.Println("\nSubband States:")
	fmt.Println("===============")
	fmt.Println("state  population         energy")
	for j := 0; j < res.Subbands(); j++ {
		fmt.Printf("%5d  %s  %s\n", j,
			util.FormatSheetDensity(res.Populations[j]),
			util.FormatEnergy(res.Energies[j]))
	}
}

func printTransitions(st *structure.Structure, g *grid.Grid, res *solver.Result) error {
	period := *lPeriod * 1e-9
	if period == 0 {
		period = (st.ZEnd - st.ZBegin) * 1e-9
	}
	epsZ := make([]float64, len(res.Eps))
	for i, e := range res.Eps {
		epsZ[i] = e / consts.EPS0
	}

	table, err := optics.Transitions(res, period, epsZ, optics.FixedLinewidth(*linewidth))
	if err != nil {
		return err
	}

	fmt.Println("\nIntersubband Transitions:")
	fmt.Println("=========================")
	fmt.Println("i->f      dE          freq     lambda      dipole       f        Leff        wp")
	for _, tr := range table {
		fmt.Printf("%d->%d  %s  %s  %7.2f um  %s  %7.4f  %s  %s\n",
			tr.ILevel, tr.FLevel,
			util.FormatEnergy(tr.DE),
			util.FormatFrequency(tr.Freq),
			tr.Lambda,
			util.FormatValueFactor(tr.Dipole, "m"),
			tr.OscStr,
			util.FormatValueFactor(tr.Leff, "m"),
			util.FormatFrequency(tr.PlasmaFreq),
		)
	}

	modes, err := optics.DepolarizationModes(res, table, epsZ)
	if err != nil {
		return err
	}
	fmt.Println("\nDepolarization-shifted modes:")
	for _, m := range modes {
		fmt.Printf("  w0 = %s  R^2 = %10.4f THz^2\n", util.FormatFrequency(m.Freq), m.Strength)
	}
	return nil
}
