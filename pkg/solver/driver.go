package solver

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"qwpoisson/internal/consts"
	"qwpoisson/pkg/grid"
)

// Phase is the state of the self-consistency loop.
type Phase int

const (
	Iterating Phase = iota
	Converged
	Failed
)

// Driver couples the eigenstate solver and the Poisson solver in a
// fixed-point iteration over the total potential. Iteration 0 solves against
// the bare band-edge potential; every later iteration solves against
// fitot = fi + V from the previous charge distribution. The loop stops when
// the ground-state energy moves by less than Tolerance between iterations.
type Driver struct {
	Grid            *grid.Grid
	Subbands        int
	PopulationRatio []float64 // fixed split of the total sheet charge
	Scheme          Scheme
	MaxIterations   int
	Tolerance       float64 // meV
	Logger          *zap.Logger

	phase Phase
}

// NewDriver returns a Driver with the default convergence parameters:
// mass-weighted recursion, 1e-6 meV ground-state tolerance and an
// 80-iteration cap.
func NewDriver(g *grid.Grid, subbands int, ratio []float64) *Driver {
	return &Driver{
		Grid:            g,
		Subbands:        subbands,
		PopulationRatio: ratio,
		Scheme:          MassWeighted,
		MaxIterations:   80,
		Tolerance:       1e-6,
		Logger:          zap.NewNop(),
	}
}

func (d *Driver) Phase() Phase {
	return d.phase
}

// Run iterates to self-consistency and returns the converged result. The
// context cancels or bounds the run; every iteration checks it once before
// the eigenvalue search.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	g := d.Grid
	if d.Subbands < 1 {
		return nil, fmt.Errorf("driver: at least one subband required")
	}
	if len(d.PopulationRatio) != d.Subbands {
		return nil, fmt.Errorf("driver: population ratio has %d entries for %d subbands", len(d.PopulationRatio), d.Subbands)
	}

	shooter := NewShooter(g.Dx, g.Meff, d.Scheme)
	poisson := &Poisson{Dx: g.Dx, Eps: g.Eps, Dop: g.Dop}

	populations := make([]float64, d.Subbands)
	for j := range populations {
		populations[j] = d.PopulationRatio[j] * g.NTotal2D
	}

	n := g.N
	fitot := make([]float64, n+1)
	var (
		states []State
		sigma  []float64
		field  []float64
		err    error
	)

	d.phase = Iterating
	prevE0 := 0.0
	delta := math.Inf(1)
	iterations := 0
	for iter := 0; iter < d.MaxIterations; iter++ {
		select {
		case <-ctx.Done():
			d.phase = Failed
			return nil, fmt.Errorf("self-consistency loop: %w", ctx.Err())
		default:
		}

		potential := g.Fi
		start := g.FiMin
		if iter > 0 {
			potential = fitot
			if m := floats.Min(fitot); m < start {
				start = m
			}
		}

		states, err = shooter.BoundStates(potential, d.Subbands, start)
		if err != nil {
			d.phase = Failed
			return nil, fmt.Errorf("iteration %d: %w", iter+1, err)
		}

		// Renormalize populations so their sum equals the total sheet charge.
		if sum := floats.Sum(populations); sum != 0 && g.NTotal2D != 0 {
			scale := g.NTotal2D / sum
			for j := range populations {
				populations[j] *= scale
			}
		}

		sigma = poisson.Sigma(states, populations)
		field, err = poisson.Field(ctx, sigma)
		if err != nil {
			d.phase = Failed
			return nil, fmt.Errorf("iteration %d: %w", iter+1, err)
		}
		v := poisson.Potential(field)
		for i := 0; i <= n; i++ {
			fitot[i] = g.Fi[i] + v[i]
		}

		e0 := states[0].Energy / (1e-3 * consts.CHARGE)
		delta = math.Abs(e0 - prevE0)
		iterations = iter + 1
		d.Logger.Debug("self-consistency iteration",
			zap.Int("iteration", iterations),
			zap.Float64("e0_mev", e0),
			zap.Float64("delta_mev", delta),
		)
		if delta < d.Tolerance {
			d.phase = Converged
			break
		}
		prevE0 = e0
	}
	if d.phase != Converged {
		d.phase = Failed
		return nil, &ConvergenceError{Iterations: d.MaxIterations, LastDelta: delta}
	}

	d.Logger.Info("self-consistency reached",
		zap.Int("iterations", iterations),
		zap.Float64("e0_mev", states[0].Energy/(1e-3*consts.CHARGE)),
	)

	return d.buildResult(states, populations, sigma, field, fitot, iterations), nil
}

func (d *Driver) buildResult(states []State, populations, sigma, field, fitot []float64, iterations int) *Result {
	g := d.Grid
	res := &Result{
		Dx:          g.Dx,
		X:           g.X(),
		Sigma:       sigma,
		Field:       field,
		Potential:   fitot,
		Psi:         make([][]float64, len(states)),
		Energies:    make([]float64, len(states)),
		Populations: append([]float64(nil), populations...),
		MeffState:   make([]float64, len(states)),
		Eps:         g.Eps,
		Temperature: g.Temperature,
		Iterations:  iterations,
	}
	for j, st := range states {
		res.Psi[j] = st.Psi
		res.Energies[j] = st.Energy / (1e-3 * consts.CHARGE)
		var m float64
		for i, psi := range st.Psi {
			m += g.Meff[i] * psi * psi * g.Dx
		}
		res.MeffState[j] = m
	}
	return res
}
