package solver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"qwpoisson/internal/consts"
)

// Poisson computes areal charge density, electric field and electrostatic
// potential on the grid from subband populations and normalized
// wavefunctions. Arrays follow the grid convention: N+1 nodes, with loops
// running over the N interior steps.
type Poisson struct {
	Dx  float64
	Eps []float64 // F/m per node
	Dop []float64 // m^-3, signed per node

	// Workers bounds the goroutines used for the O(N^2) field sum.
	// Zero means GOMAXPROCS.
	Workers int
}

// Sigma returns the net areal charge density per node (number density,
// m^-2): the electron sheet contribution of every subband minus the ionized
// dopant sheet density.
func (p *Poisson) Sigma(states []State, populations []float64) []float64 {
	n := len(p.Dop) - 1
	sigma := make([]float64, n+1)
	for i := 0; i < n; i++ {
		for j := range states {
			psi := states[j].Psi[i]
			sigma[i] += populations[j] * psi * psi * p.Dx
		}
		sigma[i] -= p.Dop[i] * p.Dx
	}
	return sigma
}

// Field superposes the sheet-charge fields: each charge sheet contributes a
// field of opposite sign on either side, scaled by the local permittivity.
// The double sum is split across workers by node chunks.
func (p *Poisson) Field(ctx context.Context, sigma []float64) ([]float64, error) {
	n := len(p.Dop) - 1
	field := make([]float64, n+1)

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		lo := lo
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				var f float64
				for j := 0; j < n; j++ {
					switch {
					case j < i:
						f += consts.CHARGE * sigma[j] / (2 * p.Eps[j])
					case j > i:
						f -= consts.CHARGE * sigma[j] / (2 * p.Eps[j])
					}
				}
				field[i] = f
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return field, nil
}

// Potential integrates the field cumulatively, referencing the potential
// energy to zero at the left boundary.
func (p *Poisson) Potential(field []float64) []float64 {
	n := len(p.Dop) - 1
	v := make([]float64, n+1)
	prev := 0.0
	for i := 0; i < n; i++ {
		v[i] = prev + consts.CHARGE*field[i]*p.Dx
		prev = v[i]
	}
	return v
}
