package optics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"

	"qwpoisson/internal/consts"
	"qwpoisson/pkg/solver"
)

// Mode is one eigenmode of the coupled-transition system: a depolarization-
// shifted resonance behaving as a plain Lorentz oscillator.
type Mode struct {
	Freq     float64 // real THz
	Strength float64 // R^2, THz^2
}

// DepolarizationModes diagonalizes the multilevel coupled-oscillator model:
// a symmetric matrix couples every pair of transitions through their
// permittivity-weighted overlap, and its eigensystem yields the shifted
// resonance frequencies and strengths. With all transitions weakly coupled
// this reduces to the independent single-transition picture.
func DepolarizationModes(res *solver.Result, table []Transition, epsZ []float64) ([]Mode, error) {
	ntr := len(table)
	if ntr == 0 {
		return nil, fmt.Errorf("optics: empty transition table")
	}
	if len(epsZ) != len(res.X) {
		return nil, fmt.Errorf("optics: permittivity array has %d nodes, grid has %d", len(epsZ), len(res.X))
	}
	lPeriod := table[0].LPeriod

	// Permittivity-weighted overlap of every pair of transitions.
	s := mat.NewSymDense(ntr, nil)
	for a := 0; a < ntr; a++ {
		ta := table[a]
		for b := a; b < ntr; b++ {
			tb := table[b]
			v := overlapSEps(res.Psi[ta.ILevel], res.Psi[ta.FLevel],
				res.Psi[tb.ILevel], res.Psi[tb.FLevel], epsZ, res.Dx)
			s.SetSym(a, b, v)
		}
	}

	// Coupling matrix: B_ab = 2 q^2/eps0 * S_ab * sqrt(dN_a dE_a dN_b dE_b)
	// + delta_ab (dE_a)^2, energies in Joules.
	coupling := 2 * consts.CHARGE * consts.CHARGE / consts.EPS0
	b := mat.NewSymDense(ntr, nil)
	for a := 0; a < ntr; a++ {
		ta := table[a]
		for j := a; j < ntr; j++ {
			tb := table[j]
			v := coupling * s.At(a, j) *
				math.Sqrt(math.Abs(ta.DN*ta.DE*meV2J*tb.DN*tb.DE*meV2J))
			if a == j {
				de := ta.DE * meV2J
				v += de * de
			}
			b.SetSym(a, j, v)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(b, true); !ok {
		return nil, fmt.Errorf("optics: coupling matrix eigendecomposition failed")
	}
	var vectors mat.Dense
	eig.VectorsTo(&vectors)
	values := eig.Values(nil)

	// Oscillator strengths: project the per-transition dipole vector onto
	// each eigenmode.
	rhs := make([]float64, ntr)
	for a := 0; a < ntr; a++ {
		ta := table[a]
		x := dipoleMatrixWeighted(res.X, res.Psi[ta.ILevel], res.Psi[ta.FLevel], epsZ)
		rhs[a] = math.Sqrt(math.Abs(ta.DN*ta.DE*meV2J)) * consts.CHARGE * x
	}

	modes := make([]Mode, ntr)
	for k := 0; k < ntr; k++ {
		var proj float64
		for a := 0; a < ntr; a++ {
			proj += vectors.At(a, k) * rhs[a]
		}
		r2 := proj * proj * 2 / (consts.EPS0 * lPeriod) * (toTHz / consts.PLANCK) * (toTHz / consts.PLANCK)
		modes[k] = Mode{
			Freq:     math.Sqrt(math.Max(values[k], 0)) / consts.PLANCK * toTHz,
			Strength: r2,
		}
	}
	return modes, nil
}

// dipoleMatrixWeighted is the dipole element with the position weighted by
// the inverse relative permittivity.
func dipoleMatrixWeighted(x, psi1, psi2, epsZ []float64) float64 {
	f := make([]float64, len(x))
	for i := range f {
		f[i] = x[i] * psi1[i] * psi2[i] / epsZ[i]
	}
	return integrate.Simpsons(x, f)
}
