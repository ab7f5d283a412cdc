package solver

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"

	"qwpoisson/internal/consts"
)

// Scheme selects the finite-difference recursion variant.
type Scheme int

const (
	// MassWeighted harmonically averages adjacent effective masses across
	// heterointerfaces. This is the physically correct form for layered
	// structures and the default.
	MassWeighted Scheme = iota
	// UniformMass assumes a locally constant effective mass.
	UniformMass
)

// State is one bound subband: its eigenenergy and the envelope wavefunction,
// normalized so that sum(psi^2)*dx = 1.
type State struct {
	Energy float64 // J
	Psi    []float64
}

// Shooter finds bound states of the stationary 1D effective-mass Schrodinger
// equation on a uniform grid by shooting from the left boundary. A bound
// state is an energy at which the propagated amplitude returns to zero at
// the right boundary.
type Shooter struct {
	Dx     float64
	Meff   []float64 // kg, one per node
	Scheme Scheme

	BracketStep float64 // J, trial-energy increment of the sign-change search
	DerivStep   float64 // J, centered-difference perturbation
	Tolerance   float64 // J, Newton-Raphson step threshold
	Ceiling     float64 // J, absolute search ceiling; 0 derives one per potential
	MaxNewton   int
}

// NewShooter returns a Shooter with the standard search parameters: 1 meV
// bracket step, 1e-8 eV derivative perturbation, 1e-12 eV Newton tolerance.
func NewShooter(dx float64, meff []float64, scheme Scheme) *Shooter {
	return &Shooter{
		Dx:          dx,
		Meff:        meff,
		Scheme:      scheme,
		BracketStep: 1e-3 * consts.CHARGE,
		DerivStep:   1e-8 * consts.CHARGE,
		Tolerance:   1e-12 * consts.CHARGE,
		MaxNewton:   100,
	}
}

// BoundStates finds the lowest count bound states of the potential profile
// fis (J, one per node), searching upward from start. Each subsequent search
// resumes one bracket step above the previous root so eigenvalues come out
// strictly increasing.
func (s *Shooter) BoundStates(fis []float64, count int, start float64) ([]State, error) {
	ceiling := s.Ceiling
	if ceiling == 0 {
		ceiling = floats.Max(fis) + 1.0*consts.CHARGE
	}

	states := make([]State, count)
	energy := start
	for j := 0; j < count; j++ {
		e, err := s.findRoot(fis, energy, ceiling, j)
		if err != nil {
			return nil, err
		}
		states[j].Energy = e
		energy = e + s.BracketStep
	}

	// Wavefunction reconstruction per subband is independent.
	var wg sync.WaitGroup
	for j := range states {
		wg.Add(1)
		go func(st *State) {
			defer wg.Done()
			st.Psi = s.wavefunction(st.Energy, fis)
		}(&states[j])
	}
	wg.Wait()

	return states, nil
}

// findRoot brackets a root of the boundary value by stepping the trial
// energy upward, sharpens the bracket with a linear-interpolation midpoint,
// then polishes with Newton-Raphson on a centered-difference derivative.
func (s *Shooter) findRoot(fis []float64, start, ceiling float64, subband int) (float64, error) {
	e := start
	y2 := s.boundary(e, fis)
	for {
		y1 := y2
		e += s.BracketStep
		if e > ceiling {
			return 0, &NoBoundStateError{Subband: subband, Ceiling: ceiling}
		}
		y2 = s.boundary(e, fis)
		if y1*y2 < 0 {
			e -= math.Abs(y2) / (math.Abs(y1) + math.Abs(y2)) * s.BracketStep
			break
		}
	}

	for it := 0; ; it++ {
		if it >= s.MaxNewton {
			return 0, &NewtonDivergenceError{Subband: subband, Energy: e, Reason: "iteration cap reached"}
		}
		y := s.boundary(e, fis)
		dy := (s.boundary(e+s.DerivStep, fis) - s.boundary(e-s.DerivStep, fis)) / (2 * s.DerivStep)
		if dy == 0 || math.IsNaN(dy) || math.IsInf(dy, 0) {
			return 0, &NewtonDivergenceError{Subband: subband, Energy: e, Reason: "zero or non-finite derivative"}
		}
		step := y / dy
		e -= step
		if math.Abs(step) < s.Tolerance {
			return e, nil
		}
	}
}

// boundary propagates the recursion across the grid and returns the
// amplitude at the right boundary. Seeds are psi[-1]=0 (implied), psi[0]=0,
// psi[1]=1; the last potential node is never used.
func (s *Shooter) boundary(e float64, fis []float64) float64 {
	n := len(fis) - 1
	c := (s.Dx / consts.HBAR) * (s.Dx / consts.HBAR)
	m := s.Meff

	psi0, psi1 := 0.0, 1.0
	switch s.Scheme {
	case MassWeighted:
		for j := 0; j < n; j++ {
			jm := j - 1
			if jm < 0 {
				jm = 0
			}
			wp := 2 / (m[j] + m[j+1])
			wm := 2 / (m[j] + m[jm])
			psi2 := ((2*c*(fis[j]-e)+wp+wm)*psi1 - wm*psi0) / wp
			psi0, psi1 = psi1, psi2
		}
	default:
		for j := 0; j < n; j++ {
			psi2 := (2*m[j]*(fis[j]-e)*c+2)*psi1 - psi0
			psi0, psi1 = psi1, psi2
		}
	}
	return psi1
}

// wavefunction re-runs the recursion at a converged energy, recording the
// full amplitude array and rescaling it to unit norm, sum(psi^2)*dx = 1.
func (s *Shooter) wavefunction(e float64, fis []float64) []float64 {
	n := len(fis) - 1
	c := (s.Dx / consts.HBAR) * (s.Dx / consts.HBAR)
	m := s.Meff

	b := make([]float64, n+1)
	b[0] = 0.0
	b[1] = 1.0
	psi0, psi1 := b[0], b[1]
	switch s.Scheme {
	case MassWeighted:
		for j := 0; j < n-1; j++ {
			jm := j - 1
			if jm < 0 {
				jm = 0
			}
			wp := 2 / (m[j] + m[j+1])
			wm := 2 / (m[j] + m[jm])
			psi2 := ((2*c*(fis[j]-e)+wp+wm)*psi1 - wm*psi0) / wp
			b[j+2] = psi2
			psi0, psi1 = psi1, psi2
		}
	default:
		for j := 0; j < n-1; j++ {
			psi2 := (2*m[j]*(fis[j]-e)*c+2)*psi1 - psi0
			b[j+2] = psi2
			psi0, psi1 = psi1, psi2
		}
	}

	var norm float64
	for _, v := range b {
		norm += v * v
	}
	norm *= s.Dx
	scale := 1 / math.Sqrt(norm)
	for i := range b {
		b[i] *= scale
	}
	return b
}
