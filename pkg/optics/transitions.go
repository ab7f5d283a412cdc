package optics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate"

	"qwpoisson/internal/consts"
	"qwpoisson/pkg/solver"
)

// Transition holds the parameters of one intersubband transition between an
// unordered pair of subbands.
type Transition struct {
	Index      int
	ILevel     int
	FLevel     int
	DE         float64 // energy gap (meV)
	Freq       float64 // real frequency (THz)
	Lambda     float64 // wavelength (um)
	Wavenumber float64 // cm^-1
	DN         float64 // population difference (m^-2)
	Dipole     float64 // dipole matrix element (m)
	OscStr     float64 // oscillator strength
	S          float64 // double-integral overlap (m)
	Leff       float64 // effective transition thickness (m)
	PlasmaFreq float64 // real THz
	Strength   float64 // R = sqrt(f*Leff/Lperiod)*wp, real THz
	Linewidth  float64 // real THz
	EpsWell    float64 // ground-state-weighted relative permittivity
	LPeriod    float64 // effective-medium thickness (m)
}

// Linewidth maps a transition frequency (THz) to its broadening (THz).
type Linewidth func(freqTHz float64) float64

// FixedLinewidth returns the same broadening for every transition.
func FixedLinewidth(w float64) Linewidth {
	return func(float64) float64 { return w }
}

const (
	meV2J = 1e-3 * consts.CHARGE
	toTHz = 1e-12
)

// DipoleMatrix integrates z*psi1*psi2 over the grid (Simpson quadrature).
// The electron charge is not included.
func DipoleMatrix(x, psi1, psi2 []float64) float64 {
	f := make([]float64, len(x))
	for i := range f {
		f[i] = x[i] * psi1[i] * psi2[i]
	}
	return integrate.Simpsons(x, f)
}

// OscillatorStrength for a transition of gap de (meV), dipole element z (m)
// and effective mass meff (kg).
func OscillatorStrength(z, de, meff float64) float64 {
	return 2 * meff * (de * meV2J) * z * z / (consts.HBAR * consts.HBAR)
}

// overlapS is the nested double integral used for the effective thickness of
// a transition: S = -int( pC*pD * int( int( pA*pB ) ) ) dz^3.
func overlapS(pA, pB, pC, pD []float64, dz float64) float64 {
	var i1, i2, i3 float64
	for k := range pA {
		i1 += pA[k] * pB[k]
		i2 += i1
		i3 += pC[k] * pD[k] * i2
	}
	return -i3 * dz * dz * dz
}

// overlapSEps is the permittivity-weighted variant used by the multilevel
// depolarization model. epsZ is relative.
func overlapSEps(pA, pB, pC, pD, epsZ []float64, dz float64) float64 {
	var i1, i2, i3 float64
	for k := range pA {
		i1 += pA[k] * pB[k]
		i2 += i1 / epsZ[k]
		i3 += pC[k] * pD[k] * i2
	}
	return -i3 * dz * dz * dz
}

// effectiveThickness of a transition: hbar^2 / (2|S| meff dE).
func effectiveThickness(s, de, meff float64) float64 {
	return consts.HBAR * consts.HBAR / (2 * math.Abs(s) * meff * de * meV2J)
}

// plasmaFreq for volume density dn (m^-3) in a well of relative
// permittivity epsW. Real THz. The density carries the electron-centric
// sign; only its magnitude enters.
func plasmaFreq(dn, meff, epsW float64) float64 {
	return math.Sqrt(math.Abs(dn)*consts.CHARGE*consts.CHARGE/(meff*epsW*consts.EPS0)) / (2 * math.Pi) * toTHz
}

// transitionStrength is R = sqrt(f*Leff*wp^2/Lperiod), the single number
// that sets the weight of a transition in the effective-medium dielectric
// response; all effective-mass terms cancel out of it. Real THz.
func transitionStrength(dn, de, z, epsW, lPeriod float64) float64 {
	qz := consts.CHARGE * z
	r2 := 2 * dn * (de * meV2J) * qz * qz /
		(consts.HBAR * consts.HBAR * epsW * consts.EPS0 * epsW * lPeriod * 4 * math.Pi * math.Pi)
	return math.Sqrt(math.Abs(r2)) * toTHz
}

// wellPermittivity weights the relative permittivity profile by the
// ground-state probability density.
func wellPermittivity(psi0, epsZ []float64, dx float64) float64 {
	var inv float64
	for i := range psi0 {
		inv += psi0[i] * psi0[i] / epsZ[i] * dx
	}
	return 1 / inv
}

// Transitions builds the transition table for every unordered pair of
// subbands in the result. lPeriod (m) is the effective-medium thickness,
// epsZ the per-node relative permittivity at the optical frequencies of
// interest (len must match the grid), lw the broadening model.
//
// Effective-mass and permittivity choices follow the multilevel model, where
// those terms cancel in the final expressions: the lowest subband's values
// are used for every transition.
func Transitions(res *solver.Result, lPeriod float64, epsZ []float64, lw Linewidth) ([]Transition, error) {
	if res.Subbands() < 2 {
		return nil, fmt.Errorf("optics: need at least two subbands, got %d", res.Subbands())
	}
	if len(epsZ) != len(res.X) {
		return nil, fmt.Errorf("optics: permittivity array has %d nodes, grid has %d", len(epsZ), len(res.X))
	}
	if lPeriod <= 0 {
		return nil, fmt.Errorf("optics: effective-medium thickness must be positive")
	}

	meff := res.MeffState[0]
	epsW := wellPermittivity(res.Psi[0], epsZ, res.Dx)

	var table []Transition
	idx := 0
	for i := 0; i < res.Subbands(); i++ {
		for f := i + 1; f < res.Subbands(); f++ {
			de := res.Energies[f] - res.Energies[i]
			dn := res.Populations[i] - res.Populations[f]
			z := DipoleMatrix(res.X, res.Psi[i], res.Psi[f])
			s := overlapS(res.Psi[i], res.Psi[f], res.Psi[i], res.Psi[f], res.Dx)
			leff := effectiveThickness(s, de, meff)
			freq := de * meV2J / consts.PLANCK * toTHz
			oscStr := OscillatorStrength(z, de, meff)
			wp := plasmaFreq(dn/leff, meff, epsW)

			tr := Transition{
				Index:      idx,
				ILevel:     i,
				FLevel:     f,
				DE:         de,
				Freq:       freq,
				Lambda:     1e6 * consts.PLANCK * consts.LIGHT / (de * meV2J),
				Wavenumber: de * meV2J / consts.PLANCK / consts.LIGHT * 1e-2,
				DN:         dn,
				Dipole:     z,
				OscStr:     oscStr,
				S:          s,
				Leff:       leff,
				PlasmaFreq: wp,
				Strength:   transitionStrength(dn, de, z, epsW, lPeriod),
				EpsWell:    epsW,
				LPeriod:    lPeriod,
			}
			tr.Linewidth = lw(tr.Freq)
			table = append(table, tr)
			idx++
		}
	}
	return table, nil
}
