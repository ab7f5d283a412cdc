package optics

import (
	"math"

	"qwpoisson/internal/consts"
)

// LorentzSusceptibility evaluates chi(w) = epsB*wp^2*f / (w0^2 - w^2 - 2i*y0*w)
// over the frequency axis. All frequencies share one unit (real THz here).
func LorentzSusceptibility(freq []float64, w0, f, wp, y0, epsB float64) []complex128 {
	chi := make([]complex128, len(freq))
	num := complex(epsB*wp*wp*f, 0)
	for i, w := range freq {
		chi[i] = num / complex(w0*w0-w*w, -2*y0*w)
	}
	return chi
}

// meanInvEps averages the inverse relative permittivity over the grid.
func meanInvEps(epsZ []float64) float64 {
	var inv float64
	for _, e := range epsZ {
		inv += 1 / e
	}
	return inv / float64(len(epsZ))
}

// InvEpsIndependent calculates eps_b/eps_zz treating every transition as an
// independent Lorentz oscillator at its depolarization-shifted frequency
// sqrt(w^2 + wp^2). Exact for a single transition; increasingly approximate
// as transitions crowd together.
func InvEpsIndependent(table []Transition, freq []float64, epsZ []float64) []complex128 {
	inv := make([]complex128, len(freq))
	base := complex(meanInvEps(epsZ), 0)
	for i := range inv {
		inv[i] = base
	}
	for _, tr := range table {
		shifted := math.Sqrt(tr.Freq*tr.Freq + tr.PlasmaFreq*tr.PlasmaFreq)
		chi := LorentzSusceptibility(freq, shifted, 1.0, tr.Strength, tr.Linewidth, 1.0)
		for i := range inv {
			inv[i] -= chi[i]
		}
	}
	return inv
}

// InvEpsModes calculates eps_b/eps_zz from the diagonalized multilevel
// model: each mode enters as a Lorentz oscillator of unit plasma frequency
// and strength R^2.
func InvEpsModes(modes []Mode, table []Transition, lw Linewidth, freq []float64, epsZ []float64) []complex128 {
	inv := make([]complex128, len(freq))
	base := complex(meanInvEps(epsZ), 0)
	for i := range inv {
		inv[i] = base
	}
	ff0 := table[0].Leff / table[0].LPeriod
	for _, m := range modes {
		// Estimate the bare frequency of the mode for the broadening model;
		// fall back to the shifted one when the estimate turns imaginary.
		bare2 := m.Freq*m.Freq - m.Strength/ff0
		w := m.Freq
		if bare2 > 0 {
			w = math.Sqrt(bare2)
		}
		chi := LorentzSusceptibility(freq, m.Freq, m.Strength, 1.0, lw(w), 1.0)
		for i := range inv {
			inv[i] -= chi[i]
		}
	}
	return inv
}

// UniaxialAbsorption approximates the absorption of a uniaxial layer that
// absorbs along its out-of-plane axis, which is how an intersubband
// transition absorbs. theta is the internal propagation angle (rad),
// epsRatio = eps_b/eps_zz over the frequency axis, nk the refractive index
// of the surrounding media and d the layer thickness (m).
func UniaxialAbsorption(theta float64, freq []float64, epsRatio []complex128, nk, d float64) []float64 {
	abs := make([]float64, len(freq))
	geom := math.Sin(theta) * math.Sin(theta) / math.Cos(theta)
	for i, w := range freq {
		omega := w * 1e12 * 2 * math.Pi
		abs[i] = -imag(epsRatio[i]) * nk * omega / consts.LIGHT * geom * d
	}
	return abs
}
