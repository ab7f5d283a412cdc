package solver

// Result carries everything a converged run produces, on the same grid the
// solver ran on. Downstream consumers (file output, plotting, intersubband
// optics) read these fields directly instead of re-parsing files.
type Result struct {
	Dx          float64
	X           []float64   // node positions (m)
	Sigma       []float64   // net areal charge per node (m^-2, number density)
	Field       []float64   // electric field (V/m)
	Potential   []float64   // total potential fi+V (J)
	Psi         [][]float64 // [subband][node], sum(psi^2)*dx = 1
	Energies    []float64   // subband energies (meV)
	Populations []float64   // subband sheet densities (m^-2)
	MeffState   []float64   // wavefunction-weighted effective mass per subband (kg)
	Eps         []float64   // permittivity (F/m)
	Temperature float64     // K
	Iterations  int
}

func (r *Result) Subbands() int {
	return len(r.Energies)
}

// GroundStateDensity returns the probability density of the lowest subband.
func (r *Result) GroundStateDensity() []float64 {
	d := make([]float64, len(r.Psi[0]))
	for i, v := range r.Psi[0] {
		d[i] = v * v
	}
	return d
}
