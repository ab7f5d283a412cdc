package grid

import (
	"fmt"
	"math"

	"qwpoisson/pkg/material"
	"qwpoisson/pkg/structure"
)

// Grid holds the discretized structure. Arrays have N+1 nodes spaced Dx
// apart; node i sits at z = i*Dx from the structure origin. All quantities
// are SI: effective mass in kg, band edge in J, permittivity in F/m,
// doping in m^-3.
type Grid struct {
	Dx          float64
	N           int
	Meff        []float64
	Fi          []float64
	Eps         []float64
	Dop         []float64
	FiMin       float64
	NTotal      float64 // sum of signed doping over interior nodes (m^-3)
	NTotal2D    float64 // signed sheet doping density (m^-2)
	Temperature float64
}

// Build discretizes the layered structure onto a uniform grid, resolving
// per-node material parameters. The grid-size cap is enforced here, before
// any solving begins.
func Build(st *structure.Structure, db *material.Database) (*Grid, error) {
	dx := st.GridFactor * 1e-9
	xMax := (st.ZEnd - st.ZBegin) * 1e-9
	// Floor with a tolerance so commensurate lengths are not truncated by
	// float representation error; the last node never leaves the structure.
	n := int(xMax/dx + 1e-9)
	if n > st.MaxGridPoints {
		return nil, &structure.ConfigError{
			Field:  "grid_factor",
			Reason: fmt.Sprintf("%d grid points exceed the maximum of %d", n, st.MaxGridPoints),
		}
	}

	g := &Grid{
		Dx:          dx,
		N:           n,
		Meff:        make([]float64, n+1),
		Fi:          make([]float64, n+1),
		Eps:         make([]float64, n+1),
		Dop:         make([]float64, n+1),
		FiMin:       math.Inf(1),
		Temperature: st.Temperature,
	}

	for i := 0; i <= n; i++ {
		z := st.ZBegin + float64(i)*st.GridFactor // nm
		layer, ok := st.LayerAt(z)
		if !ok {
			return nil, &structure.ConfigError{
				Field:  "layers",
				Reason: fmt.Sprintf("position %g nm resolves to no layer", z),
			}
		}
		p, err := db.Resolve(layer.Material, layer.AlloyX)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", layer.Index, err)
		}
		g.Meff[i] = p.EffMass
		g.Fi[i] = p.BandEdge
		g.Eps[i] = p.Permittivity

		// n-type dopants contribute negatively in the electron-centric sign
		// convention used throughout the charge bookkeeping.
		dop := layer.Doping * 1e6 // cm^-3 -> m^-3
		if layer.Type == "n" {
			dop = -dop
		}
		g.Dop[i] = dop

		if g.Fi[i] < g.FiMin {
			g.FiMin = g.Fi[i]
		}
	}
	// The right boundary node is excluded from the totals, matching the
	// solver loops which never use the last node.
	for i := 0; i < n; i++ {
		g.NTotal += g.Dop[i]
		g.NTotal2D += g.Dop[i] * dx
	}

	return g, nil
}

// X returns the node positions in metres.
func (g *Grid) X() []float64 {
	x := make([]float64, g.N+1)
	for i := range x {
		x[i] = float64(i) * g.Dx
	}
	return x
}
