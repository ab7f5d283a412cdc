package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qwpoisson/internal/consts"
	"qwpoisson/pkg/material"
	"qwpoisson/pkg/structure"
)

func wellStructure() *structure.Structure {
	st := &structure.Structure{
		Title:      "well",
		Subbands:   1,
		ZBegin:     0,
		ZEnd:       30,
		GridFactor: 0.5,
		Layers: []structure.Layer{
			{Index: 0, ZBegin: 0, ZEnd: 10, Material: "AlGaAs", AlloyX: 0.3, Doping: 2e16, Type: "n"},
			{Index: 1, ZBegin: 10, ZEnd: 20, Material: "GaAs", Type: "n"},
			{Index: 2, ZBegin: 20, ZEnd: 30, Material: "AlGaAs", AlloyX: 0.3, Doping: 1e16, Type: "p"},
		},
	}
	st.SetDefaults()
	return st
}

func TestBuildWell(t *testing.T) {
	st := wellStructure()
	g, err := Build(st, material.Default())
	require.NoError(t, err)

	assert.Equal(t, 60, g.N)
	assert.Equal(t, 0.5e-9, g.Dx)
	require.Len(t, g.Fi, 61)
	require.Len(t, g.Meff, 61)
	require.Len(t, g.Eps, 61)
	require.Len(t, g.Dop, 61)

	// The well floor is the GaAs conduction band edge.
	gaasEdge := 0.67 * 1.426 * consts.CHARGE
	assert.InEpsilon(t, gaasEdge, g.FiMin, 1e-12)
	assert.InEpsilon(t, gaasEdge, g.Fi[30], 1e-12)
	assert.Greater(t, g.Fi[0], g.FiMin)

	// n-type doping enters negative, p-type positive, in m^-3.
	assert.InEpsilon(t, -2e22, g.Dop[0], 1e-12)
	assert.Zero(t, g.Dop[30])
	assert.InEpsilon(t, 1e22, g.Dop[50], 1e-12)

	x := g.X()
	require.Len(t, x, 61)
	assert.Equal(t, 0.0, x[0])
	assert.InEpsilon(t, 30e-9, x[60], 1e-12)
}

func TestBuildNonCommensurateStep(t *testing.T) {
	st := &structure.Structure{
		Title:      "thin film",
		Subbands:   1,
		ZBegin:     0,
		ZEnd:       2,
		GridFactor: 0.3,
		Layers: []structure.Layer{
			{Index: 0, ZBegin: 0, ZEnd: 2, Material: "GaAs", Type: "n"},
		},
	}
	st.SetDefaults()
	require.NoError(t, st.Validate())

	// 2 nm is not a multiple of 0.3 nm; the grid floors to 6 steps so the
	// last node stays inside the structure.
	g, err := Build(st, material.Default())
	require.NoError(t, err)
	assert.Equal(t, 6, g.N)

	x := g.X()
	assert.InEpsilon(t, 1.8e-9, x[g.N], 1e-12)
}

func TestBuildSheetTotals(t *testing.T) {
	st := wellStructure()
	st.Layers[2].Doping = 0

	g, err := Build(st, material.Default())
	require.NoError(t, err)

	// One 10 nm layer at 2e16 cm^-3, signed negative for donors.
	assert.InEpsilon(t, -2e22*10e-9, g.NTotal2D, 0.03)
	assert.Less(t, g.NTotal, 0.0)
}

func TestBuildGridCap(t *testing.T) {
	st := wellStructure()
	st.MaxGridPoints = 10

	_, err := Build(st, material.Default())
	var cfg *structure.ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "grid_factor", cfg.Field)
}

func TestBuildUnknownMaterial(t *testing.T) {
	st := wellStructure()
	st.Layers[1].Material = "GaN"

	_, err := Build(st, material.Default())
	var lookup *material.LookupError
	require.ErrorAs(t, err, &lookup)
	assert.Equal(t, "GaN", lookup.Name)
}
