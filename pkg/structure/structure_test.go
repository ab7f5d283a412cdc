package structure

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
title: double barrier
subbands: 2
z_begin: 0.0
z_end: 30.0
grid_factor: 0.5
population_ratio: [0.8, 0.2]
layers:
  - layer: 0
    z_begin: 0.0
    z_end: 10.0
    material: AlGaAs
    alloy_fraction: 0.3
    doping: 5.0e15
    type: n
  - layer: 1
    z_begin: 10.0
    z_end: 20.0
    material: GaAs
    type: n
  - layer: 2
    z_begin: 20.0
    z_end: 30.0
    material: AlGaAs
    alloy_fraction: 0.3
    doping: 5.0e15
    type: n
`

func TestParseValid(t *testing.T) {
	st, err := Parse(strings.NewReader(validYAML))
	require.NoError(t, err)

	assert.Equal(t, "double barrier", st.Title)
	assert.Equal(t, 2, st.Subbands)
	require.Len(t, st.Layers, 3)
	assert.Equal(t, "GaAs", st.Layers[1].Material)
	assert.Equal(t, 0.3, st.Layers[0].AlloyX)
	assert.Equal(t, 5.0e15, st.Layers[2].Doping)

	// Unset optional fields pick up the defaults.
	assert.Equal(t, 300.0, st.Temperature)
	assert.Equal(t, SchemeMassWeighted, st.Scheme)
	assert.Equal(t, 80, st.MaxIterations)
	assert.Equal(t, 200000, st.MaxGridPoints)
}

func TestParseDefaultPopulationRatio(t *testing.T) {
	doc := strings.Replace(validYAML, "population_ratio: [0.8, 0.2]\n", "", 1)
	st, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, st.PopulationRatio, 2)
	assert.Equal(t, 0.5, st.PopulationRatio[0])
	assert.Equal(t, 0.5, st.PopulationRatio[1])
}

func TestParseRejectsUnknownFields(t *testing.T) {
	doc := strings.Replace(validYAML, "title:", "titel:", 1)
	_, err := Parse(strings.NewReader(doc))
	require.Error(t, err)
}

func TestValidateErrors(t *testing.T) {
	base := func() *Structure {
		st, err := Parse(strings.NewReader(validYAML))
		require.NoError(t, err)
		return st
	}

	cases := []struct {
		name   string
		mutate func(*Structure)
		field  string
	}{
		{
			name:   "no subbands",
			mutate: func(s *Structure) { s.Subbands = 0 },
			field:  "subbands",
		},
		{
			name:   "negative grid step",
			mutate: func(s *Structure) { s.GridFactor = -0.5 },
			field:  "grid_factor",
		},
		{
			name:   "unknown scheme",
			mutate: func(s *Structure) { s.Scheme = "spectral" },
			field:  "scheme",
		},
		{
			name:   "ratio length mismatch",
			mutate: func(s *Structure) { s.PopulationRatio = []float64{1.0} },
			field:  "population_ratio",
		},
		{
			name:   "negative ratio entry",
			mutate: func(s *Structure) { s.PopulationRatio = []float64{1.2, -0.2} },
			field:  "population_ratio",
		},
		{
			name:   "layer gap",
			mutate: func(s *Structure) { s.Layers[1].ZBegin = 12.0 },
			field:  "layers",
		},
		{
			name:   "layer overlap",
			mutate: func(s *Structure) { s.Layers[1].ZEnd = 25.0 },
			field:  "layers",
		},
		{
			name:   "short of structure end",
			mutate: func(s *Structure) { s.ZEnd = 35.0 },
			field:  "layers",
		},
		{
			name:   "bad carrier type",
			mutate: func(s *Structure) { s.Layers[0].Type = "i" },
			field:  "layers",
		},
		{
			name:   "negative doping",
			mutate: func(s *Structure) { s.Layers[0].Doping = -1e15 },
			field:  "layers",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := base()
			tc.mutate(st)
			err := st.Validate()
			var cfg *ConfigError
			require.ErrorAs(t, err, &cfg)
			assert.Equal(t, tc.field, cfg.Field)
		})
	}
}

func TestLayerAt(t *testing.T) {
	st, err := Parse(strings.NewReader(validYAML))
	require.NoError(t, err)

	l, ok := st.LayerAt(0)
	require.True(t, ok)
	assert.Equal(t, 0, l.Index)

	// Internal boundaries belong to the following layer.
	l, ok = st.LayerAt(10.0)
	require.True(t, ok)
	assert.Equal(t, 1, l.Index)

	// The structure end belongs to the last layer.
	l, ok = st.LayerAt(30.0)
	require.True(t, ok)
	assert.Equal(t, 2, l.Index)

	_, ok = st.LayerAt(31.0)
	assert.False(t, ok)
}
