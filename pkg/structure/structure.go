package structure

import (
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Layer is a contiguous z-range with one material. Positions are in nm,
// doping in cm^-3. Type selects the carrier type of the dopant, "n" or "p".
type Layer struct {
	Index    int     `yaml:"layer"`
	ZBegin   float64 `yaml:"z_begin"`
	ZEnd     float64 `yaml:"z_end"`
	Material string  `yaml:"material"`
	AlloyX   float64 `yaml:"alloy_fraction"`
	Doping   float64 `yaml:"doping"`
	Type     string  `yaml:"type"`
}

// Structure is the full input description of a simulation run.
type Structure struct {
	Title           string    `yaml:"title"`
	Temperature     float64   `yaml:"temperature"`
	Subbands        int       `yaml:"subbands"`
	ZBegin          float64   `yaml:"z_begin"`
	ZEnd            float64   `yaml:"z_end"`
	GridFactor      float64   `yaml:"grid_factor"`
	MaxGridPoints   int       `yaml:"max_grid_points"`
	Scheme          string    `yaml:"scheme"`
	MaxIterations   int       `yaml:"max_iterations"`
	PopulationRatio []float64 `yaml:"population_ratio"`
	Layers          []Layer   `yaml:"layers"`
}

// ConfigError reports a malformed or inconsistent input description.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

const (
	SchemeMassWeighted = "mass-weighted"
	SchemeUniform      = "uniform"

	defaultMaxGridPoints = 200000
	defaultMaxIterations = 80
	defaultTemperature   = 300.0
)

func Load(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening structure file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func Parse(r io.Reader) (*Structure, error) {
	var st Structure
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&st); err != nil {
		return nil, fmt.Errorf("decoding structure file: %w", err)
	}
	st.SetDefaults()
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return &st, nil
}

// SetDefaults fills unset optional fields with their default values.
func (s *Structure) SetDefaults() {
	if s.Temperature == 0 {
		s.Temperature = defaultTemperature
	}
	if s.MaxGridPoints == 0 {
		s.MaxGridPoints = defaultMaxGridPoints
	}
	if s.MaxIterations == 0 {
		s.MaxIterations = defaultMaxIterations
	}
	if s.Scheme == "" {
		s.Scheme = SchemeMassWeighted
	}
	if len(s.PopulationRatio) == 0 && s.Subbands > 0 {
		s.PopulationRatio = make([]float64, s.Subbands)
		for i := range s.PopulationRatio {
			s.PopulationRatio[i] = 1.0 / float64(s.Subbands)
		}
	}
}

func (s *Structure) Validate() error {
	if s.Subbands < 1 {
		return &ConfigError{Field: "subbands", Reason: "at least one electron subband is required"}
	}
	if s.GridFactor <= 0 {
		return &ConfigError{Field: "grid_factor", Reason: "grid step must be positive"}
	}
	if s.ZEnd <= s.ZBegin {
		return &ConfigError{Field: "z_end", Reason: "structure length must be positive"}
	}
	if s.MaxGridPoints < 1 {
		return &ConfigError{Field: "max_grid_points", Reason: "must be positive"}
	}
	if s.Scheme != SchemeMassWeighted && s.Scheme != SchemeUniform {
		return &ConfigError{Field: "scheme", Reason: fmt.Sprintf("unknown recursion scheme %q", s.Scheme)}
	}
	if len(s.PopulationRatio) != s.Subbands {
		return &ConfigError{Field: "population_ratio", Reason: fmt.Sprintf("need %d entries, got %d", s.Subbands, len(s.PopulationRatio))}
	}
	for i, r := range s.PopulationRatio {
		if r < 0 || math.IsNaN(r) {
			return &ConfigError{Field: "population_ratio", Reason: fmt.Sprintf("entry %d must be non-negative", i)}
		}
	}
	if len(s.Layers) == 0 {
		return &ConfigError{Field: "layers", Reason: "no layers given"}
	}

	// Layers must partition [ZBegin, ZEnd) contiguously.
	pos := s.ZBegin
	for i, l := range s.Layers {
		if l.ZEnd <= l.ZBegin {
			return &ConfigError{Field: "layers", Reason: fmt.Sprintf("layer %d has non-positive extent", i)}
		}
		if math.Abs(l.ZBegin-pos) > 1e-9 {
			return &ConfigError{Field: "layers", Reason: fmt.Sprintf("layer %d begins at %g nm, expected %g nm (gap or overlap)", i, l.ZBegin, pos)}
		}
		if l.Type != "n" && l.Type != "p" {
			return &ConfigError{Field: "layers", Reason: fmt.Sprintf("layer %d carrier type must be \"n\" or \"p\"", i)}
		}
		if l.Doping < 0 {
			return &ConfigError{Field: "layers", Reason: fmt.Sprintf("layer %d doping must be non-negative", i)}
		}
		if l.Material == "" {
			return &ConfigError{Field: "layers", Reason: fmt.Sprintf("layer %d has no material", i)}
		}
		pos = l.ZEnd
	}
	if math.Abs(pos-s.ZEnd) > 1e-9 {
		return &ConfigError{Field: "layers", Reason: fmt.Sprintf("layers end at %g nm, structure ends at %g nm", pos, s.ZEnd)}
	}
	return nil
}

// LayerAt returns the layer containing position z (nm), using half-open
// ranges with the final layer closed at the structure end.
func (s *Structure) LayerAt(z float64) (*Layer, bool) {
	for i := range s.Layers {
		l := &s.Layers[i]
		if z >= l.ZBegin && (z < l.ZEnd || (i == len(s.Layers)-1 && z <= l.ZEnd)) {
			return l, true
		}
	}
	return nil, false
}
