package material

import (
	"fmt"

	"qwpoisson/internal/consts"
)

// Properties describes a pure semiconductor. EffMass is in units of the
// electron rest mass, Permittivity is relative to vacuum, BandGap is in eV.
// CBFraction is the share of the band gap assigned to the conduction band
// edge when forming the band-edge potential.
type Properties struct {
	Name         string
	EffMass      float64
	Permittivity float64
	BandGap      float64
	CBFraction   float64
}

// AlloyProperties describes a ternary alloy by linear coefficients over the
// mole fraction x. Each quantity is Base at x=0 and Base+Slope at x=1, with
// Vegard's law interpolating in between.
type AlloyProperties struct {
	Name              string
	EffMassBase       float64
	EffMassSlope      float64
	PermittivityBase  float64
	PermittivitySlope float64
	BandGapBase       float64
	BandGapSlope      float64
	CBFraction        float64
}

// Params holds layer-local parameters resolved to SI units: effective mass
// in kg, band-edge energy in Joules, absolute permittivity in F/m.
type Params struct {
	EffMass      float64
	BandEdge     float64
	Permittivity float64
}

// LookupError reports a material name that matches neither the pure nor the
// alloy table.
type LookupError struct {
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("material %q: no matching material or alloy record", e.Name)
}

type Database struct {
	materials map[string]Properties
	alloys    map[string]AlloyProperties
}

func New() *Database {
	return &Database{
		materials: make(map[string]Properties),
		alloys:    make(map[string]AlloyProperties),
	}
}

// Default returns the built-in parameter tables.
func Default() *Database {
	db := New()

	db.AddMaterial(Properties{Name: "Si", EffMass: 0.26, Permittivity: 11.7, BandGap: 1.12, CBFraction: 0.67})
	db.AddMaterial(Properties{Name: "GaAs", EffMass: 0.067, Permittivity: 12.90, BandGap: 1.426, CBFraction: 0.67})
	db.AddMaterial(Properties{Name: "AlAs", EffMass: 0.15, Permittivity: 10.06, BandGap: 2.673, CBFraction: 0.67})
	db.AddMaterial(Properties{Name: "InAs", EffMass: 0.027, Permittivity: 15.15, BandGap: 0.354, CBFraction: 0.67})

	// AlGaAs referenced to GaAs at x=0. The band gap slope is the direct-gap
	// coefficient, valid for x below the direct-indirect crossover (~0.45).
	db.AddAlloy(AlloyProperties{
		Name:              "AlGaAs",
		EffMassBase:       0.067,
		EffMassSlope:      0.083,
		PermittivityBase:  12.90,
		PermittivitySlope: -2.84,
		BandGapBase:       1.426,
		BandGapSlope:      1.247,
		CBFraction:        0.67,
	})
	// InGaAs referenced to GaAs at x=0 (x = In fraction).
	db.AddAlloy(AlloyProperties{
		Name:              "InGaAs",
		EffMassBase:       0.067,
		EffMassSlope:      -0.040,
		PermittivityBase:  12.90,
		PermittivitySlope: 2.25,
		BandGapBase:       1.426,
		BandGapSlope:      -1.072,
		CBFraction:        0.67,
	})

	return db
}

func (db *Database) AddMaterial(m Properties) {
	db.materials[m.Name] = m
}

func (db *Database) AddAlloy(a AlloyProperties) {
	db.alloys[a.Name] = a
}

// Vegard linearly interpolates a property between the two end-member values
// by the mole fraction of the first compound.
func Vegard(first, second, mole float64) float64 {
	return first*mole + second*(1-mole)
}

// Resolve maps a material name and alloy mole fraction to SI parameters.
// The mole fraction is ignored for pure materials.
func (db *Database) Resolve(name string, mole float64) (Params, error) {
	if m, ok := db.materials[name]; ok {
		return Params{
			EffMass:      m.EffMass * consts.EMASS,
			BandEdge:     m.CBFraction * m.BandGap * consts.CHARGE,
			Permittivity: m.Permittivity * consts.EPS0,
		}, nil
	}
	if a, ok := db.alloys[name]; ok {
		meff := Vegard(a.EffMassBase+a.EffMassSlope, a.EffMassBase, mole)
		eps := Vegard(a.PermittivityBase+a.PermittivitySlope, a.PermittivityBase, mole)
		gap := Vegard(a.BandGapBase+a.BandGapSlope, a.BandGapBase, mole)
		return Params{
			EffMass:      meff * consts.EMASS,
			BandEdge:     a.CBFraction * gap * consts.CHARGE,
			Permittivity: eps * consts.EPS0,
		}, nil
	}
	return Params{}, &LookupError{Name: name}
}
