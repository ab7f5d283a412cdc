package output

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"qwpoisson/internal/consts"
	"qwpoisson/pkg/solver"
)

// WriteResult persists the per-grid-point arrays and the subband table in
// the classic output layout: sigma.dat, efield.dat, potn.dat,
// firststate.dat, states.dat.
func WriteResult(dir string, res *solver.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	density := res.GroundStateDensity()
	columns := []struct {
		name   string
		values []float64
	}{
		{"sigma.dat", chargeDensity(res.Sigma)},
		{"efield.dat", res.Field},
		{"potn.dat", res.Potential},
		{"firststate.dat", density},
	}
	for _, c := range columns {
		if err := writeProfile(filepath.Join(dir, c.name), res.X, c.values); err != nil {
			return err
		}
	}
	return writeStates(filepath.Join(dir, "states.dat"), res)
}

// chargeDensity converts the number density per node to C/m^2.
func chargeDensity(sigma []float64) []float64 {
	out := make([]float64, len(sigma))
	for i, s := range sigma {
		out[i] = consts.CHARGE * s
	}
	return out
}

func writeProfile(path string, x, values []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := range x {
		fmt.Fprintf(w, "%.10e %.10e\n", x[i], values[i])
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeStates(path string, res *solver.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for j := 0; j < res.Subbands(); j++ {
		fmt.Fprintf(w, "%d %.10e %.10e\n", j, res.Populations[j], res.Energies[j])
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
