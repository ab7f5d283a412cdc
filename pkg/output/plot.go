package output

import (
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"qwpoisson/pkg/solver"
)

// PlotResult renders the 2x2 diagnostic panel (charge density, electric
// field, total potential, wavefunctions) to a PNG file.
func PlotResult(path string, res *solver.Result) error {
	sigma, err := profilePlot("Sigma", "Position (m)", "Sigma (C/m^2)", res.X, chargeDensity(res.Sigma))
	if err != nil {
		return err
	}
	field, err := profilePlot("Electric Field", "Position (m)", "Field (V/m)", res.X, res.Field)
	if err != nil {
		return err
	}
	potential, err := profilePlot("Potential", "Position (m)", "V_cb + V_p (J)", res.X, res.Potential)
	if err != nil {
		return err
	}
	states, err := statePlot(res)
	if err != nil {
		return err
	}

	img := vgimg.New(10*vg.Inch, 8*vg.Inch)
	dc := draw.New(img)
	plots := [][]*plot.Plot{
		{sigma, field},
		{potential, states},
	}
	tiles := draw.Tiles{
		Rows: 2, Cols: 2,
		PadX: vg.Millimeter * 4, PadY: vg.Millimeter * 4,
	}
	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for c := range plots[r] {
			plots[r][c].Draw(canvases[r][c])
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating plot file: %w", err)
	}
	defer f.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("writing plot file: %w", err)
	}
	return nil
}

func profilePlot(title, xlabel, ylabel string, x, values []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	line, err := plotter.NewLine(xyPoints(x, values))
	if err != nil {
		return nil, fmt.Errorf("plotting %s: %w", title, err)
	}
	p.Add(plotter.NewGrid(), line)
	return p, nil
}

func statePlot(res *solver.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "States"
	p.X.Label.Text = "Position (m)"
	p.Y.Label.Text = "Psi"
	for j := 0; j < res.Subbands() && j < 2; j++ {
		line, err := plotter.NewLine(xyPoints(res.X, res.Psi[j]))
		if err != nil {
			return nil, fmt.Errorf("plotting state %d: %w", j, err)
		}
		line.Color = plotter.DefaultLineStyle.Color
		if j == 1 {
			line.Dashes = plotutilDashes()
		}
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("state %d", j), line)
	}
	p.Add(plotter.NewGrid())
	return p, nil
}

func plotutilDashes() []vg.Length {
	return []vg.Length{vg.Points(4), vg.Points(2)}
}

func xyPoints(x, values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = values[i]
	}
	return pts
}
