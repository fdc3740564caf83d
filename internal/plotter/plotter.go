// Package plotter renders cross-sections: PNG heat maps via gonum/plot
// for reports, and go-echarts HTML previews for the debug endpoints.
package plotter

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/mantle-data/tomography.report/internal/xsection"
)

// Reference mantle discontinuity depths drawn as guide lines, km.
var guideDepthsKm = []float64{410, 660, 1000}

// sectionGrid adapts a Section to the plotter.GridXYZ interface: x is
// angular distance along the path in degrees (ascending), y is radius in
// km (ascending), z the sampled value.
type sectionGrid struct {
	s *xsection.Section
}

func (g sectionGrid) Dims() (c, r int) { return len(g.s.Theta), len(g.s.R) }

func (g sectionGrid) X(c int) float64 {
	// Theta descends from 90+angle/2; distance along the path ascends.
	return 90 + g.s.Angle/2 - g.s.Theta[c]*180/math.Pi
}

func (g sectionGrid) Y(r int) float64 {
	return g.s.R[len(g.s.R)-1-r] / 1e3
}

func (g sectionGrid) Z(c, r int) float64 {
	return g.s.Values[len(g.s.R)-1-r][c]
}

// valueRange returns the NaN-ignoring value range of a section, expanded
// to be symmetric about zero so diverging palettes centre correctly.
func valueRange(s *xsection.Section) (min, max float64) {
	bound := 0.0
	for _, row := range s.Values {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			if a := math.Abs(v); a > bound {
				bound = a
			}
		}
	}
	if bound == 0 {
		bound = 1
	}
	return -bound, bound
}

// WriteSectionPNG renders a section heat map as PNG.
func WriteSectionPNG(s *xsection.Section, title string, w io.Writer) error {
	p, err := sectionPlot(s, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(10*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render section: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// SaveSectionPNG renders a section heat map to a PNG file.
func SaveSectionPNG(s *xsection.Section, title, path string) error {
	p, err := sectionPlot(s, title)
	if err != nil {
		return err
	}
	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save section plot: %w", err)
	}
	return nil
}

func sectionPlot(s *xsection.Section, title string) (*plot.Plot, error) {
	if len(s.R) == 0 || len(s.Theta) == 0 {
		return nil, fmt.Errorf("empty section")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Distance (deg)"
	p.Y.Label.Text = "Radius (km)"

	min, max := valueRange(s)
	cm := moreland.SmoothBlueRed()
	cm.SetMin(min)
	cm.SetMax(max)

	hm := plotter.NewHeatMap(sectionGrid{s}, cm.Palette(255))
	hm.Min = min
	hm.Max = max
	p.Add(hm)

	// Dashed guide lines at the reference discontinuity depths.
	surfaceKm := s.R[0] / 1e3
	bottomKm := s.R[len(s.R)-1] / 1e3
	x0, x1 := 0.0, s.Angle
	for _, depth := range guideDepthsKm {
		rKm := surfaceKm - depth
		if rKm <= bottomKm {
			continue
		}
		line, err := plotter.NewLine(plotter.XYs{{X: x0, Y: rKm}, {X: x1, Y: rKm}})
		if err != nil {
			return nil, err
		}
		line.Color = color.Gray{Y: 96}
		line.Width = vg.Points(1)
		line.Dashes = []vg.Length{vg.Points(5), vg.Points(2)}
		p.Add(line)
	}

	return p, nil
}
