package plotter

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/mantle-data/tomography.report/internal/sphere"
	"github.com/mantle-data/tomography.report/internal/xsection"
)

// viridis is the color ramp used by the debug scatter previews.
var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// WritePathHTML renders a great-circle path as an HTML lon/lat scatter.
// Debugging-only output: no auth, no styling beyond the chart itself.
func WritePathHTML(path *sphere.Path, title string, w io.Writer) error {
	data := make([]opts.ScatterData, 0, len(path.Points))
	for i, pt := range path.Points {
		data = append(data, opts.ScatterData{Value: []interface{}{pt[0], pt[1], i}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("points=%d angle=%.2f deg", len(path.Points), path.AngleDeg)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Longitude (deg)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Latitude (deg)", NameLocation: "middle", NameGap: 30, Min: -90, Max: 90}),
	)
	scatter.AddSeries("path", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	return scatter.Render(w)
}

// WriteSectionHTML renders a section as an HTML scatter with a value
// color ramp, one point per (angle, radius) sample. Large sections are
// downsampled by stride to keep the payload reasonable.
func WriteSectionHTML(s *xsection.Section, title string, maxPoints int, w io.Writer) error {
	if maxPoints <= 0 {
		maxPoints = 8000
	}
	total := len(s.R) * len(s.Theta)
	stride := 1
	if total > maxPoints {
		stride = int(math.Ceil(float64(total) / float64(maxPoints)))
	}

	min, max := valueRange(s)
	data := make([]opts.ScatterData, 0, total/stride+1)
	idx := 0
	for i, r := range s.R {
		for j, theta := range s.Theta {
			v := s.Values[i][j]
			idx++
			if (idx-1)%stride != 0 || math.IsNaN(v) {
				continue
			}
			distDeg := 90 + s.Angle/2 - theta*180/math.Pi
			data = append(data, opts.ScatterData{Value: []interface{}{distDeg, r / 1e3, v}})
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("points=%d stride=%d", len(data), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Distance (deg)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Radius (km)", NameLocation: "middle", NameGap: 40}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(min),
			Max:        float32(max),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("section", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	return scatter.Render(w)
}
