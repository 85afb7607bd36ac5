package dataset

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"drivesim/internal/env"
)

// SaveChart writes a grouped bar chart of the label distribution to path.
// The image format follows the file extension.
func SaveChart(path string, s Summary) error {
	all := make(plotter.Values, env.NumActions)
	open := make(plotter.Values, env.NumActions)
	names := make([]string, env.NumActions)
	for _, a := range env.Actions {
		all[a] = float64(s.Counts[a])
		open[a] = float64(s.OpenCounts[a])
		names[a] = a.String()
	}

	p := plot.New()
	p.Title.Text = "Action label distribution"
	p.Y.Label.Text = "rows"

	w := vg.Points(20)
	allBars, err := plotter.NewBarChart(all, w)
	if err != nil {
		return err
	}
	allBars.LineStyle.Width = vg.Length(0)
	allBars.Color = color.RGBA{R: 66, G: 133, B: 244, A: 255}
	allBars.Offset = -w / 2

	openBars, err := plotter.NewBarChart(open, w)
	if err != nil {
		return err
	}
	openBars.LineStyle.Width = vg.Length(0)
	openBars.Color = color.RGBA{R: 244, G: 160, B: 0, A: 255}
	openBars.Offset = w / 2

	p.Add(allBars, openBars)
	p.Legend.Add("all rows", allBars)
	p.Legend.Add("open road", openBars)
	p.Legend.Top = true
	p.NominalX(names...)

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
