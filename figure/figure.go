// Package figure renders nonlinearity measurements with gonum/plot.
package figure

import (
	"github.com/hammal/saradc/nonlinearity"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Nonlinearity plots DNL and INL against the output code.
func Nonlinearity(res *nonlinearity.Result, title string) (*plot.Plot, error) {
	if res == nil || len(res.DNL) == 0 {
		return nil, errors.New("empty nonlinearity result")
	}
	p := plot.New()
	if title == "" {
		title = "SAR ADC DNL/INL Plot"
	}
	p.Title.Text = title
	p.X.Label.Text = "Code"
	p.Y.Label.Text = "DNL/INL (LSB)"
	p.Add(plotter.NewGrid())

	err := plotutil.AddLines(p,
		"DNL", plottify(res.Codes(), res.DNL),
		"INL", plottify(res.Codes(), res.INL),
	)
	if err != nil {
		return nil, errors.Wrap(err, "adding lines")
	}
	return p, nil
}

// Histogram plots the distribution of values, e.g. max |DNL| per trial.
func Histogram(values []float64, bins int, title, label string) (*plot.Plot, error) {
	if len(values) == 0 {
		return nil, errors.New("no values to histogram")
	}
	if bins < 1 {
		bins = 1
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = label
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return nil, errors.Wrap(err, "building histogram")
	}
	p.Add(h, plotter.NewGrid())
	return p, nil
}

// Save writes p to filename, the format follows the extension.
func Save(p *plot.Plot, width, height vg.Length, filename string) error {
	if err := p.Save(width, height, filename); err != nil {
		return errors.Wrapf(err, "saving %s", filename)
	}
	return nil
}

func plottify(codes []int, data []float64) plotter.XYs {
	pts := make(plotter.XYs, len(data))
	for i := range pts {
		pts[i].X = float64(codes[i])
		pts[i].Y = data[i]
	}
	return pts
}
