package explore

import (
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ezoic/carprice/pkg/errors"
	"github.com/ezoic/carprice/pkg/fileutil"
)

// Chart size.
const (
	ChartWidth  = 8 * vg.Inch
	ChartHeight = 5 * vg.Inch
)

// TrendPlot builds a line-and-points plot of mean price per make year.
func TrendPlot(points []YearPoint, title string) (*plot.Plot, error) {
	if len(points) == 0 {
		return nil, errors.NewValidationError("trend", "no points to plot", 0)
	}
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.Year)
		xys[i].Y = pt.AvgPrice
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Average Price"
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, errors.Wrap(err, "create trend line")
	}
	line.Width = vg.Points(2)
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, errors.Wrap(err, "create trend points")
	}
	scatter.Color = plotter.DefaultLineStyle.Color
	p.Add(line, scatter)
	return p, nil
}

// SaveTrendChart renders the trend to path. The image format follows the
// extension (png, svg, pdf...); the file is replaced atomically.
func SaveTrendChart(points []YearPoint, title, path string) error {
	p, err := TrendPlot(points, title)
	if err != nil {
		return err
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		format = "png"
	}
	wt, err := p.WriterTo(ChartWidth, ChartHeight, format)
	if err != nil {
		return errors.Wrapf(err, "render %s chart", format)
	}
	return fileutil.WriteAtomic(path, func(w io.Writer) error {
		_, err := wt.WriteTo(w)
		return err
	})
}
