/*
Copyright © 2018 the pismplot authors.
This file is part of pismplot.

pismplot is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

pismplot is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with pismplot.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package render draws maps, time series and animations of PISM
// model output.
package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/ctessum/plotextra"
	"github.com/spatialmodel/pismplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Dataset is the source of the data to be plotted.
// It is implemented by *pismplot.Dataset.
type Dataset interface {
	MaskedData(name string, sel pismplot.Selection) (*pismplot.Slice, error)
	TimeSeries(name string) (*pismplot.Series, error)
	TimeRange(start, end float64) (first, last int, err error)
	Steps(first, last int) ([]float64, error)
	Grid() *pismplot.Grid
	Time() *pismplot.TimeAxis
	Name() string
	Title(name string) string
	Units(name string) string
}

// Default figure dimensions.
const (
	DefaultWidth  = 6 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

// colorbarHeight is the height of the area below a map
// reserved for the colorbar.
const colorbarHeight = 0.6 * vg.Inch

// paletteColors is the number of colors in heat map palettes.
const paletteColors = 255

// MapOptions specifies how a map is drawn.
type MapOptions struct {
	pismplot.Selection

	// Colormap is the name of the colormap. If empty, the colormap
	// from Registry is used.
	Colormap string

	// Norm specifies the color scale. If nil, the norm from
	// Registry is used.
	Norm *Norm

	// Registry holds the default colors of each variable.
	// If nil, NewRegistry() is used.
	Registry *Registry

	// Title is the title of the map. If empty, the long_name of
	// the variable is used.
	Title string

	// NoTitle suppresses the title.
	NoTitle bool

	// Colorbar specifies whether a colorbar labeled with the units of
	// the variable is drawn below the map.
	Colorbar bool

	// HighCut, if not nil, specifies a value above which the colormap
	// changes to a separate overflow color scale. It must be within
	// the range of the norm.
	HighCut *float64
}

// Figure is a plot and an optional colorbar.
type Figure struct {
	Plot     *plot.Plot
	Colorbar *plot.Plot
}

// Draw draws the figure on c, with the colorbar, if any,
// at the bottom.
func (f *Figure) Draw(c draw.Canvas) {
	if f.Colorbar == nil {
		f.Plot.Draw(c)
		return
	}
	w := c.Max.X - c.Min.X
	h := c.Max.Y - c.Min.Y
	f.Plot.Draw(draw.Crop(c, 0, 0, colorbarHeight, 0))
	f.Colorbar.Draw(draw.Crop(c, 0.2*w, -0.2*w, 0, colorbarHeight-h))
}

// Canvas draws the figure on a new image canvas of the given size.
func (f *Figure) Canvas(width, height vg.Length) *vgimg.Canvas {
	img := vgimg.New(width, height)
	dc := draw.New(img)
	f.Draw(dc)
	return img
}

// WritePNG writes the figure to w in PNG format.
func (f *Figure) WritePNG(w io.Writer, width, height vg.Length) error {
	png := vgimg.PngCanvas{Canvas: f.Canvas(width, height)}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("render: writing png: %v", err)
	}
	return nil
}

// Map creates a map of the named variable.
func Map(d Dataset, name string, o MapOptions) (*Figure, error) {
	g := d.Grid()
	if g == nil {
		return nil, &pismplot.LookupError{File: d.Name(), Kind: pismplot.MissingDimension, Name: pismplot.XDim}
	}
	z, err := d.MaskedData(name, o.Selection)
	if err != nil {
		return nil, err
	}
	if rows, cols := g.Shape(); z.Rows() != rows || z.Cols() != cols {
		return nil, &pismplot.ConfigurationError{File: d.Name(), Variable: name,
			Reason: fmt.Sprintf("shape %v does not match grid (%d, %d)", z.Shape, rows, cols)}
	}
	if z.Rows() < 2 || z.Cols() < 2 {
		return nil, &pismplot.ConfigurationError{File: d.Name(), Variable: name,
			Reason: fmt.Sprintf("cannot map shape %v: need at least 2 rows and columns", z.Shape)}
	}

	reg := o.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	cmName := o.Colormap
	if cmName == "" {
		cmName = reg.Colormap(name)
	}
	norm := reg.Norm(name)
	if o.Norm != nil {
		norm = *o.Norm
	}

	grid := &gridXYZ{s: z, x: g.XKm(), y: g.YKm(), log: norm.Log}
	min, max := norm.Range(dataRange(z, norm.Log))

	cm, err := NewColorMap(cmName)
	if err != nil {
		return nil, err
	}
	cm.SetMin(min)
	cm.SetMax(max)
	if o.HighCut != nil {
		cut := *o.HighCut
		if norm.Log {
			cut = logOrNaN(cut)
		}
		if !(cut > min && cut < max) {
			return nil, fmt.Errorf("render: high cut %g is outside of color range", *o.HighCut)
		}
		cm, err = highCut(cm, min, max, cut)
		if err != nil {
			return nil, err
		}
	}

	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	if !o.NoTitle {
		p.Title.Text = o.Title
		if p.Title.Text == "" {
			p.Title.Text = d.Title(name)
		}
	}
	p.X.Label.Text = "X (km)"
	p.Y.Label.Text = "Y (km)"

	pal := sample(cm, paletteColors)
	h := plotter.NewHeatMap(grid, pal)
	h.Min, h.Max = min, max
	cs := pal.Colors()
	h.Underflow, h.Overflow = cs[0], cs[len(cs)-1]
	p.Add(h)

	f := &Figure{Plot: p}
	if o.Colorbar {
		label := d.Units(name)
		if norm.Log && label != "" {
			label = fmt.Sprintf("log10(%s)", label)
		}
		if f.Colorbar, err = colorbar(cm, label, o.HighCut, norm.Log); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// highCut returns a colormap that uses base up to cut and
// a separate green scale above it.
func highCut(base palette.ColorMap, min, max, cut float64) (palette.ColorMap, error) {
	over, err := moreland.NewLuminance([]color.Color{
		color.NRGBA{G: 176, A: 255},
		color.NRGBA{G: 255, A: 255},
	})
	if err != nil {
		return nil, err
	}
	cm := &plotextra.BrokenColorMap{
		Base:     base,
		OverFlow: palette.Reverse(over),
	}
	cm.SetMin(min)
	cm.SetMax(max)
	cm.SetHighCut(cut)
	return cm, nil
}

// colorbar creates a horizontal colorbar for cm.
func colorbar(cm palette.ColorMap, label string, cut *float64, log bool) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Add(&plotter.ColorBar{ColorMap: cm})
	if cut != nil {
		c := *cut
		if log {
			c = math.Log10(c)
		}
		p.X.Scale = plotextra.BrokenScale{
			HighCut:         c,
			HighCutFraction: 0.9,
		}
		p.X.Tick.Marker = plotextra.BrokenTicks{
			HighCut: c,
		}
	}
	p.HideY()
	p.X.Padding = 0
	p.X.Label.Text = label
	return p, nil
}

// gridXYZ adapts a slice on a kilometer grid to plotter.GridXYZ.
type gridXYZ struct {
	s    *pismplot.Slice
	x, y []float64 // [km]
	log  bool
}

func (g *gridXYZ) Dims() (c, r int) { return g.s.Cols(), g.s.Rows() }

func (g *gridXYZ) Z(c, r int) float64 {
	v := g.s.Get(r, c)
	if g.log {
		return logOrNaN(v)
	}
	return v
}

func (g *gridXYZ) X(c int) float64 { return g.x[c] }

func (g *gridXYZ) Y(r int) float64 { return g.y[r] }

// dataRange returns the range of the finite values in s, or NaN if
// there are none. If positive is true, only values greater than zero
// are considered.
func dataRange(s *pismplot.Slice, positive bool) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range s.Elements {
		if math.IsNaN(v) || math.IsInf(v, 0) || (positive && v <= 0) {
			continue
		}
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	if math.IsInf(min, 1) {
		return math.NaN(), math.NaN()
	}
	return min, max
}
