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

package render

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
)

// SeriesOptions specifies how a time series is drawn.
type SeriesOptions struct {
	// TimeRange, if not nil, limits the time axis to
	// [TimeRange[0], TimeRange[1]] years.
	TimeRange *[2]float64

	// YLabel is the label of the y axis. If empty, the long_name
	// of the variable is used.
	YLabel string

	// NoYLabel suppresses the y axis label.
	NoYLabel bool
}

// TimeSeries creates a line plot of the named scalar variable
// against time in thousands of years.
func TimeSeries(d Dataset, name string, o SeriesOptions) (*Figure, error) {
	s, err := d.TimeSeries(name)
	if err != nil {
		return nil, err
	}
	xy := make(plotter.XYs, len(s.Time))
	for i, t := range s.Time {
		xy[i].X = t / 1000
		xy[i].Y = s.Values[i]
	}

	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	l, err := plotter.NewLine(xy)
	if err != nil {
		return nil, fmt.Errorf("render: time series of %s: %v", name, err)
	}
	p.Add(l)
	p.X.Label.Text = "Time (kyr)"
	if !o.NoYLabel {
		p.Y.Label.Text = o.YLabel
		if p.Y.Label.Text == "" {
			p.Y.Label.Text = d.Title(name)
		}
	}
	if o.TimeRange != nil {
		r := *o.TimeRange
		if !(r[1] > r[0]) {
			return nil, fmt.Errorf("render: invalid time range [%g, %g]", r[0], r[1])
		}
		p.X.Min, p.X.Max = r[0]/1000, r[1]/1000
	}
	return &Figure{Plot: p}, nil
}
