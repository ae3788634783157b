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

package pismplot

import (
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Grid is a rectangular, cell-centered model grid.
type Grid struct {
	X, Y []float64 // cell center coordinates [m]
}

// Shape returns the number of rows (y) and columns (x) in the grid.
func (g *Grid) Shape() (rows, cols int) { return len(g.Y), len(g.X) }

// XKm returns the x coordinates in kilometers.
func (g *Grid) XKm() []float64 { return toKm(g.X) }

// YKm returns the y coordinates in kilometers.
func (g *Grid) YKm() []float64 { return toKm(g.Y) }

func toKm(v []float64) []float64 {
	o := make([]float64, len(v))
	copy(o, v)
	floats.Scale(1/1000.0, o)
	return o
}

// Mesh returns the coordinates [km] of every grid node, where
// nodeX[row][col] is the x coordinate of column col and
// nodeY[row][col] is the y coordinate of row row.
func (g *Grid) Mesh() (nodeX, nodeY [][]float64) {
	x, y := g.XKm(), g.YKm()
	nodeX = make([][]float64, len(y))
	nodeY = make([][]float64, len(y))
	for j := range y {
		nodeX[j] = make([]float64, len(x))
		copy(nodeX[j], x)
		nodeY[j] = make([]float64, len(x))
		for i := range x {
			nodeY[j][i] = y[j]
		}
	}
	return nodeX, nodeY
}

// Extent returns the range of the node coordinates [km].
func (g *Grid) Extent() (xmin, xmax, ymin, ymax float64) {
	if len(g.X) == 0 || len(g.Y) == 0 {
		return 0, 0, 0, 0
	}
	x, y := g.XKm(), g.YKm()
	return floats.Min(x), floats.Max(x), floats.Min(y), floats.Max(y)
}

// TimeAxis holds the times of the records in a file.
type TimeAxis struct {
	// Values are the times as stored in the file.
	Values []float64
	// Units are the units of Values, as given by the units attribute.
	Units string

	years []float64
}

func newTimeAxis(values []float64, units string) *TimeAxis {
	t := &TimeAxis{Values: values, Units: units}
	t.years = make([]float64, len(values))
	div := SecPerYear
	u := strings.ToLower(strings.TrimSpace(units))
	switch {
	case strings.HasPrefix(u, "year"), strings.HasPrefix(u, "common_year"),
		strings.HasPrefix(u, "yr"), strings.HasPrefix(u, "a "), u == "a":
		div = 1
	case strings.HasPrefix(u, "day"):
		div = 365
	}
	for i, v := range values {
		t.years[i] = v / div
	}
	return t
}

// Len returns the number of times in the axis. A nil axis has length 0.
func (t *TimeAxis) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Values)
}

// Years returns the times in model years. The returned slice
// should not be modified.
func (t *TimeAxis) Years() []float64 {
	if t == nil {
		return nil
	}
	return t.years
}

// Index returns the first index i where Years()[i] == year,
// or -1 if there is none. No tolerance is applied.
func (t *TimeAxis) Index(year float64) int {
	if t == nil {
		return -1
	}
	for i, y := range t.years {
		if y == year {
			return i
		}
	}
	return -1
}
