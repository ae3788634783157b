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
	"errors"
	"reflect"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/pismplot/internal/pismtest"
	"gonum.org/v1/gonum/floats"
)

func TestTimeSeries(t *testing.T) {
	d := openExample(t, pismtest.Example())

	s, err := d.TimeSeries("ivol")
	if err != nil {
		t.Fatal(err)
	}
	want := &Series{Time: []float64{0, 10, 20}, Values: []float64{1e9, 2e9, 3e9}}
	if !reflect.DeepEqual(s, want) {
		t.Errorf("series differs: %v", pretty.Diff(s, want))
	}

	_, err = d.TimeSeries("thk")
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("want ConfigurationError, have %v", err)
	}

	_, err = d.TimeSeries("volume")
	var lookupErr *LookupError
	if !errors.As(err, &lookupErr) {
		t.Errorf("want LookupError, have %v", err)
	}
}

func TestTimeSeries_noTime(t *testing.T) {
	d := openExample(t, &pismtest.File{
		X:    []float64{0, 1000},
		Y:    []float64{0, 1000},
		Vars: []pismtest.Var{{Name: "topg", Dims: []string{"y", "x"}, Data: []float64{1, 2, 3, 4}}},
	})
	_, err := d.TimeSeries("topg")
	var lookupErr *LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("want LookupError, have %v", err)
	}
	if lookupErr.Kind != MissingDimension || lookupErr.Name != TimeDim {
		t.Errorf("have %+v", lookupErr)
	}
	if _, _, err := d.TimeRange(0, 0); !errors.As(err, &lookupErr) {
		t.Errorf("want LookupError, have %v", err)
	}
	if _, err := d.Steps(0, 0); !errors.As(err, &lookupErr) {
		t.Errorf("want LookupError, have %v", err)
	}
}

func TestTimeRange(t *testing.T) {
	d := openExample(t, pismtest.Example())
	for _, test := range []struct {
		start, end  float64
		first, last int
		lookupErr   bool
		cfgErr      bool
	}{
		{start: 0, end: 20, first: 0, last: 2},
		{start: 10, end: 10, first: 1, last: 1},
		{start: 10, end: 20, first: 1, last: 2},
		{start: 5, end: 20, lookupErr: true},
		{start: 0, end: 25, lookupErr: true},
		{start: 20, end: 0, cfgErr: true},
	} {
		first, last, err := d.TimeRange(test.start, test.end)
		var lookupErr *LookupError
		var cfgErr *ConfigurationError
		switch {
		case test.lookupErr:
			if !errors.As(err, &lookupErr) {
				t.Errorf("[%g, %g]: want LookupError, have %v", test.start, test.end, err)
			}
		case test.cfgErr:
			if !errors.As(err, &cfgErr) {
				t.Errorf("[%g, %g]: want ConfigurationError, have %v", test.start, test.end, err)
			}
		case err != nil:
			t.Errorf("[%g, %g]: %v", test.start, test.end, err)
		case first != test.first || last != test.last:
			t.Errorf("[%g, %g]: have (%d, %d), want (%d, %d)", test.start, test.end,
				first, last, test.first, test.last)
		}
	}
}

func TestSteps(t *testing.T) {
	d := openExample(t, pismtest.Example())
	steps, err := d.Steps(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.Equal(steps, []float64{10, 20}) {
		t.Errorf("steps: %v", steps)
	}
	for _, r := range [][2]int{{-1, 1}, {0, 3}, {2, 1}} {
		var cfgErr *ConfigurationError
		if _, err := d.Steps(r[0], r[1]); !errors.As(err, &cfgErr) {
			t.Errorf("%v: want ConfigurationError, have %v", r, err)
		}
	}
}

func TestTimeUnits(t *testing.T) {
	for _, test := range []struct {
		units  string
		values []float64
		want   []float64
	}{
		{units: "seconds since 1-1-1", values: pismtest.Years(0, 10, 1e5), want: []float64{0, 10, 1e5}},
		{units: "years since 1-1-1", values: []float64{-5, 0, 5}, want: []float64{-5, 0, 5}},
		{units: "common_years since 1-1-1", values: []float64{1, 2}, want: []float64{1, 2}},
		{units: "yr", values: []float64{1, 2}, want: []float64{1, 2}},
		{units: "a", values: []float64{1, 2}, want: []float64{1, 2}},
		{units: "days since 2000-01-01", values: []float64{0, 3650}, want: []float64{0, 10}},
		{units: "", values: pismtest.Years(3), want: []float64{3}},
	} {
		ta := newTimeAxis(test.values, test.units)
		if !floats.EqualApprox(ta.Years(), test.want, 1e-12) {
			t.Errorf("%q: have %v, want %v", test.units, ta.Years(), test.want)
		}
		if ta.Len() != len(test.values) {
			t.Errorf("%q: length %d", test.units, ta.Len())
		}
	}
}

func TestTimeAxisIndex(t *testing.T) {
	ta := newTimeAxis([]float64{0, 10, 10, 20}, "years")
	if i := ta.Index(10); i != 1 {
		t.Errorf("duplicate time should match first index, have %d", i)
	}
	if i := ta.Index(10.0000001); i != -1 {
		t.Errorf("inexact time should not match, have %d", i)
	}
	var nilAxis *TimeAxis
	if nilAxis.Index(0) != -1 || nilAxis.Len() != 0 || nilAxis.Years() != nil {
		t.Error("nil axis should be empty")
	}
}

func TestGrid(t *testing.T) {
	g := &Grid{X: []float64{0, 1000, 2000}, Y: []float64{-500, 500}}
	nodeX, nodeY := g.Mesh()
	wantX := [][]float64{{0, 1, 2}, {0, 1, 2}}
	wantY := [][]float64{{-0.5, -0.5, -0.5}, {0.5, 0.5, 0.5}}
	if !reflect.DeepEqual(nodeX, wantX) {
		t.Errorf("nodeX: %v", pretty.Diff(nodeX, wantX))
	}
	if !reflect.DeepEqual(nodeY, wantY) {
		t.Errorf("nodeY: %v", pretty.Diff(nodeY, wantY))
	}
	xmin, xmax, ymin, ymax := g.Extent()
	if xmin != 0 || xmax != 2 || ymin != -0.5 || ymax != 0.5 {
		t.Errorf("extent: %g %g %g %g", xmin, xmax, ymin, ymax)
	}
	if rows, cols := g.Shape(); rows != 2 || cols != 3 {
		t.Errorf("shape: (%d, %d)", rows, cols)
	}
}
