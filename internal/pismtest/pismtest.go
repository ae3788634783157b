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

// Package pismtest writes small PISM-like NetCDF files for use in tests.
package pismtest

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
)

// SecPerYear is the number of seconds in a model year.
const SecPerYear = 365 * 24 * 3600.

// Var is a variable to be written to a test file.
type Var struct {
	Name string
	Dims []string
	Data []float64 // row-major

	// Float32 specifies that the variable is stored in single precision.
	Float32 bool

	LongName, Units string
	FillValue       *float64
}

// Dim is an additional dimension.
type Dim struct {
	Name string
	Len  int
}

// File describes a test file.
type File struct {
	X, Y []float64 // [m]; x and y are omitted if nil.
	Time []float64 // time coordinate values; omitted if nil.

	// TimeUnits is the units attribute of the time variable.
	// The default is seconds.
	TimeUnits string

	// FixedTime specifies that time is a fixed-length dimension
	// rather than the record dimension.
	FixedTime bool

	Dims []Dim
	Vars []Var
}

// Years converts model years to seconds.
func Years(y ...float64) []float64 {
	o := make([]float64, len(y))
	for i, v := range y {
		o[i] = v * SecPerYear
	}
	return o
}

// Write writes f to a NetCDF classic file at path.
func (f *File) Write(path string) error {
	var dims []string
	var lengths []int
	if f.Time != nil {
		dims = append(dims, "time")
		if f.FixedTime {
			lengths = append(lengths, len(f.Time))
		} else {
			lengths = append(lengths, 0)
		}
	}
	if f.Y != nil {
		dims = append(dims, "y")
		lengths = append(lengths, len(f.Y))
	}
	if f.X != nil {
		dims = append(dims, "x")
		lengths = append(lengths, len(f.X))
	}
	for _, d := range f.Dims {
		dims = append(dims, d.Name)
		lengths = append(lengths, d.Len)
	}

	vars := make([]Var, 0, len(f.Vars)+3)
	if f.Time != nil {
		units := f.TimeUnits
		if units == "" {
			units = "seconds since 1-1-1"
		}
		vars = append(vars, Var{Name: "time", Dims: []string{"time"}, Data: f.Time,
			LongName: "time", Units: units})
	}
	if f.Y != nil {
		vars = append(vars, Var{Name: "y", Dims: []string{"y"}, Data: f.Y, Units: "m"})
	}
	if f.X != nil {
		vars = append(vars, Var{Name: "x", Dims: []string{"x"}, Data: f.X, Units: "m"})
	}
	vars = append(vars, f.Vars...)

	h := cdf.NewHeader(dims, lengths)
	h.AddAttribute("", "source", "pismtest")
	for _, v := range vars {
		if v.Float32 {
			h.AddVariable(v.Name, v.Dims, []float32{0})
		} else {
			h.AddVariable(v.Name, v.Dims, []float64{0})
		}
		if v.LongName != "" {
			h.AddAttribute(v.Name, "long_name", v.LongName)
		}
		if v.Units != "" {
			h.AddAttribute(v.Name, "units", v.Units)
		}
		if v.FillValue != nil {
			if v.Float32 {
				h.AddAttribute(v.Name, "_FillValue", []float32{float32(*v.FillValue)})
			} else {
				h.AddAttribute(v.Name, "_FillValue", []float64{*v.FillValue})
			}
		}
	}
	h.Define()

	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()
	ff, err := cdf.Create(w, h)
	if err != nil {
		return err
	}
	for _, v := range vars {
		if err := writeVar(ff, v); err != nil {
			return fmt.Errorf("pismtest: writing variable %s: %v", v.Name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

func writeVar(f *cdf.File, v Var) error {
	var end []int
	if !f.Header.IsRecordVariable(v.Name) {
		end = f.Header.Lengths(v.Name)
		n := 1
		for _, l := range end {
			n *= l
		}
		if n != len(v.Data) {
			return fmt.Errorf("dims are %d but array length is %d", n, len(v.Data))
		}
	}
	start := make([]int, len(v.Dims))
	w := f.Writer(v.Name, start, end)
	var err error
	if v.Float32 {
		data32 := make([]float32, len(v.Data))
		for i, e := range v.Data {
			data32[i] = float32(e)
		}
		_, err = w.Write(data32)
	} else {
		_, err = w.Write(v.Data)
	}
	return err
}

// MustWrite writes f to a file in a temporary directory that is
// removed when the test ends, and returns the file path.
func MustWrite(t testing.TB, f *File) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_data.nc")
	if err := f.Write(path); err != nil {
		t.Fatal(err)
	}
	return path
}

// Example returns the file used in most tests: a 3×2 grid with
// three times (0, 10 and 20 years), a time-dependent ice thickness
// thk, a time-independent bed topography topg, and a scalar time
// series ivol.
func Example() *File {
	thk := []float64{
		// t = 0
		0, 10, 20,
		30, 40, 50,
		// t = 10
		60, 70, 80,
		40, 50, 55,
		// t = 20
		100, 0, 200,
		300, 0, 400,
	}
	return &File{
		X:    []float64{0, 1000, 2000},
		Y:    []float64{0, 1000},
		Time: Years(0, 10, 20),
		Vars: []Var{
			{Name: "thk", Dims: []string{"time", "y", "x"}, Data: thk,
				LongName: "land ice thickness", Units: "m"},
			{Name: "topg", Dims: []string{"y", "x"}, Data: []float64{-10, -5, 0, 5, 10, 15},
				LongName: "bedrock surface elevation", Units: "m", Float32: true},
			{Name: "ivol", Dims: []string{"time"}, Data: []float64{1e9, 2e9, 3e9},
				LongName: "ice volume", Units: "m3"},
		},
	}
}
