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

// Package pismplot provides an interface to PISM NetCDF output files:
// it reads the model grid and time axis and extracts (optionally masked)
// two-dimensional slices of model variables for quick visualization.
package pismplot

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Version gives the version number.
const Version = "0.3.0"

// Names of the dimensions and coordinate variables of a PISM file.
const (
	XDim    = "x"
	YDim    = "y"
	TimeDim = "time"
)

// SecPerYear is the number of seconds in a model year.
const SecPerYear = 365 * 24 * 3600.

// Dataset is an open PISM output file.
type Dataset struct {
	name    string
	backend Backend
	src     source

	grid *Grid
	time *TimeAxis

	log logrus.FieldLogger
}

// Variable holds information about a variable stored in a Dataset.
type Variable struct {
	Name     string
	Dims     []string // dimension names
	Lengths  []int    // dimension lengths
	LongName string
	Units    string

	// FillValue is the value of the _FillValue attribute, or nil if
	// the variable does not specify one.
	FillValue *float64
}

// HasTime returns whether the outermost dimension of v is time.
func (v Variable) HasTime() bool {
	return len(v.Dims) > 0 && v.Dims[0] == TimeDim
}

// An Option configures how a Dataset is opened.
type Option func(*options)

type options struct {
	requireGrid bool
	backend     Backend
	log         logrus.FieldLogger
}

// RequireGrid causes Open to fail if the file does not have
// x and y coordinate variables.
func RequireGrid() Option {
	return func(o *options) { o.requireGrid = true }
}

// WithBackend forces the use of the given NetCDF reader.
func WithBackend(b Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithLogger sets the logger for the Dataset. The default is
// the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// Open opens the PISM NetCDF file at path and reads its grid
// and time axis. The returned Dataset must be closed by the caller.
func Open(path string, opts ...Option) (*Dataset, error) {
	o := options{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	src, backend, err := openSource(path, o.backend)
	if err != nil {
		return nil, fmt.Errorf("pismplot: opening %s: %w", path, err)
	}
	d := &Dataset{
		name:    path,
		backend: backend,
		src:     src,
		log:     o.log.WithField("file", path),
	}
	if err := d.init(o.requireGrid); err != nil {
		src.Close()
		return nil, err
	}
	d.log.WithFields(logrus.Fields{
		"backend":   backend,
		"variables": len(src.Variables()),
		"grid":      d.grid != nil,
		"timesteps": d.time.Len(),
	}).Debug("pismplot opened dataset")
	return d, nil
}

// init reads the grid and time coordinates.
func (d *Dataset) init(requireGrid bool) error {
	x, err := d.coordinate(XDim)
	if err != nil {
		return err
	}
	y, err := d.coordinate(YDim)
	if err != nil {
		return err
	}
	switch {
	case x != nil && y != nil:
		d.grid = &Grid{X: x, Y: y}
	case requireGrid && x == nil:
		return &LookupError{File: d.name, Kind: MissingDimension, Name: XDim}
	case requireGrid:
		return &LookupError{File: d.name, Kind: MissingDimension, Name: YDim}
	}

	t, err := d.coordinate(TimeDim)
	if err != nil {
		return err
	}
	if t != nil {
		d.time = newTimeAxis(t, attrString(d.src.Attribute(TimeDim, "units")))
	}
	return nil
}

// coordinate reads the one-dimensional variable name, returning nil
// if it does not exist.
func (d *Dataset) coordinate(name string) ([]float64, error) {
	dims := d.src.Lengths(name)
	if dims == nil {
		return nil, nil
	}
	if len(dims) != 1 {
		return nil, &ConfigurationError{File: d.name, Variable: name,
			Reason: fmt.Sprintf("coordinate variable should have 1 dimension but has %d", len(dims))}
	}
	v, err := d.src.ReadAll(name)
	if err != nil {
		return nil, fmt.Errorf("pismplot: %s: %w", d.name, err)
	}
	return v, nil
}

// Close closes the underlying file.
// It is safe to call Close more than once.
func (d *Dataset) Close() error {
	if d.src == nil {
		return nil
	}
	err := d.src.Close()
	d.src = nil
	return err
}

// Name returns the path the Dataset was opened from.
func (d *Dataset) Name() string { return d.name }

// Backend returns the reader used for the Dataset.
func (d *Dataset) Backend() Backend { return d.backend }

// Grid returns the spatial grid, or nil if the file does not have
// x and y coordinates.
func (d *Dataset) Grid() *Grid { return d.grid }

// Shape returns the number of rows (y) and columns (x) of the grid.
// Both are zero if the file does not have a grid.
func (d *Dataset) Shape() (rows, cols int) {
	if d.grid == nil {
		return 0, 0
	}
	return d.grid.Shape()
}

// Time returns the time axis, or nil if the file does not have a
// time coordinate.
func (d *Dataset) Time() *TimeAxis { return d.time }

// Variables returns the names of the variables in the file.
func (d *Dataset) Variables() []string {
	if d.src == nil {
		return nil
	}
	return d.src.Variables()
}

// Variable returns information about the variable with the given name.
// The second return value is false if it does not exist.
func (d *Dataset) Variable(name string) (Variable, bool) {
	if d.src == nil {
		return Variable{}, false
	}
	lengths := d.src.Lengths(name)
	if lengths == nil {
		return Variable{}, false
	}
	v := Variable{
		Name:     name,
		Dims:     d.src.Dimensions(name),
		Lengths:  lengths,
		LongName: attrString(d.src.Attribute(name, "long_name")),
		Units:    attrString(d.src.Attribute(name, "units")),
	}
	if f, ok := attrFloat(d.src.Attribute(name, "_FillValue")); ok {
		v.FillValue = &f
	}
	return v, true
}

// Title returns the long_name of the named variable, or
// the name itself if there is no long_name.
func (d *Dataset) Title(name string) string {
	if v, ok := d.Variable(name); ok && v.LongName != "" {
		return v.LongName
	}
	return name
}

// Units returns the units of the named variable, or an empty string
// if they are not specified.
func (d *Dataset) Units(name string) string {
	v, _ := d.Variable(name)
	return v.Units
}

// attrString converts a text attribute value to a string.
func attrString(a interface{}) string {
	switch v := a.(type) {
	case string:
		return strings.TrimRight(v, "\x00")
	case []byte:
		return strings.TrimRight(string(v), "\x00")
	default:
		return ""
	}
}

// attrFloat converts the first element of a numeric attribute value
// to a float64.
func attrFloat(a interface{}) (float64, bool) {
	switch v := a.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int32:
		return float64(v), true
	case int16:
		return float64(v), true
	case int8:
		return float64(v), true
	case []float64:
		if len(v) > 0 {
			return v[0], true
		}
	case []float32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []int32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []int16:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []int8:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	}
	return 0, false
}
