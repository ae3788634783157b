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
	"bytes"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/cdf"
)

// Backend specifies which NetCDF reader is used to access a file.
type Backend int

const (
	// BackendAuto chooses a reader from the first bytes of the file:
	// NetCDF classic files are read with BackendCDF and NetCDF-4 (HDF5)
	// files are read with BackendNative.
	BackendAuto Backend = iota

	// BackendCDF reads NetCDF classic and 64-bit offset files.
	BackendCDF

	// BackendNative reads NetCDF classic and NetCDF-4 files.
	BackendNative
)

func (b Backend) String() string {
	switch b {
	case BackendAuto:
		return "auto"
	case BackendCDF:
		return "cdf"
	case BackendNative:
		return "native"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// source is the storage that a Dataset reads from.
type source interface {
	// Variables returns the names of all variables in the file.
	Variables() []string

	// Dimensions returns the dimension names of variable v, or
	// nil if v does not exist.
	Dimensions(v string) []string

	// Lengths returns the dimension lengths of variable v, or
	// nil if v does not exist. The record dimension, if any, is
	// resolved to the number of records in the file.
	Lengths(v string) []int

	// Attribute returns attribute a of variable v, or nil if it is absent.
	Attribute(v, a string) interface{}

	// ReadAll reads the full contents of variable v.
	ReadAll(v string) ([]float64, error)

	// ReadRecord reads the hyperslab of v at index i of its outermost dimension.
	ReadRecord(v string, i int) ([]float64, error)

	Close() error
}

var (
	magicCDF = []byte("CDF")
	magicHDF = []byte("\x89HDF")
)

// openSource opens the file at path with the requested backend.
func openSource(path string, b Backend) (source, Backend, error) {
	if b == BackendAuto {
		var err error
		b, err = sniff(path)
		if err != nil {
			return nil, b, err
		}
	}
	switch b {
	case BackendCDF:
		f, err := os.Open(path)
		if err != nil {
			return nil, b, err
		}
		s, err := newCDFSource(f)
		if err != nil {
			f.Close()
			return nil, b, err
		}
		return s, b, nil
	case BackendNative:
		g, err := netcdf.Open(path)
		if err != nil {
			return nil, b, err
		}
		return &nativeSource{g: g}, b, nil
	default:
		return nil, b, fmt.Errorf("invalid backend %v", b)
	}
}

// sniff determines the backend from the magic bytes at the start of the file.
func sniff(path string) (Backend, error) {
	f, err := os.Open(path)
	if err != nil {
		return BackendAuto, err
	}
	defer f.Close()
	head := make([]byte, 4)
	if _, err := io.ReadFull(f, head); err != nil {
		return BackendAuto, fmt.Errorf("reading file signature: %v", err)
	}
	switch {
	case bytes.HasPrefix(head, magicCDF):
		return BackendCDF, nil
	case bytes.HasPrefix(head, magicHDF):
		return BackendNative, nil
	default:
		return BackendAuto, fmt.Errorf("not a NetCDF file (signature %q)", head)
	}
}

// cdfSource reads NetCDF classic files.
type cdfSource struct {
	f    *os.File
	cf   *cdf.File
	nrec int
}

func newCDFSource(f *os.File) (*cdfSource, error) {
	cf, err := cdf.Open(f)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return &cdfSource{f: f, cf: cf, nrec: int(cf.Header.NumRecs(fi.Size()))}, nil
}

func (s *cdfSource) Variables() []string { return s.cf.Header.Variables() }

func (s *cdfSource) Dimensions(v string) []string { return s.cf.Header.Dimensions(v) }

func (s *cdfSource) Lengths(v string) []int {
	if s.cf.Header.Dimensions(v) == nil {
		return nil
	}
	l := s.cf.Header.Lengths(v)
	o := make([]int, len(l))
	copy(o, l)
	if s.cf.Header.IsRecordVariable(v) {
		o[0] = s.nrec
	}
	return o
}

func (s *cdfSource) Attribute(v, a string) interface{} { return s.cf.Header.GetAttribute(v, a) }

func (s *cdfSource) ReadAll(v string) ([]float64, error) {
	dims := s.Lengths(v)
	if dims == nil {
		return nil, fmt.Errorf("variable %s not in file", v)
	}
	return s.read(v, make([]int, len(dims)), dims)
}

func (s *cdfSource) ReadRecord(v string, i int) ([]float64, error) {
	dims := s.Lengths(v)
	if len(dims) == 0 {
		return nil, fmt.Errorf("variable %s not in file or has no dimensions", v)
	}
	if i < 0 || i >= dims[0] {
		return nil, fmt.Errorf("index %d out of range for variable %s with %d records", i, v, dims[0])
	}
	start := make([]int, len(dims))
	start[0] = i
	dims[0] = 1
	return s.read(v, start, dims)
}

// read reads the block of v starting at start with the given lengths.
func (s *cdfSource) read(v string, start, lengths []int) ([]float64, error) {
	nread := 1
	end := make([]int, len(start))
	for i, l := range lengths {
		nread *= l
		end[i] = start[i] + l - 1 // the end corner is inclusive.
	}
	if nread == 0 {
		return []float64{}, nil
	}
	r := s.cf.Reader(v, start, end)
	buf := r.Zero(nread)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("reading netcdf variable %s: %v", v, err)
	}
	return toFloat64(buf)
}

func (s *cdfSource) Close() error { return s.f.Close() }

// nativeSource reads NetCDF classic and NetCDF-4 files
// using a pure-Go HDF5 implementation.
type nativeSource struct {
	g api.Group
}

func (s *nativeSource) Variables() []string { return s.g.ListVariables() }

func (s *nativeSource) Dimensions(v string) []string {
	vg, err := s.g.GetVarGetter(v)
	if err != nil {
		return nil
	}
	return vg.Dimensions()
}

func (s *nativeSource) Lengths(v string) []int {
	vr, err := s.g.GetVariable(v)
	if err != nil {
		return nil
	}
	shape := make([]int, len(vr.Dimensions))
	val := reflect.ValueOf(vr.Values)
	for i := range shape {
		if val.Kind() != reflect.Slice {
			break
		}
		shape[i] = val.Len()
		if val.Len() == 0 {
			break
		}
		val = val.Index(0)
	}
	return shape
}

func (s *nativeSource) Attribute(v, a string) interface{} {
	var attrs api.AttributeMap
	if v == "" {
		attrs = s.g.Attributes()
	} else {
		vg, err := s.g.GetVarGetter(v)
		if err != nil {
			return nil
		}
		attrs = vg.Attributes()
	}
	if attrs == nil {
		return nil
	}
	val, ok := attrs.Get(a)
	if !ok {
		return nil
	}
	return val
}

func (s *nativeSource) ReadAll(v string) ([]float64, error) {
	vr, err := s.g.GetVariable(v)
	if err != nil {
		return nil, fmt.Errorf("reading netcdf variable %s: %v", v, err)
	}
	return flatten(reflect.ValueOf(vr.Values), nil)
}

func (s *nativeSource) ReadRecord(v string, i int) ([]float64, error) {
	vr, err := s.g.GetVariable(v)
	if err != nil {
		return nil, fmt.Errorf("reading netcdf variable %s: %v", v, err)
	}
	val := reflect.ValueOf(vr.Values)
	if val.Kind() != reflect.Slice {
		return nil, fmt.Errorf("variable %s has no dimensions", v)
	}
	if i < 0 || i >= val.Len() {
		return nil, fmt.Errorf("index %d out of range for variable %s with %d records", i, v, val.Len())
	}
	return flatten(val.Index(i), nil)
}

func (s *nativeSource) Close() error {
	s.g.Close()
	return nil
}

// flatten appends the numeric contents of the possibly nested slice
// val to o in row-major order.
func flatten(val reflect.Value, o []float64) ([]float64, error) {
	switch val.Kind() {
	case reflect.Slice, reflect.Array:
		if val.Type().Elem().Kind() == reflect.Slice || val.Type().Elem().Kind() == reflect.Array {
			for i := 0; i < val.Len(); i++ {
				var err error
				if o, err = flatten(val.Index(i), o); err != nil {
					return nil, err
				}
			}
			return o, nil
		}
		if o == nil {
			o = make([]float64, 0, val.Len())
		}
		for i := 0; i < val.Len(); i++ {
			f, err := toFloat(val.Index(i))
			if err != nil {
				return nil, err
			}
			o = append(o, f)
		}
		return o, nil
	default:
		f, err := toFloat(val)
		if err != nil {
			return nil, err
		}
		return append(o, f), nil
	}
}

func toFloat(v reflect.Value) (float64, error) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	default:
		return 0, fmt.Errorf("unsupported data type %s", v.Type())
	}
}

// toFloat64 converts a buffer filled by a cdf.Reader to float64 values.
func toFloat64(buf interface{}) ([]float64, error) {
	switch b := buf.(type) {
	case []float64:
		return b, nil
	case []float32:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	case []int32:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	case []int16:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	case []uint8: // NetCDF bytes are signed.
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(int8(v))
		}
		return o, nil
	default:
		return nil, fmt.Errorf("unsupported data type %T", buf)
	}
}
