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
	"fmt"
	"math"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// Slice is a two-dimensional (rows=y, columns=x) cross-section of
// a variable at a single time.
type Slice struct {
	*sparse.DenseArray

	// Masked specifies that NaN elements are invalid cells
	// rather than data.
	Masked bool
}

// Rows returns the number of rows (y) in s.
func (s *Slice) Rows() int { return s.Shape[0] }

// Cols returns the number of columns (x) in s.
func (s *Slice) Cols() int { return s.Shape[1] }

// Valid returns whether the cell at row j and column i holds valid data.
func (s *Slice) Valid(j, i int) bool {
	return !s.Masked || !math.IsNaN(s.Get(j, i))
}

// Copy returns a deep copy of s.
func (s *Slice) Copy() *Slice {
	return &Slice{DenseArray: s.DenseArray.Copy(), Masked: s.Masked}
}

// MaskSpec specifies a mask: cells where variable Variable is less than
// or equal to Threshold are invalid. A MaskSpec with an empty Variable
// or a nil Threshold does not mask anything.
type MaskSpec struct {
	Variable  string
	Threshold *float64
}

// Enabled returns whether m masks anything.
func (m MaskSpec) Enabled() bool { return m.Variable != "" && m.Threshold != nil }

// Selection specifies which data to extract from a Dataset.
type Selection struct {
	// Time is the model time [years] to extract. It is required for
	// variables with more than one time step.
	Time *float64

	// Mask specifies the cells to invalidate.
	Mask MaskSpec
}

// Float returns a pointer to v, for use as an optional value.
func Float(v float64) *float64 { return &v }

// Extract returns the two-dimensional slice of the named variable at
// time t [years]. Variables without a time dimension are returned whole
// and t is ignored. t may be nil if the variable has a single time step.
// Cells equal to the variable's _FillValue are marked invalid.
func (d *Dataset) Extract(name string, t *float64) (*Slice, error) {
	v, ok := d.Variable(name)
	if !ok {
		return nil, &LookupError{File: d.name, Kind: MissingVariable, Name: name}
	}

	var data []float64
	var shape []int
	var err error
	switch {
	case len(v.Lengths) < 2:
		return nil, &ConfigurationError{File: d.name, Variable: name,
			Reason: fmt.Sprintf("need at least 2 dimensions but have %d", len(v.Lengths))}
	case len(v.Lengths) == 2:
		data, err = d.src.ReadAll(name)
		shape = v.Lengths
	default:
		var i int
		if i, err = d.timeIndex(v, t); err != nil {
			return nil, err
		}
		data, err = d.src.ReadRecord(name, i)
		shape = v.Lengths[1:]
	}
	if err != nil {
		return nil, fmt.Errorf("pismplot: %s: %w", d.name, err)
	}

	if shape, err = squeeze(shape); err != nil {
		return nil, &ConfigurationError{File: d.name, Variable: name, Reason: err.Error()}
	}
	if len(data) != shape[0]*shape[1] {
		return nil, fmt.Errorf("pismplot: %s: variable %s: read %d values for shape %v",
			d.name, name, len(data), shape)
	}

	s := &Slice{DenseArray: sparse.ZerosDense(shape...)}
	copy(s.Elements, data)
	if v.FillValue != nil {
		for i, val := range s.Elements {
			if val == *v.FillValue {
				s.Elements[i] = math.NaN()
				s.Masked = true
			}
		}
	}

	fields := logrus.Fields{"variable": name, "rows": shape[0], "cols": shape[1]}
	if t != nil {
		fields["time"] = *t
	}
	d.log.WithFields(fields).Debug("pismplot extracted slice")
	return s, nil
}

// timeIndex returns the index along the time dimension of v
// that corresponds to t.
func (d *Dataset) timeIndex(v Variable, t *float64) (int, error) {
	if t == nil {
		if v.Lengths[0] == 1 {
			return 0, nil
		}
		if !v.HasTime() {
			return -1, &ConfigurationError{File: d.name, Variable: v.Name,
				Reason: fmt.Sprintf("cannot extract a 2D slice because outermost dimension %s has length %d",
					v.Dims[0], v.Lengths[0])}
		}
		return -1, &ConfigurationError{File: d.name, Variable: v.Name,
			Reason: fmt.Sprintf("t is required because %s has a time dimension of length %d",
				v.Name, v.Lengths[0])}
	}
	if !v.HasTime() {
		return -1, &ConfigurationError{File: d.name, Variable: v.Name,
			Reason: fmt.Sprintf("cannot select t=%g because outermost dimension is %s, not %s",
				*t, v.Dims[0], TimeDim)}
	}
	if d.time == nil {
		return -1, &LookupError{File: d.name, Kind: MissingDimension, Name: TimeDim}
	}
	i := d.time.Index(*t)
	if i < 0 || i >= v.Lengths[0] {
		return -1, &LookupError{File: d.name, Kind: MissingTime, Name: v.Name, Time: *t}
	}
	return i, nil
}

// squeeze removes trailing dimensions of length 1 until only two
// dimensions are left.
func squeeze(shape []int) ([]int, error) {
	o := make([]int, len(shape))
	copy(o, shape)
	for len(o) > 2 {
		last := -1
		for i := len(o) - 1; i >= 0; i-- {
			if o[i] == 1 {
				last = i
				break
			}
		}
		if last < 0 {
			break
		}
		o = append(o[:last], o[last+1:]...)
	}
	if len(o) != 2 {
		return nil, fmt.Errorf("slice with shape %v is not two-dimensional", shape)
	}
	return o, nil
}

// ApplyMask invalidates the cells of z where the mask variable at time t
// is less than or equal to the mask threshold. If m is not Enabled,
// z itself is returned. Otherwise the result is a masked copy of z and z
// is not modified.
func (d *Dataset) ApplyMask(z *Slice, m MaskSpec, t *float64) (*Slice, error) {
	if !m.Enabled() {
		return z, nil
	}
	if _, ok := d.Variable(m.Variable); !ok {
		return nil, &LookupError{File: d.name, Kind: MissingVariable, Name: m.Variable}
	}
	mask, err := d.Extract(m.Variable, t)
	if err != nil {
		return nil, err
	}
	if mask.Rows() != z.Rows() || mask.Cols() != z.Cols() {
		return nil, &ConfigurationError{File: d.name, Variable: m.Variable,
			Reason: fmt.Sprintf("mask shape %v does not match data shape %v", mask.Shape, z.Shape)}
	}
	o := z.Copy()
	o.Masked = true
	thold := *m.Threshold
	for i, v := range mask.Elements {
		if v <= thold {
			o.Elements[i] = math.NaN()
		}
	}
	return o, nil
}

// MaskedData extracts the named variable at the selected time and
// applies the selected mask at the same time.
func (d *Dataset) MaskedData(name string, sel Selection) (*Slice, error) {
	z, err := d.Extract(name, sel.Time)
	if err != nil {
		return nil, err
	}
	return d.ApplyMask(z, sel.Mask, sel.Time)
}
