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

import "fmt"

// Series is a scalar variable as a function of time.
type Series struct {
	Time   []float64 // [years]
	Values []float64
}

// TimeSeries returns the values of the named scalar time series
// variable, such as ice volume, together with the model times.
func (d *Dataset) TimeSeries(name string) (*Series, error) {
	if d.time == nil {
		return nil, &LookupError{File: d.name, Kind: MissingDimension, Name: TimeDim}
	}
	v, ok := d.Variable(name)
	if !ok {
		return nil, &LookupError{File: d.name, Kind: MissingVariable, Name: name}
	}
	if len(v.Dims) != 1 || !v.HasTime() {
		return nil, &ConfigurationError{File: d.name, Variable: name,
			Reason: fmt.Sprintf("time series must have dimensions [%s] but has %v", TimeDim, v.Dims)}
	}
	vals, err := d.src.ReadAll(name)
	if err != nil {
		return nil, fmt.Errorf("pismplot: %s: %w", d.name, err)
	}
	years := d.time.Years()
	if len(vals) != len(years) {
		return nil, &ConfigurationError{File: d.name, Variable: name,
			Reason: fmt.Sprintf("has %d values but there are %d times", len(vals), len(years))}
	}
	s := &Series{Time: make([]float64, len(years)), Values: vals}
	copy(s.Time, years)
	return s, nil
}

// TimeRange returns the indices of the times start and end [years].
// Both must match a time in the file exactly.
func (d *Dataset) TimeRange(start, end float64) (first, last int, err error) {
	if d.time == nil {
		return -1, -1, &LookupError{File: d.name, Kind: MissingDimension, Name: TimeDim}
	}
	if first = d.time.Index(start); first < 0 {
		return -1, -1, &LookupError{File: d.name, Kind: MissingTime, Time: start}
	}
	if last = d.time.Index(end); last < 0 {
		return -1, -1, &LookupError{File: d.name, Kind: MissingTime, Time: end}
	}
	if last < first {
		return -1, -1, &ConfigurationError{File: d.name,
			Reason: fmt.Sprintf("time range end %g is before start %g", end, start)}
	}
	return first, last, nil
}

// Steps returns the model times [years] from index first to index
// last, inclusive.
func (d *Dataset) Steps(first, last int) ([]float64, error) {
	if d.time == nil {
		return nil, &LookupError{File: d.name, Kind: MissingDimension, Name: TimeDim}
	}
	if first < 0 || last >= d.time.Len() || last < first {
		return nil, &ConfigurationError{File: d.name,
			Reason: fmt.Sprintf("invalid time steps [%d, %d] for %d times", first, last, d.time.Len())}
	}
	years := d.time.Years()
	o := make([]float64, last-first+1)
	copy(o, years[first:last+1])
	return o, nil
}
