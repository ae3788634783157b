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

// A ConfigurationError is returned when a required parameter is missing
// or inconsistent given the shape of the data in the file, for example
// when no time is given for a variable with several time steps.
type ConfigurationError struct {
	File     string // file the dataset was opened from
	Variable string // variable being read, if any
	Reason   string
}

func (e *ConfigurationError) Error() string {
	if e.Variable == "" {
		return fmt.Sprintf("pismplot: %s: %s", e.File, e.Reason)
	}
	return fmt.Sprintf("pismplot: %s: variable %s: %s", e.File, e.Variable, e.Reason)
}

// LookupKind specifies what could not be found.
type LookupKind int

// These are the kinds of things that a LookupError can refer to.
const (
	MissingVariable LookupKind = iota
	MissingDimension
	MissingTime
)

func (k LookupKind) String() string {
	switch k {
	case MissingVariable:
		return "variable"
	case MissingDimension:
		return "dimension"
	case MissingTime:
		return "time"
	default:
		return fmt.Sprintf("LookupKind(%d)", int(k))
	}
}

// A LookupError is returned when a named variable, a dimension, or
// a requested time is not present in the file.
type LookupError struct {
	File string
	Kind LookupKind
	Name string  // name of the variable or dimension
	Time float64 // requested time [years], for MissingTime
}

func (e *LookupError) Error() string {
	if e.Kind == MissingTime {
		if e.Name == "" {
			return fmt.Sprintf("pismplot: cannot find t=%g in %s", e.Time, e.File)
		}
		return fmt.Sprintf("pismplot: cannot find t=%g for %s in %s", e.Time, e.Name, e.File)
	}
	return fmt.Sprintf("pismplot: cannot find %s %s in %s", e.Kind, e.Name, e.File)
}
