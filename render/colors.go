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
	"io"
	"math"

	"github.com/BurntSushi/toml"
)

// DefaultColormap is used for variables that are not in the Registry.
const DefaultColormap = "SmoothBlueRed"

// Norm specifies how data values are mapped to colors.
// A nil Min or Max is set from the data.
type Norm struct {
	Min *float64 `toml:"min"`
	Max *float64 `toml:"max"`

	// Log specifies that colors are assigned by the
	// base-10 logarithm of the data.
	Log bool `toml:"log"`
}

// Range returns the range of the norm given the range of the
// data, [dmin, dmax]. For logarithmic norms, the returned values are
// base-10 logarithms and non-positive data limits are ignored.
func (n Norm) Range(dmin, dmax float64) (min, max float64) {
	min, max = dmin, dmax
	if n.Min != nil {
		min = *n.Min
	}
	if n.Max != nil {
		max = *n.Max
	}
	if n.Log {
		min, max = logOrNaN(min), logOrNaN(max)
		if math.IsNaN(min) {
			min = max - 1
		}
		if math.IsNaN(max) {
			max = min + 1
		}
	}
	if math.IsNaN(min) || math.IsInf(min, 0) {
		min = 0
	}
	if math.IsNaN(max) || math.IsInf(max, 0) {
		max = min + 1
	}
	if max <= min {
		// The colormap needs a positive range.
		max = min + 1
	}
	return min, max
}

func logOrNaN(v float64) float64 {
	if v <= 0 {
		return math.NaN()
	}
	return math.Log10(v)
}

// Registry holds the default colormap and norm for each variable.
type Registry struct {
	Colormaps map[string]string `toml:"colormaps"`
	Norms     map[string]Norm   `toml:"norms"`
}

func f(v float64) *float64 { return &v }

// NewRegistry returns a registry of the default colors of
// common PISM variables.
func NewRegistry() *Registry {
	return &Registry{
		Colormaps: map[string]string{
			"air_temp":      "Spectral_r",
			"precipitation": "YlGnBu",
			"temppabase":    "Blues_r",
			"topg":          "terrain",
			"thk":           "Blues_r",
			"usurf":         "land_topo",
			"cbase":         "velocity",
			"csurf":         "velocity",
			"shading":       "shades",
		},
		Norms: map[string]Norm{
			"air_temp":      {Min: f(-30), Max: f(30)},
			"precipitation": {Min: f(0.1), Max: f(10), Log: true},
			"temppabase":    {Min: f(-10), Max: f(0)},
			"topg":          {Min: f(0)},
			"cbase":         {Min: f(10), Max: f(10000), Log: true},
			"csurf":         {Min: f(10), Max: f(10000), Log: true},
			"usurf":         {Min: f(0), Max: f(6000)},
			"shading":       {Min: f(0), Max: f(1)},
		},
	}
}

// Load reads colormap and norm overrides in TOML format from r,
// for example:
//
//	[colormaps]
//	thk = "YlGnBu"
//
//	[norms.thk]
//	min = 0.0
//	max = 3000.0
//
// Loaded entries replace existing entries for the same variable.
func (r *Registry) Load(rd io.Reader) error {
	var o Registry
	if _, err := toml.DecodeReader(rd, &o); err != nil {
		return fmt.Errorf("render: reading colormap configuration: %v", err)
	}
	for k, v := range o.Colormaps {
		if _, err := NewColorMap(v); err != nil {
			return fmt.Errorf("render: colormap for %s: %v", k, err)
		}
		if r.Colormaps == nil {
			r.Colormaps = make(map[string]string)
		}
		r.Colormaps[k] = v
	}
	for k, v := range o.Norms {
		if r.Norms == nil {
			r.Norms = make(map[string]Norm)
		}
		r.Norms[k] = v
	}
	return nil
}

// Colormap returns the name of the colormap for the given variable.
func (r *Registry) Colormap(variable string) string {
	if r != nil {
		if c, ok := r.Colormaps[variable]; ok {
			return c
		}
	}
	return DefaultColormap
}

// Norm returns the norm for the given variable. The zero Norm, which
// scales colors to the range of the data, is returned for variables
// without an entry.
func (r *Registry) Norm(variable string) Norm {
	if r == nil {
		return Norm{}
	}
	return r.Norms[variable]
}
