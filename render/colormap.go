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
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/palette/moreland"
)

// errNaN is returned by Linear.At for NaN values.
var errNaN = errors.New("render: NaN value")

// Stop is a control point of a Linear colormap.
type Stop struct {
	// Pos is the position of the stop, in data units or, if the
	// stops are normalized, in the range [0, 1].
	Pos   float64
	Color colorful.Color
	Alpha float64
}

// Linear is a colormap that interpolates linearly in RGB space
// between color stops. It implements palette.ColorMap.
type Linear struct {
	stops    []Stop // positions normalized to [0, 1]
	min, max float64
	alpha    float64
}

// NewLinear returns a colormap with the given stops. The stop positions
// are normalized so that the first stop is at 0 and the last is at 1.
// The minimum and maximum of the returned colormap are 0 and 1.
func NewLinear(stops []Stop) (*Linear, error) {
	if len(stops) < 2 {
		return nil, fmt.Errorf("render: colormap needs at least 2 stops but has %d", len(stops))
	}
	s := make([]Stop, len(stops))
	copy(s, stops)
	sort.SliceStable(s, func(i, j int) bool { return s[i].Pos < s[j].Pos })
	lo, hi := s[0].Pos, s[len(s)-1].Pos
	if !(hi > lo) {
		return nil, fmt.Errorf("render: colormap stops span zero range [%g, %g]", lo, hi)
	}
	for i := range s {
		s[i].Pos = (s[i].Pos - lo) / (hi - lo)
	}
	return &Linear{stops: s, min: 0, max: 1, alpha: 1}, nil
}

// hexStops creates opaque stops from hex color codes at the given positions.
// Positions are evenly spaced if pos is nil.
func hexStops(pos []float64, hex ...string) []Stop {
	s := make([]Stop, len(hex))
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}
		p := float64(i) / float64(len(hex)-1)
		if pos != nil {
			p = pos[i]
		}
		s[i] = Stop{Pos: p, Color: c, Alpha: 1}
	}
	return s
}

// colorStops creates opaque evenly-spaced stops from a list of colors.
func colorStops(cs []color.Color) []Stop {
	s := make([]Stop, len(cs))
	for i, c := range cs {
		cc, _ := colorful.MakeColor(c)
		s[i] = Stop{Pos: float64(i) / float64(len(cs)-1), Color: cc, Alpha: 1}
	}
	return s
}

// At implements palette.ColorMap.
func (l *Linear) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, errNaN
	case v < l.min:
		return nil, palette.ErrUnderflow
	case v > l.max:
		return nil, palette.ErrOverflow
	}
	f := 0.
	if l.max > l.min {
		f = (v - l.min) / (l.max - l.min)
	}
	i := sort.Search(len(l.stops), func(i int) bool { return l.stops[i].Pos >= f })
	var c colorful.Color
	var a float64
	switch {
	case i == 0:
		c, a = l.stops[0].Color, l.stops[0].Alpha
	case i == len(l.stops):
		last := l.stops[len(l.stops)-1]
		c, a = last.Color, last.Alpha
	default:
		lo, hi := l.stops[i-1], l.stops[i]
		t := (f - lo.Pos) / (hi.Pos - lo.Pos)
		c = lo.Color.BlendRgb(hi.Color, t)
		a = lo.Alpha + t*(hi.Alpha-lo.Alpha)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(a * l.alpha * 255))}, nil
}

// Max implements palette.ColorMap.
func (l *Linear) Max() float64 { return l.max }

// SetMax implements palette.ColorMap.
func (l *Linear) SetMax(v float64) { l.max = v }

// Min implements palette.ColorMap.
func (l *Linear) Min() float64 { return l.min }

// SetMin implements palette.ColorMap.
func (l *Linear) SetMin(v float64) { l.min = v }

// Alpha implements palette.ColorMap.
func (l *Linear) Alpha() float64 { return l.alpha }

// SetAlpha implements palette.ColorMap.
func (l *Linear) SetAlpha(a float64) { l.alpha = a }

// Palette implements palette.ColorMap.
func (l *Linear) Palette(n int) palette.Palette { return sample(l, n) }

// colors is a palette.Palette.
type colors []color.Color

func (c colors) Colors() []color.Color { return c }

// sample returns n colors evenly spaced over the range of cm.
func sample(cm palette.ColorMap, n int) palette.Palette {
	o := make(colors, n)
	min, max := cm.Min(), cm.Max()
	for i := range o {
		v := min
		if n > 1 {
			v = min + float64(i)*(max-min)/float64(n-1)
		}
		// Clamp to avoid rounding errors at the ends of the range.
		v = math.Max(min, math.Min(max, v))
		c, err := cm.At(v)
		if err != nil {
			c = color.Transparent
		}
		o[i] = c
	}
	return o
}

// Topographic colormaps, with stops at elevations [m].
var (
	seaTopo = hexStops([]float64{-6000, -3000, -2000, -1500, -1000, -750, -500, -250, -100, 0},
		"#71abd8", "#79b2de", "#84b9e3", "#8dc1ea", "#96c9f0",
		"#a1d2f7", "#acdbfb", "#b9e3ff", "#c6ecff", "#d8f2fe")
	landTopo = hexStops([]float64{0, 50, 100, 250, 500, 750, 1000, 1250, 1500, 1750, 2000, 3000, 4000, 6000},
		"#acd0a5", "#94bf8b", "#a8c68f", "#bdcc96", "#d1d7ab", "#e1e4b5", "#efebc0",
		"#e8e1b6", "#ded6a3", "#d3ca9d", "#cab982", "#c3a76b", "#b9985a", "#aa8753")
)

// custom returns the stops of the named custom colormap.
func custom(name string) ([]Stop, bool) {
	switch name {
	case "sea_topo":
		return seaTopo, true
	case "land_topo":
		return landTopo, true
	case "topo":
		s := make([]Stop, 0, len(seaTopo)+len(landTopo))
		s = append(s, seaTopo...)
		return append(s, landTopo...), true
	case "velocity":
		return hexStops(nil, "#ffffff", "#00ffff", "#ffff00", "#ff0000", "#000000"), true
	case "shades":
		return []Stop{
			{Pos: 0, Color: colorful.Color{}, Alpha: 0},
			{Pos: 1, Color: colorful.Color{}, Alpha: 1},
		}, true
	case "terrain":
		return []Stop{
			{Pos: 0, Color: colorful.Color{R: 0.2, G: 0.2, B: 0.6}, Alpha: 1},
			{Pos: 0.15, Color: colorful.Color{R: 0, G: 0.6, B: 1}, Alpha: 1},
			{Pos: 0.25, Color: colorful.Color{R: 0, G: 0.8, B: 0.4}, Alpha: 1},
			{Pos: 0.5, Color: colorful.Color{R: 1, G: 1, B: 0.6}, Alpha: 1},
			{Pos: 0.75, Color: colorful.Color{R: 0.5, G: 0.36, B: 0.33}, Alpha: 1},
			{Pos: 1, Color: colorful.Color{R: 1, G: 1, B: 1}, Alpha: 1},
		}, true
	}
	return nil, false
}

var morelandMaps = map[string]func() palette.ColorMap{
	"SmoothBlueRed":     func() palette.ColorMap { return moreland.SmoothBlueRed() },
	"BlackBody":         moreland.BlackBody,
	"ExtendedBlackBody": moreland.ExtendedBlackBody,
	"Kindlmann":         moreland.Kindlmann,
	"ExtendedKindlmann": moreland.ExtendedKindlmann,
}

// NewColorMap returns the named colormap. Names ending in "_r"
// return the reversed colormap. Available colormaps are the custom
// maps sea_topo, land_topo, topo, velocity, shades and terrain,
// the ColorBrewer palettes (for example "Blues" or "YlGnBu"), and
// the Moreland maps (for example "SmoothBlueRed").
func NewColorMap(name string) (palette.ColorMap, error) {
	if base := strings.TrimSuffix(name, "_r"); base != name {
		cm, err := NewColorMap(base)
		if err != nil {
			return nil, err
		}
		return palette.Reverse(cm), nil
	}
	if stops, ok := custom(name); ok {
		return NewLinear(stops)
	}
	if f, ok := morelandMaps[name]; ok {
		return f(), nil
	}
	// ColorBrewer palettes have at most 12 colors.
	for n := 12; n >= 3; n-- {
		p, err := brewer.GetPalette(brewer.TypeAny, name, n)
		if err == nil {
			return NewLinear(colorStops(p.Colors()))
		}
	}
	return nil, fmt.Errorf("render: unknown colormap %q", name)
}
