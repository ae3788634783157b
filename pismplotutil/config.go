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

package pismplotutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/pismplot"
	"github.com/spatialmodel/pismplot/render"
	"github.com/spf13/cast"
	"gonum.org/v1/plot/vg"
)

// optionalFloat parses s as a number, returning nil if s is empty.
func optionalFloat(name, s string) (*float64, error) {
	s = strings.TrimSpace(os.ExpandEnv(s))
	if s == "" {
		return nil, nil
	}
	v, err := cast.ToFloat64E(s)
	if err != nil {
		return nil, fmt.Errorf("pismplot: invalid %s %q: %v", name, s, err)
	}
	return &v, nil
}

// optionalBool parses s as a boolean, returning nil if s is empty.
func optionalBool(name, s string) (*bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := cast.ToBoolE(s)
	if err != nil {
		return nil, fmt.Errorf("pismplot: invalid %s %q: %v", name, s, err)
	}
	return &v, nil
}

// timeRange parses a time range in the format "start,end",
// returning nil if s is empty.
func timeRange(s string) (*[2]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("pismplot: invalid TimeRange %q: the format is start,end", s)
	}
	var r [2]float64
	for i, p := range parts {
		v, err := optionalFloat("TimeRange", p)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, fmt.Errorf("pismplot: invalid TimeRange %q: the format is start,end", s)
		}
		r[i] = *v
	}
	return &r, nil
}

// backend parses the name of a NetCDF reader.
func backend(s string) (pismplot.Backend, error) {
	for _, b := range []pismplot.Backend{pismplot.BackendAuto, pismplot.BackendCDF, pismplot.BackendNative} {
		if strings.EqualFold(s, b.String()) {
			return b, nil
		}
	}
	return pismplot.BackendAuto, fmt.Errorf("pismplot: invalid Backend %q", s)
}

// openDataset opens the input file specified in cfg.
func openDataset(cfg *viper.Viper) (*pismplot.Dataset, error) {
	in := os.ExpandEnv(cfg.GetString("Input"))
	if in == "" {
		return nil, fmt.Errorf("pismplot: no Input file specified")
	}
	b, err := backend(cfg.GetString("Backend"))
	if err != nil {
		return nil, err
	}
	return pismplot.Open(in, pismplot.WithBackend(b), pismplot.WithLogger(Log))
}

// variable returns the name of the variable specified in cfg.
func variable(cfg *viper.Viper) (string, error) {
	v := cfg.GetString("Variable")
	if v == "" {
		return "", fmt.Errorf("pismplot: no Variable specified")
	}
	return v, nil
}

// outputFile returns the output file name specified in cfg,
// or def if none is specified.
func outputFile(cfg *viper.Viper, def string) string {
	if o := os.ExpandEnv(cfg.GetString("Output")); o != "" {
		return o
	}
	return def
}

// defaultAnimationFile returns the default name of an animation
// of the given input file.
func defaultAnimationFile(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return fmt.Sprintf("animation_%s.gif", base)
}

// size returns the figure size [inches].
func size(cfg *viper.Viper) (width, height float64) {
	return cfg.GetFloat64("Width"), cfg.GetFloat64("Height")
}

func inches(v float64) vg.Length { return vg.Length(v) * vg.Inch }

// MapConfig creates map options from the configuration.
func MapConfig(cfg *viper.Viper) (*render.MapOptions, error) {
	o := &render.MapOptions{
		Colormap: cfg.GetString("Colormap"),
		Title:    cfg.GetString("Title"),
		NoTitle:  cfg.GetBool("NoTitle"),
		Colorbar: cfg.GetBool("Colorbar"),
	}
	var err error
	if o.Time, err = optionalFloat("Time", cfg.GetString("Time")); err != nil {
		return nil, err
	}
	if o.Mask.Threshold, err = optionalFloat("MaskThreshold", cfg.GetString("MaskThreshold")); err != nil {
		return nil, err
	}
	o.Mask.Variable = cfg.GetString("MaskVariable")
	if o.HighCut, err = optionalFloat("HighCut", cfg.GetString("HighCut")); err != nil {
		return nil, err
	}

	o.Registry = render.NewRegistry()
	if path := os.ExpandEnv(cfg.GetString("ColormapFile")); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("pismplot: opening ColormapFile: %v", err)
		}
		defer f.Close()
		if err := o.Registry.Load(f); err != nil {
			return nil, err
		}
	}

	min, err := optionalFloat("ColorMin", cfg.GetString("ColorMin"))
	if err != nil {
		return nil, err
	}
	max, err := optionalFloat("ColorMax", cfg.GetString("ColorMax"))
	if err != nil {
		return nil, err
	}
	logScale, err := optionalBool("LogScale", cfg.GetString("LogScale"))
	if err != nil {
		return nil, err
	}
	if min != nil || max != nil || logScale != nil {
		n := o.Registry.Norm(cfg.GetString("Variable"))
		if min != nil {
			n.Min = min
		}
		if max != nil {
			n.Max = max
		}
		if logScale != nil {
			n.Log = *logScale
		}
		o.Norm = &n
	}
	return o, nil
}

// SeriesConfig creates time series options from the configuration.
func SeriesConfig(cfg *viper.Viper) (*render.SeriesOptions, error) {
	o := &render.SeriesOptions{
		YLabel:   cfg.GetString("Title"),
		NoYLabel: cfg.GetBool("NoTitle"),
	}
	var err error
	if o.TimeRange, err = timeRange(cfg.GetString("TimeRange")); err != nil {
		return nil, err
	}
	return o, nil
}

// AnimationConfig creates animation options from the configuration.
func AnimationConfig(cfg *viper.Viper) (*render.AnimationOptions, error) {
	mo, err := MapConfig(cfg)
	if err != nil {
		return nil, err
	}
	mo.Time = nil
	o := &render.AnimationOptions{
		MapOptions:  *mo,
		Interval:    time.Duration(cfg.GetInt("Interval")) * time.Millisecond,
		RepeatDelay: time.Duration(cfg.GetInt("RepeatDelay")) * time.Millisecond,
		NoRepeat:    !cfg.GetBool("Repeat"),
	}
	width, height := size(cfg)
	o.Width, o.Height = inches(width), inches(height)
	if o.TimeRange, err = timeRange(cfg.GetString("TimeRange")); err != nil {
		return nil, err
	}
	return o, nil
}
