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
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/pismplot"
	"github.com/spatialmodel/pismplot/render"
)

func TestOptionalFloat(t *testing.T) {
	v, err := optionalFloat("x", "")
	if err != nil || v != nil {
		t.Errorf("empty: %v, %v", v, err)
	}
	v, err = optionalFloat("x", " 2.5e3 ")
	if err != nil {
		t.Fatal(err)
	}
	if *v != 2500 {
		t.Errorf("%g != 2500", *v)
	}
	if _, err = optionalFloat("x", "abc"); err == nil {
		t.Error("expected an error")
	}
}

func TestTimeRange(t *testing.T) {
	tests := []struct {
		in   string
		want *[2]float64
		err  bool
	}{
		{in: "", want: nil},
		{in: "0,1000", want: &[2]float64{0, 1000}},
		{in: " -500 , 2e3", want: &[2]float64{-500, 2000}},
		{in: "0", err: true},
		{in: "0,", err: true},
		{in: "0,1,2", err: true},
		{in: "a,b", err: true},
	}
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			r, err := timeRange(test.in)
			if test.err {
				if err == nil {
					t.Errorf("expected an error, got %v", r)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(r, test.want) {
				t.Errorf("%v != %v", r, test.want)
			}
		})
	}
}

func TestBackend(t *testing.T) {
	for s, want := range map[string]pismplot.Backend{
		"auto":   pismplot.BackendAuto,
		"CDF":    pismplot.BackendCDF,
		"native": pismplot.BackendNative,
	} {
		b, err := backend(s)
		if err != nil {
			t.Fatal(err)
		}
		if b != want {
			t.Errorf("%s: %v != %v", s, b, want)
		}
	}
	if _, err := backend("hdf"); err == nil {
		t.Error("expected an error")
	}
}

func TestDefaultAnimationFile(t *testing.T) {
	have := defaultAnimationFile(filepath.Join("runs", "ex_g20km.nc"))
	if have != "animation_ex_g20km.gif" {
		t.Errorf("have %s", have)
	}
}

// configFile writes a configuration file and returns a new
// configuration that reads it.
func configFile(t *testing.T, contents string) *viper.Viper {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := viper.New()
	cfg.SetConfigFile(path)
	if err := cfg.ReadInConfig(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestMapConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := configFile(t, `Variable = "thk"`)
		o, err := MapConfig(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if o.Time != nil || o.Mask.Threshold != nil || o.HighCut != nil {
			t.Errorf("unexpected options %+v", o)
		}
		if o.Norm != nil {
			t.Errorf("norm should be nil but is %+v", o.Norm)
		}
		if o.Registry == nil {
			t.Error("missing registry")
		}
	})
	t.Run("overrides", func(t *testing.T) {
		cfg := configFile(t, `
Variable = "cbase"
Time = "100"
MaskVariable = "thk"
MaskThreshold = 10
Colormap = "topo"
ColorMin = -20
LogScale = "false"
`)
		o, err := MapConfig(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if *o.Time != 100 || o.Mask.Variable != "thk" || *o.Mask.Threshold != 10 {
			t.Errorf("wrong selection %+v", o.Selection)
		}
		if o.Colormap != "topo" {
			t.Errorf("colormap %s", o.Colormap)
		}
		if o.Norm == nil {
			t.Fatal("missing norm")
		}
		// cbase defaults to a log scale from 10 to 10000.
		if *o.Norm.Min != -20 || *o.Norm.Max != 10000 || o.Norm.Log {
			t.Errorf("wrong norm %+v", o.Norm)
		}
	})
	t.Run("colormap file", func(t *testing.T) {
		dir := t.TempDir()
		cmFile := filepath.Join(dir, "colors.toml")
		err := os.WriteFile(cmFile, []byte(`
[colormaps]
thk = "Blues"
`), 0644)
		if err != nil {
			t.Fatal(err)
		}
		cfg := configFile(t, `ColormapFile = "`+filepath.ToSlash(cmFile)+`"`)
		o, err := MapConfig(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if cm := o.Registry.Colormap("thk"); cm != "Blues" {
			t.Errorf("colormap %s", cm)
		}
	})
	t.Run("bad number", func(t *testing.T) {
		cfg := configFile(t, `ColorMax = "lots"`)
		if _, err := MapConfig(cfg); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestAnimationConfig(t *testing.T) {
	cfg := configFile(t, `
Time = "5"
Interval = 50
RepeatDelay = 1000
Repeat = false
Width = 4.0
Height = 3.0
TimeRange = "0,10"
`)
	o, err := AnimationConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := render.AnimationOptions{
		MapOptions:  o.MapOptions,
		TimeRange:   &[2]float64{0, 10},
		Interval:    50 * time.Millisecond,
		RepeatDelay: time.Second,
		NoRepeat:    true,
		Width:       inches(4),
		Height:      inches(3),
	}
	if !reflect.DeepEqual(*o, want) {
		t.Errorf("%+v != %+v", *o, want)
	}
	if o.Time != nil {
		t.Error("animation should ignore Time")
	}
}
