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
	"bytes"
	"errors"
	"image/gif"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spatialmodel/pismplot"
	"github.com/spatialmodel/pismplot/internal/pismtest"
)

// resetCfg restores the default configuration when the test ends.
func resetCfg(t *testing.T) {
	t.Cleanup(func() {
		for _, o := range options {
			Cfg.Set(o.name, o.defaultVal)
		}
		Root.SetOutput(nil)
	})
}

// setup writes the example file and sets it as the input.
func setup(t *testing.T) (dir string) {
	resetCfg(t)
	path := pismtest.MustWrite(t, pismtest.Example())
	Cfg.Set("Input", path)
	return t.TempDir()
}

func fileExists(t *testing.T, path string) {
	t.Helper()
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() == 0 {
		t.Errorf("%s is empty", path)
	}
}

func TestVersion(t *testing.T) {
	resetCfg(t)
	buf := new(bytes.Buffer)
	Root.SetOutput(buf)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	want := "pismplot v" + pismplot.Version + "\n"
	if buf.String() != want {
		t.Errorf("%q != %q", buf.String(), want)
	}
}

func TestMapCmd(t *testing.T) {
	dir := setup(t)
	out := filepath.Join(dir, "thk.png")
	Cfg.Set("Variable", "thk")
	Cfg.Set("Time", "10")
	Cfg.Set("MaskVariable", "thk")
	Cfg.Set("MaskThreshold", "50")
	Cfg.Set("Colorbar", true)
	Cfg.Set("Output", out)
	Root.SetArgs([]string{"map"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	fileExists(t, out)
}

func TestMapCmd_missingTime(t *testing.T) {
	dir := setup(t)
	Cfg.Set("Variable", "thk")
	Cfg.Set("Output", filepath.Join(dir, "thk.png"))
	Root.SetArgs([]string{"map"})
	err := Root.Execute()
	if err == nil {
		t.Fatal("expected an error")
	}
	var ce *pismplot.ConfigurationError
	if !errors.As(err, &ce) {
		t.Errorf("wrong error type %T: %v", err, err)
	}
}

func TestMapCmd_noInput(t *testing.T) {
	resetCfg(t)
	Cfg.Set("Variable", "thk")
	Root.SetArgs([]string{"map"})
	if err := Root.Execute(); err == nil || !strings.Contains(err.Error(), "no Input") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSeriesCmd(t *testing.T) {
	dir := setup(t)
	out := filepath.Join(dir, "ivol.png")
	Cfg.Set("Variable", "ivol")
	Cfg.Set("TimeRange", "0,20")
	Cfg.Set("Output", out)
	Root.SetArgs([]string{"timeseries"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	fileExists(t, out)
}

func TestAnimateCmd(t *testing.T) {
	dir := setup(t)
	t.Run("gif", func(t *testing.T) {
		out := filepath.Join(dir, "thk.gif")
		Cfg.Set("Variable", "thk")
		Cfg.Set("Output", out)
		Cfg.Set("Width", 3.0)
		Cfg.Set("Height", 2.5)
		Cfg.Set("TimeRange", "10,20")
		Cfg.Set("Interval", 100)
		Cfg.Set("RepeatDelay", 300)
		Root.SetArgs([]string{"animate"})
		if err := Root.Execute(); err != nil {
			t.Fatal(err)
		}
		f, err := os.Open(out)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		g, err := gif.DecodeAll(f)
		if err != nil {
			t.Fatal(err)
		}
		if len(g.Image) != 2 {
			t.Fatalf("have %d frames, want 2", len(g.Image))
		}
		if g.Delay[0] != 10 || g.Delay[1] != 40 {
			t.Errorf("wrong delays %v", g.Delay)
		}
	})
	t.Run("png", func(t *testing.T) {
		Cfg.Set("Variable", "thk")
		Cfg.Set("Output", filepath.Join(dir, "thk_%02d.png"))
		Cfg.Set("TimeRange", "")
		Root.SetArgs([]string{"animate"})
		if err := Root.Execute(); err != nil {
			t.Fatal(err)
		}
		for _, f := range []string{"thk_00.png", "thk_01.png", "thk_02.png"} {
			fileExists(t, filepath.Join(dir, f))
		}
	})
}

func TestInfoCmd(t *testing.T) {
	setup(t)
	buf := new(bytes.Buffer)
	Root.SetOutput(buf)
	Root.SetArgs([]string{"info"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"grid: 2 rows × 3 columns, x [0, 2] km, y [0, 1] km",
		"time: 3 steps, [0 10 20] years",
		"thk(time, y, x) land ice thickness [m]",
		"ivol(time) ice volume [m3]",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output does not contain %q:\n%s", want, buf.String())
		}
	}
}
