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

// Package pismplotutil is the command-line interface of pismplot.
package pismplotutil

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/pismplot"
	"github.com/spatialmodel/pismplot/render"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// Log is the logger used by the commands.
var Log = logrus.StandardLogger()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to pismplot.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "verbose",
			usage: `
              verbose specifies whether to print debugging messages.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Input",
			usage: `
              Input is the path to the PISM NetCDF file to read.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{mapCmd.Flags(), seriesCmd.Flags(), animateCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "Backend",
			usage: `
              Backend is the NetCDF reader to use: "auto" detects the file
              format, "cdf" reads NetCDF classic files, and "native" reads
              NetCDF classic and NetCDF-4 files.`,
			defaultVal: "auto",
			flagsets:   []*pflag.FlagSet{mapCmd.Flags(), seriesCmd.Flags(), animateCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "Variable",
			usage: `
              Variable is the name of the variable to plot.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{mapCmd.Flags(), seriesCmd.Flags(), animateCmd.Flags()},
		},
		{
			name: "Output",
			usage: `
              Output is the path of the output file. Maps and time series are
              written in PNG format. Animations are written as animated GIF
              files unless Output contains a formatting verb such as %03d, in
              which case a numbered PNG file is written for each frame.
              If empty, a name is created from the variable name.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{mapCmd.Flags(), seriesCmd.Flags(), animateCmd.Flags()},
		},
		{
			name: "Time",
			usage: `
              Time is the model time [years] to plot. It must match one of
              the times in the file exactly. It is required for variables
              with more than one time step.`,
			shorthand:  "t",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{mapCmd.Flags()},
		},
		{
			name: "MaskVariable",
			usage: `
              MaskVariable is the name of a variable used to hide grid cells.
              Cells where MaskVariable is less than or equal to MaskThreshold
              are not drawn.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{mapCmd.Flags(), animateCmd.Flags()},
		},
		{
			name: "MaskThreshold",
			usage: `
              MaskThreshold is the threshold for MaskVariable.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{mapCmd.Flags(), animateCmd.Flags()},
		},
		{
			name: "Colormap",
			usage: `
              Colormap is the name of the colormap. If empty, the default
              colormap of the variable is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{mapCmd.Flags(), animateCmd.Flags()},
		},
		{
			name: "ColormapFile",
			usage: `
              ColormapFile is the path to a TOML file with default colormaps and
              color scales for variables, which replace the built-in defaults.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{mapCmd.Flags(), animateCmd.Flags()},
		},
		{
			name: "ColorMin",
			usage: `
              ColorMin is the data value at the bottom of the color scale.
              If empty, the default for the variable or the data minimum is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{mapCmd.Flags(), animateCmd.Flags()},
		},
		{
			name: "ColorMax",
			usage: `
              ColorMax is the data value at the top of the color scale.
              If empty, the default for the variable or the data maximum is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{mapCmd.Flags(), animateCmd.Flags()},
		},
		{
			name: "LogScale",
			usage: `
              LogScale ("true" or "false") specifies whether colors are assigned
              on a logarithmic scale. If empty, the default for the variable is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{mapCmd.Flags(), animateCmd.Flags()},
		},
		{
			name: "HighCut",
			usage: `
              HighCut, if set, is the value above which a separate color scale
              is used for outliers.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{mapCmd.Flags(), animateCmd.Flags()},
		},
		{
			name: "Colorbar",
			usage: `
              Colorbar specifies whether to draw a colorbar.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{mapCmd.Flags(), animateCmd.Flags()},
		},
		{
			name: "Title",
			usage: `
              Title is the plot title. If empty, the long_name of the variable
              is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{mapCmd.Flags(), seriesCmd.Flags(), animateCmd.Flags()},
		},
		{
			name: "NoTitle",
			usage: `
              NoTitle specifies that no title (or, for time series, no y axis
              label) is drawn.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{mapCmd.Flags(), seriesCmd.Flags(), animateCmd.Flags()},
		},
		{
			name: "Width",
			usage: `
              Width is the width of the figure in inches.`,
			defaultVal: 6.0,
			flagsets:   []*pflag.FlagSet{mapCmd.Flags(), seriesCmd.Flags(), animateCmd.Flags()},
		},
		{
			name: "Height",
			usage: `
              Height is the height of the figure in inches.`,
			defaultVal: 5.0,
			flagsets:   []*pflag.FlagSet{mapCmd.Flags(), seriesCmd.Flags(), animateCmd.Flags()},
		},
		{
			name: "TimeRange",
			usage: `
              TimeRange is the range of model times [years] to show, in the
              format "start,end". For animations both must match times in the
              file exactly. If empty, all times are shown.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{seriesCmd.Flags(), animateCmd.Flags()},
		},
		{
			name: "Interval",
			usage: `
              Interval is the delay between animation frames in milliseconds.`,
			defaultVal: 200,
			flagsets:   []*pflag.FlagSet{animateCmd.Flags()},
		},
		{
			name: "RepeatDelay",
			usage: `
              RepeatDelay is the delay in milliseconds after the last frame
              before the animation repeats.`,
			defaultVal: 500,
			flagsets:   []*pflag.FlagSet{animateCmd.Flags()},
		},
		{
			name: "Repeat",
			usage: `
              Repeat specifies whether the animation repeats.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{animateCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("PISMPLOT")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(mapCmd)
	Root.AddCommand(seriesCmd)
	Root.AddCommand(animateCmd)
	Root.AddCommand(infoCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets up logging.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("pismplot: problem reading configuration file: %v", err)
		}
	}
	Log.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	}
	Log.Level = logrus.InfoLevel
	if Cfg.GetBool("verbose") {
		Log.Level = logrus.DebugLevel
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "pismplot",
	Short: "Quick visualization of PISM model output.",
	Long: `pismplot reads the NetCDF output of the Parallel Ice Sheet Model (PISM)
and draws maps, time series and animations of model variables.
Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'PISMPLOT_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
	SilenceUsage:      true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of pismplot.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("pismplot v%s\n", pismplot.Version)
	},
	DisableAutoGenTag: true,
}

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Draw a map of a variable.",
	Long: `map draws a map of a two-dimensional slice of a variable at a single
model time, optionally hiding cells where a mask variable is below a threshold.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDataset(Cfg)
		if err != nil {
			return err
		}
		defer d.Close()
		name, err := variable(Cfg)
		if err != nil {
			return err
		}
		o, err := MapConfig(Cfg)
		if err != nil {
			return err
		}
		f, err := render.Map(d, name, *o)
		if err != nil {
			return err
		}
		out := outputFile(Cfg, name+".png")
		width, height := size(Cfg)
		if err := writePNG(out, f, width, height); err != nil {
			return err
		}
		Log.WithFields(logrus.Fields{"variable": name, "file": out}).Info("pismplot wrote map")
		return nil
	},
	DisableAutoGenTag: true,
}

var seriesCmd = &cobra.Command{
	Use:   "timeseries",
	Short: "Plot a time series of a scalar variable.",
	Long: `timeseries plots a scalar variable such as the ice volume against
model time in thousands of years.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDataset(Cfg)
		if err != nil {
			return err
		}
		defer d.Close()
		name, err := variable(Cfg)
		if err != nil {
			return err
		}
		o, err := SeriesConfig(Cfg)
		if err != nil {
			return err
		}
		f, err := render.TimeSeries(d, name, *o)
		if err != nil {
			return err
		}
		out := outputFile(Cfg, name+"_series.png")
		width, height := size(Cfg)
		if err := writePNG(out, f, width, height); err != nil {
			return err
		}
		Log.WithFields(logrus.Fields{"variable": name, "file": out}).Info("pismplot wrote time series")
		return nil
	},
	DisableAutoGenTag: true,
}

var animateCmd = &cobra.Command{
	Use:   "animate",
	Short: "Make an animation of a variable.",
	Long: `animate draws a map of a variable for each model time in the time range
and combines them into an animated GIF file or a sequence of PNG files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDataset(Cfg)
		if err != nil {
			return err
		}
		defer d.Close()
		name, err := variable(Cfg)
		if err != nil {
			return err
		}
		o, err := AnimationConfig(Cfg)
		if err != nil {
			return err
		}
		out := outputFile(Cfg, defaultAnimationFile(d.Name()))
		files, err := render.Animate(d, name, out, *o)
		if err != nil {
			return err
		}
		Log.WithFields(logrus.Fields{"variable": name, "files": len(files), "file": out}).
			Info("pismplot wrote animation")
		return nil
	},
	DisableAutoGenTag: true,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe the contents of a file.",
	Long:  `info prints the grid, the model times and the variables in a file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDataset(Cfg)
		if err != nil {
			return err
		}
		defer d.Close()
		printInfo(cmd, d)
		return nil
	},
	DisableAutoGenTag: true,
}

// printInfo writes a description of d to the output of cmd.
func printInfo(cmd *cobra.Command, d *pismplot.Dataset) {
	cmd.Printf("file: %s (%s)\n", d.Name(), d.Backend())
	if g := d.Grid(); g != nil {
		rows, cols := g.Shape()
		xmin, xmax, ymin, ymax := g.Extent()
		cmd.Printf("grid: %d rows × %d columns, x [%g, %g] km, y [%g, %g] km\n",
			rows, cols, xmin, xmax, ymin, ymax)
	} else {
		cmd.Println("grid: none")
	}
	if ta := d.Time(); ta != nil {
		cmd.Printf("time: %d steps, %v years\n", ta.Len(), ta.Years())
	} else {
		cmd.Println("time: none")
	}
	vars := d.Variables()
	sort.Strings(vars)
	cmd.Println("variables:")
	for _, name := range vars {
		v, _ := d.Variable(name)
		desc := []string{fmt.Sprintf("%s(%s)", name, strings.Join(v.Dims, ", "))}
		if v.LongName != "" {
			desc = append(desc, v.LongName)
		}
		if v.Units != "" {
			desc = append(desc, "["+v.Units+"]")
		}
		cmd.Printf("  %s\n", strings.Join(desc, " "))
	}
}

func writePNG(name string, f *render.Figure, width, height float64) error {
	w, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("pismplot: %v", err)
	}
	if err := f.WritePNG(w, inches(width), inches(height)); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
