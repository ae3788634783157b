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
	"image"
	stdpalette "image/color/palette"
	stddraw "image/draw"
	"image/gif"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spatialmodel/pismplot"
	"gonum.org/v1/plot/vg"
)

// Default animation timing.
const (
	DefaultInterval    = 200 * time.Millisecond
	DefaultRepeatDelay = 500 * time.Millisecond
)

// AnimationOptions specifies how an animation is made.
// The Time of the embedded selection is ignored.
type AnimationOptions struct {
	MapOptions

	// TimeRange, if not nil, specifies the first and last
	// model times [years] of the animation. Both must be times
	// in the file. By default all times are used.
	TimeRange *[2]float64

	// Interval is the delay between frames. The default
	// is DefaultInterval.
	Interval time.Duration

	// RepeatDelay is an extra delay after the last frame before
	// the animation repeats. The default is DefaultRepeatDelay.
	RepeatDelay time.Duration

	// NoRepeat specifies that the animation plays only once.
	NoRepeat bool

	// Width and Height are the frame dimensions. The defaults are
	// DefaultWidth and DefaultHeight.
	Width, Height vg.Length
}

func (o *AnimationOptions) setDefaults() {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.RepeatDelay <= 0 {
		o.RepeatDelay = DefaultRepeatDelay
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
}

// Frame is a single frame of an animation.
type Frame struct {
	Time   float64 // [years]
	Figure *Figure
}

// Frames creates one map of the named variable for each time step
// of the animation. The title of each map ends with the time of the step.
func Frames(d Dataset, name string, o AnimationOptions) ([]Frame, error) {
	ta := d.Time()
	if ta.Len() == 0 {
		return nil, &pismplot.LookupError{File: d.Name(), Kind: pismplot.MissingDimension, Name: pismplot.TimeDim}
	}
	first, last := 0, ta.Len()-1
	if o.TimeRange != nil {
		var err error
		if first, last, err = d.TimeRange(o.TimeRange[0], o.TimeRange[1]); err != nil {
			return nil, err
		}
	}
	title := o.Title
	if title == "" {
		title = d.Title(name)
	}
	steps, err := d.Steps(first, last)
	if err != nil {
		return nil, err
	}
	frames := make([]Frame, len(steps))
	for i, t := range steps {
		mo := o.MapOptions
		mo.Time = pismplot.Float(t)
		mo.Title = fmt.Sprintf("%s (t=%g)", title, t)
		f, err := Map(d, name, mo)
		if err != nil {
			return nil, err
		}
		frames[i] = Frame{Time: t, Figure: f}
	}
	return frames, nil
}

// WriteGIF writes frames to w as an animated GIF.
func WriteGIF(w io.Writer, frames []Frame, o AnimationOptions) error {
	o.setDefaults()
	if len(frames) == 0 {
		return fmt.Errorf("render: animation has no frames")
	}
	anim := &gif.GIF{LoopCount: 0}
	if o.NoRepeat {
		anim.LoopCount = -1
	}
	delay := hundredths(o.Interval)
	for i, f := range frames {
		img := f.Figure.Canvas(o.Width, o.Height).Image()
		b := img.Bounds()
		pm := image.NewPaletted(b, stdpalette.Plan9)
		stddraw.Draw(pm, b, img, b.Min, stddraw.Src)
		anim.Image = append(anim.Image, pm)
		d := delay
		if i == len(frames)-1 && !o.NoRepeat {
			d += hundredths(o.RepeatDelay)
		}
		anim.Delay = append(anim.Delay, d)
	}
	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("render: writing gif: %v", err)
	}
	return nil
}

// hundredths converts d to hundredths of a second, the unit
// of GIF frame delays.
func hundredths(d time.Duration) int {
	return int(d / (10 * time.Millisecond))
}

// WritePNGs writes each frame to a PNG file whose name is given
// by formatting pattern (for example "thk_%03d.png") with the frame
// number. It returns the names of the files written.
func WritePNGs(pattern string, frames []Frame, o AnimationOptions) ([]string, error) {
	o.setDefaults()
	files := make([]string, len(frames))
	for i, f := range frames {
		files[i] = fmt.Sprintf(pattern, i)
		if err := writePNGFile(files[i], f.Figure, o.Width, o.Height); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func writePNGFile(name string, f *Figure, width, height vg.Length) error {
	w, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("render: %v", err)
	}
	if err := f.WritePNG(w, width, height); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Animate makes an animation of the named variable and writes it
// to outfile. If outfile contains a formatting verb such as "%03d",
// a PNG file is written for each frame; otherwise an animated GIF
// is written. It returns the names of the files written.
func Animate(d Dataset, name, outfile string, o AnimationOptions) ([]string, error) {
	frames, err := Frames(d, name, o)
	if err != nil {
		return nil, err
	}
	if IsPattern(outfile) {
		return WritePNGs(outfile, frames, o)
	}
	w, err := os.Create(outfile)
	if err != nil {
		return nil, fmt.Errorf("render: %v", err)
	}
	if err := WriteGIF(w, frames, o); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return []string{outfile}, nil
}

// IsPattern returns whether the file name contains a formatting verb.
func IsPattern(name string) bool { return strings.Contains(name, "%") }
