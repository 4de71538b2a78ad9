package cmip

import (
	"fmt"
	"math"
	"time"

	"github.com/ctessum/sparse"
)

// Dataset is one model's CO2 concentration field on a regular
// latitude-longitude grid, in ppm. Values is dimensioned [time][lat][lon],
// or [time][lev][lat][lon] when the field carries a vertical axis; level
// index 0 is the lowest model level.
type Dataset struct {
	Model  string
	Source string
	Times  []time.Time
	Lat    []float64 // degrees north
	Lon    []float64 // degrees east, 0-360
	Lev    []float64 // nil for surface-only fields
	Unit   string
	Values *sparse.DenseArray
}

// SurfaceValue returns the lowest-level concentration at one grid cell and
// time step.
func (d *Dataset) SurfaceValue(t, j, i int) float64 {
	if d.Lev == nil {
		return d.Values.Get(t, j, i)
	}
	return d.Values.Get(t, 0, j, i)
}

// CellSeries returns the surface concentration time series at grid cell
// (j latitude, i longitude).
func (d *Dataset) CellSeries(j, i int) []float64 {
	out := make([]float64, len(d.Times))
	for t := range d.Times {
		out[t] = d.SurfaceValue(t, j, i)
	}
	return out
}

// GlobalMean returns the cosine-latitude weighted mean of the surface field
// at each time step. NaN cells drop out of both the numerator and the
// weight sum, and summation runs in fixed latitude-major order so the
// result is reproducible bit for bit.
func (d *Dataset) GlobalMean() []float64 {
	weights := make([]float64, len(d.Lat))
	for j, lat := range d.Lat {
		weights[j] = math.Cos(lat * math.Pi / 180)
	}
	out := make([]float64, len(d.Times))
	for t := range d.Times {
		num, den := 0.0, 0.0
		for j := range d.Lat {
			w := weights[j]
			for i := range d.Lon {
				v := d.SurfaceValue(t, j, i)
				if math.IsNaN(v) {
					continue
				}
				num += w * v
				den += w
			}
		}
		if den == 0 {
			out[t] = math.NaN()
			continue
		}
		out[t] = num / den
	}
	return out
}

// validate checks that the value array matches the coordinate axes.
func (d *Dataset) validate() error {
	want := []int{len(d.Times), len(d.Lat), len(d.Lon)}
	if d.Lev != nil {
		want = []int{len(d.Times), len(d.Lev), len(d.Lat), len(d.Lon)}
	}
	shape := d.Values.Shape
	if len(shape) != len(want) {
		return fmt.Errorf("co2 field has rank %d, axes say %d", len(shape), len(want))
	}
	for k := range want {
		if shape[k] != want[k] {
			return fmt.Errorf("co2 field shape %v does not match axes %v", shape, want)
		}
	}
	if len(d.Times) == 0 {
		return fmt.Errorf("co2 field has no time steps")
	}
	return nil
}
