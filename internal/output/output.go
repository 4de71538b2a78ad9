// Package output writes diagnostic tables to disk, as CSV and as classic
// NetCDF, so the data behind a figure can be reused outside the toolkit.
package output

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/go-gota/gota/dataframe"

	"github.com/carbonscope/co2-diagnostics/internal/series"
)

// fillValue replaces NaN in NetCDF output, matching the convention of the
// observation files themselves.
const fillValue = -999.99

// AppendBeforeExt inserts "_suffix" before the path's extension, so
// "figure.png" becomes "figure_trend.png".
func AppendBeforeExt(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + suffix + ext
}

// WithExt swaps the path's extension, adding one if absent.
func WithExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// WriteCSV writes a data frame to path.
func WriteCSV(df dataframe.DataFrame, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer f.Close()
	if err := df.WriteCSV(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// WriteNetCDF writes a time-keyed table as a classic NetCDF file: the time
// column as seconds since 1970, every other column as a double in ppm. NaN
// cells become the fill value.
func WriteNetCDF(df dataframe.DataFrame, path string) error {
	if df.Err != nil {
		return df.Err
	}
	n := df.Nrow()
	if n == 0 {
		return fmt.Errorf("writing %s: empty table", path)
	}
	names := df.Names()
	var dataCols []string
	hasTime := false
	for _, name := range names {
		if name == series.ColTime {
			hasTime = true
			continue
		}
		dataCols = append(dataCols, name)
	}
	if !hasTime {
		return fmt.Errorf("writing %s: table has no %s column", path, series.ColTime)
	}

	secs := make([]float64, n)
	for i, rec := range df.Col(series.ColTime).Records() {
		t, err := series.ParseTimeKey(rec)
		if err != nil {
			return fmt.Errorf("writing %s: row %d: %w", path, i, err)
		}
		secs[i] = float64(t.Unix())
	}

	h := cdf.NewHeader([]string{"time"}, []int{n})
	h.AddVariable("time", []string{"time"}, []float64{})
	h.AddAttribute("time", "units", "seconds since 1970-01-01 00:00:00")
	for _, name := range dataCols {
		h.AddVariable(name, []string{"time"}, []float64{})
		h.AddAttribute(name, "units", "ppm")
		h.AddAttribute(name, "_FillValue", []float64{fillValue})
	}
	h.Define()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer f.Close()
	nc, err := cdf.Create(f, h)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	if _, err := nc.Writer("time", nil, nil).Write(secs); err != nil {
		return fmt.Errorf("writing %s: time: %w", path, err)
	}
	for _, name := range dataCols {
		vals := append([]float64(nil), df.Col(name).Float()...)
		for i, v := range vals {
			if math.IsNaN(v) {
				vals[i] = fillValue
			}
		}
		if _, err := nc.Writer(name, nil, nil).Write(vals); err != nil {
			return fmt.Errorf("writing %s: %s: %w", path, name, err)
		}
	}
	return f.Close()
}
