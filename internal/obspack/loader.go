package obspack

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"github.com/carbonscope/co2-diagnostics/internal/diag"
	"github.com/carbonscope/co2-diagnostics/internal/series"
	"github.com/carbonscope/co2-diagnostics/internal/station"
)

// Loader reads, merges and normalizes the observation files of single
// stations from one data directory.
type Loader struct {
	dataDir string
	log     *slog.Logger
}

func NewLoader(dataDir string, log *slog.Logger) *Loader {
	return &Loader{dataDir: dataDir, log: log}
}

func (l *Loader) DataDir() string { return l.dataDir }

// LoadStation loads every file of the station, concatenates them and runs
// the normalization pipeline, then stamps the station with its mean
// coordinates. An unknown code is a validation error; a known code without
// local files is a missing-data error.
func (l *Loader) LoadStation(code string) (*series.Series, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	st, ok := station.Lookup(code)
	if !ok {
		return nil, diag.NewValidationError("station_code", "unknown station %q", code)
	}
	files, err := DiscoverStation(l.dataDir, code)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, diag.NewMissingDataError(code, l.dataDir)
	}

	parts := make([]*series.Series, 0, len(files))
	for _, path := range files {
		raw, err := readRaw(path)
		if err != nil {
			return nil, err
		}
		part, err := fileSeries(st, raw)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	merged, err := series.Concat(parts...)
	if err != nil {
		return nil, err
	}
	out, err := series.Normalize(merged)
	if err != nil {
		return nil, err
	}
	enrichLocation(out)

	if from, to, ok := out.TimeBounds(); ok {
		l.log.Debug("loaded station series",
			"station", code,
			"files", len(files),
			"rows", out.Len(),
			"from", from,
			"to", to,
			"lat", out.Station.Latitude,
			"lon", out.Station.Longitude,
		)
	}
	return out, nil
}

// fileSeries converts one decoded file into a raw observation table.
func fileSeries(st station.Station, raw *rawFile) (*series.Series, error) {
	tv, ok := raw.vars[series.FieldTime]
	if !ok {
		return nil, fmt.Errorf("%s: no time variable", raw.path)
	}
	if _, ok := raw.vars[series.FieldValue]; !ok {
		return nil, fmt.Errorf("%s: no value variable", raw.path)
	}
	if av, ok := raw.vars[series.FieldAltitude]; ok {
		if u := av.unit(); u != "m" {
			return nil, diag.NewValidationError("altitude",
				"%s: altitude units %q, want m", filepath.Base(raw.path), u)
		}
	}

	s := series.New(st)
	s.Sources = []string{filepath.Base(raw.path)}
	if err := s.SetTimeRaw(tv.values, tv.unit()); err != nil {
		return nil, fmt.Errorf("%s: %w", raw.path, err)
	}
	for _, name := range obsNumericVars {
		if name == series.FieldTime {
			continue
		}
		rv, ok := raw.vars[name]
		if !ok {
			continue
		}
		if err := s.AddColumn(name, rv.unit(), rv.values, false); err != nil {
			return nil, fmt.Errorf("%s: %w", raw.path, err)
		}
	}
	return s, nil
}

// enrichLocation fills the station coordinates with the means over all
// observations. Longitudes are wrapped onto the 0-360 axis the model grids
// use.
func enrichLocation(s *series.Series) {
	if c, ok := s.Column(series.FieldLatitude); ok {
		s.Station.Latitude = nanMean(c.Values)
	}
	if c, ok := s.Column(series.FieldLongitude); ok {
		s.Station.Longitude = station.WrapLon360(nanMean(c.Values))
	}
	if c, ok := s.Column(series.FieldAltitude); ok {
		s.Station.Altitude = nanMean(c.Values)
	}
}

func nanMean(vals []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
