// Package series implements the in-memory observation table that every
// diagnostic works on: a column-oriented, time-indexed set of measurements
// for one station, plus the normalization, windowing and resampling
// operations applied to it.
package series

import (
	"fmt"
	"time"

	"github.com/carbonscope/co2-diagnostics/internal/station"
)

// Primary dimension names. Freshly loaded tables are keyed by file order
// ("obs"); Normalize re-keys them by time.
const (
	DimObs  = "obs"
	DimTime = "time"
)

// Canonical field names.
const (
	FieldTime        = "time"
	FieldTimeDecimal = "time_decimal"
	FieldLatitude    = "latitude"
	FieldLongitude   = "longitude"
	FieldAltitude    = "altitude"
	FieldValue       = "value" // raw measurement name in observation files
	FieldCO2         = "co2"   // canonical name after normalization
)

// Column is one named variable of a Series. Coordinate columns describe
// where/when a measurement was taken; the rest are measurements.
type Column struct {
	Name   string
	Unit   string
	Coord  bool
	Values []float64
}

// clone returns a deep copy of the column.
func (c *Column) clone() *Column {
	out := &Column{Name: c.Name, Unit: c.Unit, Coord: c.Coord}
	out.Values = append([]float64(nil), c.Values...)
	return out
}

// Series is the observation table for a single station. Time may be carried
// in one of three states: raw numeric (CF offsets or decimal years, in
// TimeRaw), text (ISO 8601, in TimeText) or decoded (Times). EnsureDatetime
// converges all of them onto Times.
type Series struct {
	Station station.Station
	Sources []string // provenance: file names this table was loaded from

	Dim      string
	Times    []time.Time
	TimeRaw  *Column
	TimeText []string

	cols []*Column
	n    int // row count; -1 until the first column or time axis is set
}

// New returns an empty series for st, keyed by observation index.
func New(st station.Station) *Series {
	return &Series{Station: st, Dim: DimObs, n: -1}
}

// Len returns the number of rows.
func (s *Series) Len() int {
	if s.n < 0 {
		return 0
	}
	return s.n
}

func (s *Series) setLen(n int, what string) error {
	if s.n < 0 {
		s.n = n
		return nil
	}
	if s.n != n {
		return fmt.Errorf("%s: length %d does not match series length %d", what, n, s.n)
	}
	return nil
}

// SetTimeRaw attaches an undecoded numeric time axis with its unit string
// (e.g. "seconds since 1970-01-01 00:00:00 UTC", or a decimal-year unit).
func (s *Series) SetTimeRaw(vals []float64, unit string) error {
	if err := s.setLen(len(vals), "raw time axis"); err != nil {
		return err
	}
	s.TimeRaw = &Column{Name: FieldTime, Unit: unit, Coord: true, Values: vals}
	return nil
}

// SetTimeText attaches an undecoded textual (ISO 8601) time axis.
func (s *Series) SetTimeText(vals []string) error {
	if err := s.setLen(len(vals), "text time axis"); err != nil {
		return err
	}
	s.TimeText = vals
	return nil
}

// SetTimes attaches an already decoded time axis.
func (s *Series) SetTimes(ts []time.Time) error {
	if err := s.setLen(len(ts), "time axis"); err != nil {
		return err
	}
	s.Times = ts
	return nil
}

// AddColumn appends a column. All columns of a series have the same length.
func (s *Series) AddColumn(name, unit string, vals []float64, coord bool) error {
	if _, ok := s.Column(name); ok {
		return fmt.Errorf("column %q already present", name)
	}
	if err := s.setLen(len(vals), "column "+name); err != nil {
		return err
	}
	s.cols = append(s.cols, &Column{Name: name, Unit: unit, Coord: coord, Values: vals})
	return nil
}

// Column returns the named column, if present.
func (s *Series) Column(name string) (*Column, bool) {
	for _, c := range s.cols {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Columns returns the columns in insertion order.
func (s *Series) Columns() []*Column {
	return s.cols
}

// Clone returns a deep copy; transformation steps operate on clones so the
// input table is never mutated.
func (s *Series) Clone() *Series {
	out := &Series{
		Station: s.Station,
		Sources: append([]string(nil), s.Sources...),
		Dim:     s.Dim,
		n:       s.n,
	}
	if s.Times != nil {
		out.Times = append([]time.Time(nil), s.Times...)
	}
	if s.TimeRaw != nil {
		out.TimeRaw = s.TimeRaw.clone()
	}
	if s.TimeText != nil {
		out.TimeText = append([]string(nil), s.TimeText...)
	}
	for _, c := range s.cols {
		out.cols = append(out.cols, c.clone())
	}
	return out
}

// permute reorders all row-aligned data by perm, where perm[i] gives the
// source row for destination row i.
func (s *Series) permute(perm []int) {
	if s.Times != nil {
		ts := make([]time.Time, len(perm))
		for i, j := range perm {
			ts[i] = s.Times[j]
		}
		s.Times = ts
	}
	if s.TimeRaw != nil {
		vs := make([]float64, len(perm))
		for i, j := range perm {
			vs[i] = s.TimeRaw.Values[j]
		}
		s.TimeRaw.Values = vs
	}
	if s.TimeText != nil {
		vs := make([]string, len(perm))
		for i, j := range perm {
			vs[i] = s.TimeText[j]
		}
		s.TimeText = vs
	}
	for _, c := range s.cols {
		vs := make([]float64, len(perm))
		for i, j := range perm {
			vs[i] = c.Values[j]
		}
		c.Values = vs
	}
}

// filterRows keeps only the rows whose indices appear in keep (ascending).
func (s *Series) filterRows(keep []int) {
	s.permute(keep)
	s.n = len(keep)
}

// Concat concatenates parts row-wise into a single series. All parts must
// carry the same columns (by name) and the same time representation; the
// result belongs to the first part's station and accumulates all sources.
func Concat(parts ...*Series) (*Series, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("concat: no series given")
	}
	out := parts[0].Clone()
	for _, p := range parts[1:] {
		if err := out.appendSeries(p); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Series) appendSeries(p *Series) error {
	if len(p.cols) != len(s.cols) {
		return fmt.Errorf("concat: column count mismatch (%d vs %d)", len(p.cols), len(s.cols))
	}
	if (s.TimeRaw == nil) != (p.TimeRaw == nil) || (s.TimeText == nil) != (p.TimeText == nil) ||
		(s.Times == nil) != (p.Times == nil) {
		return fmt.Errorf("concat: mixed time representations")
	}
	if s.TimeRaw != nil {
		if s.TimeRaw.Unit != p.TimeRaw.Unit {
			return fmt.Errorf("concat: time units differ (%q vs %q)", s.TimeRaw.Unit, p.TimeRaw.Unit)
		}
		s.TimeRaw.Values = append(s.TimeRaw.Values, p.TimeRaw.Values...)
	}
	if s.TimeText != nil {
		s.TimeText = append(s.TimeText, p.TimeText...)
	}
	if s.Times != nil {
		s.Times = append(s.Times, p.Times...)
	}
	for _, c := range s.cols {
		pc, ok := p.Column(c.Name)
		if !ok {
			return fmt.Errorf("concat: column %q missing", c.Name)
		}
		c.Values = append(c.Values, pc.Values...)
	}
	s.Sources = append(s.Sources, p.Sources...)
	s.n += p.Len()
	return nil
}
