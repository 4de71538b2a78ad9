package series

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultCoords are the fields marked as coordinates during normalization.
var DefaultCoords = []string{FieldTimeDecimal, FieldLatitude, FieldLongitude, FieldAltitude}

// molFracUnits are the unit spellings treated as a CO2 dry-air mole
// fraction, i.e. candidates for conversion to ppm.
var molFracUnits = map[string]bool{
	"":            true,
	"1":           true,
	"mol mol-1":   true,
	"mol/mol":     true,
	"mole mole-1": true,
	"mol mol^-1":  true,
}

// IsMolFracUnit reports whether a unit string denotes a dry-air mole
// fraction that MolFracToPPM would scale by 1e6.
func IsMolFracUnit(u string) bool {
	return molFracUnits[strings.TrimSpace(strings.ToLower(u))]
}

// Step is one pure transformation of an observation table. Steps never
// mutate their input; they return a transformed copy.
type Step func(*Series) (*Series, error)

// MarkCoords returns a step that flags the named fields as coordinates.
// Fields not present in the table are skipped.
func MarkCoords(names ...string) Step {
	return func(s *Series) (*Series, error) {
		out := s.Clone()
		for _, name := range names {
			if c, ok := out.Column(name); ok {
				c.Coord = true
			}
		}
		return out, nil
	}
}

// SortByTime reorders rows into ascending time order. The sort is stable,
// so rows carrying identical timestamps keep their file order. It works on
// whichever time representation the table carries.
func SortByTime(s *Series) (*Series, error) {
	out := s.Clone()
	perm := make([]int, out.Len())
	for i := range perm {
		perm[i] = i
	}
	switch {
	case out.Times != nil:
		sort.SliceStable(perm, func(a, b int) bool {
			return out.Times[perm[a]].Before(out.Times[perm[b]])
		})
	case out.TimeRaw != nil:
		sort.SliceStable(perm, func(a, b int) bool {
			return out.TimeRaw.Values[perm[a]] < out.TimeRaw.Values[perm[b]]
		})
	case out.TimeText != nil:
		sort.SliceStable(perm, func(a, b int) bool {
			return out.TimeText[perm[a]] < out.TimeText[perm[b]]
		})
	default:
		return nil, fmt.Errorf("sort: series has no time axis")
	}
	out.permute(perm)
	return out, nil
}

// SwapDim re-keys the table from the observation index to the time axis.
func SwapDim(s *Series) (*Series, error) {
	if s.Times == nil && s.TimeRaw == nil && s.TimeText == nil {
		return nil, fmt.Errorf("swap dimension: series has no time axis")
	}
	out := s.Clone()
	out.Dim = DimTime
	return out, nil
}

// EnsureDatetime decodes the raw or textual time axis into concrete UTC
// instants. Tables already carrying decoded times pass through unchanged.
func EnsureDatetime(s *Series) (*Series, error) {
	if s.Times != nil {
		return s.Clone(), nil
	}
	out := s.Clone()
	switch {
	case out.TimeRaw != nil:
		ts, err := decodeRawTimes(out.TimeRaw.Values, out.TimeRaw.Unit)
		if err != nil {
			return nil, err
		}
		out.Times = ts
		out.TimeRaw = nil
	case out.TimeText != nil:
		ts := make([]time.Time, len(out.TimeText))
		for i, txt := range out.TimeText {
			t, err := parseTimeText(txt)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			ts[i] = t
		}
		out.Times = ts
		out.TimeText = nil
	default:
		return nil, fmt.Errorf("decode time: series has no time axis")
	}
	return out, nil
}

// Rename returns a step that renames a column.
func Rename(old, new string) Step {
	return func(s *Series) (*Series, error) {
		out := s.Clone()
		c, ok := out.Column(old)
		if !ok {
			return nil, fmt.Errorf("rename: no column %q", old)
		}
		if _, exists := out.Column(new); exists {
			return nil, fmt.Errorf("rename: column %q already present", new)
		}
		c.Name = new
		return out, nil
	}
}

// MolFracToPPM returns a step that converts the named column from a dry-air
// mole fraction to parts per million. Columns already in ppm pass through.
func MolFracToPPM(name string) Step {
	return func(s *Series) (*Series, error) {
		out := s.Clone()
		c, ok := out.Column(name)
		if !ok {
			return nil, fmt.Errorf("unit conversion: no column %q", name)
		}
		unit := strings.TrimSpace(strings.ToLower(c.Unit))
		if unit == "ppm" {
			return out, nil
		}
		if !molFracUnits[unit] {
			return nil, fmt.Errorf("unit conversion: column %q has unit %q, want a mole fraction", name, c.Unit)
		}
		for i := range c.Values {
			c.Values[i] *= 1e6
		}
		c.Unit = "ppm"
		return out, nil
	}
}

// Normalize runs the full pipeline on a freshly loaded table: coordinate
// marking, time sort, dimension swap, time decoding, renaming the raw
// measurement to "co2" and converting it to ppm. The result is keyed by
// ascending UTC time with co2 in ppm.
func Normalize(s *Series) (*Series, error) {
	steps := []struct {
		name string
		fn   Step
	}{
		{"mark coordinates", MarkCoords(DefaultCoords...)},
		{"sort by time", SortByTime},
		{"swap dimension", SwapDim},
		{"decode time", EnsureDatetime},
		{"rename measurement", renameMeasurement},
		{"convert units", MolFracToPPM(FieldCO2)},
	}
	out := s
	for _, step := range steps {
		var err error
		out, err = step.fn(out)
		if err != nil {
			return nil, fmt.Errorf("normalize %s %s: %w", s.Station.Code, step.name, err)
		}
	}
	return out, nil
}

// renameMeasurement renames the raw "value" column to "co2". Tables that
// already carry a co2 column pass through, so Normalize is idempotent.
func renameMeasurement(s *Series) (*Series, error) {
	if _, ok := s.Column(FieldCO2); ok {
		return s.Clone(), nil
	}
	return Rename(FieldValue, FieldCO2)(s)
}
