package series

import (
	"fmt"
	"time"
)

// SelectBetween restricts a normalized table to the closed interval
// [start, end] and, when fields is non-empty, to the named columns. A zero
// start or end leaves that side unbounded. With dropDups set, rows
// repeating an already seen timestamp are discarded and the first
// occurrence wins.
func SelectBetween(s *Series, start, end time.Time, fields []string, dropDups bool) (*Series, error) {
	if s.Times == nil {
		return nil, fmt.Errorf("select between: series %s has no decoded time axis", s.Station.Code)
	}
	out := s.Clone()

	if len(fields) > 0 {
		var cols []*Column
		for _, name := range fields {
			if name == FieldTime {
				continue
			}
			c, ok := out.Column(name)
			if !ok {
				return nil, fmt.Errorf("select between: no column %q", name)
			}
			cols = append(cols, c)
		}
		out.cols = cols
	}

	var keep []int
	var seen map[int64]bool
	if dropDups {
		seen = make(map[int64]bool, out.Len())
	}
	for i, t := range out.Times {
		if !start.IsZero() && t.Before(start) {
			continue
		}
		if !end.IsZero() && t.After(end) {
			continue
		}
		if dropDups {
			key := t.UnixNano()
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		keep = append(keep, i)
	}
	out.filterRows(keep)
	return out, nil
}

// TimeBounds reports the earliest and latest timestamps of the table. The
// third result is false for an empty or undecoded table.
func (s *Series) TimeBounds() (time.Time, time.Time, bool) {
	if s.Times == nil || len(s.Times) == 0 {
		return time.Time{}, time.Time{}, false
	}
	min, max := s.Times[0], s.Times[0]
	for _, t := range s.Times[1:] {
		if t.Before(min) {
			min = t
		}
		if t.After(max) {
			max = t
		}
	}
	return min, max, true
}
