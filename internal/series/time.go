package series

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// cfUnitFactors maps the interval word of a CF time unit ("days since ...")
// to its length. Months and years are deliberately absent: they are not
// fixed intervals and observation files do not use them.
var cfUnitFactors = map[string]time.Duration{
	"seconds": time.Second,
	"second":  time.Second,
	"minutes": time.Minute,
	"minute":  time.Minute,
	"hours":   time.Hour,
	"hour":    time.Hour,
	"days":    24 * time.Hour,
	"day":     24 * time.Hour,
}

var epochLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseCFEpoch parses the epoch part of a CF time unit. Trailing zone
// markers ("UTC", "Z", "+00:00") are accepted and ignored; all epochs are
// taken as UTC.
func parseCFEpoch(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, suffix := range []string{" UTC", "Z", "+00:00", "+0000", "+00"} {
		s = strings.TrimSuffix(s, suffix)
	}
	for _, layout := range epochLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized epoch %q", s)
}

// decodeCFTime converts a value expressed as "<interval> since <epoch>"
// into a concrete instant.
func decodeCFTime(v float64, factor time.Duration, epoch time.Time) time.Time {
	return epoch.Add(time.Duration(v * float64(factor))).UTC()
}

// DecimalYearToTime converts a fractional calendar year such as 1980.5 into
// an instant, scaling the fraction by the actual length of that year.
func DecimalYearToTime(v float64) time.Time {
	year := int(math.Floor(v))
	frac := v - math.Floor(v)
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start.Add(time.Duration(frac * float64(end.Sub(start)))).UTC()
}

// TimeToDecimalYear is the inverse of DecimalYearToTime.
func TimeToDecimalYear(t time.Time) float64 {
	t = t.UTC()
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(t.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	return float64(t.Year()) + float64(t.Sub(start))/float64(end.Sub(start))
}

var textLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTimeText parses one textual timestamp, always into UTC.
func parseTimeText(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range textLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// DecodeCFTimes decodes a numeric time axis with its unit string into UTC
// instants. Model files use the same encodings as observation files, so the
// loaders share this.
func DecodeCFTimes(vals []float64, unit string) ([]time.Time, error) {
	return decodeRawTimes(vals, unit)
}

// decodeRawTimes turns a raw numeric time axis into instants. Three unit
// forms are understood: CF offsets ("days since 1970-01-01"), decimal years
// and plain epoch seconds (an empty or "seconds" unit).
func decodeRawTimes(vals []float64, unit string) ([]time.Time, error) {
	u := strings.TrimSpace(strings.ToLower(unit))
	switch {
	case strings.Contains(u, "since"):
		parts := strings.SplitN(u, "since", 2)
		word := strings.TrimSpace(parts[0])
		factor, ok := cfUnitFactors[word]
		if !ok {
			return nil, fmt.Errorf("unsupported time interval %q in unit %q", word, unit)
		}
		epoch, err := parseCFEpoch(parts[1])
		if err != nil {
			return nil, fmt.Errorf("time unit %q: %w", unit, err)
		}
		out := make([]time.Time, len(vals))
		for i, v := range vals {
			out[i] = decodeCFTime(v, factor, epoch)
		}
		return out, nil
	case strings.Contains(u, "decimal") || strings.Contains(u, "year"):
		out := make([]time.Time, len(vals))
		for i, v := range vals {
			out[i] = DecimalYearToTime(v)
		}
		return out, nil
	case u == "" || u == "seconds" || u == "s":
		out := make([]time.Time, len(vals))
		for i, v := range vals {
			sec := math.Floor(v)
			ns := (v - sec) * float64(time.Second)
			out[i] = time.Unix(int64(sec), int64(ns)).UTC()
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported time unit %q", unit)
}
