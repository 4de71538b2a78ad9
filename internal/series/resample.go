package series

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"
	gseries "github.com/go-gota/gota/series"
)

// Column names of the combined observation table.
const (
	ColTime         = "time"
	ColObsOriginal  = "obs_original_resolution"
	ColObsResampled = "obs_resampled_resolution"
)

// TimeKey renders an instant as the fixed-width UTC string used as the join
// key of tabular output. Lexicographic order of keys equals time order.
func TimeKey(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseTimeKey is the inverse of TimeKey.
func ParseTimeKey(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// MonthStart truncates an instant to midnight on the first of its month.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ResampleMonthly averages the named column into calendar-month buckets.
// Each bucket is stamped with the first of its month; values are summed in
// ascending time order so results are bit-reproducible. NaN measurements do
// not contribute, and months without any contributing measurement are
// absent from the result rather than zero.
func ResampleMonthly(s *Series, field string) (*Series, error) {
	if s.Times == nil {
		return nil, fmt.Errorf("resample: series %s has no decoded time axis", s.Station.Code)
	}
	col, ok := s.Column(field)
	if !ok {
		return nil, fmt.Errorf("resample: no column %q", field)
	}

	sorted, err := SortByTime(s)
	if err != nil {
		return nil, err
	}
	scol, _ := sorted.Column(field)

	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[int]*bucket)
	for i, t := range sorted.Times {
		v := scol.Values[i]
		if math.IsNaN(v) {
			continue
		}
		key := t.UTC().Year()*100 + int(t.UTC().Month())
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.sum += v
		b.count++
	}

	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := New(s.Station)
	out.Sources = append([]string(nil), s.Sources...)
	out.Dim = DimTime
	times := make([]time.Time, 0, len(keys))
	means := make([]float64, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		times = append(times, time.Date(k/100, time.Month(k%100), 1, 0, 0, 0, 0, time.UTC))
		means = append(means, b.sum/float64(b.count))
	}
	if err := out.SetTimes(times); err != nil {
		return nil, err
	}
	if err := out.AddColumn(field, col.Unit, means, false); err != nil {
		return nil, err
	}
	return out, nil
}

// Frame renders one column of the table as a two-column data frame keyed by
// the time string, suitable for joining.
func Frame(s *Series, field, as string) (dataframe.DataFrame, error) {
	if s.Times == nil {
		return dataframe.DataFrame{}, fmt.Errorf("frame: series %s has no decoded time axis", s.Station.Code)
	}
	col, ok := s.Column(field)
	if !ok {
		return dataframe.DataFrame{}, fmt.Errorf("frame: no column %q", field)
	}
	keys := make([]string, s.Len())
	for i, t := range s.Times {
		keys[i] = TimeKey(t)
	}
	df := dataframe.New(
		gseries.New(keys, gseries.String, ColTime),
		gseries.New(col.Values, gseries.Float, as),
	)
	return df, df.Err
}

// Combined joins a station's original-resolution measurements with their
// monthly means into one table. The join is an outer join on time, so rows
// exist wherever either side has data; the result is sorted ascending.
func Combined(orig, monthly *Series, field string) (dataframe.DataFrame, error) {
	left, err := Frame(orig, field, ColObsOriginal)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	right, err := Frame(monthly, field, ColObsResampled)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	joined := left.OuterJoin(right, ColTime)
	if joined.Err != nil {
		return dataframe.DataFrame{}, joined.Err
	}
	sorted := joined.Arrange(dataframe.Sort(ColTime))
	return sorted, sorted.Err
}
