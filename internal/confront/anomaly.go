package confront

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"
	gseries "github.com/go-gota/gota/series"
)

// ErrNoObs reports that a station has no usable observations inside the
// selected window. Sweeps over every station may skip it; explicit
// requests must surface it.
var ErrNoObs = errors.New("no observations in selected window")

// CyclePoint is one calendar month of the mean annual cycle: the average
// departure of that month from its year's own mean, taken across all years
// with data.
type CyclePoint struct {
	Month time.Month `json:"month"`
	Mean  float64    `json:"co2_anomaly"`
	Std   float64    `json:"std_dev"` // sample standard deviation, 0 with fewer than two years
	N     int        `json:"n"`
}

// YearPoint is one year's mean departure from the mean over the whole
// window.
type YearPoint struct {
	Year    int     `json:"year"`
	Anomaly float64 `json:"co2_anomaly"`
	N       int     `json:"n"`
}

// Decompose splits a time series into its mean annual cycle and its
// year-to-year anomalies. Values are first de-trended by removing each
// year's own mean, then averaged per calendar month across years; the
// yearly series is each year's mean minus the overall mean. NaN values do
// not contribute, months and years without data are absent rather than
// zero, and all sums run in ascending time order.
func Decompose(times []time.Time, values []float64) ([]CyclePoint, []YearPoint, error) {
	if len(times) != len(values) {
		return nil, nil, errors.New("decompose: time and value lengths differ")
	}

	order := make([]int, len(times))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return times[order[a]].Before(times[order[b]])
	})

	type sample struct {
		year  int
		month time.Month
		v     float64
	}
	var samples []sample
	var total float64
	yearSum := make(map[int]float64)
	yearN := make(map[int]int)
	for _, i := range order {
		v := values[i]
		if math.IsNaN(v) {
			continue
		}
		t := times[i].UTC()
		samples = append(samples, sample{year: t.Year(), month: t.Month(), v: v})
		total += v
		yearSum[t.Year()] += v
		yearN[t.Year()]++
	}
	if len(samples) == 0 {
		return nil, nil, ErrNoObs
	}
	overall := total / float64(len(samples))

	yearMean := make(map[int]float64, len(yearSum))
	for y, s := range yearSum {
		yearMean[y] = s / float64(yearN[y])
	}

	monthSum := make(map[time.Month]float64)
	monthN := make(map[time.Month]int)
	for _, s := range samples {
		monthSum[s.month] += s.v - yearMean[s.year]
		monthN[s.month]++
	}

	cycle := make([]CyclePoint, 0, len(monthSum))
	for m := time.January; m <= time.December; m++ {
		n, ok := monthN[m]
		if !ok {
			continue
		}
		cycle = append(cycle, CyclePoint{Month: m, Mean: monthSum[m] / float64(n), N: n})
	}
	for k := range cycle {
		p := &cycle[k]
		if p.N < 2 {
			continue
		}
		var ss float64
		for _, s := range samples {
			if s.month != p.Month {
				continue
			}
			d := s.v - yearMean[s.year] - p.Mean
			ss += d * d
		}
		p.Std = math.Sqrt(ss / float64(p.N-1))
	}

	years := make([]int, 0, len(yearMean))
	for y := range yearMean {
		years = append(years, y)
	}
	sort.Ints(years)
	yearly := make([]YearPoint, len(years))
	for k, y := range years {
		yearly[k] = YearPoint{Year: y, Anomaly: yearMean[y] - overall, N: yearN[y]}
	}
	return cycle, yearly, nil
}

// CycleFrame renders a mean annual cycle as a table with one row per
// calendar month.
func CycleFrame(cycle []CyclePoint) dataframe.DataFrame {
	months := make([]int, len(cycle))
	means := make([]float64, len(cycle))
	stds := make([]float64, len(cycle))
	for k, p := range cycle {
		months[k] = int(p.Month)
		means[k] = p.Mean
		stds[k] = p.Std
	}
	return dataframe.New(
		gseries.New(months, gseries.Int, "month"),
		gseries.New(means, gseries.Float, "co2_anomaly"),
		gseries.New(stds, gseries.Float, "std_dev"),
	)
}

// YearlyFrame renders year anomalies as a table with one row per year.
func YearlyFrame(yearly []YearPoint) dataframe.DataFrame {
	years := make([]int, len(yearly))
	anoms := make([]float64, len(yearly))
	for k, p := range yearly {
		years[k] = p.Year
		anoms[k] = p.Anomaly
	}
	return dataframe.New(
		gseries.New(years, gseries.Int, "year"),
		gseries.New(anoms, gseries.Float, "co2_anomaly"),
	)
}
