package series

import (
	"math"
	"testing"
	"time"

	"github.com/carbonscope/co2-diagnostics/internal/station"
)

func monthlyInput(t *testing.T, times []time.Time, vals []float64) *Series {
	t.Helper()
	s := New(station.Station{Code: "mlo"})
	if err := s.SetTimes(times); err != nil {
		t.Fatal(err)
	}
	if err := s.AddColumn(FieldCO2, "ppm", vals, false); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestResampleMonthly(t *testing.T) {
	in := monthlyInput(t,
		[]time.Time{
			time.Date(2000, 1, 1, 6, 0, 0, 0, time.UTC),
			time.Date(2000, 1, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2000, 1, 20, 18, 0, 0, 0, time.UTC),
			time.Date(2000, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		[]float64{410, 412, 414, 400},
	)
	out, err := ResampleMonthly(in, FieldCO2)
	if err != nil {
		t.Fatalf("ResampleMonthly: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("got %d buckets, want 2 (February must be absent, not zero)", out.Len())
	}
	wantTimes := []time.Time{
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2000, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, w := range wantTimes {
		if !out.Times[i].Equal(w) {
			t.Errorf("bucket[%d] stamped %v, want %v", i, out.Times[i], w)
		}
	}
	co2, _ := out.Column(FieldCO2)
	if !almostEqual(co2.Values[0], 412.0, 1e-9) {
		t.Errorf("January mean = %v, want 412.0", co2.Values[0])
	}
	if co2.Values[1] != 400 {
		t.Errorf("March mean = %v, want 400", co2.Values[1])
	}
}

func TestResampleMonthlySkipsNaN(t *testing.T) {
	in := monthlyInput(t,
		[]time.Time{
			time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC),
			time.Date(2000, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		[]float64{410, math.NaN(), 414, math.NaN()},
	)
	out, err := ResampleMonthly(in, FieldCO2)
	if err != nil {
		t.Fatalf("ResampleMonthly: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("got %d buckets, want 1 (all-NaN February must drop out)", out.Len())
	}
	co2, _ := out.Column(FieldCO2)
	if !almostEqual(co2.Values[0], 412.0, 1e-9) {
		t.Errorf("January mean = %v, want 412.0", co2.Values[0])
	}
}

func TestResampleMonthlyUnsortedInput(t *testing.T) {
	in := monthlyInput(t,
		[]time.Time{
			time.Date(2000, 1, 20, 0, 0, 0, 0, time.UTC),
			time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2000, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		[]float64{414, 410, 412},
	)
	sorted := monthlyInput(t,
		[]time.Time{
			time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2000, 1, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2000, 1, 20, 0, 0, 0, 0, time.UTC),
		},
		[]float64{410, 412, 414},
	)
	a, err := ResampleMonthly(in, FieldCO2)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ResampleMonthly(sorted, FieldCO2)
	if err != nil {
		t.Fatal(err)
	}
	av, _ := a.Column(FieldCO2)
	bv, _ := b.Column(FieldCO2)
	if av.Values[0] != bv.Values[0] {
		t.Errorf("summation order leaked into the result: %v vs %v", av.Values[0], bv.Values[0])
	}
}

func TestResampleMonthlyIdempotent(t *testing.T) {
	in := monthlyInput(t,
		[]time.Time{
			time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC),
			time.Date(2000, 2, 14, 0, 0, 0, 0, time.UTC),
			time.Date(2000, 2, 20, 0, 0, 0, 0, time.UTC),
		},
		[]float64{410, 412, 414},
	)
	once, err := ResampleMonthly(in, FieldCO2)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := ResampleMonthly(once, FieldCO2)
	if err != nil {
		t.Fatal(err)
	}
	if once.Len() != twice.Len() {
		t.Fatalf("row count changed on re-resampling: %d vs %d", once.Len(), twice.Len())
	}
	a, _ := once.Column(FieldCO2)
	b, _ := twice.Column(FieldCO2)
	for i := range a.Values {
		if !once.Times[i].Equal(twice.Times[i]) {
			t.Errorf("bucket[%d] time changed: %v vs %v", i, once.Times[i], twice.Times[i])
		}
		if a.Values[i] != b.Values[i] {
			t.Errorf("bucket[%d] value changed: %v vs %v", i, a.Values[i], b.Values[i])
		}
	}
}

func TestCombined(t *testing.T) {
	orig := monthlyInput(t,
		[]time.Time{
			time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2000, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		[]float64{410, 414},
	)
	monthly, err := ResampleMonthly(orig, FieldCO2)
	if err != nil {
		t.Fatal(err)
	}

	df, err := Combined(orig, monthly, FieldCO2)
	if err != nil {
		t.Fatalf("Combined: %v", err)
	}
	names := df.Names()
	want := []string{ColTime, ColObsOriginal, ColObsResampled}
	if len(names) != len(want) {
		t.Fatalf("columns = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("columns = %v, want %v", names, want)
		}
	}
	if df.Nrow() != 2 {
		t.Fatalf("rows = %d, want 2", df.Nrow())
	}

	keys := df.Col(ColTime).Records()
	if keys[0] != "2000-01-01T00:00:00Z" || keys[1] != "2000-01-15T00:00:00Z" {
		t.Errorf("time keys = %v, not sorted month then mid-month", keys)
	}
	origVals := df.Col(ColObsOriginal).Float()
	resVals := df.Col(ColObsResampled).Float()
	if origVals[0] != 410 || origVals[1] != 414 {
		t.Errorf("original column = %v", origVals)
	}
	if !almostEqual(resVals[0], 412.0, 1e-9) {
		t.Errorf("resampled value at month start = %v, want 412.0", resVals[0])
	}
	if !math.IsNaN(resVals[1]) {
		t.Errorf("mid-month resampled value = %v, want NaN from the outer join", resVals[1])
	}
}
