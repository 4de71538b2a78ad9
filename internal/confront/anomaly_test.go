package confront

import (
	"errors"
	"math"
	"testing"
	"time"
)

func mk(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

func TestDecompose(t *testing.T) {
	times := []time.Time{
		mk(2000, time.January), mk(2000, time.July),
		mk(2001, time.January), mk(2001, time.July),
	}
	values := []float64{410, 414, 410, 418}

	cycle, yearly, err := Decompose(times, values)
	if err != nil {
		t.Fatal(err)
	}

	// Year means are 412 and 414, so January anomalies are -2 and -4.
	if len(cycle) != 2 {
		t.Fatalf("cycle = %+v, want January and July only", cycle)
	}
	jan, jul := cycle[0], cycle[1]
	if jan.Month != time.January || jul.Month != time.July {
		t.Fatalf("cycle months = %v %v", jan.Month, jul.Month)
	}
	if !almostEqual(jan.Mean, -3, 1e-12) || !almostEqual(jul.Mean, 3, 1e-12) {
		t.Errorf("cycle means = %v %v, want -3 3", jan.Mean, jul.Mean)
	}
	if !almostEqual(jan.Std, math.Sqrt2, 1e-12) {
		t.Errorf("January std = %v, want sqrt(2)", jan.Std)
	}
	if jan.N != 2 {
		t.Errorf("January n = %d, want 2", jan.N)
	}

	// Overall mean is 413; the yearly series is each year against it.
	if len(yearly) != 2 {
		t.Fatalf("yearly = %+v, want two years", yearly)
	}
	if yearly[0].Year != 2000 || !almostEqual(yearly[0].Anomaly, -1, 1e-12) {
		t.Errorf("2000 anomaly = %+v, want -1", yearly[0])
	}
	if yearly[1].Year != 2001 || !almostEqual(yearly[1].Anomaly, 1, 1e-12) {
		t.Errorf("2001 anomaly = %+v, want 1", yearly[1])
	}
}

func TestDecomposeOrderIndependent(t *testing.T) {
	times := []time.Time{
		mk(2000, time.January), mk(2000, time.July),
		mk(2001, time.January), mk(2001, time.July),
	}
	values := []float64{410, 414, 410, 418}
	shuffledT := []time.Time{times[3], times[0], times[2], times[1]}
	shuffledV := []float64{values[3], values[0], values[2], values[1]}

	c1, y1, err := Decompose(times, values)
	if err != nil {
		t.Fatal(err)
	}
	c2, y2, err := Decompose(shuffledT, shuffledV)
	if err != nil {
		t.Fatal(err)
	}
	for k := range c1 {
		if c1[k] != c2[k] {
			t.Errorf("cycle[%d] = %+v vs %+v", k, c1[k], c2[k])
		}
	}
	for k := range y1 {
		if y1[k] != y2[k] {
			t.Errorf("yearly[%d] = %+v vs %+v", k, y1[k], y2[k])
		}
	}
}

func TestDecomposeSkipsNaN(t *testing.T) {
	times := []time.Time{
		mk(2000, time.January), mk(2000, time.February), mk(2000, time.July),
	}
	values := []float64{410, math.NaN(), 414}

	cycle, yearly, err := Decompose(times, values)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range cycle {
		if p.Month == time.February {
			t.Error("all-NaN February must be absent from the cycle")
		}
	}
	if yearly[0].N != 2 {
		t.Errorf("2000 n = %d, want 2 (NaN dropped)", yearly[0].N)
	}
}

func TestDecomposeNoFiniteValues(t *testing.T) {
	_, _, err := Decompose([]time.Time{mk(2000, time.January)}, []float64{math.NaN()})
	if !errors.Is(err, ErrNoObs) {
		t.Errorf("err = %v, want ErrNoObs", err)
	}
}

func TestDecomposeLengthMismatch(t *testing.T) {
	_, _, err := Decompose([]time.Time{mk(2000, time.January)}, nil)
	if err == nil {
		t.Error("expected an error for mismatched lengths")
	}
}

func TestCycleAndYearlyFrames(t *testing.T) {
	cycle := []CyclePoint{{Month: time.January, Mean: -3, Std: 1.4, N: 2}}
	cf := CycleFrame(cycle)
	if cf.Err != nil {
		t.Fatal(cf.Err)
	}
	if cf.Nrow() != 1 {
		t.Errorf("cycle frame rows = %d, want 1", cf.Nrow())
	}
	names := cf.Names()
	if len(names) != 3 || names[0] != "month" || names[1] != "co2_anomaly" || names[2] != "std_dev" {
		t.Errorf("cycle frame columns = %v", names)
	}

	yf := YearlyFrame([]YearPoint{{Year: 2000, Anomaly: -1, N: 2}, {Year: 2001, Anomaly: 1, N: 2}})
	if yf.Err != nil {
		t.Fatal(yf.Err)
	}
	if yf.Nrow() != 2 {
		t.Errorf("yearly frame rows = %d, want 2", yf.Nrow())
	}
}
