package recipe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ctessum/cdf"

	"github.com/carbonscope/co2-diagnostics/internal/cmip"
	"github.com/carbonscope/co2-diagnostics/internal/config"
	"github.com/carbonscope/co2-diagnostics/internal/confront"
	"github.com/carbonscope/co2-diagnostics/internal/diag"
	"github.com/carbonscope/co2-diagnostics/internal/series"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func secsAt(y int, m time.Month, d int) float64 {
	return float64(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix())
}

// writeObsFile writes a classic-format observation file the way a
// converted ObsPack surface file looks.
func writeObsFile(t *testing.T, path string, times, values []float64, lat, lon float64) {
	t.Helper()
	n := len(times)
	h := cdf.NewHeader([]string{"obs"}, []int{n})
	h.AddVariable("time", []string{"obs"}, []float64{})
	h.AddAttribute("time", "units", "seconds since 1970-01-01 00:00:00")
	h.AddVariable("value", []string{"obs"}, []float64{})
	h.AddAttribute("value", "units", "mol mol-1")
	h.AddVariable("latitude", []string{"obs"}, []float64{})
	h.AddVariable("longitude", []string{"obs"}, []float64{})
	h.Define()

	ff, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		t.Fatal(err)
	}
	write := func(name string, vals []float64) {
		t.Helper()
		if _, err := f.Writer(name, nil, nil).Write(vals); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	write("time", times)
	write("value", values)
	lats := make([]float64, n)
	lons := make([]float64, n)
	for i := range lats {
		lats[i] = lat
		lons[i] = lon
	}
	write("latitude", lats)
	write("longitude", lons)
}

func writeMLO(t *testing.T, dir string) {
	writeObsFile(t, filepath.Join(dir, "co2_mlo_surface-insitu_1_ccgg_event.nc"),
		[]float64{secsAt(2000, time.January, 1), secsAt(2000, time.January, 15), secsAt(2000, time.February, 1)},
		[]float64{0.000410, 0.000412, 0.000414},
		19.5, -155.576)
}

// writeModelFile writes a [time][lat][lon] concentration file where grid
// cell (1,0), the one nearest Mauna Loa, carries cellValues and every
// other cell holds 300 ppm.
func writeModelFile(t *testing.T, path string, timeDays []float64, cellValues []float32) {
	t.Helper()
	lat := []float64{0, 20}
	lon := []float64{200, 210}
	h := cdf.NewHeader([]string{"time", "lat", "lon"}, []int{len(timeDays), 2, 2})
	h.AddVariable("time", []string{"time"}, []float64{})
	h.AddAttribute("time", "units", "days since 2000-01-01 00:00:00")
	h.AddVariable("lat", []string{"lat"}, []float64{})
	h.AddVariable("lon", []string{"lon"}, []float64{})
	h.AddVariable("co2", []string{"time", "lat", "lon"}, []float32{})
	h.AddAttribute("co2", "units", "mol mol-1")
	h.Define()

	ff, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		t.Fatal(err)
	}
	co2 := make([]float32, 0, len(timeDays)*4)
	for ti := range timeDays {
		co2 = append(co2, 300e-6, 300e-6, cellValues[ti]*1e-6, 300e-6)
	}
	for name, vals := range map[string]interface{}{
		"time": timeDays, "lat": lat, "lon": lon, "co2": co2,
	} {
		if _, err := f.Writer(name, nil, nil).Write(vals); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
}

func TestTimeseries(t *testing.T) {
	obsDir := t.TempDir()
	writeMLO(t, obsDir)
	figDir := t.TempDir()

	r := NewRunner(nil, discardLogger())
	res, err := r.Timeseries(&config.RecipeOptions{
		RefData:        obsDir,
		StationCode:    "mlo",
		StartYr:        "2000",
		EndYr:          "2000",
		FigureSavepath: filepath.Join(figDir, "fig.png"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.RunID == "" {
		t.Error("run id not set")
	}
	if len(res.Stations) != 1 {
		t.Fatalf("stations = %d, want 1", len(res.Stations))
	}

	df := res.Stations[0].Combined
	names := df.Names()
	want := []string{series.ColTime, series.ColObsOriginal, series.ColObsResampled}
	if len(names) != len(want) {
		t.Fatalf("columns = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("columns = %v, want %v", names, want)
		}
	}
	if df.Nrow() != 3 {
		t.Errorf("rows = %d, want 3", df.Nrow())
	}
	resampled := df.Col(series.ColObsResampled).Float()
	if math.Abs(resampled[0]-411) > 1e-9 {
		t.Errorf("January mean = %v, want 411", resampled[0])
	}

	for _, name := range []string{"fig_timeseries_mlo.csv", "fig_timeseries_mlo.nc"} {
		if _, err := os.Stat(filepath.Join(figDir, name)); err != nil {
			t.Errorf("expected export %s: %v", name, err)
		}
	}
}

func TestTimeseriesRejectsMalformedYears(t *testing.T) {
	r := NewRunner(nil, discardLogger())
	_, err := r.Timeseries(&config.RecipeOptions{
		RefData:     "/nonexistent",
		StationCode: "mlo",
		StartYr:     "198012",
		EndYr:       "201042",
	})
	var verr *diag.ValidationError
	if !errors.As(err, &verr) || verr.Field() != "start_yr" {
		t.Errorf("err = %v, want a start_yr validation error", err)
	}
}

func TestTimeseriesUnknownStation(t *testing.T) {
	obsDir := t.TempDir()
	writeMLO(t, obsDir)

	r := NewRunner(nil, discardLogger())
	_, err := r.Timeseries(&config.RecipeOptions{
		RefData:     obsDir,
		StationCode: "asdkjhfasg",
		StartYr:     "1980",
		EndYr:       "2010",
	})
	var verr *diag.ValidationError
	if !errors.As(err, &verr) || verr.Field() != "station_code" {
		t.Errorf("err = %v, want a station_code validation error", err)
	}
}

func TestAnnual(t *testing.T) {
	obsDir := t.TempDir()
	writeObsFile(t, filepath.Join(obsDir, "co2_mlo_surface-insitu_1_ccgg_event.nc"),
		[]float64{
			secsAt(2000, time.January, 1), secsAt(2000, time.July, 1),
			secsAt(2001, time.January, 1), secsAt(2001, time.July, 1),
		},
		[]float64{0.000410, 0.000414, 0.000410, 0.000418},
		19.5, -155.576)

	r := NewRunner(nil, discardLogger())
	res, err := r.Annual(&config.RecipeOptions{
		RefData:     obsDir,
		StationCode: "mlo",
		StartYr:     "2000",
		EndYr:       "2001",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Stations) != 1 {
		t.Fatalf("stations = %d, want 1", len(res.Stations))
	}
	st := res.Stations[0]
	if len(st.Cycle) != 2 || st.Cycle[0].Month != time.January {
		t.Fatalf("cycle = %+v", st.Cycle)
	}
	if math.Abs(st.Cycle[0].Mean+3) > 1e-9 {
		t.Errorf("January anomaly = %v, want -3", st.Cycle[0].Mean)
	}
	if len(st.Yearly) != 2 || math.Abs(st.Yearly[0].Anomaly+1) > 1e-9 || math.Abs(st.Yearly[1].Anomaly-1) > 1e-9 {
		t.Errorf("yearly = %+v, want anomalies -1 and 1", st.Yearly)
	}
}

func localRunner(t *testing.T, modelDir string) *Runner {
	t.Helper()
	return NewRunner(map[string]cmip.Source{
		"local": cmip.NewLocalSource(modelDir, discardLogger()),
	}, discardLogger())
}

func TestTrends(t *testing.T) {
	obsDir := t.TempDir()
	writeMLO(t, obsDir)
	modelDir := t.TempDir()
	writeModelFile(t, filepath.Join(modelDir, "co2_Amon_CESM2_esm-hist_r1i1p1f1.nc"),
		[]float64{14, 45}, // mid January and mid February 2000
		[]float32{420, 422})

	r := localRunner(t, modelDir)
	res, err := r.Trends(context.Background(), &config.RecipeOptions{
		RefData:        obsDir,
		StationCode:    "mlo",
		StartYr:        "2000",
		EndYr:          "2000",
		ModelName:      "CESM2",
		CMIPLoadMethod: "local",
		Difference:     true,
	}, confront.ModeTrend)
	if err != nil {
		t.Fatal(err)
	}
	if res.Model != "CESM2" {
		t.Errorf("model = %q", res.Model)
	}
	if len(res.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(res.Results))
	}

	cr := res.Results[0]
	if cr.Cell == nil || cr.Cell.Lat != 20 || cr.Cell.Lon != 200 {
		t.Fatalf("cell = %+v, want center (20,200)", cr.Cell)
	}
	if cr.Aligned.Nrow() != 2 {
		t.Fatalf("aligned rows = %d, want 2", cr.Aligned.Nrow())
	}
	d := cr.Aligned.Col(confront.ColDiff).Float()
	if math.Abs(d[0]-9) > 1e-3 || math.Abs(d[1]-8) > 1e-3 {
		t.Errorf("diff = %v, want [9 8]", d)
	}
}

func TestTrendsUnknownModel(t *testing.T) {
	r := localRunner(t, t.TempDir())
	_, err := r.Trends(context.Background(), &config.RecipeOptions{
		RefData:     "/nonexistent",
		StationCode: "mlo",
		ModelName:   "NOPE",
	}, confront.ModeTrend)
	var merr *diag.ModelSourceError
	if !errors.As(err, &merr) {
		t.Errorf("err = %v, want a model source error", err)
	}
}

func TestTrendsUnconfiguredSource(t *testing.T) {
	r := localRunner(t, t.TempDir())
	_, err := r.Trends(context.Background(), &config.RecipeOptions{
		RefData:        "/nonexistent",
		StationCode:    "mlo",
		ModelName:      "CESM2",
		CMIPLoadMethod: "remote",
	}, confront.ModeTrend)
	var merr *diag.ModelSourceError
	if !errors.As(err, &merr) {
		t.Errorf("err = %v, want a model source error", err)
	}
}

func TestTrendsAllStationsSkipsEmptyWindows(t *testing.T) {
	obsDir := t.TempDir()
	writeMLO(t, obsDir)
	// South Pole data entirely outside the requested window.
	writeObsFile(t, filepath.Join(obsDir, "co2_spo_surface-flask_1_ccgg_event.nc"),
		[]float64{secsAt(1990, time.June, 1)},
		[]float64{0.000350},
		-89.98, -24.8)
	modelDir := t.TempDir()
	writeModelFile(t, filepath.Join(modelDir, "co2_Amon_CESM2_esm-hist_r1i1p1f1.nc"),
		[]float64{14, 45},
		[]float32{420, 422})

	r := localRunner(t, modelDir)
	res, err := r.Trends(context.Background(), &config.RecipeOptions{
		RefData:        obsDir,
		StationCode:    "all",
		StartYr:        "2000",
		EndYr:          "2000",
		ModelName:      "CESM2",
		CMIPLoadMethod: "local",
	}, confront.ModeTrend)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Results) != 1 || res.Results[0].Station.Code != "mlo" {
		t.Fatalf("results = %+v, want only mlo", res.Results)
	}
}
