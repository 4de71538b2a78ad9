package output

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/go-gota/gota/dataframe"
	gseries "github.com/go-gota/gota/series"
)

func TestAppendBeforeExt(t *testing.T) {
	cases := []struct {
		path, suffix, want string
	}{
		{"figure.png", "trend", "figure_trend.png"},
		{"figure", "trend", "figure_trend"},
		{"out.d/figure.png", "annual", "out.d/figure_annual.png"},
	}
	for _, tc := range cases {
		if got := AppendBeforeExt(tc.path, tc.suffix); got != tc.want {
			t.Errorf("AppendBeforeExt(%q, %q) = %q, want %q", tc.path, tc.suffix, got, tc.want)
		}
	}
}

func TestWithExt(t *testing.T) {
	if got := WithExt("figure_trend.png", ".csv"); got != "figure_trend.csv" {
		t.Errorf("WithExt = %q", got)
	}
	if got := WithExt("figure_trend", ".nc"); got != "figure_trend.nc" {
		t.Errorf("WithExt = %q", got)
	}
}

func testFrame(values []float64) dataframe.DataFrame {
	return dataframe.New(
		gseries.New([]string{"2000-01-01T00:00:00Z", "2000-02-01T00:00:00Z"}, gseries.String, "time"),
		gseries.New(values, gseries.Float, "obs"),
	)
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.csv")
	if err := WriteCSV(testFrame([]float64{410.5, 412.25}), path); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(raw)
	if !strings.HasPrefix(text, "time,obs") {
		t.Errorf("csv header = %q", strings.SplitN(text, "\n", 2)[0])
	}
	if !strings.Contains(text, "2000-01-01T00:00:00Z") || !strings.Contains(text, "410.5") {
		t.Errorf("csv content missing data rows:\n%s", text)
	}
}

func TestWriteNetCDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.nc")
	if err := WriteNetCDF(testFrame([]float64{410.5, math.NaN()}), path); err != nil {
		t.Fatal(err)
	}

	ff, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		t.Fatal(err)
	}

	r := f.Reader("time", nil, nil)
	secs := r.Zero(-1).([]float64)
	if _, err := r.Read(secs); err != nil {
		t.Fatal(err)
	}
	if len(secs) != 2 || secs[0] != 946684800 {
		t.Errorf("time = %v, want [946684800 ...]", secs)
	}

	r = f.Reader("obs", nil, nil)
	obs := r.Zero(-1).([]float64)
	if _, err := r.Read(obs); err != nil {
		t.Fatal(err)
	}
	if obs[0] != 410.5 {
		t.Errorf("obs[0] = %v, want 410.5", obs[0])
	}
	if obs[1] != fillValue {
		t.Errorf("obs[1] = %v, want the fill value for NaN", obs[1])
	}

	if units, ok := f.Header.GetAttribute("obs", "units").(string); !ok || units != "ppm" {
		t.Errorf("obs units attribute = %v", f.Header.GetAttribute("obs", "units"))
	}
}

func TestWriteNetCDFRejectsKeylessTable(t *testing.T) {
	df := dataframe.New(gseries.New([]float64{1}, gseries.Float, "obs"))
	if err := WriteNetCDF(df, filepath.Join(t.TempDir(), "x.nc")); err == nil {
		t.Error("expected an error for a table without a time column")
	}
}
