package cmip

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"

	"github.com/carbonscope/co2-diagnostics/internal/diag"
	"github.com/carbonscope/co2-diagnostics/internal/series"
)

// ppmUnits are unit spellings whose numeric values are already parts per
// million.
var ppmUnits = map[string]bool{
	"ppm":   true,
	"ppmv":  true,
	"1e-06": true,
	"1e-6":  true,
}

// LocalSource serves model datasets from a directory of classic-format
// concentration files named co2_<table>_<model>_<experiment>_<member>.nc.
type LocalSource struct {
	dir string
	log *slog.Logger
}

func NewLocalSource(dir string, log *slog.Logger) *LocalSource {
	return &LocalSource{dir: dir, log: log}
}

func (s *LocalSource) Name() string { return "local" }

// Models lists the distinct model names present in the directory, sorted.
func (s *LocalSource) Models(_ context.Context) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, "co2_*.nc"))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, f := range files {
		if m := modelFromFilename(filepath.Base(f)); m != "" {
			seen[m] = true
		}
	}
	models := make([]string, 0, len(seen))
	for m := range seen {
		models = append(models, m)
	}
	sort.Strings(models)
	return models, nil
}

// Load reads the first file of the named model, matched case-insensitively.
func (s *LocalSource) Load(_ context.Context, model string) (*Dataset, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, "co2_*.nc"))
	if err != nil {
		return nil, diag.NewModelSourceError(model, s.Name(), err)
	}
	sort.Strings(files)
	for _, path := range files {
		name := modelFromFilename(filepath.Base(path))
		if name == "" || !strings.EqualFold(name, model) {
			continue
		}
		d, err := readModelFile(path)
		if err != nil {
			return nil, diag.NewModelSourceError(model, s.Name(), err)
		}
		d.Model = name
		d.Source = s.Name()
		s.log.Debug("loaded model dataset",
			"model", name,
			"file", filepath.Base(path),
			"times", len(d.Times),
			"lat", len(d.Lat),
			"lon", len(d.Lon),
			"levels", len(d.Lev),
		)
		return d, nil
	}
	return nil, diag.NewModelSourceError(model, s.Name(), nil)
}

// modelFromFilename extracts the model token from a CMIP-style file name
// such as co2_Amon_CESM2_esm-hist_r1i1p1f1.nc.
func modelFromFilename(base string) string {
	parts := strings.Split(strings.TrimSuffix(base, ".nc"), "_")
	if len(parts) < 3 || parts[0] != "co2" {
		return ""
	}
	return parts[2]
}

// readModelFile decodes a classic-format concentration file. The co2 field
// must be dimensioned [time][lat][lon] or [time][lev][lat][lon] and ends up
// in ppm whatever unit the file declares.
func readModelFile(path string) (*Dataset, error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	lat, err := axis(f, "lat", "latitude")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	lon, err := axis(f, "lon", "longitude")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rawTime, err := axis(f, "time")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	timeUnit, _ := f.Header.GetAttribute("time", "units").(string)
	times, err := series.DecodeCFTimes(rawTime, timeUnit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	shape := f.Header.Lengths("co2")
	var lev []float64
	switch len(shape) {
	case 3:
	case 4:
		lev, err = axis(f, "lev", "plev")
		if err != nil {
			// No named level axis; indices stand in for it.
			lev = make([]float64, shape[1])
			for k := range lev {
				lev[k] = float64(k)
			}
		}
	default:
		return nil, fmt.Errorf("%s: co2 has rank %d, want 3 or 4", path, len(shape))
	}

	flat, ok, err := readNumeric(f, "co2")
	if err != nil {
		return nil, fmt.Errorf("%s: co2: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: no numeric co2 variable", path)
	}

	for _, a := range []string{"_FillValue", "missing_value"} {
		if fv, found := numAttr(f.Header.GetAttribute("co2", a)); found {
			for i, v := range flat {
				if v == fv {
					flat[i] = math.NaN()
				}
			}
			break
		}
	}

	unit, _ := f.Header.GetAttribute("co2", "units").(string)
	switch {
	case series.IsMolFracUnit(unit):
		for i := range flat {
			flat[i] *= 1e6
		}
	case ppmUnits[strings.TrimSpace(strings.ToLower(unit))]:
	default:
		return nil, fmt.Errorf("%s: co2 units %q, want a mole fraction or ppm", path, unit)
	}

	arr := sparse.ZerosDense(shape...)
	copy(arr.Elements, flat)
	d := &Dataset{
		Times:  times,
		Lat:    lat,
		Lon:    lon,
		Lev:    lev,
		Unit:   "ppm",
		Values: arr,
	}
	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// axis reads a 1-D coordinate variable, trying each candidate name.
func axis(f *cdf.File, names ...string) ([]float64, error) {
	for _, name := range names {
		if len(f.Header.Lengths(name)) != 1 {
			continue
		}
		vals, ok, err := readNumeric(f, name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if ok {
			return vals, nil
		}
	}
	return nil, fmt.Errorf("no coordinate variable named %s", strings.Join(names, " or "))
}

// readNumeric reads a variable of any rank into a flat float64 slice. The
// second result is false for non-numeric variables.
func readNumeric(f *cdf.File, name string) ([]float64, bool, error) {
	r := f.Reader(name, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, false, err
	}
	switch vs := buf.(type) {
	case []float64:
		return vs, true, nil
	case []float32:
		out := make([]float64, len(vs))
		for i, v := range vs {
			out[i] = float64(v)
		}
		return out, true, nil
	case []int32:
		out := make([]float64, len(vs))
		for i, v := range vs {
			out[i] = float64(v)
		}
		return out, true, nil
	case []int16:
		out := make([]float64, len(vs))
		for i, v := range vs {
			out[i] = float64(v)
		}
		return out, true, nil
	}
	return nil, false, nil
}

func numAttr(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case []float64:
		if len(x) > 0 {
			return x[0], true
		}
	case []float32:
		if len(x) > 0 {
			return float64(x[0]), true
		}
	}
	return 0, false
}
