package obspack

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
)

// obsNumericVars are the per-observation variables worth carrying out of a
// surface file. Files may omit some of them; character variables such as
// qcflag are not loaded at all.
var obsNumericVars = []string{
	"time",
	"time_decimal",
	"latitude",
	"longitude",
	"altitude",
	"elevation",
	"intake_height",
	"value",
	"value_unc",
	"nvalue",
}

// globalTextAttrs are the file-level attributes kept for provenance and
// site naming.
var globalTextAttrs = []string{"site_name", "site_code", "site_country", "dataset_project"}

var varTextAttrs = []string{"units", "long_name"}

// readClassic decodes a classic-format (CDF-1/CDF-2) observation file with
// the pure Go reader.
func readClassic(path string) (*rawFile, error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	out := &rawFile{path: path, vars: make(map[string]*rawVar), attrs: make(map[string]string)}
	for _, name := range globalTextAttrs {
		if s, ok := f.Header.GetAttribute("", name).(string); ok {
			out.attrs[name] = s
		}
	}
	for _, name := range obsNumericVars {
		if len(f.Header.Lengths(name)) != 1 {
			continue
		}
		vals, ok, err := readClassicValues(f, name)
		if err != nil {
			return nil, fmt.Errorf("%s: variable %s: %w", path, name, err)
		}
		if !ok {
			continue
		}
		rv := &rawVar{name: name, values: vals, attrs: make(map[string]string)}
		for _, a := range varTextAttrs {
			if s, ok := f.Header.GetAttribute(name, a).(string); ok {
				rv.attrs[a] = s
			}
		}
		rv.maskFill(classicFill(f, name))
		out.vars[name] = rv
	}
	return out, nil
}

// readClassicValues reads a 1-D variable into float64, whatever its on-disk
// numeric type. The second result is false for non-numeric variables.
func readClassicValues(f *cdf.File, name string) ([]float64, bool, error) {
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
	case []int8:
		out := make([]float64, len(vs))
		for i, v := range vs {
			out[i] = float64(v)
		}
		return out, true, nil
	}
	return nil, false, nil
}

func classicFill(f *cdf.File, name string) (float64, bool) {
	for _, a := range []string{"_FillValue", "missing_value"} {
		if v, ok := attrFloat(f.Header.GetAttribute(name, a)); ok {
			return v, true
		}
	}
	return 0, false
}

// attrFloat coerces the untyped attribute value forms the classic decoder
// can return into a float64.
func attrFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int32:
		return float64(x), true
	case []float64:
		if len(x) > 0 {
			return x[0], true
		}
	case []float32:
		if len(x) > 0 {
			return float64(x[0]), true
		}
	case []int32:
		if len(x) > 0 {
			return float64(x[0]), true
		}
	case []int16:
		if len(x) > 0 {
			return float64(x[0]), true
		}
	}
	return 0, false
}
