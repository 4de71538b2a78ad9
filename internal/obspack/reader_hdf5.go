package obspack

import (
	"fmt"
	"strings"

	"github.com/fhs/go-netcdf/netcdf"
)

// readHDF5 decodes a NetCDF-4 observation file through the netcdf C
// library. ObsPack distributions ship in this format.
func readHDF5(path string) (*rawFile, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer func() { _ = nc.Close() }()

	out := &rawFile{path: path, vars: make(map[string]*rawVar), attrs: make(map[string]string)}
	for _, name := range globalTextAttrs {
		if s, ok := textAttr(nc.Attr(name)); ok {
			out.attrs[name] = s
		}
	}
	for _, name := range obsNumericVars {
		v, err := nc.Var(name)
		if err != nil {
			continue
		}
		vals, ok, err := readHDF5Values(v)
		if err != nil {
			return nil, fmt.Errorf("%s: variable %s: %w", path, name, err)
		}
		if !ok {
			continue
		}
		rv := &rawVar{name: name, values: vals, attrs: make(map[string]string)}
		for _, a := range varTextAttrs {
			if s, ok := textAttr(v.Attr(a)); ok {
				rv.attrs[a] = s
			}
		}
		rv.maskFill(hdf5Fill(v))
		out.vars[name] = rv
	}
	return out, nil
}

// readHDF5Values reads a 1-D variable into float64. The second result is
// false for character or otherwise non-numeric variables.
func readHDF5Values(v netcdf.Var) ([]float64, bool, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, false, err
	}
	if len(dims) != 1 {
		return nil, false, nil
	}
	length, err := dims[0].Len()
	if err != nil {
		return nil, false, err
	}
	t, err := v.Type()
	if err != nil {
		return nil, false, err
	}
	switch t {
	case netcdf.DOUBLE:
		data := make([]float64, length)
		if err := v.ReadFloat64s(data); err != nil {
			return nil, false, err
		}
		return data, true, nil
	case netcdf.FLOAT:
		tmp := make([]float32, length)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, false, err
		}
		out := make([]float64, length)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, true, nil
	case netcdf.INT:
		tmp := make([]int32, length)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, false, err
		}
		out := make([]float64, length)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, true, nil
	case netcdf.SHORT:
		tmp := make([]int16, length)
		if err := v.ReadInt16s(tmp); err != nil {
			return nil, false, err
		}
		out := make([]float64, length)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, true, nil
	}
	return nil, false, nil
}

// hdf5Fill returns the variable's _FillValue or missing_value, if any.
func hdf5Fill(v netcdf.Var) (float64, bool) {
	for _, name := range []string{"_FillValue", "missing_value"} {
		a := v.Attr(name)
		if a == (netcdf.Attr{}) {
			continue
		}
		n, err := a.Len()
		if err != nil || n == 0 {
			continue
		}
		buf64 := make([]float64, 1)
		if err := a.ReadFloat64s(buf64); err == nil {
			return buf64[0], true
		}
		buf32 := make([]float32, 1)
		if err := a.ReadFloat32s(buf32); err == nil {
			return float64(buf32[0]), true
		}
		bufi := make([]int32, 1)
		if err := a.ReadInt32s(bufi); err == nil {
			return float64(bufi[0]), true
		}
	}
	return 0, false
}

// textAttr reads a character attribute, tolerating a trailing NUL.
func textAttr(a netcdf.Attr) (string, bool) {
	if a == (netcdf.Attr{}) {
		return "", false
	}
	n, err := a.Len()
	if err != nil || n == 0 {
		return "", false
	}
	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err != nil {
		return "", false
	}
	return strings.TrimRight(string(buf), "\x00"), true
}
