package obspack

import (
	"fmt"
	"math"
	"os"
)

// rawVar is one numeric observation-file variable before it becomes a
// series column.
type rawVar struct {
	name   string
	values []float64
	attrs  map[string]string
}

func (v *rawVar) unit() string {
	return v.attrs["units"]
}

// rawFile is the format-independent view of one observation file: its 1-D
// numeric variables plus the global text attributes.
type rawFile struct {
	path  string
	vars  map[string]*rawVar
	attrs map[string]string
}

// maskFill replaces fill-marked values with NaN so they never contribute to
// a mean. Absent measurements must stay absent, not become zeros.
func (v *rawVar) maskFill(fill float64, ok bool) {
	if !ok {
		return
	}
	for i, x := range v.values {
		if x == fill {
			v.values[i] = math.NaN()
		}
	}
}

// readRaw opens an observation file in either of the two on-disk layouts:
// classic NetCDF (CDF magic), read with the pure Go decoder, and
// NetCDF-4/HDF5, read through the netcdf C library binding.
func readRaw(path string) (*rawFile, error) {
	magic, err := sniff(path)
	if err != nil {
		return nil, err
	}
	switch magic {
	case formatClassic:
		return readClassic(path)
	case formatHDF5:
		return readHDF5(path)
	}
	return nil, fmt.Errorf("%s: not a NetCDF file", path)
}

type fileFormat int

const (
	formatUnknown fileFormat = iota
	formatClassic
	formatHDF5
)

func sniff(path string) (fileFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return formatUnknown, err
	}
	defer f.Close()
	var buf [4]byte
	if _, err := f.Read(buf[:]); err != nil {
		return formatUnknown, fmt.Errorf("%s: %w", path, err)
	}
	switch {
	case buf[0] == 'C' && buf[1] == 'D' && buf[2] == 'F':
		return formatClassic, nil
	case buf[0] == 0x89 && buf[1] == 'H' && buf[2] == 'D' && buf[3] == 'F':
		return formatHDF5, nil
	}
	return formatUnknown, nil
}
