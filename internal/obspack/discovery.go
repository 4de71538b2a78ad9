// Package obspack discovers and loads Globalview+/ObsPack surface station
// files from a local data directory.
package obspack

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/carbonscope/co2-diagnostics/internal/common"
)

// surfaceFileRe extracts the station code from a surface file name such as
// co2_mlo_surface-insitu_1_ccgg_event.nc.
var surfaceFileRe = regexp.MustCompile(`^co2_([a-zA-Z0-9]+)_surface.*\.nc$`)

// DiscoverStation returns the observation files for one station, sorted by
// name. An unknown directory is not an error here; the result is simply
// empty and the loader decides how to report it.
func DiscoverStation(dataDir, code string) ([]string, error) {
	pattern := filepath.Join(dataDir, "co2_"+strings.ToLower(strings.TrimSpace(code))+"*.nc")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// DiscoverSurface maps station codes to their surface observation files.
// Optional filters restrict the result to file names containing at least
// one of the given substrings.
func DiscoverSurface(dataDir string, filters ...string) (map[string][]string, error) {
	files, err := filepath.Glob(filepath.Join(dataDir, "co2_*.nc"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	out := make(map[string][]string)
	for _, f := range files {
		base := filepath.Base(f)
		m := surfaceFileRe.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		if len(filters) > 0 && !common.HasAny(base, filters...) {
			continue
		}
		code := strings.ToLower(m[1])
		out[code] = append(out[code], f)
	}
	return out, nil
}
