package obspack

import (
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/carbonscope/co2-diagnostics/internal/common"
	"github.com/carbonscope/co2-diagnostics/internal/diag"
	"github.com/carbonscope/co2-diagnostics/internal/series"
	"github.com/carbonscope/co2-diagnostics/internal/station"
)

// Collection loads groups of stations with the skip policy the recipes
// need: an explicitly requested station must exist, while a sweep over the
// whole registry tolerates stations that have no local files.
type Collection struct {
	loader *Loader
	log    *slog.Logger
}

func NewCollection(l *Loader, log *slog.Logger) *Collection {
	return &Collection{loader: l, log: log}
}

// LoadStations loads each named station. Duplicates collapse to one load;
// any failure, including missing data, aborts the whole call.
func (c *Collection) LoadStations(codes []string) (map[string]*series.Series, error) {
	lowered := make([]string, 0, len(codes))
	for _, code := range codes {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(code)))
	}
	out := make(map[string]*series.Series, len(lowered))
	for _, code := range common.Dedup(lowered) {
		s, err := c.loader.LoadStation(code)
		if err != nil {
			return nil, err
		}
		out[code] = s
	}
	return out, nil
}

// LoadAll sweeps the registry in code order. Stations without local data
// are logged and skipped; every other failure aborts. Finding no data at
// all is reported as missing data for the sweep itself.
func (c *Collection) LoadAll() (map[string]*series.Series, error) {
	out := make(map[string]*series.Series)
	for _, code := range station.Codes() {
		s, err := c.loader.LoadStation(code)
		if err != nil {
			var m *diag.MissingDataError
			if errors.As(err, &m) {
				c.log.Warn("skipping station with no local files", "station", code, "dir", m.Dir())
				continue
			}
			return nil, err
		}
		out[code] = s
	}
	if len(out) == 0 {
		return nil, diag.NewMissingDataError("all", c.loader.DataDir())
	}
	return out, nil
}

// SiteNames maps each discovered surface station to the site name recorded
// in its files, falling back to the registry name when a file does not
// carry one.
func SiteNames(dataDir string) (map[string]string, error) {
	byCode, err := DiscoverSurface(dataDir)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(byCode))
	for code := range byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make(map[string]string, len(codes))
	for _, code := range codes {
		raw, err := readRaw(byCode[code][0])
		if err != nil {
			return nil, err
		}
		name := raw.attrs["site_name"]
		if name == "" {
			if st, ok := station.Lookup(code); ok {
				name = st.Name
			}
		}
		out[code] = name
	}
	return out, nil
}
