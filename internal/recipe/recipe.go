// Package recipe implements the diagnostic recipes. Each recipe is one
// batch invocation: load observations, window and resample them, optionally
// confront them with model output, and hand back the tables behind one
// figure, writing them to disk when a figure path is configured.
package recipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"

	"github.com/carbonscope/co2-diagnostics/internal/cmip"
	"github.com/carbonscope/co2-diagnostics/internal/config"
	"github.com/carbonscope/co2-diagnostics/internal/confront"
	"github.com/carbonscope/co2-diagnostics/internal/diag"
	"github.com/carbonscope/co2-diagnostics/internal/obspack"
	"github.com/carbonscope/co2-diagnostics/internal/output"
	"github.com/carbonscope/co2-diagnostics/internal/series"
	"github.com/carbonscope/co2-diagnostics/internal/station"
)

// Runner executes recipes. Model sources are shared across invocations;
// observation data is loaded fresh every time.
type Runner struct {
	sources map[string]cmip.Source
	log     *slog.Logger
}

// NewRunner builds a runner over the given model sources, keyed by load
// method name.
func NewRunner(sources map[string]cmip.Source, log *slog.Logger) *Runner {
	return &Runner{sources: sources, log: log}
}

// StationSeries is the timeseries recipe's product for one station: its
// original-resolution measurements joined with their monthly means.
type StationSeries struct {
	Station  station.Station
	Combined dataframe.DataFrame
}

// TimeseriesResult collects the per-station tables of one invocation.
type TimeseriesResult struct {
	RunID    string
	Stations []StationSeries
}

// Timeseries windows and resamples each requested station's record and
// joins both resolutions into one table per station.
func (r *Runner) Timeseries(opts *config.RecipeOptions) (*TimeseriesResult, error) {
	id, log, done := r.begin("timeseries")
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	start, end, err := opts.Window()
	if err != nil {
		return nil, err
	}
	codes, tables, all, err := r.loadObs(opts, log)
	if err != nil {
		return nil, err
	}

	res := &TimeseriesResult{RunID: id}
	for _, code := range codes {
		windowed, err := series.SelectBetween(tables[code], start, end,
			[]string{series.FieldTime, series.FieldCO2}, true)
		if err != nil {
			return nil, err
		}
		if windowed.Len() == 0 {
			if all {
				log.Warn("station has no observations in window", "station", code)
				continue
			}
			return nil, fmt.Errorf("timeseries %s: %w", code, confront.ErrNoObs)
		}
		monthly, err := series.ResampleMonthly(windowed, series.FieldCO2)
		if err != nil {
			return nil, err
		}
		combined, err := series.Combined(windowed, monthly, series.FieldCO2)
		if err != nil {
			return nil, err
		}
		if opts.FigureSavepath != "" {
			if err := exportFrame(combined, opts.FigureSavepath, "timeseries_"+code, true, log); err != nil {
				return nil, err
			}
		}
		res.Stations = append(res.Stations, StationSeries{
			Station:  windowed.Station,
			Combined: combined,
		})
	}
	if len(res.Stations) == 0 {
		return nil, fmt.Errorf("timeseries: %w", confront.ErrNoObs)
	}
	done(len(res.Stations))
	return res, nil
}

// StationAnnual is the annual recipe's product for one station.
type StationAnnual struct {
	Station station.Station
	Cycle   []confront.CyclePoint
	Yearly  []confront.YearPoint
}

// AnnualResult collects the per-station decompositions of one invocation.
type AnnualResult struct {
	RunID    string
	Stations []StationAnnual
}

// Annual derives each requested station's mean annual cycle and yearly
// anomalies from its monthly means.
func (r *Runner) Annual(opts *config.RecipeOptions) (*AnnualResult, error) {
	id, log, done := r.begin("annual")
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	start, end, err := opts.Window()
	if err != nil {
		return nil, err
	}
	codes, tables, all, err := r.loadObs(opts, log)
	if err != nil {
		return nil, err
	}

	res := &AnnualResult{RunID: id}
	for _, code := range codes {
		windowed, err := series.SelectBetween(tables[code], start, end,
			[]string{series.FieldTime, series.FieldCO2}, true)
		if err != nil {
			return nil, err
		}
		monthly, err := series.ResampleMonthly(windowed, series.FieldCO2)
		if err != nil {
			return nil, err
		}
		col, _ := monthly.Column(series.FieldCO2)
		var vals []float64
		if col != nil {
			vals = col.Values
		}
		cycle, yearly, err := confront.Decompose(monthly.Times, vals)
		if err != nil {
			if all && errors.Is(err, confront.ErrNoObs) {
				log.Warn("station has no observations in window", "station", code)
				continue
			}
			return nil, fmt.Errorf("annual %s: %w", code, err)
		}
		if opts.FigureSavepath != "" {
			if err := exportFrame(confront.CycleFrame(cycle), opts.FigureSavepath, "annual_cycle_"+code, false, log); err != nil {
				return nil, err
			}
			if err := exportFrame(confront.YearlyFrame(yearly), opts.FigureSavepath, "annual_anomalies_"+code, false, log); err != nil {
				return nil, err
			}
		}
		res.Stations = append(res.Stations, StationAnnual{
			Station: windowed.Station,
			Cycle:   cycle,
			Yearly:  yearly,
		})
	}
	if len(res.Stations) == 0 {
		return nil, fmt.Errorf("annual: %w", confront.ErrNoObs)
	}
	done(len(res.Stations))
	return res, nil
}

// TrendsResult collects the per-station confrontations of one invocation.
type TrendsResult struct {
	RunID   string
	Model   string
	Results []*confront.Result
}

// Trends confronts each requested station's record with the named model.
func (r *Runner) Trends(ctx context.Context, opts *config.RecipeOptions, mode confront.Mode) (*TrendsResult, error) {
	id, log, done := r.begin("trends")
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.ModelName == "" {
		return nil, diag.NewValidationError("model_name", "a model name is required")
	}
	method := opts.CMIPLoadMethod
	if method == "" {
		method = "local"
	}
	source, ok := r.sources[method]
	if !ok {
		return nil, diag.NewModelSourceError(opts.ModelName, method,
			fmt.Errorf("no %q source configured", method))
	}
	ds, err := source.Load(ctx, opts.ModelName)
	if err != nil {
		return nil, err
	}
	conf, err := confront.New(ds, log)
	if err != nil {
		return nil, err
	}

	start, end, err := opts.Window()
	if err != nil {
		return nil, err
	}
	codes, tables, all, err := r.loadObs(opts, log)
	if err != nil {
		return nil, err
	}

	copts := confront.Options{
		Start:      start,
		End:        end,
		Mode:       mode,
		GlobalMean: opts.GlobalMean == "global",
		Difference: opts.Difference,
	}
	res := &TrendsResult{RunID: id, Model: ds.Model}
	for _, code := range codes {
		cr, err := conf.Run(tables[code], copts)
		if err != nil {
			if all && errors.Is(err, confront.ErrNoObs) {
				log.Warn("station has no observations in window", "station", code)
				continue
			}
			return nil, err
		}
		if opts.FigureSavepath != "" {
			if err := exportFrame(cr.Aligned, opts.FigureSavepath, "trend_"+code, true, log); err != nil {
				return nil, err
			}
			if mode == confront.ModeCycle {
				if err := exportFrame(confront.CycleFrame(cr.ObsCycle), opts.FigureSavepath, "cycle_"+code, false, log); err != nil {
					return nil, err
				}
			}
		}
		res.Results = append(res.Results, cr)
	}
	if len(res.Results) == 0 {
		return nil, fmt.Errorf("trends: %w", confront.ErrNoObs)
	}
	done(len(res.Results))
	return res, nil
}

// begin stamps a new run with an id and returns it with the run logger
// and a completion callback logging the wall time.
func (r *Runner) begin(name string) (string, *slog.Logger, func(stations int)) {
	id := uuid.NewString()
	log := r.log.With("recipe", name, "run_id", id)
	started := time.Now()
	log.Debug("recipe started")
	return id, log, func(stations int) {
		log.Info("recipe completed",
			"stations", stations,
			"duration", time.Since(started).Round(time.Millisecond))
	}
}

// loadObs loads the requested stations from the options' data directory.
// The third result reports whether this is an "all stations" sweep, in
// which case stations without data are skipped rather than fatal.
func (r *Runner) loadObs(opts *config.RecipeOptions, log *slog.Logger) ([]string, map[string]*series.Series, bool, error) {
	coll := obspack.NewCollection(obspack.NewLoader(opts.RefData, log), log)
	codes, all := opts.Stations()
	if all {
		tables, err := coll.LoadAll()
		if err != nil {
			return nil, nil, true, err
		}
		codes = make([]string, 0, len(tables))
		for c := range tables {
			codes = append(codes, c)
		}
		sort.Strings(codes)
		return codes, tables, true, nil
	}
	if len(codes) == 0 {
		return nil, nil, false, diag.NewValidationError("station_code", "no station requested")
	}
	tables, err := coll.LoadStations(codes)
	if err != nil {
		return nil, nil, false, err
	}
	return codes, tables, false, nil
}

// exportFrame writes a table next to the configured figure path as CSV
// and, for time-keyed tables, as classic NetCDF.
func exportFrame(df dataframe.DataFrame, savepath, suffix string, netcdf bool, log *slog.Logger) error {
	base := output.AppendBeforeExt(savepath, suffix)
	csvPath := output.WithExt(base, ".csv")
	if err := output.WriteCSV(df, csvPath); err != nil {
		return err
	}
	log.Debug("wrote table", "path", csvPath)
	if !netcdf {
		return nil
	}
	ncPath := output.WithExt(base, ".nc")
	if err := output.WriteNetCDF(df, ncPath); err != nil {
		return err
	}
	log.Debug("wrote table", "path", ncPath)
	return nil
}
