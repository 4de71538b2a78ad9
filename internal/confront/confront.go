// Package confront aligns station observations against model CO2
// concentration fields: it matches each station to a model grid cell (or
// to the global mean), puts both onto a shared monthly time axis, and
// derives the trend and seasonal-cycle comparison tables the diagnostics
// plot.
package confront

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gota/gota/dataframe"
	gseries "github.com/go-gota/gota/series"

	"github.com/carbonscope/co2-diagnostics/internal/cmip"
	"github.com/carbonscope/co2-diagnostics/internal/diag"
	"github.com/carbonscope/co2-diagnostics/internal/series"
	"github.com/carbonscope/co2-diagnostics/internal/station"
)

// Mode selects what a confrontation derives from the aligned pair.
type Mode string

const (
	// ModeTrend compares the full multi-year series, optionally with a
	// model minus obs difference.
	ModeTrend Mode = "trend"
	// ModeCycle derives the seasonal anomaly decomposition of both sides.
	ModeCycle Mode = "cycle"
)

// Column names of the aligned comparison table.
const (
	ColObs  = "obs"
	ColMdl  = "model"
	ColDiff = "diff"
)

// Options control one confrontation run. Zero Start or End widen to the
// observation series' own bounds.
type Options struct {
	Start      time.Time
	End        time.Time
	Mode       Mode       // default trend
	GlobalMean bool       // compare against the area-weighted global model mean
	Difference bool       // also compute model minus obs, trend mode only
	Policy     CellPolicy // default nearest
}

// Result pairs one station's monthly observations with the model sampled
// at the matched grid cell, or at the global mean.
type Result struct {
	Station station.Station
	Model   string
	Cell    *Cell // nil in global-mean mode

	Obs     dataframe.DataFrame // time, obs: monthly station means
	Mdl     dataframe.DataFrame // time, model: monthly model means
	Aligned dataframe.DataFrame // inner join of the two, plus diff if requested

	ObsCycle  []CyclePoint // cycle mode only
	MdlCycle  []CyclePoint
	ObsYearly []YearPoint
}

// Confrontation runs obs-vs-model comparisons against one loaded model
// dataset. It is safe for concurrent use once constructed.
type Confrontation struct {
	model *cmip.Dataset
	cells *CellIndex
	log   *slog.Logger
}

// New builds the spatial index for the model grid up front so repeated
// station runs share it.
func New(model *cmip.Dataset, log *slog.Logger) (*Confrontation, error) {
	cells, err := NewCellIndex(model)
	if err != nil {
		return nil, err
	}
	return &Confrontation{model: model, cells: cells, log: log}, nil
}

// Run aligns one station's normalized observations against the model.
func (c *Confrontation) Run(obs *series.Series, opts Options) (*Result, error) {
	switch opts.Mode {
	case "", ModeTrend, ModeCycle:
	default:
		return nil, diag.NewValidationError("mode", "unknown comparison mode %q", opts.Mode)
	}
	switch opts.Policy {
	case "", CellNearest:
	default:
		return nil, diag.NewValidationError("cell_policy", "unknown cell selection policy %q", opts.Policy)
	}

	start, end := opts.Start, opts.End
	if start.IsZero() || end.IsZero() {
		lo, hi, ok := obs.TimeBounds()
		if !ok {
			return nil, fmt.Errorf("confront %s: %w", obs.Station.Code, ErrNoObs)
		}
		if start.IsZero() {
			start = lo
		}
		if end.IsZero() {
			end = hi
		}
	}

	windowed, err := series.SelectBetween(obs, start, end,
		[]string{series.FieldTime, series.FieldCO2}, true)
	if err != nil {
		return nil, err
	}
	obsMonthly, err := series.ResampleMonthly(windowed, series.FieldCO2)
	if err != nil {
		return nil, err
	}
	if obsMonthly.Len() == 0 {
		return nil, fmt.Errorf("confront %s: %w", obs.Station.Code, ErrNoObs)
	}

	mdl, cell, err := c.modelSeries(obs.Station, opts)
	if err != nil {
		return nil, err
	}
	mdlWindowed, err := series.SelectBetween(mdl, start, end, nil, true)
	if err != nil {
		return nil, err
	}
	if mdlWindowed.Len() == 0 {
		return nil, fmt.Errorf("confront %s: model %s has no samples between %s and %s",
			obs.Station.Code, c.model.Model, series.TimeKey(start), series.TimeKey(end))
	}
	mdlMonthly, err := series.ResampleMonthly(mdlWindowed, series.FieldCO2)
	if err != nil {
		return nil, err
	}

	res := &Result{Station: obs.Station, Model: c.model.Model, Cell: cell}
	if res.Obs, err = series.Frame(obsMonthly, series.FieldCO2, ColObs); err != nil {
		return nil, err
	}
	if res.Mdl, err = series.Frame(mdlMonthly, series.FieldCO2, ColMdl); err != nil {
		return nil, err
	}

	aligned := res.Obs.InnerJoin(res.Mdl, series.ColTime)
	if aligned.Err != nil {
		return nil, fmt.Errorf("aligning %s against %s: %w", obs.Station.Code, c.model.Model, aligned.Err)
	}
	aligned = aligned.Arrange(dataframe.Sort(series.ColTime))
	if aligned.Err != nil {
		return nil, fmt.Errorf("aligning %s against %s: %w", obs.Station.Code, c.model.Model, aligned.Err)
	}
	if opts.Difference && opts.Mode != ModeCycle {
		o := aligned.Col(ColObs).Float()
		m := aligned.Col(ColMdl).Float()
		d := make([]float64, len(o))
		for k := range o {
			d[k] = m[k] - o[k]
		}
		aligned = aligned.Mutate(gseries.New(d, gseries.Float, ColDiff))
		if aligned.Err != nil {
			return nil, fmt.Errorf("differencing %s against %s: %w", obs.Station.Code, c.model.Model, aligned.Err)
		}
	}
	res.Aligned = aligned

	if opts.Mode == ModeCycle {
		ocol, _ := obsMonthly.Column(series.FieldCO2)
		res.ObsCycle, res.ObsYearly, err = Decompose(obsMonthly.Times, ocol.Values)
		if err != nil {
			return nil, fmt.Errorf("confront %s: %w", obs.Station.Code, err)
		}
		mcol, _ := mdlMonthly.Column(series.FieldCO2)
		res.MdlCycle, _, err = Decompose(mdlMonthly.Times, mcol.Values)
		if err != nil {
			return nil, fmt.Errorf("confront %s: model %s: %w", obs.Station.Code, c.model.Model, err)
		}
	}

	attrs := []any{
		"station", obs.Station.Code,
		"model", c.model.Model,
		"mode", string(opts.Mode),
		"rows", res.Aligned.Nrow(),
	}
	if cell != nil {
		attrs = append(attrs, "cell_lat", cell.Lat, "cell_lon", cell.Lon)
	} else {
		attrs = append(attrs, "globalmean", true)
	}
	c.log.Debug("confronted station with model", attrs...)
	return res, nil
}

// modelSeries samples the model for the station: its nearest cell's lowest
// level, or the global mean.
func (c *Confrontation) modelSeries(st station.Station, opts Options) (*series.Series, *Cell, error) {
	var vals []float64
	var cell *Cell
	if opts.GlobalMean {
		vals = c.model.GlobalMean()
	} else {
		cc := c.cells.Nearest(st.Latitude, st.Longitude)
		cell = &cc
		vals = c.model.CellSeries(cc.J, cc.I)
	}

	s := series.New(st)
	s.Dim = series.DimTime
	if err := s.SetTimes(append([]time.Time(nil), c.model.Times...)); err != nil {
		return nil, nil, err
	}
	if err := s.AddColumn(series.FieldCO2, "ppm", vals, false); err != nil {
		return nil, nil, err
	}
	return s, cell, nil
}
