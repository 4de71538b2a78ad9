// Package httpapi exposes the diagnostic recipes over HTTP. Every recipe
// endpoint is a GET whose query parameters mirror the recipe options, so a
// browser request and a batch invocation run through the same code path.
package httpapi

import (
	"errors"
	"math"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/carbonscope/co2-diagnostics/internal/cmip"
	"github.com/carbonscope/co2-diagnostics/internal/config"
	"github.com/carbonscope/co2-diagnostics/internal/confront"
	"github.com/carbonscope/co2-diagnostics/internal/diag"
	"github.com/carbonscope/co2-diagnostics/internal/obspack"
	"github.com/carbonscope/co2-diagnostics/internal/recipe"
	"github.com/carbonscope/co2-diagnostics/internal/station"
)

// RegisterRoutes wires the HTTP handlers into the Fiber app. Observation
// data always comes from the server's configured directory; clients pick
// stations, windows and models through query parameters.
func RegisterRoutes(app *fiber.App, runner *recipe.Runner, catalog *cmip.Catalog, obsDir string) {
	v1 := app.Group("/api/v1")

	v1.Get("/stations", func(c *fiber.Ctx) error {
		if c.QueryBool("available") {
			names, err := obspack.SiteNames(obsDir)
			if err != nil {
				return recipeError(err)
			}
			return c.JSON(fiber.Map{"stations": names})
		}
		return c.JSON(fiber.Map{"stations": station.All()})
	})

	v1.Get("/models", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"models":  catalog.Models(),
			"updated": catalog.Updated(),
		})
	})

	v1.Get("/recipes/timeseries", func(c *fiber.Ctx) error {
		res, err := runner.Timeseries(bindOptions(c, obsDir))
		if err != nil {
			return recipeError(err)
		}
		stations := make([]stationTable, 0, len(res.Stations))
		for _, ss := range res.Stations {
			stations = append(stations, stationTable{
				Station: ss.Station,
				Rows:    tableRows(ss.Combined.Maps()),
			})
		}
		return c.JSON(fiber.Map{"run_id": res.RunID, "stations": stations})
	})

	v1.Get("/recipes/annual", func(c *fiber.Ctx) error {
		res, err := runner.Annual(bindOptions(c, obsDir))
		if err != nil {
			return recipeError(err)
		}
		stations := make([]annualTable, 0, len(res.Stations))
		for _, sa := range res.Stations {
			stations = append(stations, annualTable{
				Station: sa.Station,
				Cycle:   sa.Cycle,
				Yearly:  sa.Yearly,
			})
		}
		return c.JSON(fiber.Map{"run_id": res.RunID, "stations": stations})
	})

	v1.Get("/recipes/trends", func(c *fiber.Ctx) error {
		mode := confront.Mode(c.Query("mode", string(confront.ModeTrend)))
		res, err := runner.Trends(c.UserContext(), bindOptions(c, obsDir), mode)
		if err != nil {
			return recipeError(err)
		}
		stations := make([]trendTable, 0, len(res.Results))
		for _, cr := range res.Results {
			stations = append(stations, trendTable{
				Station:   cr.Station,
				Cell:      cr.Cell,
				Rows:      tableRows(cr.Aligned.Maps()),
				ObsCycle:  cr.ObsCycle,
				MdlCycle:  cr.MdlCycle,
				ObsYearly: cr.ObsYearly,
			})
		}
		return c.JSON(fiber.Map{
			"run_id":   res.RunID,
			"model":    res.Model,
			"stations": stations,
		})
	})
}

// stationTable is one station's combined timeseries in a response body.
type stationTable struct {
	Station station.Station          `json:"station"`
	Rows    []map[string]interface{} `json:"rows"`
}

// annualTable is one station's cycle decomposition in a response body.
type annualTable struct {
	Station station.Station       `json:"station"`
	Cycle   []confront.CyclePoint `json:"cycle"`
	Yearly  []confront.YearPoint  `json:"yearly_anomalies"`
}

// trendTable is one station's model confrontation in a response body.
type trendTable struct {
	Station   station.Station          `json:"station"`
	Cell      *confront.Cell           `json:"cell,omitempty"`
	Rows      []map[string]interface{} `json:"rows"`
	ObsCycle  []confront.CyclePoint    `json:"obs_cycle,omitempty"`
	MdlCycle  []confront.CyclePoint    `json:"model_cycle,omitempty"`
	ObsYearly []confront.YearPoint     `json:"obs_anomalies,omitempty"`
}

// tableRows prepares dataframe rows for JSON encoding. Months without
// observations carry NaN, which encoding/json rejects, so those entries
// become nulls.
func tableRows(rows []map[string]interface{}) []map[string]interface{} {
	for _, row := range rows {
		for k, v := range row {
			if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
				row[k] = nil
			}
		}
	}
	return rows
}

// bindOptions maps query parameters onto recipe options. Validation is the
// recipe's job; binding only shapes the request.
func bindOptions(c *fiber.Ctx, obsDir string) *config.RecipeOptions {
	opts := &config.RecipeOptions{
		RefData:        obsDir,
		StationCode:    c.Query("station_code"),
		StartYr:        c.Query("start_yr"),
		EndYr:          c.Query("end_yr"),
		ModelName:      c.Query("model_name"),
		CMIPLoadMethod: c.Query("cmip_load_method"),
		GlobalMean:     c.Query("globalmean"),
		Difference:     c.QueryBool("difference"),
	}
	if list := c.Query("station_list"); list != "" {
		opts.StationList = strings.Split(list, ",")
	}
	return opts
}

// recipeError maps a recipe failure onto the HTTP status it deserves:
// rejected options are the client's fault, absent data is a 404, and an
// unreachable model archive is a bad gateway.
func recipeError(err error) error {
	var verr *diag.ValidationError
	if errors.As(err, &verr) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	var merr *diag.MissingDataError
	if errors.As(err, &merr) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if errors.Is(err, confront.ErrNoObs) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	var serr *diag.ModelSourceError
	if errors.As(err, &serr) {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "recipe failed")
}
