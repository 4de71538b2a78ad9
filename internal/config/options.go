package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/carbonscope/co2-diagnostics/internal/diag"
)

var validate = validator.New()

func init() {
	// Report option names the way callers wrote them, not as Go fields.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// StationAll marks a request for every known station present in the data
// directory.
const StationAll = "all"

// RecipeOptions is the per-run configuration surface shared by every
// diagnostic recipe, whether the values arrive from CLI flags or HTTP
// query parameters. Years are four-digit strings; the selected window is
// the closed interval from January 1 of StartYr through December 31 of
// EndYr.
type RecipeOptions struct {
	RefData        string   `json:"ref_data" validate:"required"`
	StationCode    string   `json:"station_code" validate:"omitempty,alphanum"`
	StationList    []string `json:"station_list" validate:"omitempty,dive,alphanum"`
	StartYr        string   `json:"start_yr" validate:"omitempty,len=4,numeric"`
	EndYr          string   `json:"end_yr" validate:"omitempty,len=4,numeric"`
	FigureSavepath string   `json:"figure_savepath"`
	ModelName      string   `json:"model_name"`
	CMIPLoadMethod string   `json:"cmip_load_method" validate:"omitempty,oneof=local remote"`
	GlobalMean     string   `json:"globalmean" validate:"omitempty,oneof=station global"`
	Difference     bool     `json:"difference"`
}

// Validate checks the option shape eagerly so a bad invocation terminates
// before any data is touched. All failures are ValidationErrors.
func (o *RecipeOptions) Validate() error {
	if err := validate.Struct(o); err != nil {
		var ferrs validator.ValidationErrors
		if errors.As(err, &ferrs) && len(ferrs) > 0 {
			f := ferrs[0]
			return diag.NewValidationError(f.Field(),
				"value %q fails the %q constraint", fmt.Sprint(f.Value()), f.Tag())
		}
		return diag.NewValidationError("options", "%v", err)
	}
	_, _, err := o.Window()
	return err
}

// Window returns the closed time window the year options select. A zero
// time on either side means unbounded.
func (o *RecipeOptions) Window() (start, end time.Time, err error) {
	if o.StartYr != "" {
		y, err := parseYear("start_yr", o.StartYr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if o.EndYr != "" {
		y, err := parseYear("end_yr", o.EndYr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = time.Date(y, 12, 31, 23, 59, 59, 0, time.UTC)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return time.Time{}, time.Time{},
			diag.NewValidationError("end_yr", "end year %s precedes start year %s", o.EndYr, o.StartYr)
	}
	return start, end, nil
}

// Stations returns the requested station codes, lowercased in request
// order with repeats dropped. The second result is true when the request
// was the "all" marker, in which case codes is nil.
func (o *RecipeOptions) Stations() (codes []string, all bool) {
	list := o.StationList
	if len(list) == 0 && o.StationCode != "" {
		list = []string{o.StationCode}
	}
	seen := make(map[string]bool, len(list))
	for _, c := range list {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		if c == StationAll {
			return nil, true
		}
		seen[c] = true
		codes = append(codes, c)
	}
	return codes, false
}

func parseYear(field, s string) (int, error) {
	if len(s) != 4 {
		return 0, diag.NewValidationError(field, "year %q is not a four-digit year", s)
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, diag.NewValidationError(field, "year %q is not numeric", s)
	}
	return y, nil
}
