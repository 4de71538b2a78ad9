// Package diag defines the error kinds shared across the diagnostics
// pipeline. Every failure a recipe can surface to a caller is one of these
// three, so both the CLI and the HTTP layer can map them without string
// matching.
package diag

import "fmt"

// ValidationError indicates bad input: an unknown station code, a malformed
// year, a wrong unit attribute. It is never recoverable; the invocation that
// produced it terminates.
type ValidationError struct {
	field  string // what was validated, e.g. "station_code"
	reason string
}

func (e *ValidationError) Field() string { return e.field }

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.field, e.reason)
}

// NewValidationError builds a ValidationError for the named input field.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{field: field, reason: fmt.Sprintf(format, args...)}
}

// MissingDataError indicates that no observation files were found for a
// station. Callers iterating "all stations" may skip the station with a
// warning; callers that asked for the station explicitly must fail.
type MissingDataError struct {
	station string
	dir     string
}

func (e *MissingDataError) Station() string { return e.station }
func (e *MissingDataError) Dir() string     { return e.dir }

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("no observation files for station %q in %s", e.station, e.dir)
}

// NewMissingDataError builds a MissingDataError naming the station and the
// directory that was searched.
func NewMissingDataError(station, dir string) error {
	return &MissingDataError{station: station, dir: dir}
}

// ModelSourceError indicates that the requested model dataset could not be
// resolved or fetched. Not recoverable.
type ModelSourceError struct {
	model  string
	method string // "remote" or "local"
	cause  error
}

func (e *ModelSourceError) Model() string { return e.model }

func (e *ModelSourceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("model source %q (%s): %v", e.model, e.method, e.cause)
	}
	return fmt.Sprintf("model source %q (%s): not resolvable", e.model, e.method)
}

// Unwrap allows errors.Is / errors.As to reach the underlying cause.
func (e *ModelSourceError) Unwrap() error {
	return e.cause
}

// NewModelSourceError wraps cause (which may be nil) with the model name and
// load method that failed.
func NewModelSourceError(model, method string, cause error) error {
	return &ModelSourceError{model: model, method: method, cause: cause}
}
