// Package cmip loads model CO2 concentration fields and answers the
// spatial and temporal queries the confrontation recipes make against
// them.
package cmip

import "context"

// Source abstracts where model data comes from (a local archive directory
// or a remote catalog over HTTP).
type Source interface {
	Name() string
	Models(ctx context.Context) ([]string, error)
	Load(ctx context.Context, model string) (*Dataset, error)
}
