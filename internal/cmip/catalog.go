package cmip

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Catalog is a concurrency-safe snapshot of the models each source offers.
// The scheduler refreshes it in the background; readers only ever see the
// last completed refresh and never trigger network activity themselves.
type Catalog struct {
	mu      sync.RWMutex
	models  map[string][]string
	updated time.Time
}

func NewCatalog() *Catalog {
	return &Catalog{models: make(map[string][]string)}
}

// Replace swaps in the full model list of one source.
func (c *Catalog) Replace(source string, models []string) {
	sorted := append([]string(nil), models...)
	sort.Strings(sorted)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.models[source] = sorted
	c.updated = time.Now().UTC()
}

// Models returns a copy of the catalog keyed by source name.
func (c *Catalog) Models() map[string][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]string, len(c.models))
	for src, list := range c.models {
		out[src] = append([]string(nil), list...)
	}
	return out
}

// Updated reports when the catalog last changed, zero before the first
// refresh.
func (c *Catalog) Updated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updated
}

// RefreshCatalog queries every source and replaces its catalog entry. A
// failing source keeps its previous entry; the first error is reported
// after all sources were tried.
func RefreshCatalog(ctx context.Context, c *Catalog, sources ...Source) error {
	var firstErr error
	for _, src := range sources {
		models, err := src.Models(ctx)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		c.Replace(src.Name(), models)
	}
	return firstErr
}
