package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"sjsage522/carsearch/internal/query"
	"sjsage522/carsearch/logger"
	"sjsage522/carsearch/pkg/errors"
)

// Loader reads <dir>/<retailer>-filters.json once per retailer and keeps the
// result for the life of the process.
type Loader struct {
	dir   string
	mu    sync.RWMutex
	cache map[string]*Catalog
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:   dir,
		cache: make(map[string]*Catalog),
	}
}

// Path returns the catalog file location for retailer.
func (l *Loader) Path(retailer string) string {
	return filepath.Join(l.dir, fmt.Sprintf("%s-filters.json", retailer))
}

// Load returns the retailer's catalog. A missing or unreadable file yields an
// empty catalog, never nil.
func (l *Loader) Load(retailer string) *Catalog {
	l.mu.RLock()
	c, ok := l.cache[retailer]
	l.mu.RUnlock()
	if ok {
		return c
	}

	c, err := l.read(retailer)
	if err != nil {
		logger.ForCatalog().Warn().
			Str("retailer", retailer).
			Err(err).
			Msg("Filter catalog unavailable, continuing without grounding")
		c = &Catalog{Retailer: retailer}
	}

	l.mu.Lock()
	if existing, ok := l.cache[retailer]; ok {
		c = existing
	} else {
		l.cache[retailer] = c
	}
	l.mu.Unlock()

	return c
}

// Groups returns the retailer's filter groups, nil when ungrounded.
func (l *Loader) Groups(retailer string) []FilterGroup {
	return l.Load(retailer).Groups()
}

// LoadAll returns the non-empty catalogs keyed by retailer.
func (l *Loader) LoadAll() map[string]*Catalog {
	all := make(map[string]*Catalog)
	for _, r := range query.Retailers() {
		if c := l.Load(r); !c.Empty() {
			all[r] = c
		}
	}
	return all
}

func (l *Loader) read(retailer string) (*Catalog, error) {
	path := l.Path(retailer)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewCatalogUnavailable(retailer, "failed to read "+path, err)
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.NewCatalogUnavailable(retailer, "failed to decode "+path, err)
	}
	if c.Retailer == "" {
		c.Retailer = retailer
	}

	logger.ForCatalog().Debug().
		Str("retailer", retailer).
		Int("groups", len(c.groups)).
		Int("makes", len(c.models)).
		Msg("Loaded filter catalog")
	return &c, nil
}
