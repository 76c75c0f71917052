package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"sjsage522/carsearch/logger"
	searcherrors "sjsage522/carsearch/pkg/errors"
)

const parseKeyPrefix = "carsearch:parse:"

// ParseCache stores parse results keyed by the normalized query text.
// Failures are logged and otherwise ignored; a broken cache only costs an
// extra LLM call.
type ParseCache struct {
	svc CacheService
	ttl time.Duration
}

// NewParseCache wraps svc with the given entry lifetime
func NewParseCache(svc CacheService, ttl time.Duration) *ParseCache {
	return &ParseCache{svc: svc, ttl: ttl}
}

// Key derives the cache key for a query. Case and surrounding or repeated
// whitespace do not change it.
func Key(text string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return parseKeyPrefix + hex.EncodeToString(sum[:])
}

// Lookup returns the cached result for text, if any
func (c *ParseCache) Lookup(text string) ([]byte, bool) {
	data, err := c.svc.Get(Key(text))
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			logger.ForCache().Warn().
				Err(searcherrors.NewCache("lookup failed", err)).
				Msg("Parse cache unavailable")
		}
		return nil, false
	}
	return data, true
}

// Store saves the result for text
func (c *ParseCache) Store(text string, data []byte) {
	if err := c.svc.Set(Key(text), data, c.ttl); err != nil {
		logger.ForCache().Warn().
			Err(searcherrors.NewCache("store failed", err)).
			Msg("Parse cache unavailable")
	}
}
