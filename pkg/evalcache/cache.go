// Package evalcache provides an explicit, caller-owned memoization cache for
// per-participant classifications. The engine itself stays pure; a caller
// that re-evaluates the same participant/instant pair across consecutive
// renders may inject one of these to skip recomputation. Keys incorporate a
// fingerprint of the participant's effective configuration, so any change to
// it, whether a registry reload or a per-participant override, naturally
// misses.
package evalcache

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strconv"
	"time"

	"github.com/maypok86/otter/v2"

	"github.com/jbillay/coordino/pkg/comfort"
)

// Cache memoizes classifications keyed by participant, instant and effective
// configuration. Safe for concurrent use.
type Cache struct {
	cache  *otter.Cache[string, comfort.Classification]
	logger *slog.Logger
}

// New builds a cache holding up to capacity entries, each expiring ttl after
// being written.
func New(capacity int, ttl time.Duration, logger *slog.Logger) *Cache {
	cache := otter.Must(&otter.Options[string, comfort.Classification]{
		MaximumSize:      capacity,
		ExpiryCalculator: otter.ExpiryWriting[string, comfort.Classification](ttl),
	})
	return &Cache{cache: cache, logger: logger}
}

// Key derives the cache key for one evaluation. startUTC is truncated to the
// minute: classification only ever depends on the start minute.
// configFingerprint must identify the participant's resolved effective
// configuration (see workcfg.CountryConfig.Fingerprint), not merely the
// registry, or an override change would serve stale classifications.
func Key(participantID string, startUTC time.Time, configFingerprint string) string {
	h := sha256.New()
	h.Write([]byte(participantID))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(startUTC.UTC().Truncate(time.Minute).Unix(), 10)))
	h.Write([]byte{0})
	h.Write([]byte(configFingerprint))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a memoized classification, if present.
func (c *Cache) Get(key string) (comfort.Classification, bool) {
	cls, ok := c.cache.GetIfPresent(key)
	if !ok {
		c.logger.Debug("evalcache miss", "key", key[:12])
		return comfort.Classification{}, false
	}
	return cls, true
}

// Set memoizes a classification.
func (c *Cache) Set(key string, cls comfort.Classification) {
	c.cache.Set(key, cls)
}

// Len reports the estimated number of cached classifications.
func (c *Cache) Len() int {
	return c.cache.EstimatedSize()
}
