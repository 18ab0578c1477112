package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/fortuna/rinkstats/internal/parser"
)

// KeyPrefix namespaces parse results in Redis.
const KeyPrefix = "rinkstats:parse:"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// KV is the subset of RedisCache that ResultCache needs. Get must return
// redis.Nil for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// ResultCache stores parsed seasons keyed by the parser fingerprint and the
// exact input text.
type ResultCache struct {
	kv  KV
	ttl time.Duration
}

// NewResultCache creates a ResultCache. A zero ttl keeps entries forever.
func NewResultCache(kv KV, ttl time.Duration) *ResultCache {
	return &ResultCache{kv: kv, ttl: ttl}
}

// Key returns the cache key for a fingerprint and input.
func Key(fingerprint, text string) string {
	sum := sha256.Sum256([]byte(fingerprint + "\x00" + text))
	return KeyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached result. ok is false on a miss.
func (c *ResultCache) Get(ctx context.Context, fingerprint, text string) (parser.Seasons, bool, error) {
	raw, err := c.kv.Get(ctx, Key(fingerprint, text))
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached result: %w", err)
	}

	var seasons parser.Seasons
	if err := json.Unmarshal([]byte(raw), &seasons); err != nil {
		return nil, false, fmt.Errorf("decoding cached result: %w", err)
	}
	for label, rec := range seasons {
		rec.Label = label
	}
	return seasons, true, nil
}

// Put stores a result.
func (c *ResultCache) Put(ctx context.Context, fingerprint, text string, seasons parser.Seasons) error {
	data, err := json.Marshal(seasons)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := c.kv.Set(ctx, Key(fingerprint, text), string(data), c.ttl); err != nil {
		return fmt.Errorf("writing cached result: %w", err)
	}
	return nil
}
