// Package store persists raw OSM service responses so repeated runs over
// the same study area skip the network.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache stores response bodies under request keys.
type Cache interface {
	// Get returns the body stored for key, or nil when it is absent or
	// expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key, service string, body []byte, ttl time.Duration) error
}

// Key derives a cache key from the parts that identify a request.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}
