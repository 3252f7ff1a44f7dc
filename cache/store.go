// Package cache provides the key-value store abstraction the gateway
// persists its token and snapshot state through.
package cache

import (
	"context"
	"time"
)

// Store is an asynchronous key-value store. A missing key is not an
// error: Get returns (nil, nil). A malformed or unreadable value is an
// error for that key only; callers treat it as a miss.
type Store interface {
	// Get retrieves the raw value for key, or (nil, nil) when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key. A non-positive ttl stores the value
	// without expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
