package redis

import "errors"

var (
	// ErrCacheMiss is returned when a cache key does not exist.
	ErrCacheMiss = errors.New("cache miss")

	// ErrKeyNotFound is returned when a key does not exist.
	ErrKeyNotFound = errors.New("key not found")
)
