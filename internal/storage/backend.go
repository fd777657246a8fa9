// Package storage provides the key-value media the record store persists
// into.  Every backend holds opaque string values under string keys and
// offers the same five operations; the choice of backend is a deployment
// decision made in config.
package storage

import (
	"context"
	"errors"
)

// ErrQuotaExceeded is returned by a backend that refuses a write because it
// would grow past its configured size.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Backend is a durable string key-value medium.
//
// Get reports found=false for a missing key; err is reserved for failures of
// the medium itself.  Keys lists every key in ascending order, without
// duplicates.  Clear and Replace are atomic on the memory, Redis and MySQL
// backends.  MongoBackend runs them as two steps and can leave the store
// empty if the insert fails after the delete.
type Backend interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
	// Replace drops every existing key and writes entries in its place.
	Replace(ctx context.Context, entries map[string]string) error
}
