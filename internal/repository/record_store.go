package repository

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"

	"github.com/iliyamo/day-booking/internal/logger"
	"github.com/iliyamo/day-booking/internal/storage"
)

// Keys owned by the service.
const (
	BookingsKey = "bookings"
	ProfileKey  = "user_profile"
)

// RecordStore serialises values to JSON and persists them through a
// storage.Backend.  It is the only type that talks to the backend.
type RecordStore struct {
	backend storage.Backend
	log     logger.Logger
}

// NewRecordStore binds a store to backend.  A nil log discards messages.
func NewRecordStore(backend storage.Backend, log logger.Logger) *RecordStore {
	if backend == nil {
		panic("nil backend passed to NewRecordStore")
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &RecordStore{backend: backend, log: log}
}

// Load decodes the value stored under key into dst.  dst should already hold
// the default the caller wants on first run: a missing key leaves it as is,
// and so does a malformed value, which is logged and reported as not found.
// Only a failure of the medium itself is returned as an error, because
// treating an unreachable store as empty would let the next Save overwrite
// real data.
func (s *RecordStore) Load(ctx context.Context, key string, dst any) (bool, error) {
	raw, found, err := s.backend.Get(ctx, key)
	if err != nil {
		s.log.Error("record store read failed", "key", key, "error", err)
		return false, &PersistenceError{Op: "load", Key: key, Err: err}
	}
	if !found {
		return false, nil
	}
	// decode into a scratch value so a type mismatch halfway through the
	// document cannot leave dst partially overwritten
	target := reflect.ValueOf(dst)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return false, &PersistenceError{Op: "load", Key: key, Err: errors.New("destination must be a non-nil pointer")}
	}
	scratch := reflect.New(target.Elem().Type())
	if err := json.Unmarshal([]byte(raw), scratch.Interface()); err != nil {
		s.log.Warn("ignoring malformed record", "key", key, "error", err)
		return false, nil
	}
	target.Elem().Set(scratch.Elem())
	return true, nil
}

// Save JSON-encodes value and writes it under key.
func (s *RecordStore) Save(ctx context.Context, key string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return &PersistenceError{Op: "save", Key: key, Err: err}
	}
	if err := s.backend.Set(ctx, key, string(body)); err != nil {
		s.log.Error("record store write failed", "key", key, "bytes", len(body), "error", err)
		return &PersistenceError{Op: "save", Key: key, Err: err}
	}
	return nil
}

// Keys lists every persisted key in ascending order.
func (s *RecordStore) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.backend.Keys(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "keys", Err: err}
	}
	return keys, nil
}

// Clear removes every persisted key.
func (s *RecordStore) Clear(ctx context.Context) error {
	if err := s.backend.Clear(ctx); err != nil {
		return &PersistenceError{Op: "clear", Err: err}
	}
	return nil
}

// Snapshot returns the raw value of every persisted key.
func (s *RecordStore) Snapshot(ctx context.Context) (map[string]string, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}
	data := make(map[string]string, len(keys))
	for _, k := range keys {
		v, found, err := s.backend.Get(ctx, k)
		if err != nil {
			return nil, &PersistenceError{Op: "snapshot", Key: k, Err: err}
		}
		if found {
			data[k] = v
		}
	}
	return data, nil
}

// Replace clears the store and writes entries verbatim.
func (s *RecordStore) Replace(ctx context.Context, entries map[string]string) error {
	if err := s.backend.Replace(ctx, entries); err != nil {
		s.log.Error("record store replace failed", "keys", len(entries), "error", err)
		return &PersistenceError{Op: "replace", Err: err}
	}
	return nil
}
