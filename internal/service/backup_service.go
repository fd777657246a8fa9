package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/iliyamo/day-booking/internal/logger"
	"github.com/iliyamo/day-booking/internal/metrics"
	"github.com/iliyamo/day-booking/internal/model"
	"github.com/iliyamo/day-booking/internal/repository"
)

// isoMillis matches the timestamp shape of JavaScript's toISOString, which
// earlier snapshots were written with.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// BackupService exports and imports the whole key space.  It treats every
// key opaquely, so profiles, bookings and any other application key travel
// together.
type BackupService struct {
	store   *repository.RecordStore
	metrics *metrics.Metrics
	log     logger.Logger
	now     func() time.Time
	// lock is shared with the booking service so a restore never lands in
	// the middle of a booking read-modify-write.
	lock sync.Locker
}

// NewBackupService wires the service.  Pass the BookingService that writes
// to the same store so restores are serialised with booking mutations; nil
// is allowed when no booking service shares the store.
func NewBackupService(store *repository.RecordStore, bookings *BookingService, m *metrics.Metrics, log logger.Logger) *BackupService {
	if store == nil {
		panic("nil record store passed to NewBackupService")
	}
	if log == nil {
		log = logger.NewNop()
	}
	s := &BackupService{store: store, metrics: m, log: log, now: time.Now, lock: noLock{}}
	if bookings != nil {
		s.lock = &bookings.mu
	}
	return s
}

// CreateBackup serialises every persisted key with a timestamp and the
// current format version.  It does not modify the store.
func (s *BackupService) CreateBackup(ctx context.Context) (string, error) {
	data, err := s.store.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	snap := model.Snapshot{
		Timestamp: s.now().UTC().Format(isoMillis),
		Version:   model.BackupVersion,
		Data:      data,
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	s.metrics.BackedUp()
	s.log.Info("backup created", "keys", len(data), "bytes", len(body))
	return string(body), nil
}

// RestoreBackup replaces the whole store with the snapshot's data.  keys
// absent from the snapshot are lost.  Entries whose value is not a JSON
// string are skipped without error.
func (s *BackupService) RestoreBackup(ctx context.Context, snapshot string) error {
	var envelope struct {
		Timestamp json.RawMessage `json:"timestamp"`
		Version   json.RawMessage `json:"version"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(snapshot), &envelope); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackupFormat, err)
	}
	if !present(envelope.Data) || !present(envelope.Timestamp) || !present(envelope.Version) {
		return fmt.Errorf("%w: timestamp, version and data are required", ErrInvalidBackupFormat)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(envelope.Data, &raw); err != nil {
		return fmt.Errorf("%w: data must be an object", ErrInvalidBackupFormat)
	}

	entries := make(map[string]string, len(raw))
	skipped := 0
	for k, v := range raw {
		var str string
		if err := json.Unmarshal(v, &str); err != nil || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			skipped++
			continue
		}
		entries[k] = str
	}

	s.lock.Lock()
	err := s.store.Replace(ctx, entries)
	s.lock.Unlock()
	if err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}
	s.metrics.Restored()
	s.log.Info("backup restored", "keys", len(entries), "skipped", skipped)
	return nil
}

// BackupFileName is the download name for a snapshot taken at t.
func BackupFileName(t time.Time) string {
	return "booking-system-backup-" + t.UTC().Format(model.DateLayout) + ".json"
}

// present mirrors the truthiness test older clients applied: a field that is
// missing, null, false, 0 or "" counts as absent.
func present(v json.RawMessage) bool {
	switch string(bytes.TrimSpace(v)) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}
