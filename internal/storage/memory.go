package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryBackend keeps everything in a map.  It is the default backend for
// development and the one the service tests run against.  A positive quota
// caps the total bytes of keys plus values, the way browser storage does.
type MemoryBackend struct {
	mu    sync.RWMutex
	data  map[string]string
	quota int
	size  int
}

// NewMemoryBackend returns an empty backend.  quota <= 0 disables the limit.
func NewMemoryBackend(quota int) *MemoryBackend {
	return &MemoryBackend{data: make(map[string]string), quota: quota}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.size + len(key) + len(value)
	if old, ok := m.data[key]; ok {
		next -= len(key) + len(old)
	}
	if m.quota > 0 && next > m.quota {
		return ErrQuotaExceeded
	}
	m.data[key] = value
	m.size = next
	return nil
}

func (m *MemoryBackend) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryBackend) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	m.size = 0
	return nil
}

// Replace swaps the whole map under one lock; a quota breach leaves the
// previous contents untouched.
func (m *MemoryBackend) Replace(_ context.Context, entries map[string]string) error {
	next := make(map[string]string, len(entries))
	size := 0
	for k, v := range entries {
		next[k] = v
		size += len(k) + len(v)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quota > 0 && size > m.quota {
		return ErrQuotaExceeded
	}
	m.data = next
	m.size = size
	return nil
}
