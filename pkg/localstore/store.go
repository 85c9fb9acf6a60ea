// Package localstore is the device-local persistent key/value store that
// backs anonymous and local-only collections.
package localstore

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/soberstay/marketplace/pkg/logger"
)

// Keys shared with the browser client.
const (
	KeyFavorites   = "soberStay_favorites"
	KeyViewedHomes = "viewed_homes"
	KeyEngagement  = "tenant_engagement"
	KeyTourRequest = "tour_requests"
	KeySession     = "soberStay_session"
)

type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// LoadJSON decodes the value at key. A missing key, a read failure or a
// corrupt value all yield the zero value of T.
func LoadJSON[T any](s Store, key string) T {
	var zero T
	raw, ok, err := s.Get(key)
	if err != nil {
		logger.Warn("local store read failed", "key", key, "error", err)
		return zero
	}
	if !ok || len(raw) == 0 {
		return zero
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		logger.Warn("discarding malformed local value", "key", key, "error", err)
		return zero
	}
	return v
}

func SaveJSON(s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(key, raw)
}

// Memory is an in-process Store.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
