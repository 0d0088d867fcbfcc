// Package cache holds a single cached payload with a freshness window.
package cache

import (
	"context"
	"sync"
	"time"
)

// Entry is one cached value. Load reports ok=false once the value is older
// than the entry's TTL.
type Entry interface {
	Load(ctx context.Context) (value []byte, ok bool, err error)
	Store(ctx context.Context, value []byte) error
	Clear(ctx context.Context) error
}

type localEntry struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	value    []byte
	storedAt time.Time
}

// NewLocal keeps the value in process memory.
func NewLocal(ttl time.Duration) Entry {
	return newLocal(ttl, time.Now)
}

func newLocal(ttl time.Duration, now func() time.Time) *localEntry {
	return &localEntry{ttl: ttl, now: now}
}

func (e *localEntry) Load(context.Context) ([]byte, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.value == nil || e.now().Sub(e.storedAt) >= e.ttl {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (e *localEntry) Store(_ context.Context, value []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.value = append([]byte(nil), value...)
	e.storedAt = e.now()
	return nil
}

func (e *localEntry) Clear(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.value = nil
	return nil
}
