package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var _ Repo = (*InMemoryRepo)(nil)

type browserValues struct {
	values    map[string]string
	touchedAt time.Time
}

// InMemoryRepo is an in-memory implementation of Repo
type InMemoryRepo struct {
	mu       sync.RWMutex
	browsers map[string]*browserValues // browserID -> key -> value
}

// NewInMemoryRepo creates a new in-memory client storage repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		browsers: make(map[string]*browserValues),
	}
}

func (r *InMemoryRepo) Get(_ context.Context, browserID, key string) (string, bool, error) {
	if browserID == "" {
		return "", false, fmt.Errorf("browserID is required")
	}

	// Reads count as activity for DeleteIdle.
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.browsers[browserID]
	if !ok {
		return "", false, nil
	}
	b.touchedAt = NowTimeFunc()
	v, ok := b.values[key]
	return v, ok, nil
}

func (r *InMemoryRepo) Set(_ context.Context, browserID string, values map[string]string) error {
	if browserID == "" {
		return fmt.Errorf("browserID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.browsers[browserID]
	if !ok {
		b = &browserValues{values: make(map[string]string)}
		r.browsers[browserID] = b
	}
	for k, v := range values {
		b.values[k] = v
	}
	b.touchedAt = NowTimeFunc()
	return nil
}

func (r *InMemoryRepo) Delete(_ context.Context, browserID string, keys ...string) error {
	if browserID == "" {
		return fmt.Errorf("browserID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.browsers[browserID]
	if !ok {
		return nil // Already doesn't exist, no error
	}
	for _, k := range keys {
		delete(b.values, k)
	}
	b.touchedAt = NowTimeFunc()

	if len(b.values) == 0 {
		delete(r.browsers, browserID)
	}
	return nil
}

// DeleteIdle drops the storage of browsers not read or written since before.
func (r *InMemoryRepo) DeleteIdle(before time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, b := range r.browsers {
		if b.touchedAt.Before(before) {
			delete(r.browsers, id)
			removed++
		}
	}
	return removed
}

// SweepIdle runs DeleteIdle every interval until ctx is done, dropping browsers idle for longer
// than ttl. A ttl of zero or less keeps storage forever and returns at once.
func (r *InMemoryRepo) SweepIdle(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.DeleteIdle(NowTimeFunc().Add(-ttl)); n > 0 {
				log.Debug().Int("browsers", n).Msg("dropped idle client storage")
			}
		}
	}
}
