// Package storage is the server-side stand-in for a browser's persistent key/value storage.
// Every browser gets its own namespace, identified by the browser-id cookie.
package storage

import "context"

// Store is one browser's key/value storage.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes every pair in values in one step.
	Set(ctx context.Context, values map[string]string) error
	// Remove deletes the keys. Removing an absent key is not an error.
	Remove(ctx context.Context, keys ...string) error
}

// Repo holds the storage of all browsers.
type Repo interface {
	Get(ctx context.Context, browserID, key string) (string, bool, error)
	Set(ctx context.Context, browserID string, values map[string]string) error
	Delete(ctx context.Context, browserID string, keys ...string) error
}

// Scoped returns the Store of one browser inside repo.
func Scoped(repo Repo, browserID string) Store {
	return scopedStore{repo: repo, browserID: browserID}
}

type scopedStore struct {
	repo      Repo
	browserID string
}

func (s scopedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.repo.Get(ctx, s.browserID, key)
}

func (s scopedStore) Set(ctx context.Context, values map[string]string) error {
	return s.repo.Set(ctx, s.browserID, values)
}

func (s scopedStore) Remove(ctx context.Context, keys ...string) error {
	return s.repo.Delete(ctx, s.browserID, keys...)
}
