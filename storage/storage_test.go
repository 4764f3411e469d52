package storage_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/trackvision/portal-web/internal/errors"
	"github.com/trackvision/portal-web/storage"
)

// setupTestRedis creates an in-memory Redis instance for testing
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// exerciseStore runs the behaviour every Store must share.
func exerciseStore(t *testing.T, store storage.Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "access")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, map[string]string{"access": "a1", "refresh": "r1"}))
	v, ok, err := store.Get(ctx, "access")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a1", v)

	require.NoError(t, store.Set(ctx, map[string]string{"access": "a2"}))
	v, _, _ = store.Get(ctx, "access")
	require.Equal(t, "a2", v)

	require.NoError(t, store.Remove(ctx, "access", "missing"))
	_, ok, err = store.Get(ctx, "access")
	require.NoError(t, err)
	require.False(t, ok)

	v, ok, _ = store.Get(ctx, "refresh")
	require.True(t, ok)
	require.Equal(t, "r1", v)

	require.NoError(t, store.Remove(ctx, "refresh"))
	require.NoError(t, store.Remove(ctx, "refresh"), "removing twice is a no-op")
}

func TestInMemoryRepo(t *testing.T) {
	repo := storage.NewInMemoryRepo()

	t.Run("store behaviour", func(t *testing.T) {
		exerciseStore(t, storage.Scoped(repo, "browser-1"))
	})

	t.Run("browsers are isolated", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, repo.Set(ctx, "browser-a", map[string]string{"user": "a"}))
		_, ok, err := repo.Get(ctx, "browser-b", "user")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("browser id required", func(t *testing.T) {
		_, _, err := repo.Get(context.Background(), "", "user")
		require.Error(t, err)
		require.Error(t, repo.Set(context.Background(), "", map[string]string{"a": "b"}))
		require.Error(t, repo.Delete(context.Background(), "", "a"))
	})
}

func TestInMemoryRepo_DeleteIdle(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	storage.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { storage.NowTimeFunc = time.Now })

	repo := storage.NewInMemoryRepo()
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, "old", map[string]string{"k": "v"}))
	now = now.Add(2 * time.Hour)
	require.NoError(t, repo.Set(ctx, "fresh", map[string]string{"k": "v"}))

	removed := repo.DeleteIdle(now.Add(-time.Hour))
	require.Equal(t, 1, removed)

	_, ok, _ := repo.Get(ctx, "old", "k")
	require.False(t, ok)
	_, ok, _ = repo.Get(ctx, "fresh", "k")
	require.True(t, ok)
}

func TestInMemoryRepo_ReadKeepsBrowserActive(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	storage.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { storage.NowTimeFunc = time.Now })

	repo := storage.NewInMemoryRepo()
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, "reader", map[string]string{"access": "tok"}))

	now = now.Add(2 * time.Hour)
	_, ok, err := repo.Get(ctx, "reader", "access")
	require.NoError(t, err)
	require.True(t, ok)

	require.Zero(t, repo.DeleteIdle(now.Add(-time.Hour)))
	v, ok, _ := repo.Get(ctx, "reader", "access")
	require.True(t, ok)
	require.Equal(t, "tok", v)
}

func TestInMemoryRepo_SweepIdle(t *testing.T) {
	t.Run("no ttl never sweeps", func(t *testing.T) {
		repo := storage.NewInMemoryRepo()
		require.NoError(t, repo.Set(context.Background(), "b", map[string]string{"k": "v"}))

		done := make(chan struct{})
		go func() {
			repo.SweepIdle(context.Background(), 0, time.Millisecond)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("SweepIdle with no ttl should return immediately")
		}

		_, ok, _ := repo.Get(context.Background(), "b", "k")
		require.True(t, ok)
	})

	t.Run("stops with its context", func(t *testing.T) {
		repo := storage.NewInMemoryRepo()
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			repo.SweepIdle(ctx, time.Hour, time.Millisecond)
			close(done)
		}()
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("SweepIdle did not stop after cancel")
		}
	})
}

func TestRedisRepo(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := storage.NewRedisRepo(client, time.Hour)

	t.Run("store behaviour", func(t *testing.T) {
		exerciseStore(t, storage.Scoped(repo, "browser-1"))
	})

	t.Run("hash per browser with ttl", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, repo.Set(ctx, "browser-2", map[string]string{"user": `{"id":1}`, "access": "tok"}))

		require.True(t, mr.Exists("portal:storage:browser-2"))
		require.Equal(t, "tok", mr.HGet("portal:storage:browser-2", "access"))
		require.Greater(t, mr.TTL("portal:storage:browser-2"), time.Duration(0))
	})

	t.Run("expired storage reads as empty", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, repo.Set(ctx, "browser-3", map[string]string{"access": "tok"}))
		mr.FastForward(2 * time.Hour)

		_, ok, err := repo.Get(ctx, "browser-3", "access")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("reads slide the expiry", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, repo.Set(ctx, "browser-4", map[string]string{"access": "tok"}))

		mr.FastForward(45 * time.Minute)
		_, ok, err := repo.Get(ctx, "browser-4", "access")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, time.Hour, mr.TTL("portal:storage:browser-4"))

		mr.FastForward(45 * time.Minute)
		v, ok, err := repo.Get(ctx, "browser-4", "access")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "tok", v)
	})

	t.Run("missing key in a live hash", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, repo.Set(ctx, "browser-5", map[string]string{"access": "tok"}))
		_, ok, err := repo.Get(ctx, "browser-5", "refresh")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("unreachable redis surfaces an error", func(t *testing.T) {
		broken := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
		t.Cleanup(func() { _ = broken.Close() })
		_, _, err := storage.NewRedisRepo(broken, time.Hour).Get(context.Background(), "b", "user")
		require.Error(t, err)
	})
}

func TestSealer(t *testing.T) {
	sealer, err := storage.NewSealer("0123456789abcdef-secret")
	require.NoError(t, err)

	sealed, err := sealer.Seal(map[string]string{"access": "tok", "user": `{"id":1}`})
	require.NoError(t, err)
	require.NotContains(t, sealed, "tok")

	values, err := sealer.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "tok", values["access"])

	t.Run("tampered value", func(t *testing.T) {
		tampered := []byte(sealed)
		i := len(tampered) / 2
		if tampered[i] == 'A' {
			tampered[i] = 'B'
		} else {
			tampered[i] = 'A'
		}
		_, err := sealer.Open(string(tampered))
		require.ErrorIs(t, err, errors.ErrSealedValue)
	})

	t.Run("other key", func(t *testing.T) {
		other, err := storage.NewSealer("another-secret-of-16+")
		require.NoError(t, err)
		_, err = other.Open(sealed)
		require.ErrorIs(t, err, errors.ErrSealedValue)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := sealer.Open("not base64!")
		require.ErrorIs(t, err, errors.ErrSealedValue)
		_, err = sealer.Open(strings.Repeat("A", 10))
		require.ErrorIs(t, err, errors.ErrSealedValue)
	})

	t.Run("short secret rejected", func(t *testing.T) {
		_, err := storage.NewSealer("short")
		require.Error(t, err)
	})
}

func TestSealedStore(t *testing.T) {
	t.Run("store behaviour", func(t *testing.T) {
		exerciseStore(t, storage.NewSealedStore(nil))
	})

	t.Run("dirty tracking", func(t *testing.T) {
		ctx := context.Background()
		s := storage.NewSealedStore(map[string]string{"email": "a@x.com"})
		require.False(t, s.Dirty())

		require.NoError(t, s.Remove(ctx, "missing"))
		require.False(t, s.Dirty(), "removing an absent key changes nothing")

		require.NoError(t, s.Remove(ctx, "email"))
		require.True(t, s.Dirty())
		require.Empty(t, s.Values())
	})
}
