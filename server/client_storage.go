package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/trackvision/portal-web/storage"
)

// ClientStorage hands every request the storage of the browser that sent it. The returned
// writer must be used for the rest of the request.
type ClientStorage interface {
	Attach(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, storage.Store)
}

// CookieSettings are shared by the browser-id and sealed-storage cookies.
type CookieSettings struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

func (c CookieSettings) cookie(r *http.Request, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure || getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

// NewRepoClientStorage keeps every browser's storage in repo under a random browser id held
// in a cookie.
func NewRepoClientStorage(repo storage.Repo, cookie CookieSettings) ClientStorage {
	return &repoClientStorage{repo: repo, cookie: cookie}
}

type repoClientStorage struct {
	repo   storage.Repo
	cookie CookieSettings
}

func (c *repoClientStorage) Attach(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, storage.Store) {
	browserID := ""
	if ck, err := r.Cookie(c.cookie.Name); err == nil {
		if id, err := uuid.Parse(ck.Value); err == nil {
			browserID = id.String()
		}
	}
	if browserID == "" {
		browserID = uuid.NewString()
	}
	// Refreshed on every request so an active browser keeps its storage.
	http.SetCookie(w, c.cookie.cookie(r, browserID, int(c.cookie.MaxAge.Seconds())))

	return w, storage.Scoped(c.repo, browserID)
}

// NewSealedClientStorage keeps a browser's storage inside the cookie itself, sealed with
// sealer. No server-side state is kept.
func NewSealedClientStorage(sealer *storage.Sealer, cookie CookieSettings) ClientStorage {
	return &sealedClientStorage{sealer: sealer, cookie: cookie}
}

type sealedClientStorage struct {
	sealer *storage.Sealer
	cookie CookieSettings
}

func (c *sealedClientStorage) Attach(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, storage.Store) {
	var values map[string]string
	if ck, err := r.Cookie(c.cookie.Name); err == nil && ck.Value != "" {
		opened, err := c.sealer.Open(ck.Value)
		if err != nil {
			log.Debug().Err(err).Msg("discarding unreadable client storage cookie")
		} else {
			values = opened
		}
	}

	store := storage.NewSealedStore(values)
	return &sealingWriter{ResponseWriter: w, r: r, store: store, storage: c}, store
}

// sealingWriter writes the storage cookie back just before the response headers go out.
type sealingWriter struct {
	http.ResponseWriter
	r       *http.Request
	store   *storage.SealedStore
	storage *sealedClientStorage
	once    sync.Once
}

func (w *sealingWriter) flush() {
	w.once.Do(func() {
		if !w.store.Dirty() {
			return
		}
		values := w.store.Values()
		if len(values) == 0 {
			http.SetCookie(w.ResponseWriter, w.storage.cookie.cookie(w.r, "", -1))
			return
		}
		sealed, err := w.storage.sealer.Seal(values)
		if err != nil {
			log.Err(err).Msg("failed to seal client storage")
			return
		}
		http.SetCookie(w.ResponseWriter, w.storage.cookie.cookie(w.r, sealed, int(w.storage.cookie.MaxAge.Seconds())))
	})
}

func (w *sealingWriter) WriteHeader(status int) {
	w.flush()
	w.ResponseWriter.WriteHeader(status)
}

func (w *sealingWriter) Write(b []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(b)
}

func (w *sealingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

type storageContextKey struct{}

// ClientStorageMiddleware attaches the browser's storage to the request context.
func (s *Server) ClientStorageMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w, store := s.clientStorage.Attach(w, r)
		ctx := context.WithValue(r.Context(), storageContextKey{}, store)
		next(w, r.WithContext(ctx))

		if sw, ok := w.(*sealingWriter); ok {
			sw.flush()
		}
	}
}

// clientStore returns the storage attached by ClientStorageMiddleware.
func clientStore(r *http.Request) storage.Store {
	if store, ok := r.Context().Value(storageContextKey{}).(storage.Store); ok {
		return store
	}
	// Routes without the middleware get a throwaway store.
	return storage.NewSealedStore(nil)
}
