package storage

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"sync"

	"github.com/trackvision/portal-web/internal/errors"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// Sealer encrypts and authenticates a browser's storage so it can live in a cookie.
type Sealer struct {
	key [32]byte
}

// NewSealer derives the sealing key from secret.
func NewSealer(secret string) (*Sealer, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("storage secret must be at least 16 characters")
	}
	s := &Sealer{}
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("portal client storage"))
	if _, err := io.ReadFull(kdf, s.key[:]); err != nil {
		return nil, fmt.Errorf("failed to derive storage key: %w", err)
	}
	return s, nil
}

func (s *Sealer) Seal(values map[string]string) (string, error) {
	msg, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode client storage: %w", err)
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], msg, &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (s *Sealer) Open(sealed string) (map[string]string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return nil, errors.ErrSealedValue
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	msg, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, errors.ErrSealedValue
	}
	values := map[string]string{}
	if err := json.Unmarshal(msg, &values); err != nil {
		return nil, errors.ErrSealedValue
	}
	return values, nil
}

var _ Store = (*SealedStore)(nil)

// SealedStore is a request-scoped Store whose contents travel in a sealed cookie.
// The server reads it from the request and writes it back when Dirty.
type SealedStore struct {
	mu     sync.Mutex
	values map[string]string
	dirty  bool
}

func NewSealedStore(values map[string]string) *SealedStore {
	if values == nil {
		values = map[string]string{}
	}
	return &SealedStore{values: values}
}

func (s *SealedStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *SealedStore) Set(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.values[k] = v
	}
	s.dirty = true
	return nil
}

func (s *SealedStore) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		if _, ok := s.values[k]; ok {
			delete(s.values, k)
			s.dirty = true
		}
	}
	return nil
}

func (s *SealedStore) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Values returns a copy of the current contents.
func (s *SealedStore) Values() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.values)
}
