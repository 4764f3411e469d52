package config

import (
	"strings"
	"time"
)

const (
	StorageBackendMemory = "memory"
	StorageBackendRedis  = "redis"
	StorageBackendCookie = "cookie"
)

type StorageConfig interface {
	GetStorageBackend() string
	GetStorageTTL() time.Duration
	GetStorageSecret() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetStorageBackend() string {
	switch backend := strings.ToLower(GetEnv("STORAGE_BACKEND", StorageBackendMemory)); backend {
	case StorageBackendRedis, StorageBackendCookie:
		return backend
	default:
		return StorageBackendMemory
	}
}

// GetStorageTTL is how long an idle browser's storage survives.
func (Storage) GetStorageTTL() time.Duration {
	return GetEnvAsDuration("STORAGE_TTL", 30*24*time.Hour)
}

// GetStorageSecret keys the sealed cookie backend.
func (Storage) GetStorageSecret() string {
	return GetEnv("STORAGE_SECRET", "")
}

func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Storage) GetRedisDB() int {
	return GetEnvAsInt("REDIS_DB", 0)
}
