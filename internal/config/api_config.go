package config

import (
	"strings"
	"time"
)

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL returns the backend API root, always with a trailing slash so relative
// endpoint paths such as "login/" resolve beneath it.
func (API) GetAPIBaseURL() string {
	base := GetEnv("API_URL", "http://127.0.0.1:8000/")
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

func (API) GetAPITimeout() time.Duration {
	return GetEnvAsDuration("API_TIMEOUT", 15*time.Second)
}
