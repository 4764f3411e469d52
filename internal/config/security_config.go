package config

import "time"

type SecurityConfig interface {
	GetBrowserCookieName() string
	GetBrowserCookieMaxAge() time.Duration
	GetSecureCookies() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetBrowserCookieName() string {
	return GetEnv("BROWSER_COOKIE", "portal_browser")
}

func (Security) GetBrowserCookieMaxAge() time.Duration {
	return GetEnvAsDuration("BROWSER_COOKIE_MAX_AGE", 30*24*time.Hour)
}

func (Security) GetSecureCookies() bool {
	return EnvVars{}.GetEnv() == "PROD"
}
