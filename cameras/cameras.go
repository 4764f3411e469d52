// Package cameras models the IP camera connection form. The portal only checks the form and
// passes it on; streaming is handled by the backend.
package cameras

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/trackvision/portal-web/internal/errors"
)

type Config struct {
	CameraID string `json:"cameraID"`
	RTSPURL  string `json:"rtspURL"`
}

// Normalize trims surrounding whitespace from every field.
func (c Config) Normalize() Config {
	return Config{
		CameraID: strings.TrimSpace(c.CameraID),
		RTSPURL:  strings.TrimSpace(c.RTSPURL),
	}
}

// Validate requires a camera id and an rtsp:// or rtsps:// URL naming a host.
func (c Config) Validate() error {
	if strings.TrimSpace(c.CameraID) == "" {
		return fmt.Errorf("%w: camera id is required", errors.ErrInvalidCameraConfig)
	}

	u, err := url.Parse(strings.TrimSpace(c.RTSPURL))
	if err != nil {
		return fmt.Errorf("%w: rtsp url: %v", errors.ErrInvalidCameraConfig, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "rtsp", "rtsps":
	default:
		return fmt.Errorf("%w: rtsp url must start with rtsp:// or rtsps://", errors.ErrInvalidCameraConfig)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("%w: rtsp url has no host", errors.ErrInvalidCameraConfig)
	}
	return nil
}

// Redacted returns the URL with any password masked, for logs.
func (c Config) Redacted() string {
	u, err := url.Parse(strings.TrimSpace(c.RTSPURL))
	if err != nil {
		return ""
	}
	return u.Redacted()
}
