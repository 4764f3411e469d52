package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	fileValues   map[string]string
	fileValuesMu sync.RWMutex
)

// LoadFile reads a flat YAML mapping of variable name to value, e.g.
//
//	API_URL: https://api.trackvision.pk/
//	STORAGE_BACKEND: redis
//
// Environment variables take precedence over values from the file.
func LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[k] = fmt.Sprint(v)
	}

	fileValuesMu.Lock()
	fileValues = values
	fileValuesMu.Unlock()
	return nil
}

// ResetFile forgets values loaded by LoadFile.
func ResetFile() {
	fileValuesMu.Lock()
	fileValues = nil
	fileValuesMu.Unlock()
}

func fileValue(name string) (string, bool) {
	fileValuesMu.RLock()
	defer fileValuesMu.RUnlock()
	v, ok := fileValues[name]
	return v, ok
}
