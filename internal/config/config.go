// Package config resolves client configuration: backend base URL,
// realtime channel credentials, and tunables. Resolution order is
// environment, then the JSON config file, then built-in defaults.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const configFile = "config.json"

// DefaultBaseURL is used when nothing else resolves the backend address.
const DefaultBaseURL = "http://localhost:8000"

// Heartbeat defaults. Fixed in the product spec but kept configurable.
const (
	DefaultHeartbeatPeriod = 30 * time.Second
	DefaultIdleCutoff      = 120 * time.Second
)

// Config is the on-disk configuration record.
type Config struct {
	APIBaseURL  string `json:"api_base_url,omitempty"`
	RealtimeURL string `json:"realtime_url,omitempty"`
	RealtimeKey string `json:"realtime_key,omitempty"`

	HeartbeatSeconds  int `json:"heartbeat_seconds,omitempty"`
	IdleCutoffSeconds int `json:"idle_cutoff_seconds,omitempty"`
}

// Load reads the config from baseDir. A missing file yields an empty config.
func Load(baseDir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, configFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config atomically (temp file + rename).
func Save(baseDir string, cfg *Config) error {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(baseDir, configFile)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(baseDir, "config-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}

// BaseURL resolves the backend base URL: NAVIYA_API_URL, then config,
// then DefaultBaseURL.
func (c *Config) BaseURL() string {
	if v := os.Getenv("NAVIYA_API_URL"); v != "" {
		return v
	}
	if c.APIBaseURL != "" {
		return c.APIBaseURL
	}
	return DefaultBaseURL
}

// Realtime resolves the change-stream endpoint and key. Either empty
// means realtime is disabled and the client runs REST-only.
func (c *Config) Realtime() (url, key string) {
	url = os.Getenv("NAVIYA_REALTIME_URL")
	if url == "" {
		url = c.RealtimeURL
	}
	key = os.Getenv("NAVIYA_REALTIME_KEY")
	if key == "" {
		key = c.RealtimeKey
	}
	return url, key
}

// HeartbeatPeriod returns the configured beacon period.
func (c *Config) HeartbeatPeriod() time.Duration {
	if c.HeartbeatSeconds > 0 {
		return time.Duration(c.HeartbeatSeconds) * time.Second
	}
	return DefaultHeartbeatPeriod
}

// IdleCutoff returns the configured idle threshold for heartbeats.
func (c *Config) IdleCutoff() time.Duration {
	if c.IdleCutoffSeconds > 0 {
		return time.Duration(c.IdleCutoffSeconds) * time.Second
	}
	return DefaultIdleCutoff
}

// BaseDir returns the directory holding the config file and local store.
// NAVIYA_HOME overrides; default is ~/.naviya.
func BaseDir() string {
	if v := os.Getenv("NAVIYA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".naviya"
	}
	return filepath.Join(home, ".naviya")
}
