// Package config provides configuration loading and structs for the microlearn services.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	UserServer UserServerConfig `yaml:"user_server"`
	Storage    StorageConfig    `yaml:"storage"`
	Search     SearchConfig     `yaml:"search"`
	Auth       AuthConfig       `yaml:"auth"`
	Upload     UploadConfig     `yaml:"upload"`
	Transform  TransformConfig  `yaml:"transform"`
	Events     EventsConfig     `yaml:"events"`
	Watch      WatchConfig      `yaml:"watch"`
}

// ServerConfig holds HTTP settings for the content service.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// UserServerConfig holds HTTP settings for the user service.
type UserServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig selects and configures the persistence backend. Driver is one
// of "sqlite", "mongo", or "memory"; it is resolved once at startup.
type StorageConfig struct {
	Driver           string `yaml:"driver"`
	DatabasePath     string `yaml:"database_path"`
	UserDatabasePath string `yaml:"user_database_path"`
	MongoURI         string `yaml:"mongo_uri"`
	MongoDatabase    string `yaml:"mongo_database"`
}

// SearchConfig holds lesson search index settings.
type SearchConfig struct {
	IndexPath    string `yaml:"index_path"`
	DefaultLimit int    `yaml:"default_limit"`
	MaxLimit     int    `yaml:"max_limit"`
}

// AuthConfig holds token issuance settings for the user service.
type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

// UploadConfig bounds course material uploads.
type UploadConfig struct {
	MaxSizeBytes int64    `yaml:"max_size_bytes"`
	Extensions   []string `yaml:"extensions"`
}

// TransformConfig holds defaults for the lesson transformation endpoints.
type TransformConfig struct {
	DefaultDurationMinutes int `yaml:"default_duration_minutes"`
	DefaultQuizQuestions   int `yaml:"default_quiz_questions"`
}

// EventsConfig configures publication of domain events through a Dapr sidecar.
type EventsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	DaprURL    string `yaml:"dapr_url"`
	PubSubName string `yaml:"pubsub_name"`
}

// WatchConfig holds ingest directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.UserDatabasePath = expandPath(cfg.Storage.UserDatabasePath, configDir)
	cfg.Search.IndexPath = expandPath(cfg.Search.IndexPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
