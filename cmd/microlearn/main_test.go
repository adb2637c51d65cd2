package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/microlearning/microlearn/internal/config"
)

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8081
storage:
  driver: "memory"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("driver = %s, want memory", cfg.Storage.Driver)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
user_server:
  port: 9001
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.UserServer.Port != 9001 {
		t.Errorf("user server port = %d, want 9001", cfg.UserServer.Port)
	}
}

func TestCheckAuthConfig(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	if err := checkAuthConfig(cfg); err == nil {
		t.Error("expected error for empty jwt secret")
	}
	cfg.Auth.JWTSecret = "a-real-secret"
	if err := checkAuthConfig(cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
