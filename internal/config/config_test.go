package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.APIURL != "http://127.0.0.1:8080/api" {
		t.Errorf("Unexpected API URL: %s", cfg.APIURL)
	}
	if cfg.Listen != "127.0.0.1:8080" {
		t.Errorf("Unexpected listen address: %s", cfg.Listen)
	}
	if filepath.Base(cfg.DB) != "todo.db" {
		t.Errorf("Unexpected db path: %s", cfg.DB)
	}
	if cfg.Client.Timeout != 10*time.Second {
		t.Errorf("Expected 10s timeout, got %v", cfg.Client.Timeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected info level, got %s", cfg.Log.Level)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	content := `
api_url: http://tasks.internal/api
listen: 0.0.0.0:9000
cors_origins:
  - http://a.example
  - http://b.example
client:
  timeout: 3s
postgres:
  max_conns: 4
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{ConfigFile: path, EnvFile: filepath.Join(tmpDir, "missing.env")})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIURL != "http://tasks.internal/api" {
		t.Errorf("Unexpected API URL: %s", cfg.APIURL)
	}
	if cfg.Listen != "0.0.0.0:9000" {
		t.Errorf("Unexpected listen: %s", cfg.Listen)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.example" {
		t.Errorf("Unexpected origins: %v", cfg.CORSOrigins)
	}
	if cfg.Client.Timeout != 3*time.Second {
		t.Errorf("Expected 3s timeout, got %v", cfg.Client.Timeout)
	}
	if cfg.Postgres.MaxConns != 4 {
		t.Errorf("Expected 4 pool connections, got %d", cfg.Postgres.MaxConns)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Log.Format != "text" {
		t.Errorf("Expected default log format, got %s", cfg.Log.Format)
	}
	if cfg.Postgres.MaxConnIdleTime != 30*time.Minute {
		t.Errorf("Expected default idle time, got %v", cfg.Postgres.MaxConnIdleTime)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
	if err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	t.Setenv(EnvAPIURL, "http://override/api")
	t.Setenv(EnvCORSOrigins, "http://x, http://y")
	t.Setenv(EnvTimeout, "250ms")

	cfg, err := Load(LoadOptions{ConfigFile: path, EnvFile: filepath.Join(tmpDir, "missing.env")})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIURL != "http://override/api" {
		t.Errorf("Expected env override, got %s", cfg.APIURL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "http://x" || cfg.CORSOrigins[1] != "http://y" {
		t.Errorf("Unexpected origins: %v", cfg.CORSOrigins)
	}
	if cfg.Client.Timeout != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %v", cfg.Client.Timeout)
	}
}

func TestLoad_BadTimeout(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvTimeout, "soon")

	if _, err := Load(LoadOptions{ConfigFile: path, EnvFile: filepath.Join(tmpDir, "missing.env")}); err == nil {
		t.Error("Expected error for invalid timeout")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatal(err)
	}
	envFile := filepath.Join(tmpDir, "test.env")
	if err := os.WriteFile(envFile, []byte("TODO_LOG_FORMAT=json\n"), 0644); err != nil {
		t.Fatal(err)
	}

	os.Unsetenv(EnvLogFormat)
	t.Cleanup(func() { os.Unsetenv(EnvLogFormat) })

	cfg, err := Load(LoadOptions{ConfigFile: path, EnvFile: envFile})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Expected log format from .env, got %s", cfg.Log.Format)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := Default()
	cfg.APIURL = "http://saved/api"
	cfg.Client.Timeout = 7 * time.Second
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(LoadOptions{ConfigFile: path, EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.APIURL != "http://saved/api" {
		t.Errorf("Expected saved URL, got %s", loaded.APIURL)
	}
	if loaded.Client.Timeout != 7*time.Second {
		t.Errorf("Expected 7s, got %v", loaded.Client.Timeout)
	}
}

func TestReadFile_IgnoresEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_url: http://file/api\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvAPIURL, "http://env/api")

	cfg, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if cfg.APIURL != "http://file/api" {
		t.Errorf("Expected file value, got %s", cfg.APIURL)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist, got %v", err)
	}
}
