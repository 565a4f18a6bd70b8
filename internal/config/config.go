// Package config loads todo configuration from files, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fentz26/todo/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvAPIURL      = "TODO_API_URL"
	EnvListen      = "TODO_LISTEN"
	EnvDB          = "TODO_DB"
	EnvCORSOrigins = "TODO_CORS_ORIGINS"
	EnvLogLevel    = "TODO_LOG_LEVEL"
	EnvLogFormat   = "TODO_LOG_FORMAT"
	EnvTimeout     = "TODO_CLIENT_TIMEOUT"
)

// Config is the full todo configuration.
type Config struct {
	// APIURL is the base URL of the task service used by clients.
	APIURL string `yaml:"api_url" mapstructure:"api_url"`

	// Listen is the address the service binds to.
	Listen string `yaml:"listen" mapstructure:"listen"`

	// DB is a SQLite file path or a postgres:// URL.
	DB string `yaml:"db" mapstructure:"db"`

	// CORSOrigins lists browser origins allowed to call the service.
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`

	Log      logger.Options `yaml:"log" mapstructure:"log"`
	Client   ClientConfig   `yaml:"client" mapstructure:"client"`
	Postgres PostgresConfig `yaml:"postgres" mapstructure:"postgres"`
}

// PostgresConfig tunes the connection pool when DB is a postgres:// URL.
type PostgresConfig struct {
	MaxConns        int32         `yaml:"max_conns" mapstructure:"max_conns"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" mapstructure:"max_conn_idle_time"`
}

// ClientConfig configures the HTTP client used against the service.
type ClientConfig struct {
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LoadOptions points Load at non-default locations.
type LoadOptions struct {
	// ConfigFile replaces the global and project config files when set.
	ConfigFile string
	// EnvFile is the dotenv file to load; ".env" when empty.
	EnvFile string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIURL:      "http://127.0.0.1:8080/api",
		Listen:      "127.0.0.1:8080",
		DB:          filepath.Join(HomeDir(), "todo.db"),
		CORSOrigins: []string{"http://localhost:5173"},
		Log: logger.Options{
			Level:  "info",
			Format: "text",
		},
		Client: ClientConfig{Timeout: 10 * time.Second},
		Postgres: PostgresConfig{
			MaxConns:        10,
			MaxConnIdleTime: 30 * time.Minute,
		},
	}
}

// Load merges, in order: defaults, the global config file, the project
// config file (or opts.ConfigFile instead of both), the dotenv file, and
// TODO_* environment variables.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	paths := []string{GlobalConfigPath(), ProjectConfigPath()}
	if opts.ConfigFile != "" {
		paths = []string{opts.ConfigFile}
	}
	for _, p := range paths {
		err := loadFile(p, cfg)
		if err == nil || (errors.Is(err, fs.ErrNotExist) && opts.ConfigFile == "") {
			continue
		}
		return nil, fmt.Errorf("load %s: %w", p, err)
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFile returns the defaults overlaid with a single config file, with no
// dotenv or environment overrides.
func ReadFile(path string) (*Config, error) {
	cfg := Default()
	if err := loadFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvAPIURL); ok && v != "" {
		cfg.APIURL = v
	}
	if v, ok := os.LookupEnv(EnvListen); ok && v != "" {
		cfg.Listen = v
	}
	if v, ok := os.LookupEnv(EnvDB); ok && v != "" {
		cfg.DB = v
	}
	if v, ok := os.LookupEnv(EnvCORSOrigins); ok {
		cfg.CORSOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok && v != "" {
		cfg.Log.Format = v
	}
	if v, ok := os.LookupEnv(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Client.Timeout = d
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Save writes cfg as YAML to path, creating parent directories.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// WriteDefault writes a commented default configuration file to path.
func WriteDefault(path string) error {
	def := Default()
	content := `# todo configuration

# Base URL of the task service, used by "todo task" and "todo tui".
api_url: ` + def.APIURL + `

# Address "todo serve" listens on.
listen: ` + def.Listen + `

# SQLite file path, or a postgres:// URL.
db: ` + def.DB + `

# Browser origins allowed to call the API.
cors_origins:
  - http://localhost:5173

log:
  level: info   # debug, info, warn, error
  format: text  # text or json

client:
  timeout: 10s

# Connection pool, used only when db is a postgres:// URL.
postgres:
  max_conns: 10
  max_conn_idle_time: 30m
`
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// HomeDir returns the global todo directory (~/.todo).
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".todo"
	}
	return filepath.Join(home, ".todo")
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	return filepath.Join(HomeDir(), "config.yaml")
}

// ProjectConfigPath returns the path to the project config file.
func ProjectConfigPath() string {
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, ".todo", "config.yaml")
}
