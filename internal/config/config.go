// Package config handles loading orbit.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/amonks/orbit/internal/paths"
)

// ProjectFileName is the per-directory config file merged over the global one.
const ProjectFileName = "orbit.toml"

// Defaults applied after merging.
const (
	DefaultBackend     = "file"
	DefaultRedisPrefix = "orbit:"
	DefaultProvider    = "anthropic"
	DefaultServerAddr  = "127.0.0.1:8787"
	DefaultLogLevel    = "info"
	DefaultTimeout     = 60 * time.Second
)

// Environment variables consulted when no API key is configured.
const (
	AnthropicAPIKeyEnvVar = "ANTHROPIC_API_KEY"
	OpenAIAPIKeyEnvVar    = "OPENAI_API_KEY"
)

// Config represents the orbit.toml configuration file.
type Config struct {
	Storage Storage `toml:"storage"`
	Assist  Assist  `toml:"assist"`
	Server  Server  `toml:"server"`
	Log     Log     `toml:"log"`
}

// Storage selects where the task snapshot lives.
type Storage struct {
	// Backend is one of file, sqlite, redis, or memory.
	Backend string `toml:"backend"`

	// Path is the state directory for the file backend and the database
	// file for the sqlite backend. Empty means the default state directory.
	Path string `toml:"path"`

	RedisAddr     string `toml:"redis-addr"`
	RedisPassword string `toml:"redis-password"`
	RedisDB       int    `toml:"redis-db"`
	RedisPrefix   string `toml:"redis-prefix"`
}

// Assist configures the language-model features.
type Assist struct {
	// Provider is anthropic or openai (any OpenAI-compatible API).
	Provider string `toml:"provider"`
	APIKey   string `toml:"api-key"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base-url"`

	// Endpoint is the URL of a running orbit server. When set, the CLI
	// sends AI requests there instead of calling the provider directly.
	Endpoint string `toml:"endpoint"`

	// Timeout bounds a single AI request, as a Go duration string.
	Timeout string `toml:"timeout"`
}

// Server configures orbit serve.
type Server struct {
	Addr string `toml:"addr"`
}

// Log configures structured logging.
type Log struct {
	// Level is debug, info, warn, or error.
	Level string `toml:"level"`

	// File, when set, receives JSON logs with size-based rotation.
	File string `toml:"file"`
}

// TimeoutDuration parses Timeout, falling back to DefaultTimeout.
func (a Assist) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(a.Timeout) == "" {
		return DefaultTimeout, nil
	}
	duration, err := time.ParseDuration(strings.TrimSpace(a.Timeout))
	if err != nil {
		return 0, fmt.Errorf("parse assist timeout %q: %w", a.Timeout, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("assist timeout must be positive, got %s", duration)
	}
	return duration, nil
}

// Load loads configuration from the global config file and from
// orbit.toml in dir, with dir's values taking precedence.
// Returns a config holding only defaults if no config files exist.
func Load(dir string) (*Config, error) {
	globalPath, err := GlobalPath()
	if err != nil {
		return nil, err
	}

	globalCfg, _, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	projectCfg, projectMeta, err := loadConfigFile(filepath.Join(dir, ProjectFileName))
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(globalCfg, projectCfg, projectMeta)
	applyEnv(merged)
	applyDefaults(merged)
	return merged, nil
}

// GlobalPath returns the location of the global config file.
func GlobalPath() (string, error) {
	dir, err := paths.DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, projectCfg *Config, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}

	str := func(section, key string, project, global string) string {
		return mergeString(projectMeta.IsDefined(section, key), project, global)
	}

	merged := Config{}
	merged.Storage.Backend = str("storage", "backend", projectCfg.Storage.Backend, globalCfg.Storage.Backend)
	merged.Storage.Path = str("storage", "path", projectCfg.Storage.Path, globalCfg.Storage.Path)
	merged.Storage.RedisAddr = str("storage", "redis-addr", projectCfg.Storage.RedisAddr, globalCfg.Storage.RedisAddr)
	merged.Storage.RedisPassword = str("storage", "redis-password", projectCfg.Storage.RedisPassword, globalCfg.Storage.RedisPassword)
	merged.Storage.RedisPrefix = str("storage", "redis-prefix", projectCfg.Storage.RedisPrefix, globalCfg.Storage.RedisPrefix)
	merged.Storage.RedisDB = globalCfg.Storage.RedisDB
	if projectMeta.IsDefined("storage", "redis-db") {
		merged.Storage.RedisDB = projectCfg.Storage.RedisDB
	}

	merged.Assist.Provider = str("assist", "provider", projectCfg.Assist.Provider, globalCfg.Assist.Provider)
	merged.Assist.APIKey = str("assist", "api-key", projectCfg.Assist.APIKey, globalCfg.Assist.APIKey)
	merged.Assist.Model = str("assist", "model", projectCfg.Assist.Model, globalCfg.Assist.Model)
	merged.Assist.BaseURL = str("assist", "base-url", projectCfg.Assist.BaseURL, globalCfg.Assist.BaseURL)
	merged.Assist.Endpoint = str("assist", "endpoint", projectCfg.Assist.Endpoint, globalCfg.Assist.Endpoint)
	merged.Assist.Timeout = str("assist", "timeout", projectCfg.Assist.Timeout, globalCfg.Assist.Timeout)

	merged.Server.Addr = str("server", "addr", projectCfg.Server.Addr, globalCfg.Server.Addr)

	merged.Log.Level = str("log", "level", projectCfg.Log.Level, globalCfg.Log.Level)
	merged.Log.File = str("log", "file", projectCfg.Log.File, globalCfg.Log.File)

	return &merged
}

func mergeString(projectDefined bool, projectValue, globalValue string) string {
	value := globalValue
	if projectDefined {
		value = projectValue
	}
	return strings.TrimSpace(value)
}

func applyEnv(cfg *Config) {
	if cfg.Assist.APIKey != "" {
		return
	}
	envVar := AnthropicAPIKeyEnvVar
	if strings.EqualFold(cfg.Assist.Provider, "openai") {
		envVar = OpenAIAPIKeyEnvVar
	}
	cfg.Assist.APIKey = strings.TrimSpace(os.Getenv(envVar))
}

func applyDefaults(cfg *Config) {
	cfg.Storage.Backend = strings.ToLower(cfg.Storage.Backend)
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultBackend
	}
	if cfg.Storage.RedisPrefix == "" {
		cfg.Storage.RedisPrefix = DefaultRedisPrefix
	}
	cfg.Assist.Provider = strings.ToLower(cfg.Assist.Provider)
	if cfg.Assist.Provider == "" {
		cfg.Assist.Provider = DefaultProvider
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}
