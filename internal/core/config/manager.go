// Package config provides configuration management for gen3talk.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/aki/gen3talk/internal/filemanager"
)

// ConfigFile is the default configuration filename
const ConfigFile = "gen3talk.yaml"

// Environment variables that override file settings
const (
	EnvIPCDir   = "IPC_DIR"
	EnvIPCTTL   = "IPC_TTL"
	EnvRedisURL = "REDIS_URL"
	EnvROMPath  = "ROM_PATH"
)

// Manager handles gen3talk configuration
type Manager struct {
	configPath string
	getenv     func(string) string
	files      *filemanager.Manager
}

// NewManager creates a configuration manager for the file at path
func NewManager(path string) *Manager {
	if path == "" {
		path = ConfigFile
	}
	return &Manager{
		configPath: path,
		getenv:     os.Getenv,
		files:      filemanager.NewManager(filemanager.WithPerm(0o644)),
	}
}

// WithEnv replaces the environment lookup, mainly for tests
func (m *Manager) WithEnv(getenv func(string) string) *Manager {
	m.getenv = getenv
	return m
}

// GetConfigPath returns the configuration file path
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// Exists reports whether the configuration file is present
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.configPath)
	return err == nil
}

// Load reads the configuration from disk. A missing file yields the
// defaults. Environment overrides are applied last.
func (m *Manager) Load() (*Config, error) {
	var cfg *Config
	if m.Exists() {
		loaded, err := LoadWithValidation(m.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		applyDefaults(cfg)
	} else {
		cfg = DefaultConfig()
	}

	if err := applyEnv(cfg, m.getenv); err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to disk atomically
func (m *Manager) Save(cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	temp := m.configPath + ".tmp." + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := m.files.Publish(m.configPath, temp, data); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyDefaults replaces explicit zero values that have no meaning. ipc.ttl
// is left alone since zero disables purging.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()

	if cfg.Version == "" {
		cfg.Version = def.Version
	}
	if cfg.IPC.Backend == "" {
		cfg.IPC.Backend = def.IPC.Backend
	}
	if cfg.IPC.Dir == "" {
		cfg.IPC.Dir = def.IPC.Dir
	}
	if cfg.IPC.PollInterval <= 0 {
		cfg.IPC.PollInterval = def.IPC.PollInterval
	}
	if cfg.IPC.Redis.Prefix == "" {
		cfg.IPC.Redis.Prefix = def.IPC.Redis.Prefix
	}
	if cfg.Codec.MaxLen <= 0 {
		cfg.Codec.MaxLen = def.Codec.MaxLen
	}
	if cfg.Dialogue.Provider == "" {
		cfg.Dialogue.Provider = def.Dialogue.Provider
	}
	if cfg.Dialogue.MinLength <= 0 {
		cfg.Dialogue.MinLength = def.Dialogue.MinLength
	}
	if cfg.Dialogue.MaxAttempts <= 0 {
		cfg.Dialogue.MaxAttempts = def.Dialogue.MaxAttempts
	}
	if cfg.Dialogue.WrapWidth <= 0 {
		cfg.Dialogue.WrapWidth = def.Dialogue.WrapWidth
	}
	if cfg.Dialogue.Backoff <= 0 {
		cfg.Dialogue.Backoff = def.Dialogue.Backoff
	}
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(EnvIPCDir); v != "" {
		cfg.IPC.Dir = v
	}
	if v := getenv(EnvIPCTTL); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvIPCTTL, v, err)
		}
		cfg.IPC.TTL = ttl
	}
	if v := getenv(EnvRedisURL); v != "" {
		cfg.IPC.Redis.URL = v
	}
	if v := getenv(EnvROMPath); v != "" {
		cfg.ROM.Path = v
	}
	return nil
}
