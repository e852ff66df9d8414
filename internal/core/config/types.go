package config

import (
	"time"

	"github.com/aki/gen3talk/internal/codec"
)

// Backend names accepted in ipc.backend
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config represents the gen3talk configuration
type Config struct {
	Version  string         `yaml:"version"`
	IPC      IPCConfig      `yaml:"ipc"`
	Codec    CodecConfig    `yaml:"codec,omitempty"`
	Dialogue DialogueConfig `yaml:"dialogue,omitempty"`
	Journal  JournalConfig  `yaml:"journal,omitempty"`
	ROM      ROMConfig      `yaml:"rom,omitempty"`
}

// IPCConfig selects and configures the mailbox backend
type IPCConfig struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
	// TTL is in seconds. Zero disables purging.
	TTL          int           `yaml:"ttl"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
	Redis        RedisConfig   `yaml:"redis,omitempty"`
}

// RedisConfig configures the Redis backend
type RedisConfig struct {
	URL    string `yaml:"url,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`
}

// CodecConfig configures encoding of responses
type CodecConfig struct {
	MaxLen int `yaml:"max_len,omitempty"`
}

// DialogueConfig configures the rewrite loop
type DialogueConfig struct {
	Provider    string        `yaml:"provider,omitempty"`
	MinLength   int           `yaml:"min_length,omitempty"`
	MaxAttempts int           `yaml:"max_attempts,omitempty"`
	WrapWidth   int           `yaml:"wrap_width,omitempty"`
	Backoff     time.Duration `yaml:"backoff,omitempty"`
}

// JournalConfig locates the rewrite journal. An empty path disables it.
type JournalConfig struct {
	Path string `yaml:"path,omitempty"`
}

// ROMConfig locates the game image used for offset lookups
type ROMConfig struct {
	Path string `yaml:"path,omitempty"`
}

// TTLDuration returns the mailbox TTL as a duration
func (c IPCConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// DefaultConfig returns the default gen3talk configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		IPC: IPCConfig{
			Backend:      BackendFile,
			Dir:          "ipc",
			TTL:          60,
			PollInterval: 50 * time.Millisecond,
			Redis: RedisConfig{
				Prefix: "gen3talk",
			},
		},
		Codec: CodecConfig{
			MaxLen: codec.DefaultMaxLen,
		},
		Dialogue: DialogueConfig{
			Provider:    "echo",
			MinLength:   5,
			MaxAttempts: 10,
			WrapWidth:   25,
			Backoff:     200 * time.Millisecond,
		},
	}
}
