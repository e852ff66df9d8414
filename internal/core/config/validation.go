package config

import (
	"fmt"
)

// ValidateConfig checks the rules the schema cannot express, after defaults
// and environment overrides have been applied
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	if err := ValidateIPC(&config.IPC); err != nil {
		return fmt.Errorf("invalid ipc: %w", err)
	}

	if config.Codec.MaxLen < 1 {
		return fmt.Errorf("codec.max_len must be at least 1")
	}

	return nil
}

// ValidateIPC validates the backend selection
func ValidateIPC(ipc *IPCConfig) error {
	if ipc.TTL < 0 {
		return fmt.Errorf("ttl must not be negative")
	}

	switch ipc.Backend {
	case BackendFile:
		if ipc.Dir == "" {
			return fmt.Errorf("dir is required for backend 'file'")
		}
	case BackendRedis:
		if ipc.Redis.URL == "" {
			return fmt.Errorf("redis.url is required for backend 'redis'")
		}
	default:
		return fmt.Errorf("unsupported backend: %s", ipc.Backend)
	}

	return nil
}
