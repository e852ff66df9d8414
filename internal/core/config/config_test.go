package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestValidateYAML(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid file backend",
			yaml: `version: "1.0"
ipc:
  backend: file
  dir: /tmp/ipc
  ttl: 60
  poll_interval: 50ms`,
		},
		{
			name: "valid redis backend",
			yaml: `version: "1.0"
ipc:
  backend: redis
  redis:
    url: redis://localhost:6379/0
    prefix: game
dialogue:
  provider: dummy
  backoff: 1.5s`,
		},
		{
			name:    "missing version",
			yaml:    `ipc: {backend: file}`,
			wantErr: true,
			errMsg:  "missing properties: 'version'",
		},
		{
			name:    "missing ipc",
			yaml:    `version: "1.0"`,
			wantErr: true,
			errMsg:  "missing properties: 'ipc'",
		},
		{
			name: "unknown backend",
			yaml: `version: "1.0"
ipc:
  backend: sqs`,
			wantErr: true,
			errMsg:  "backend",
		},
		{
			name: "negative ttl",
			yaml: `version: "1.0"
ipc:
  ttl: -1`,
			wantErr: true,
			errMsg:  "ttl",
		},
		{
			name: "bad duration",
			yaml: `version: "1.0"
ipc:
  poll_interval: soon`,
			wantErr: true,
			errMsg:  "poll_interval",
		},
		{
			name: "unknown key",
			yaml: `version: "1.0"
ipc: {}
extra: true`,
			wantErr: true,
			errMsg:  "additionalProperties",
		},
		{
			name:    "empty document",
			yaml:    ``,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateYAML([]byte(tt.yaml))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestManager_LoadMissingFileUsesDefaults(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), ConfigFile)).WithEnv(noEnv)

	cfg, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestManager_LoadKeepsDefaultsForAbsentKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(`version: "1.0"
ipc:
  dir: /var/run/gen3
dialogue:
  provider: dummy
`), 0o644))

	cfg, err := NewManager(path).WithEnv(noEnv).Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/run/gen3", cfg.IPC.Dir)
	assert.Equal(t, BackendFile, cfg.IPC.Backend)
	assert.Equal(t, 60, cfg.IPC.TTL)
	assert.Equal(t, 50*time.Millisecond, cfg.IPC.PollInterval)
	assert.Equal(t, "dummy", cfg.Dialogue.Provider)
	assert.Equal(t, 10, cfg.Dialogue.MaxAttempts)
	assert.Equal(t, 255, cfg.Codec.MaxLen)
}

func TestManager_LoadZeroTTLDisablesPurge(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\nipc:\n  ttl: 0\n"), 0o644))

	cfg, err := NewManager(path).WithEnv(noEnv).Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.IPC.TTL)
	assert.Equal(t, time.Duration(0), cfg.IPC.TTLDuration())
}

func TestManager_LoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("version: \"2.0\"\nipc: {}\n"), 0o644))

	_, err := NewManager(path).WithEnv(noEnv).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestManager_EnvOverrides(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), ConfigFile)).WithEnv(envMap(map[string]string{
		EnvIPCDir:   "/srv/mailbox",
		EnvIPCTTL:   "5",
		EnvRedisURL: "redis://cache:6379/1",
		EnvROMPath:  "/roms/game.gba",
	}))

	cfg, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/mailbox", cfg.IPC.Dir)
	assert.Equal(t, 5*time.Second, cfg.IPC.TTLDuration())
	assert.Equal(t, "redis://cache:6379/1", cfg.IPC.Redis.URL)
	assert.Equal(t, "/roms/game.gba", cfg.ROM.Path)
}

func TestManager_EnvInvalidTTL(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), ConfigFile)).WithEnv(envMap(map[string]string{
		EnvIPCTTL: "soon",
	}))

	_, err := m.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvIPCTTL)
}

func TestManager_RedisBackendRequiresURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\nipc:\n  backend: redis\n"), 0o644))

	_, err := NewManager(path).WithEnv(noEnv).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.url")
}

func TestManager_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFile)
	m := NewManager(path).WithEnv(noEnv)

	cfg := DefaultConfig()
	cfg.IPC.Dir = "/data/ipc"
	cfg.Dialogue.Backoff = 750 * time.Millisecond
	cfg.Journal.Path = "/data/journal.db"

	require.NoError(t, m.Save(cfg))
	assert.True(t, m.Exists())
	require.NoError(t, ValidateFile(path))

	loaded, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary file left behind")
}

func TestValidateConfig(t *testing.T) {
	assert.Error(t, ValidateConfig(nil))

	cfg := DefaultConfig()
	assert.NoError(t, ValidateConfig(cfg))

	cfg.IPC.Backend = "carrier-pigeon"
	assert.ErrorContains(t, ValidateConfig(cfg), "unsupported backend")

	cfg = DefaultConfig()
	cfg.IPC.Dir = ""
	assert.ErrorContains(t, ValidateConfig(cfg), "dir is required")

	cfg = DefaultConfig()
	cfg.Codec.MaxLen = 0
	assert.ErrorContains(t, ValidateConfig(cfg), "max_len")
}

func TestValidateFile_Missing(t *testing.T) {
	err := ValidateFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "not found")
}
