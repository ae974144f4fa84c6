package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_TOML(t *testing.T) {
	cfg, err := NewConfig(filepath.Join("testdata", "valid.toml"))
	require.NoError(t, err)

	assert.Equal(t, VersionLatest, cfg.Version)
	assert.Equal(t, "default", cfg.Handlers)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.DrainTimeout.AsDuration())
	assert.Equal(t, 10*time.Second, cfg.Network.Timeout.AsDuration())
	assert.Equal(t, DefaultUserAgent, cfg.Network.UserAgent)

	assert.Equal(t, FailurePolicyRestart, cfg.Supervisor.FailurePolicy)
	assert.Equal(t, 5, cfg.Supervisor.MaxRestarts)
	assert.Equal(t, ShutdownGraceful, cfg.Supervisor.Shutdown)
	assert.Equal(t, 3*time.Second, cfg.Supervisor.DrainTimeout.AsDuration())

	require.Len(t, cfg.Platforms, 2)
	assert.Equal(t, []string{"hooks", "feed"}, cfg.PlatformNames())
	assert.Equal(t, "webhook", cfg.Platforms[0].Engine)
	assert.Equal(t, "/hooks/incoming", cfg.Platforms[0].Options["path"])
	assert.Equal(t, "poller", cfg.Platforms[1].Engine)
	assert.Equal(t, "2s", cfg.Platforms[1].Options["interval"])
}

func TestNewConfig_YAML(t *testing.T) {
	cfg, err := NewConfig(filepath.Join("testdata", "valid.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"chat", "hooks"}, cfg.PlatformNames())
	assert.Equal(t, "/bots", cfg.Platforms[0].Options["namespace"])
	assert.Nil(t, cfg.Platforms[1].Options)

	// defaults
	assert.Equal(t, DefaultHandlers, cfg.Handlers)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.Equal(t, FailurePolicyHalt, cfg.Supervisor.FailurePolicy)
	assert.Equal(t, ShutdownAbrupt, cfg.Supervisor.Shutdown)
	assert.Equal(t, DefaultDrainTimeout, cfg.Supervisor.DrainTimeout.AsDuration())
}

func TestNewConfig_Errors(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := NewConfig("settings.ini")
		require.ErrorIs(t, err, ErrFailedToLoadConfig)
		require.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewConfig(filepath.Join(t.TempDir(), "missing.toml"))
		require.ErrorIs(t, err, ErrFailedToLoadConfig)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("empty data", func(t *testing.T) {
		_, err := NewConfigFromBytes([]byte("  \n"), FormatTOML)
		require.ErrorIs(t, err, ErrNoSourceData)
	})

	t.Run("malformed toml", func(t *testing.T) {
		_, err := NewConfigFromBytes([]byte("version = "), FormatTOML)
		require.ErrorIs(t, err, ErrFailedToLoadConfig)
	})

	t.Run("unknown field", func(t *testing.T) {
		data := []byte(`
unknown_key = true

[[platforms]]
name = "a"
engine = "webhook"
`)
		_, err := NewConfigFromBytes(data, FormatTOML)
		require.ErrorIs(t, err, ErrFailedToLoadConfig)
	})

	t.Run("invalid duration", func(t *testing.T) {
		data := []byte(`
[server]
drain_timeout = "soon"

[[platforms]]
name = "a"
engine = "webhook"
`)
		_, err := NewConfigFromBytes(data, FormatTOML)
		require.ErrorIs(t, err, ErrFailedToLoadConfig)
	})

	t.Run("no platforms", func(t *testing.T) {
		_, err := NewConfigFromBytes([]byte(`version = "v1"`), FormatTOML)
		require.ErrorIs(t, err, ErrFailedToValidateConfig)
		require.ErrorIs(t, err, ErrNoPlatforms)
	})
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.toml", FormatTOML, false},
		{"a.TOML", FormatTOML, false},
		{"a.yaml", FormatYAML, false},
		{"a.yml", FormatYAML, false},
		{"a.json", "", true},
		{"noext", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got, err := FormatFromPath(tc.path)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
