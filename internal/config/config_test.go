package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DB_PATH", "REMOTE_MODE", "NOTIFY_CHANNEL", "NOTIFY_MIN_LEAD", "ALLOW_MEMORY_FALLBACK", "REMOTE_TIMEOUT"} {
		unsetenv(t, key)
	}
	t.Setenv("LOCAL_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mycircle.db", cfg.DBPath)
	assert.Equal(t, RemoteNone, cfg.RemoteMode)
	assert.Equal(t, ChannelConsole, cfg.NotifyChannel)
	assert.Equal(t, 5*time.Second, cfg.NotifyMinLead)
	assert.Equal(t, time.UTC, cfg.LocalTimezone)
}

func TestInvalidTimezoneFallsBackToLocal(t *testing.T) {
	cfg := &Config{TimezoneName: "Mars/Olympus", NotifyChannel: ChannelConsole}
	require.NoError(t, cfg.resolve())
	assert.Equal(t, time.Local, cfg.LocalTimezone)
}

func TestRemoteModeValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"http without url", Config{RemoteMode: RemoteHTTP}, false},
		{"http with url", Config{RemoteMode: RemoteHTTP, RemoteURL: "https://api.example.com"}, true},
		{"postgres without dsn", Config{RemoteMode: RemotePostgres}, false},
		{"unknown", Config{RemoteMode: "ftp"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.TimezoneName = "UTC"
			tc.cfg.NotifyChannel = ChannelConsole
			err := tc.cfg.resolve()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestUnknownChannelRejected(t *testing.T) {
	cfg := &Config{TimezoneName: "UTC", NotifyChannel: "pigeon"}
	assert.Error(t, cfg.resolve())
}

func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}
