package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadWithEnv runs Load against a fresh flag set and bare args, so each test
// exercises only the environment overrides.
func loadWithEnv(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	oldArgs := os.Args
	os.Args = []string{oldArgs[0]}
	t.Cleanup(func() { os.Args = oldArgs })
	for k, v := range env {
		t.Setenv(k, v)
	}
	return Load()
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadWithEnv(t, nil)
	require.NoError(t, err)
	assert.Equal(t, "8835", cfg.Server.Port)
	assert.Equal(t, 4096, cfg.Storage.EEPROMSize)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "America/Chicago", cfg.Time.Timezone)
}

func TestLoadEnvOverrides(t *testing.T) {
	cfg, err := loadWithEnv(t, map[string]string{
		"PORT":        "9000",
		"EEPROM_PATH": "/var/lib/bell/image.eeprom",
		"EEPROM_SIZE": "8192",
		"DB_PATH":     "/var/lib/bell/events.db",
		"TZ_NAME":     "UTC",
		"SESSION_TTL": "30m",
	})
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "/var/lib/bell/image.eeprom", cfg.Storage.EEPROMPath)
	assert.Equal(t, 8192, cfg.Storage.EEPROMSize)
	assert.Equal(t, "/var/lib/bell/events.db", cfg.Storage.HistoryDB)
	assert.Equal(t, "UTC", cfg.Time.Timezone)
	assert.Equal(t, 30*time.Minute, cfg.Auth.SessionTTL)
}

func TestLoadRejectsBadEEPROMSize(t *testing.T) {
	_, err := loadWithEnv(t, map[string]string{"EEPROM_SIZE": "lots"})
	assert.Error(t, err)
}

func TestLoadRejectsBadSessionTTL(t *testing.T) {
	_, err := loadWithEnv(t, map[string]string{"SESSION_TTL": "soon"})
	assert.Error(t, err)
}
