package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	return log
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for _, k := range []string{"DB_DRIVER", "DB_URL", "KIOSK", "DB_MAX_OPEN_CONNS", "LOG_LEVEL"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg := Load(quietLogger())
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "file:marketchat.sqlite3", cfg.DB.URL)
	assert.Equal(t, 10, cfg.DB.MaxOpenConns)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Kiosk)
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("DB_DRIVER=postgres\nDB_URL=postgres://localhost/chat\nKIOSK=true\nDB_MAX_OPEN_CONNS=4\n"), 0o600))
	t.Setenv("ENV_FILE", envFile)
	for _, k := range []string{"DB_DRIVER", "DB_URL", "KIOSK", "DB_MAX_OPEN_CONNS"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg := Load(quietLogger())
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "postgres://localhost/chat", cfg.DB.URL)
	assert.Equal(t, 4, cfg.DB.MaxOpenConns)
	assert.True(t, cfg.Kiosk)
}

func TestSecret(t *testing.T) {
	cfg := Config{Kiosk: true}
	p, s, err := cfg.Secret()
	require.NoError(t, err)
	assert.Equal(t, KioskPassword, string(p))
	assert.Equal(t, KioskSalt, string(s))

	_, _, err = Config{}.Secret()
	assert.Error(t, err)

	dir := t.TempDir()
	pf := filepath.Join(dir, "password")
	sf := filepath.Join(dir, "salt")
	require.NoError(t, os.WriteFile(pf, []byte("  hunter2\n"), 0o600))
	require.NoError(t, os.WriteFile(sf, []byte("pepper-and-salt\n"), 0o600))

	cfg = Config{Encryption: EncryptionConfig{PasswordFile: pf, SaltFile: sf}}
	p, s, err = cfg.Secret()
	require.NoError(t, err)
	assert.Equal(t, "hunter2", string(p))
	assert.Equal(t, "pepper-and-salt", string(s))

	cfg.Encryption.SaltFile = filepath.Join(dir, "nope")
	_, _, err = cfg.Secret()
	assert.Error(t, err)
}
