package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Demonstration secrets used in kiosk mode only.
const (
	KioskPassword = "demonstration_password"
	KioskSalt     = "demonstration_salt"
)

type DatabaseConfig struct {
	Driver       string // "postgres" or "sqlite"
	URL          string
	MaxOpenConns int
}

type EncryptionConfig struct {
	PasswordFile string
	SaltFile     string
}

type Config struct {
	Environment string
	LogLevel    string
	Kiosk       bool
	DB          DatabaseConfig
	Encryption  EncryptionConfig
}

// Load reads ENV_FILE (default .env) if present and builds the Config from
// the environment.
func Load(log logrus.FieldLogger) Config {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Debugf("No %s file found", envFile)
	} else {
		log.Infof("Loaded %s", envFile)
	}

	return Config{
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Kiosk:       getBool("KIOSK", false),
		DB: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "sqlite"),
			URL:          getEnv("DB_URL", "file:marketchat.sqlite3"),
			MaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 10),
		},
		Encryption: EncryptionConfig{
			PasswordFile: getEnv("ENCRYPTION_PASSWORD_FILE", ""),
			SaltFile:     getEnv("ENCRYPTION_SALT_FILE", ""),
		},
	}
}

// Secret returns the password and salt used to derive the message key.
// Kiosk mode uses the fixed demonstration pair; otherwise both files must be
// configured. Surrounding whitespace is trimmed.
func (c Config) Secret() (password, salt []byte, err error) {
	if c.Kiosk {
		return []byte(KioskPassword), []byte(KioskSalt), nil
	}
	if c.Encryption.PasswordFile == "" || c.Encryption.SaltFile == "" {
		return nil, nil, errors.New("ENCRYPTION_PASSWORD_FILE and ENCRYPTION_SALT_FILE must be set outside kiosk mode")
	}
	p, err := os.ReadFile(c.Encryption.PasswordFile)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read password file")
	}
	s, err := os.ReadFile(c.Encryption.SaltFile)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read salt file")
	}
	return []byte(strings.TrimSpace(string(p))), []byte(strings.TrimSpace(string(s))), nil
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}
