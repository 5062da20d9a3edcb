// Package config loads client settings from defaults, an optional .env file,
// the environment and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config holds every runtime setting of the client.
type Config struct {
	DSN           string
	JWTKey        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ConfigDir     string
	LogLevel      string
	Timeout       time.Duration
	Debug         bool
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		AccessTTL:  time.Hour,
		RefreshTTL: 30 * 24 * time.Hour,
		ConfigDir:  DefaultDir(),
		LogLevel:   "warn",
		Timeout:    30 * time.Second,
	}
}

// DefaultDir is $XDG_CONFIG_HOME/inkwell or ~/.config/inkwell.
func DefaultDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "inkwell")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "inkwell")
}

// Load applies envFile (if it exists) and then the INKWELL_* environment on top of defaults.
// Variables already set in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	c := Defaults()
	var err error
	str(&c.DSN, "INKWELL_DSN")
	str(&c.JWTKey, "INKWELL_JWT_KEY")
	str(&c.RedisAddr, "INKWELL_REDIS_ADDR")
	str(&c.RedisPassword, "INKWELL_REDIS_PASSWORD")
	str(&c.ConfigDir, "INKWELL_CONFIG_DIR")
	str(&c.LogLevel, "INKWELL_LOG_LEVEL")
	err = errors.Join(err,
		dur(&c.AccessTTL, "INKWELL_ACCESS_TTL"),
		dur(&c.RefreshTTL, "INKWELL_REFRESH_TTL"),
		dur(&c.Timeout, "INKWELL_TIMEOUT"),
	)
	if v := os.Getenv("INKWELL_REDIS_DB"); v != "" {
		n, perr := strconv.Atoi(v)
		if perr != nil {
			err = errors.Join(err, fmt.Errorf("INKWELL_REDIS_DB: %w", perr))
		} else {
			c.RedisDB = n
		}
	}
	return c, err
}

func str(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func dur(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// AddFlags registers global flags on fs, using the current values as defaults.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.DSN, "dsn", c.DSN, "PostgreSQL DSN (INKWELL_DSN)")
	fs.StringVar(&c.JWTKey, "jwt-key", c.JWTKey, "HS256 session signing key (INKWELL_JWT_KEY)")
	fs.DurationVar(&c.AccessTTL, "access-ttl", c.AccessTTL, "access token lifetime")
	fs.DurationVar(&c.RefreshTTL, "refresh-ttl", c.RefreshTTL, "refresh token lifetime")
	fs.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "Redis address for token revocation (optional)")
	fs.StringVar(&c.RedisPassword, "redis-password", c.RedisPassword, "Redis password")
	fs.IntVar(&c.RedisDB, "redis-db", c.RedisDB, "Redis database number")
	fs.StringVar(&c.ConfigDir, "config-dir", c.ConfigDir, "directory holding the session file")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "timeout for one command")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "development logging at debug level")
}

// Validate checks the settings needed to reach the backend.
func (c Config) Validate() error {
	var err error
	if c.DSN == "" {
		err = errors.Join(err, errors.New("missing database DSN (--dsn or INKWELL_DSN)"))
	}
	if c.JWTKey == "" {
		err = errors.Join(err, errors.New("missing session signing key (--jwt-key or INKWELL_JWT_KEY)"))
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		err = errors.Join(err, errors.New("token lifetimes must be positive"))
	}
	if c.RefreshTTL < c.AccessTTL {
		err = errors.Join(err, errors.New("refresh lifetime shorter than access lifetime"))
	}
	if c.Timeout <= 0 {
		err = errors.Join(err, errors.New("timeout must be positive"))
	}
	return err
}
