// Package config loads server settings from an optional .env file, an
// optional YAML file and FINDERSFEE_* environment variables, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "FINDERSFEE_"

// Config holds every runtime setting.
type Config struct {
	Addr       string `yaml:"addr" validate:"required"`
	DBPath     string `yaml:"db" validate:"required"`
	LogLevel   string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat  string `yaml:"log_format" validate:"oneof=text json"`
	LogFile    string `yaml:"log_file"`
	AdminEmail string `yaml:"admin_email" validate:"required,email"`

	TokenTTL    time.Duration `yaml:"token_ttl" validate:"gt=0"`
	PlatformFee int64         `yaml:"platform_fee" validate:"gte=0"`

	PhotoCacheSize int           `yaml:"photo_cache_size" validate:"gte=1"`
	PhotoCacheTTL  time.Duration `yaml:"photo_cache_ttl" validate:"gt=0"`

	// LoginRate is the number of login attempts allowed per minute per client.
	LoginRate  float64 `yaml:"login_rate" validate:"gt=0"`
	LoginBurst int     `yaml:"login_burst" validate:"gte=1"`

	Metrics bool `yaml:"metrics"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:           ":8080",
		DBPath:         "findersfee.sqlite3",
		LogLevel:       "info",
		LogFormat:      "text",
		AdminEmail:     "admin@findersfee.local",
		TokenTTL:       7 * 24 * time.Hour,
		PlatformFee:    1000,
		PhotoCacheSize: 256,
		PhotoCacheTTL:  10 * time.Minute,
		LoginRate:      10,
		LoginBurst:     5,
		Metrics:        true,
	}
}

// Load builds the configuration. path may be empty; a missing .env file is ignored.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings for consistency.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	var errs []error
	parse := func(name string, set func(string) error) {
		if v, ok := lookup(envPrefix + name); ok {
			if err := set(v); err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
			}
		}
	}

	str("ADDR", &c.Addr)
	str("DB", &c.DBPath)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("LOG_FILE", &c.LogFile)
	str("ADMIN_EMAIL", &c.AdminEmail)

	parse("TOKEN_TTL", func(v string) (err error) { c.TokenTTL, err = time.ParseDuration(v); return })
	parse("PLATFORM_FEE", func(v string) (err error) { c.PlatformFee, err = strconv.ParseInt(v, 10, 64); return })
	parse("PHOTO_CACHE_SIZE", func(v string) (err error) { c.PhotoCacheSize, err = strconv.Atoi(v); return })
	parse("PHOTO_CACHE_TTL", func(v string) (err error) { c.PhotoCacheTTL, err = time.ParseDuration(v); return })
	parse("LOGIN_RATE", func(v string) (err error) { c.LoginRate, err = strconv.ParseFloat(v, 64); return })
	parse("LOGIN_BURST", func(v string) (err error) { c.LoginBurst, err = strconv.Atoi(v); return })
	parse("METRICS", func(v string) (err error) { c.Metrics, err = strconv.ParseBool(v); return })

	return errors.Join(errs...)
}
