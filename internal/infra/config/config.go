package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string
	HTTPAddress string

	JWTSecret      string
	Issuer         string
	AccessTokenTTL time.Duration

	PasswordPepper string

	RedisAddress     string
	RedisPassword    string
	RedisDB          int
	LoginMaxAttempts int
	LoginLockout     time.Duration

	RateLimitRPS   int
	RateLimitBurst int

	AllowedOrigins   []string
	AllowCredentials bool

	HTTPSCertFile string
	HTTPSKeyFile  string

	ShutdownTimeout time.Duration
	LogLevel        string
}

// TLSEnabled reports whether both certificate and key are configured.
func (c *Config) TLSEnabled() bool {
	return c.HTTPSCertFile != "" && c.HTTPSKeyFile != ""
}

// Load reads .env (if any), config.json (if any) and the environment.
// Environment variables win over both files.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDRESS", ":8080")
	v.SetDefault("ACCESS_TOKEN_TTL", "24h")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOGIN_MAX_ATTEMPTS", 5)
	v.SetDefault("LOGIN_LOCKOUT", "15m")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("SHUTDOWN_TIMEOUT", "5s")
	v.SetDefault("ALLOW_CREDENTIALS", false)

	for _, key := range []string{
		"DATABASE_URL", "JWT_SECRET", "JWT_ISSUER", "PASSWORD_PEPPER",
		"REDIS_ADDRESS", "REDIS_PASSWORD", "ALLOWED_ORIGINS",
		"HTTPS_CERT_FILE", "HTTPS_KEY_FILE", "LOG_LEVEL",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:      v.GetString("DATABASE_URL"),
		HTTPAddress:      v.GetString("HTTP_ADDRESS"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		Issuer:           v.GetString("JWT_ISSUER"),
		AccessTokenTTL:   v.GetDuration("ACCESS_TOKEN_TTL"),
		PasswordPepper:   v.GetString("PASSWORD_PEPPER"),
		RedisAddress:     v.GetString("REDIS_ADDRESS"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		LoginMaxAttempts: v.GetInt("LOGIN_MAX_ATTEMPTS"),
		LoginLockout:     v.GetDuration("LOGIN_LOCKOUT"),
		RateLimitRPS:     v.GetInt("RATE_LIMIT_RPS"),
		RateLimitBurst:   v.GetInt("RATE_LIMIT_BURST"),
		AllowedOrigins:   splitList(v.GetString("ALLOWED_ORIGINS")),
		AllowCredentials: v.GetBool("ALLOW_CREDENTIALS"),
		HTTPSCertFile:    v.GetString("HTTPS_CERT_FILE"),
		HTTPSKeyFile:     v.GetString("HTTPS_KEY_FILE"),
		ShutdownTimeout:  v.GetDuration("SHUTDOWN_TIMEOUT"),
		LogLevel:         v.GetString("LOG_LEVEL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.DatabaseURL == "":
		return errors.New("DATABASE_URL is required")
	case c.JWTSecret == "":
		return errors.New("JWT_SECRET is required")
	case c.AccessTokenTTL <= 0:
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive, got %s", c.AccessTokenTTL)
	case c.LoginMaxAttempts < 1:
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS must be >= 1, got %d", c.LoginMaxAttempts)
	case c.LoginLockout <= 0:
		return fmt.Errorf("LOGIN_LOCKOUT must be positive, got %s", c.LoginLockout)
	case (c.HTTPSCertFile == "") != (c.HTTPSKeyFile == ""):
		return errors.New("HTTPS_CERT_FILE and HTTPS_KEY_FILE must be set together")
	}
	return nil
}

// splitList accepts "a,b" as well as the JSON-ish `["a","b"]` form.
func splitList(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.Trim(strings.TrimSpace(item), `"`)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
