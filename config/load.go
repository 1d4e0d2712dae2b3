package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// DevJWTSecret is the fallback signing secret, accepted only when APP_ENV is dev.
const DevJWTSecret = "local_dev_secret"

var defaults = map[string]any{
	"APP_PORT":              "8080",
	"APP_ENV":               "dev",
	"LOG_LEVEL":             "info",
	"JWT_SECRET":            DevJWTSecret,
	"DB_MAX_CONNS":          10,
	"DB_MIN_CONNS":          1,
	"DB_MAX_CONN_LIFETIME":  "1h",
	"DB_MAX_CONN_IDLE_TIME": "30m",
	"DB_CONNECT_TIMEOUT":    "5s",
	"XENDIT_BASE_URL":       "https://api.xendit.co",
	"CURRENCY":              "IDR",
	"SESSION_TIMEOUT":       "10s",
	"SESSION_EXPIRY":        "24h",
	"TELEGRAM_BASE_URL":     "https://api.telegram.org",
	"NOTIFY_QUEUE":          256,
	"SWEEP_HOUR":            9,
}

// Load reads settings from the environment, layered over an optional config
// file (any format viper understands). path may be empty.
func Load(path string) (*App, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	// AutomaticEnv only sees keys viper already knows about.
	for _, k := range []string{
		"DATABASE_URL", "XENDIT_API_KEY", "XENDIT_CALLBACK_TOKEN",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	} {
		v.SetDefault(k, "")
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg App
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	// PORT wins when a platform injects it
	if p := os.Getenv("PORT"); p != "" {
		cfg.Port = p
	}
	return &cfg, nil
}

// Validate checks what every command touching the database needs.
func (a *App) Validate() error {
	if strings.TrimSpace(a.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	if a.SweepHour < 0 || a.SweepHour > 23 {
		return fmt.Errorf("SWEEP_HOUR must be 0-23, got %d", a.SweepHour)
	}
	return a.ValidateJWT()
}

// ValidateJWT rejects an empty secret anywhere and the built-in one outside dev.
func (a *App) ValidateJWT() error {
	switch {
	case strings.TrimSpace(a.JWTSecret) == "":
		return errors.New("JWT_SECRET is required")
	case a.JWTSecret == DevJWTSecret && a.Env != "dev":
		return fmt.Errorf("JWT_SECRET must be set when APP_ENV is %q", a.Env)
	}
	return nil
}
