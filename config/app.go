package config

import "time"

type App struct {
	Port        string `mapstructure:"APP_PORT"`
	Env         string `mapstructure:"APP_ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`

	DBMaxConns        int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns        int32         `mapstructure:"DB_MIN_CONNS"`
	DBMaxConnLifetime time.Duration `mapstructure:"DB_MAX_CONN_LIFETIME"`
	DBMaxConnIdleTime time.Duration `mapstructure:"DB_MAX_CONN_IDLE_TIME"`
	DBConnectTimeout  time.Duration `mapstructure:"DB_CONNECT_TIMEOUT"`

	XenditAPIKey        string        `mapstructure:"XENDIT_API_KEY"`
	XenditCallbackToken string        `mapstructure:"XENDIT_CALLBACK_TOKEN"`
	XenditBaseURL       string        `mapstructure:"XENDIT_BASE_URL"`
	Currency            string        `mapstructure:"CURRENCY"`
	SessionTimeout      time.Duration `mapstructure:"SESSION_TIMEOUT"`
	SessionExpiry       time.Duration `mapstructure:"SESSION_EXPIRY"`

	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `mapstructure:"TELEGRAM_CHAT_ID"`
	TelegramBaseURL  string `mapstructure:"TELEGRAM_BASE_URL"`
	NotifyQueue      int    `mapstructure:"NOTIFY_QUEUE"`

	// SweepHour is the UTC hour of the daily overdue sweep.
	SweepHour int `mapstructure:"SWEEP_HOUR"`
}
