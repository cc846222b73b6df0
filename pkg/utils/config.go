package utils

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Email        EmailConfig
	OTP          OTPConfig
	Notification NotificationConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RedisConfig struct {
	URL      string
	Password string
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type OTPConfig struct {
	Expiry      time.Duration
	MaxAttempts int
	Length      int
}

// NotificationConfig holds the timings of deferred and periodic emails.
type NotificationConfig struct {
	FollowupDelay    time.Duration
	ReminderLead     time.Duration
	ReminderInterval time.Duration
	QueuePoll        time.Duration
}

func LoadConfig() (*Config, error) {
	return LoadConfigFile(".env")
}

// LoadConfigFile reads an env-style file plus the process environment.
// A missing file is not an error; environment variables and defaults apply.
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	v.SetDefault("APP_NAME", "events-platform")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("JWT_ACCESS_MINUTES", 60)
	v.SetDefault("JWT_REFRESH_HOURS", 24)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("EMAIL_FROM", "noreply@events-platform.local")
	v.SetDefault("OTP_EXPIRY_MINUTES", 5)
	v.SetDefault("OTP_MAX_ATTEMPTS", 3)
	v.SetDefault("OTP_LENGTH", 6)
	v.SetDefault("FOLLOWUP_DELAY_MINUTES", 60)
	v.SetDefault("REMINDER_LEAD_MINUTES", 60)
	v.SetDefault("REMINDER_INTERVAL_MINUTES", 5)
	v.SetDefault("QUEUE_POLL_SECONDS", 5)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Port:    v.GetString("PORT"),
			Debug:   v.GetBool("DEBUG"),
			LogPath: v.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			URL:      v.GetString("REDIS_URL"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  time.Duration(v.GetInt("JWT_ACCESS_MINUTES")) * time.Minute,
			RefreshExpiry: time.Duration(v.GetInt("JWT_REFRESH_HOURS")) * time.Hour,
		},
		Email: EmailConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASS"),
			From:     v.GetString("EMAIL_FROM"),
		},
		OTP: OTPConfig{
			Expiry:      time.Duration(v.GetInt("OTP_EXPIRY_MINUTES")) * time.Minute,
			MaxAttempts: v.GetInt("OTP_MAX_ATTEMPTS"),
			Length:      v.GetInt("OTP_LENGTH"),
		},
		Notification: NotificationConfig{
			FollowupDelay:    time.Duration(v.GetInt("FOLLOWUP_DELAY_MINUTES")) * time.Minute,
			ReminderLead:     time.Duration(v.GetInt("REMINDER_LEAD_MINUTES")) * time.Minute,
			ReminderInterval: time.Duration(v.GetInt("REMINDER_INTERVAL_MINUTES")) * time.Minute,
			QueuePoll:        time.Duration(v.GetInt("QUEUE_POLL_SECONDS")) * time.Second,
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return config, nil
}
