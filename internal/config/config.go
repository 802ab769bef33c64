// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minSecretBytes = 32

// NotifyConfig holds the optional email and SMS provider credentials.
type NotifyConfig struct {
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// Location is the IANA zone used to format times in messages.
	Location string
}

func (n *NotifyConfig) EmailEnabled() bool {
	return n.SendGridAPIKey != "" && n.SendGridFromEmail != ""
}

func (n *NotifyConfig) SMSEnabled() bool {
	return n.TwilioAccountSID != "" && n.TwilioAuthToken != "" && n.TwilioFromNumber != ""
}

// Config holds the configuration of the API server and roomctl.
type Config struct {
	DatabaseDriver string // postgres or sqlite3 (default "postgres")
	DatabaseURL    string // DSN for postgres, file path for sqlite3
	Port           string // default "8080"
	LogLevel       string // debug, info, warn, error (default "info")

	JWTSecret string        // HS256 secret, at least 32 bytes
	JWTTTL    time.Duration // token lifetime (default 24h)

	RequestTimeout     time.Duration // per-request deadline (default 15s)
	PolicyFile         string        // optional YAML route policy
	CORSAllowedOrigins []string      // default ["*"]

	ReminderSchedule string        // cron schedule (default "@every 5m")
	ReminderLead     time.Duration // default 1h

	Notify NotifyConfig
}

// LoadDotEnv loads a .env file when one exists. Variables already set in the
// environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// LoadFromEnv reads the configuration and applies defaults. It does not validate.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		DatabaseDriver:   envDefault("DATABASE_DRIVER", "postgres"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		Port:             envDefault("PORT", "8080"),
		LogLevel:         envDefault("LOG_LEVEL", "info"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		PolicyFile:       os.Getenv("POLICY_FILE"),
		ReminderSchedule: envDefault("REMINDER_SCHEDULE", "@every 5m"),
		Notify: NotifyConfig{
			SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
			SendGridFromEmail: os.Getenv("SENDGRID_FROM_EMAIL"),
			SendGridFromName:  os.Getenv("SENDGRID_FROM_NAME"),
			TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
			TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
			TwilioFromNumber:  os.Getenv("TWILIO_FROM_NUMBER"),
			Location:          envDefault("NOTIFY_TIMEZONE", "UTC"),
		},
	}

	var err error
	if cfg.JWTTTL, err = durationEnv("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.ReminderLead, err = durationEnv("REMINDER_LEAD", time.Hour); err != nil {
		return nil, err
	}

	cfg.CORSAllowedOrigins = []string{"*"}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = compactNonEmpty(strings.Split(v, ","))
	}
	return cfg, nil
}

// Validate checks that the configuration can start a server.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite3, got %q", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if len(c.JWTSecret) < minSecretBytes {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretBytes)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if _, err := time.LoadLocation(c.Notify.Location); err != nil {
		return fmt.Errorf("NOTIFY_TIMEZONE: %w", err)
	}
	return nil
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
