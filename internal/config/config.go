package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
	Trigger    TriggerConfig
	SMTP       SMTPConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

// JWTConfig holds the employee access-token configuration.
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
	Timezone string
}

// AttendanceConfig holds the two independent time windows and the
// auto-checkout cutoff, all as minutes of the local day.
type AttendanceConfig struct {
	WindowStartMinute int // broad submission window, default 00:01
	WindowEndMinute   int // default 23:59
	OfficeStartMinute int // fair office hours, default 09:00
	OfficeEndMinute   int // default 20:00
	CutoffMinute      int // auto-checkout cutoff, default 21:00
}

// TriggerConfig holds the scheduler trigger authenticator settings.
// Exactly one source is admitted per environment: the bcrypt-hashed
// shared secret outside production, the OIDC issuer/audience in it.
type TriggerConfig struct {
	SecretHash    string
	OIDCIssuer    string
	OIDCAudience  string
	JWKSURL       string
	VerifyTimeout time.Duration
}

type SMTPConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	From            string
	ReportRecipient string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	dbMaxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	dbMinConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "sams"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: dbMaxConns,
		MinConns: dbMinConns,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Timezone: getEnv("APP_TIMEZONE", "Asia/Kolkata"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance windows
	windowStart, err := parseMinuteOfDay(getEnv("ATTENDANCE_WINDOW_START", "00:01"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_WINDOW_START: %w", err)
	}
	windowEnd, err := parseMinuteOfDay(getEnv("ATTENDANCE_WINDOW_END", "23:59"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_WINDOW_END: %w", err)
	}
	officeStart, err := parseMinuteOfDay(getEnv("OFFICE_HOURS_START", "09:00"))
	if err != nil {
		return nil, fmt.Errorf("invalid OFFICE_HOURS_START: %w", err)
	}
	officeEnd, err := parseMinuteOfDay(getEnv("OFFICE_HOURS_END", "20:00"))
	if err != nil {
		return nil, fmt.Errorf("invalid OFFICE_HOURS_END: %w", err)
	}
	cutoff, err := parseMinuteOfDay(getEnv("AUTO_CHECKOUT_CUTOFF", "21:00"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTO_CHECKOUT_CUTOFF: %w", err)
	}

	config.Attendance = AttendanceConfig{
		WindowStartMinute: windowStart,
		WindowEndMinute:   windowEnd,
		OfficeStartMinute: officeStart,
		OfficeEndMinute:   officeEnd,
		CutoffMinute:      cutoff,
	}

	// Trigger authenticator configuration
	verifyTimeout, err := time.ParseDuration(getEnv("TRIGGER_VERIFY_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRIGGER_VERIFY_TIMEOUT: %w", err)
	}

	config.Trigger = TriggerConfig{
		SecretHash:    getEnv("TRIGGER_SECRET_HASH", ""),
		OIDCIssuer:    getEnv("TRIGGER_OIDC_ISSUER", ""),
		OIDCAudience:  getEnv("TRIGGER_OIDC_AUDIENCE", ""),
		JWKSURL:       getEnv("TRIGGER_JWKS_URL", ""),
		VerifyTimeout: verifyTimeout,
	}

	// SMTP configuration
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:            getEnv("SMTP_HOST", ""),
		Port:            smtpPort,
		Username:        getEnv("SMTP_USERNAME", ""),
		Password:        getEnv("SMTP_PASSWORD", ""),
		From:            getEnv("SMTP_FROM", ""),
		ReportRecipient: getEnv("SUMMARY_RECIPIENT", ""),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Attendance.WindowStartMinute > c.Attendance.WindowEndMinute {
		return fmt.Errorf("ATTENDANCE_WINDOW_START must not be after ATTENDANCE_WINDOW_END")
	}
	if c.Attendance.OfficeStartMinute > c.Attendance.OfficeEndMinute {
		return fmt.Errorf("OFFICE_HOURS_START must not be after OFFICE_HOURS_END")
	}

	if c.IsProduction() {
		// Accepting the convenience secret in production is a fatal
		// misconfiguration: refuse to start serving.
		if c.Trigger.SecretHash != "" {
			return fmt.Errorf("TRIGGER_SECRET_HASH must not be set in production; configure OIDC trigger verification instead")
		}
		if c.Trigger.OIDCIssuer == "" || c.Trigger.OIDCAudience == "" || c.Trigger.JWKSURL == "" {
			return fmt.Errorf("TRIGGER_OIDC_ISSUER, TRIGGER_OIDC_AUDIENCE and TRIGGER_JWKS_URL are required in production")
		}
	} else if c.Trigger.SecretHash == "" && c.Trigger.OIDCIssuer == "" {
		return fmt.Errorf("either TRIGGER_SECRET_HASH or the TRIGGER_OIDC_* settings are required")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// parseMinuteOfDay converts "HH:MM" into a minute of the day.
func parseMinuteOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
