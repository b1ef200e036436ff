// File: internal/config/config.go
package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Environment  string        `env:"ENV,default=development"`
	ServerPort   string        `env:"SERVER_PORT,default=8080"`
	JWTSecretKey string        `env:"JWT_SECRET_KEY"`
	JWTTTL       time.Duration `env:"JWT_TTL,default=720h"`

	DBDriver    string `env:"DB_DRIVER,default=sqlite"`
	DatabaseURL string `env:"DATABASE_URL,default=linksports.db"`

	LogLevel string `env:"LOG_LEVEL,default=info"`
	LogFile  string `env:"LOG_FILE"`

	// Calendar-day boundary for the daily code send cap.
	AppTimezone      string `env:"APP_TIMEZONE,default=UTC"`
	AdminEmail       string `env:"ADMIN_EMAIL"`
	ConnectionPolicy string `env:"CONNECTION_POLICY,default=open"`

	// Set only behind a reverse proxy that overwrites X-Forwarded-For.
	TrustProxy bool `env:"TRUST_PROXY,default=false"`

	DeliveryWorkers   int `env:"DELIVERY_WORKERS,default=2"`
	DeliveryQueueSize int `env:"DELIVERY_QUEUE_SIZE,default=100"`

	SMS  SMSConfig  `env:",prefix=SMS_"`
	SMTP SMTPConfig `env:",prefix=SMTP_"`
}

type SMSConfig struct {
	AccessKey  string `env:"ACCESS_KEY"`
	TemplateID int    `env:"TEMPLATE_ID"`
	APIURL     string `env:"API_URL,default=https://api.sms.ir/v1/send/verify"`
}

type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT,default=587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM,default=no-reply@linksports.app"`
}

// Load reads configuration from environment variables or .env file.
func Load(ctx context.Context) (*Config, error) {
	if !isProduction(os.Getenv("ENV")) {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{}
	if err := envconfig.Process(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that envconfig cannot express.
func (c *Config) Validate() error {
	if c.IsProduction() {
		missing := []string{}
		if c.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if os.Getenv("DATABASE_URL") == "" {
			missing = append(missing, "DATABASE_URL")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required production environment variables: %v", missing)
		}
	}
	if c.JWTSecretKey == "" {
		c.JWTSecretKey = "development-secret-change-me"
	}

	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.ConnectionPolicy {
	case "open", "strict":
	default:
		return fmt.Errorf("unsupported CONNECTION_POLICY %q", c.ConnectionPolicy)
	}
	if _, err := time.LoadLocation(c.AppTimezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	if c.DeliveryWorkers < 1 {
		c.DeliveryWorkers = 1
	}
	return nil
}

// Location returns the configured timezone, UTC when it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsProduction() bool {
	return isProduction(c.Environment)
}

func isProduction(env string) bool {
	return strings.ToLower(env) == "production"
}
