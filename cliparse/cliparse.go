// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"

	ResetStoreSQL   = "sql"
	ResetStoreRedis = "redis"
)

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Enabled reports whether enough is set to talk to a mail server.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.User != "" && c.Pass != ""
}

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	SessionTTL   time.Duration
	OTPTTL       time.Duration
	CookieSecure bool

	AdminEmail    string
	AdminPassword string
	SeedDemo      bool

	StudentEmailDomain string
	SMTP               SMTPConfig

	ResetStore string
	RedisURL   string

	RateLimitRPS   float64
	RateLimitBurst int
	IPHashSalt     string
}

// LoadEnvFile loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("housing-portal", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminEmail, "admin-email", "", "Bootstrap admin email (prefer env)")
	fs.StringVar(&cfg.AdminPassword, "admin-password", "", "Bootstrap admin password (prefer env)")
	fs.BoolVar(&cfg.SeedDemo, "seed-demo", false, "Insert demo students")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 5000 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DatabaseSQLite
		}
	}
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.AdminEmail == "" {
		cfg.AdminEmail = os.Getenv("ADMIN_EMAIL")
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	}
	if !cfg.SeedDemo {
		cfg.SeedDemo = envBool("SEED_DEMO")
	}

	var err error
	if cfg.SessionTTL, err = envDuration("SESSION_TTL", 12*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OTPTTL, err = envDuration("OTP_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	cfg.CookieSecure = envBool("COOKIE_SECURE")

	cfg.StudentEmailDomain = envDefault("STUDENT_EMAIL_DOMAIN", "mvula.univen.ac.za")

	cfg.SMTP = SMTPConfig{
		Host: os.Getenv("SMTP_HOST"),
		User: os.Getenv("SMTP_USER"),
		Pass: os.Getenv("SMTP_PASS"),
		Port: 587,
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.New("invalid SMTP_PORT env variable")
		}
		cfg.SMTP.Port = port
	}
	cfg.SMTP.From = envDefault("SMTP_FROM", cfg.SMTP.User)
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = "no-reply@example.com"
	}

	cfg.ResetStore = envDefault("RESET_STORE", ResetStoreSQL)
	cfg.RedisURL = os.Getenv("REDIS_URL")
	if cfg.ResetStore == ResetStoreRedis && cfg.RedisURL == "" {
		return Config{}, errors.New("REDIS_URL required when RESET_STORE=redis")
	}
	if cfg.ResetStore != ResetStoreSQL && cfg.ResetStore != ResetStoreRedis {
		return Config{}, fmt.Errorf("unsupported reset store %q", cfg.ResetStore)
	}

	cfg.RateLimitRPS = 1
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return Config{}, errors.New("invalid RATE_LIMIT_RPS env variable")
		}
		cfg.RateLimitRPS = rps
	}
	cfg.RateLimitBurst = 5
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil || burst <= 0 {
			return Config{}, errors.New("invalid RATE_LIMIT_BURST env variable")
		}
		cfg.RateLimitBurst = burst
	}
	cfg.IPHashSalt = envDefault("IP_HASH_SALT", "housing-portal")

	return cfg, nil
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}
