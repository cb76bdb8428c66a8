package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type DB struct {
	Driver     string `yaml:"driver"`     // postgres|sqlite
	URL        string `yaml:"url"`        // postgres DSN
	SQLitePath string `yaml:"sqlitePath"` // "data/scheduler.db"
}

type RateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type Config struct {
	HTTPAddr        string        `yaml:"httpAddr"` // ":8080"
	GRPCAddr        string        `yaml:"grpcAddr"` // ":50051"
	DB              DB            `yaml:"db"`
	APISecret       string        `yaml:"apiSecret"`
	RateLimit       RateLimit     `yaml:"rateLimit"`
	AuditSchedule   string        `yaml:"auditSchedule"` // cron spec, "" disables
	LogLevel        string        `yaml:"logLevel"`
	AllowedOrigins  []string      `yaml:"allowedOrigins"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

func Default() *Config {
	return &Config{
		HTTPAddr: ":8080",
		GRPCAddr: ":50051",
		DB: DB{
			Driver:     "sqlite",
			SQLitePath: "data/scheduler.db",
		},
		RateLimit:       RateLimit{RPS: 5, Burst: 10},
		AuditSchedule:   "@every 15m",
		LogLevel:        "info",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load builds the config from defaults, then the YAML file named by
// CONFIG_PATH (if any), then the environment. A .env file in the working
// directory is loaded first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal yaml: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	str("HTTP_ADDR", &c.HTTPAddr)
	str("GRPC_ADDR", &c.GRPCAddr)
	str("DB_DRIVER", &c.DB.Driver)
	str("DATABASE_URL", &c.DB.URL)
	str("SQLITE_PATH", &c.DB.SQLitePath)
	str("API_SECRET", &c.APISecret)
	str("AUDIT_SCHEDULE", &c.AuditSchedule)
	str("LOG_LEVEL", &c.LogLevel)

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, o)
			}
		}
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimit.RPS = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		c.RateLimit.Burst = n
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
		}
		c.ShutdownTimeout = d
	}
	return nil
}

func (c *Config) validate() error {
	var problems []error
	switch c.DB.Driver {
	case "postgres":
		if c.DB.URL == "" {
			problems = append(problems, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case "sqlite":
		if c.DB.SQLitePath == "" {
			problems = append(problems, errors.New("SQLITE_PATH is required for the sqlite driver"))
		}
	default:
		problems = append(problems, fmt.Errorf("unknown DB_DRIVER %q (want postgres or sqlite)", c.DB.Driver))
	}
	if c.HTTPAddr == "" {
		problems = append(problems, errors.New("HTTP_ADDR is empty"))
	}
	if c.RateLimit.RPS <= 0 {
		problems = append(problems, errors.New("RATE_LIMIT_RPS must be positive"))
	}
	if c.RateLimit.Burst < 1 {
		problems = append(problems, errors.New("RATE_LIMIT_BURST must be at least 1"))
	}
	if c.AuditEnabled() {
		if _, err := cron.ParseStandard(c.AuditSchedule); err != nil {
			problems = append(problems, fmt.Errorf("AUDIT_SCHEDULE: %w", err))
		}
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(problems...))
	}
	return nil
}

// AuditEnabled is false when the schedule is empty or "off".
func (c *Config) AuditEnabled() bool {
	return c.AuditSchedule != "" && !strings.EqualFold(c.AuditSchedule, "off")
}
