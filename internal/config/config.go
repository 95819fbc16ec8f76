package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is read from the environment, optionally layered over a YAML file
// named by CONFIG_PATH.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Tasks     TasksConfig     `yaml:"tasks"`
}

type DatabaseConfig struct {
	URL            string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
	MigrateOnStart bool   `yaml:"migrate_on_start" env:"MIGRATE_ON_START" env-default:"true"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" env:"PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	JWTTTL    time.Duration `yaml:"jwt_ttl" env:"JWT_TTL" env-default:"24h"`
}

type DashboardConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl" env:"DASHBOARD_CACHE_TTL" env-default:"5m"`
}

type TasksConfig struct {
	// PhoneRegion is the ISO 3166 region assumed for numbers without a country code.
	PhoneRegion string `yaml:"phone_region" env:"PHONE_REGION" env-default:"KG"`
	// RebalanceDebounce coalesces bursts of worker changes into one sweep.
	RebalanceDebounce time.Duration `yaml:"rebalance_debounce" env:"REBALANCE_DEBOUNCE" env-default:"2s"`
}

func Load() (Config, error) {
	var cfg Config
	var err error
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	if c.Auth.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if len(c.Tasks.PhoneRegion) != 2 {
		return fmt.Errorf("PHONE_REGION %q is not a two-letter region code", c.Tasks.PhoneRegion)
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + c.Server.Port
}
