package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

type HTTPConfig struct {
	Host string
	Port int
}

type StoreConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret   string
	WorkerTokenTTL time.Duration
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	Store       StoreConfig
	Auth        AuthConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		Store: StoreConfig{
			Driver:          v.GetString("STORE_DRIVER"),
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret:   v.GetString("JWT_ACCESS_SECRET"),
			WorkerTokenTTL: v.GetDuration("WORKER_TOKEN_TTL"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 5000
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = StoreDriverMemory
	}
	if cfg.Auth.WorkerTokenTTL == 0 {
		cfg.Auth.WorkerTokenTTL = 24 * time.Hour
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Store.Driver {
	case StoreDriverMemory, StoreDriverPostgres:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q", StoreDriverMemory, StoreDriverPostgres)
	}
	if cfg.Store.Driver == StoreDriverPostgres && cfg.Store.DSN == "" {
		return fmt.Errorf("DB_DSN is required when STORE_DRIVER is %q", StoreDriverPostgres)
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}
