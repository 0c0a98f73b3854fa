package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Seed      SeedConfig      `mapstructure:"seed"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type StorePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
}

// StoreConfig selects the purchase/catalog backend: "memory" for local
// runs and tests, "postgres" for real deployments.
type StoreConfig struct {
	Driver         string          `mapstructure:"driver"`
	DSN            string          `mapstructure:"dsn"`
	MigrationsPath string          `mapstructure:"migrations_path"`
	Pool           StorePoolConfig `mapstructure:"pool"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
}

// AuthConfig carries the identity provider's token signing secret. Empty
// means the deployment trusts the User-Id header as placed by its edge.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type RateLimitConfig struct {
	PurchaseLimit         int `mapstructure:"purchase_limit"`
	PurchaseWindowSeconds int `mapstructure:"purchase_window_seconds"`
}

type SeedConfig struct {
	SourceURL string `mapstructure:"source_url"`
}

const envPrefix = "GAMELIBRARY"

// Load reads config.yaml from the usual locations (optional) with
// GAMELIBRARY_* environment overrides.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./etc")

	setDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine; env vars and defaults cover it.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Store.Driver != "memory" && cfg.Store.Driver != "postgres" {
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if cfg.Store.Driver == "postgres" && cfg.Store.DSN == "" {
		return nil, fmt.Errorf("store.dsn required for postgres driver")
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("store.driver", "memory")
	viper.SetDefault("store.dsn", "")
	viper.SetDefault("store.migrations_path", "./migrations")
	viper.SetDefault("store.pool.max_open_conns", 20)
	viper.SetDefault("store.pool.max_idle_conns", 10)
	viper.SetDefault("store.pool.conn_max_lifetime_seconds", 1800)
	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.token", "")
	viper.SetDefault("auth.jwt_secret", "")
	viper.SetDefault("rate_limit.purchase_limit", 10)
	viper.SetDefault("rate_limit.purchase_window_seconds", 60)
	viper.SetDefault("seed.source_url", "https://www.freetogame.com/api/games")
}
