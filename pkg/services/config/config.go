package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/de-tools/spend-atlas/pkg/store/cache"
	"github.com/de-tools/spend-atlas/pkg/store/client"
)

const EnvPrefix = "SPEND_ATLAS"

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type UpstreamConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxPages      int           `mapstructure:"max_pages"`
	ParallelPages int           `mapstructure:"parallel_pages"`
	RecipientType string        `mapstructure:"recipient_type"`
}

type AnalysisConfig struct {
	BaseYear       int `mapstructure:"base_year"`
	ComparisonYear int `mapstructure:"comparison_year"` // 0 means base_year + 1
}

type CacheConfig struct {
	Backend    string        `mapstructure:"backend"`
	TTL        time.Duration `mapstructure:"ttl"`
	DuckDBPath string        `mapstructure:"duckdb_path"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("upstream.base_url", client.DefaultBaseURL)
	v.SetDefault("upstream.timeout", client.DefaultTimeout)
	v.SetDefault("upstream.max_pages", 10)
	v.SetDefault("upstream.parallel_pages", 1)
	v.SetDefault("upstream.recipient_type", client.DefaultRecipientType)

	v.SetDefault("analysis.base_year", 2023)
	v.SetDefault("analysis.comparison_year", 0)

	v.SetDefault("cache.backend", cache.BackendMemory)
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("cache.duckdb_path", "spend-atlas.db")
}

// LoadConfig reads the optional config file at path, then applies SPEND_ATLAS_* env overrides.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Analysis.ComparisonYear == 0 {
		cfg.Analysis.ComparisonYear = cfg.Analysis.BaseYear + 1
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535"))
	}
	if c.Upstream.BaseURL == "" {
		errs = append(errs, fmt.Errorf("upstream.base_url is required"))
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("upstream.timeout must be positive"))
	}
	if c.Upstream.MaxPages < 1 {
		errs = append(errs, fmt.Errorf("upstream.max_pages must be at least 1"))
	}
	if c.Upstream.ParallelPages < 1 {
		errs = append(errs, fmt.Errorf("upstream.parallel_pages must be at least 1"))
	}
	if c.Analysis.BaseYear <= 0 {
		errs = append(errs, fmt.Errorf("analysis.base_year must be positive"))
	}
	if c.Analysis.ComparisonYear <= c.Analysis.BaseYear {
		errs = append(errs, fmt.Errorf("analysis.comparison_year must be after analysis.base_year"))
	}
	if err := cache.ValidateBackend(c.Cache.Backend); err != nil {
		errs = append(errs, err)
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive"))
	}
	if c.Cache.Backend == cache.BackendDuckDB && c.Cache.DuckDBPath == "" {
		errs = append(errs, fmt.Errorf("cache.duckdb_path is required for the duckdb backend"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
