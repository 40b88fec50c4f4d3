package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"swingtrade-backend/internal/domain"
)

// Config is the service configuration, loaded from YAML with environment
// overrides for the deployment-specific values.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Screening struct {
		Enabled         bool   `yaml:"enabled"`
		Market          string `yaml:"market"`
		Lookback        string `yaml:"lookback"`
		Concurrency     int    `yaml:"concurrency"`
		IntervalMinutes int    `yaml:"interval_minutes"`
	} `yaml:"screening"`

	MarketData struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		Retries        int    `yaml:"retries"`
	} `yaml:"market_data"`

	UniverseFile string `yaml:"universe_file"`

	Rules domain.TradingRules `yaml:"rules"`
}

func defaults() *Config {
	cfg := &Config{Rules: domain.DefaultTradingRules()}
	cfg.Server.Addr = ":8080"
	cfg.Screening.Enabled = true
	cfg.Screening.Market = "sp500"
	cfg.Screening.Lookback = "6mo"
	cfg.Screening.Concurrency = 10
	cfg.Screening.IntervalMinutes = 10
	cfg.MarketData.TimeoutSeconds = 10
	cfg.MarketData.Retries = 2
	cfg.UniverseFile = "config/universe.yaml"
	return cfg
}

// Load reads the YAML file at path over the built-in defaults, then
// applies env overrides. A missing file is not an error: defaults plus
// env are a complete configuration.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if addr := os.Getenv("SERVER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if market := os.Getenv("SCREENING_MARKET"); market != "" {
		cfg.Screening.Market = market
	}
	if v := os.Getenv("SCREENING_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Screening.Concurrency = n
		}
	}
	if base := os.Getenv("MARKET_DATA_BASE_URL"); base != "" {
		cfg.MarketData.BaseURL = base
	}
	if file := os.Getenv("UNIVERSE_FILE"); file != "" {
		cfg.UniverseFile = file
	}

	return cfg, nil
}

func (c *Config) ScreeningInterval() time.Duration {
	return time.Duration(c.Screening.IntervalMinutes) * time.Minute
}

func (c *Config) MarketDataTimeout() time.Duration {
	return time.Duration(c.MarketData.TimeoutSeconds) * time.Second
}
