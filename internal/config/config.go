package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

const (
	_portDefault            = "8080"
	_shutdownTimeoutDefault = 5 * time.Second
)

func (c *ServerConfig) Setup() {
	if c.Port == "" {
		c.Port = _portDefault
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = _shutdownTimeoutDefault
	}
}

type MarketConfig struct {
	BaseURL           string        `yaml:"base_url"`
	APIKey            string        `yaml:"-"` // COINGECKO_API_KEY
	Currency          string        `yaml:"currency"`
	PerPage           int           `yaml:"per_page"`
	HistoryDays       int           `yaml:"history_days"`
	Timeout           time.Duration `yaml:"timeout"`
	RefreshInterval   time.Duration `yaml:"refresh_interval"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
}

const (
	_baseURLDefault           = "https://api.coingecko.com/api/v3"
	_currencyDefault          = "eur"
	_perPageDefault           = 100
	_maxPerPage               = 250
	_historyDaysDefault       = 7
	_timeoutDefault           = 10 * time.Second
	_refreshIntervalDefault   = 60 * time.Second
	_requestsPerMinuteDefault = 30
)

func (c *MarketConfig) Setup() error {
	if c.BaseURL == "" {
		c.BaseURL = _baseURLDefault
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: invalid market base url", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("market base url must be http(s): %s", c.BaseURL)
	}

	c.Currency = strings.ToLower(strings.TrimSpace(c.Currency))
	if c.Currency == "" {
		c.Currency = _currencyDefault
	}
	if c.PerPage <= 0 {
		c.PerPage = _perPageDefault
	}
	if c.PerPage > _maxPerPage {
		c.PerPage = _maxPerPage
	}
	if c.HistoryDays <= 0 {
		c.HistoryDays = _historyDaysDefault
	}
	if c.Timeout <= 0 {
		c.Timeout = _timeoutDefault
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = _refreshIntervalDefault
	}
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = _requestsPerMinuteDefault
	}

	return nil
}

type StorageDriver string

const (
	Memory   StorageDriver = "memory"
	File     StorageDriver = "file"
	Postgres StorageDriver = "postgres"
)

type StorageConfig struct {
	Driver StorageDriver `yaml:"driver"`
	Dir    string        `yaml:"dir"` // file driver only
}

const (
	_storageDriverDefault = File
	_storageDirDefault    = "./data"
)

func (c *StorageConfig) Setup() error {
	if c.Driver == "" {
		c.Driver = _storageDriverDefault
	}

	switch c.Driver {
	case Memory, Postgres:
	case File:
		if c.Dir == "" {
			c.Dir = _storageDirDefault
		}
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Driver)
	}

	return nil
}

type Config struct {
	LogLevel string        `yaml:"log_level"`
	Server   ServerConfig  `yaml:"server"`
	Market   MarketConfig  `yaml:"market"`
	Storage  StorageConfig `yaml:"storage"`
}

func (c *Config) ValidateAndSetup() error {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	c.Server.Setup()

	if err := c.Market.Setup(); err != nil {
		return fmt.Errorf("%w: can't setup market", err)
	}

	if err := c.Storage.Setup(); err != nil {
		return fmt.Errorf("%w: can't setup storage", err)
	}

	return nil
}

// Default returns a config with every field at its default value.
func Default() Config {
	var cfg Config
	if err := cfg.ValidateAndSetup(); err != nil {
		panic(err)
	}
	return cfg
}

func LoadConfig(filename string) (Config, error) {
	var cfg Config
	input, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("%w: can't read file", err)
	}

	if err := yaml.Unmarshal(input, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: can't unmarshal config", err)
	}

	cfg.Market.APIKey = os.Getenv("COINGECKO_API_KEY")

	if err := cfg.ValidateAndSetup(); err != nil {
		return cfg, fmt.Errorf("%w: can't setup cfg", err)
	}

	return cfg, nil
}
