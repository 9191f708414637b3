// Package config loads server settings from defaults, an optional yaml file, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kennygrant/codash/overview"
)

// DefaultFile is the yaml config read if present
const DefaultFile = "codash.yaml"

// DefaultDataURL serves the daily case distribution records
const DefaultDataURL = "https://opendata.ecdc.europa.eu/covid19/casedistribution/json/"

// Redis holds the redis connection settings, a blank host disables the cache
type Redis struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Pass string `yaml:"pass"`
	DB   int    `yaml:"db"`
}

// Addr returns host:port or blank if no host is set
func (r Redis) Addr() string {
	if r.Host == "" {
		return ""
	}
	port := r.Port
	if port == "" {
		port = "6379"
	}
	return r.Host + ":" + port
}

// Config holds the settings for the server and commands
type Config struct {
	// Dev serves plain http and logs at debug level
	Dev bool `yaml:"dev"`

	// Addr is the listen address in development
	Addr string `yaml:"addr"`

	// Domains to request certificates for in production
	Domains []string `yaml:"domains"`

	// CertDir caches autocert certificates
	CertDir string `yaml:"cert_dir"`

	DataURL       string        `yaml:"data_url"`
	FetchInterval time.Duration `yaml:"fetch_interval"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`

	// Archive is the sqlite file holding fetched payloads
	Archive     string `yaml:"archive"`
	ArchiveKeep int    `yaml:"archive_keep"`

	Redis    Redis         `yaml:"redis"`
	CacheTTL time.Duration `yaml:"cache_ttl"`

	LogLevel string `yaml:"log_level"`

	// Preselected geoIds are selected when data arrives
	Preselected []string `yaml:"preselected"`

	// Scale is the population per capita values are expressed against
	Scale float64 `yaml:"scale"`
}

// Default returns the config used when nothing else is set
func Default() *Config {
	return &Config{
		Addr:          ":3000",
		Domains:       []string{"codash.projectpage.app"},
		CertDir:       "secrets",
		DataURL:       DefaultDataURL,
		FetchInterval: 30 * time.Minute,
		FetchTimeout:  time.Minute,
		Archive:       "data/archive.db",
		ArchiveKeep:   10,
		CacheTTL:      30 * time.Minute,
		LogLevel:      "info",
		Scale:         100000,
	}
}

// Load reads .env then path over the defaults, then applies the environment.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load(".env")

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: failed to read:%s error:%w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: failed to parse:%s error:%w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides settings from environment variables
func (c *Config) applyEnv(getenv func(string) string) error {
	if getenv("COVID") == "dev" {
		c.Dev = true
	}
	if v := getenv("CODASH_ADDR"); v != "" {
		c.Addr = v
	}
	if v := getenv("CODASH_DATA_URL"); v != "" {
		c.DataURL = v
	}
	if v := getenv("CODASH_ARCHIVE"); v != "" {
		c.Archive = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := getenv("REDIS_PORT"); v != "" {
		c.Redis.Port = v
	}
	if v := getenv("REDIS_PASS"); v != "" {
		c.Redis.Pass = v
	}
	if v := getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil || db < 0 {
			return fmt.Errorf("config: invalid REDIS_DB:%q", v)
		}
		c.Redis.DB = db
	}
	return nil
}

// Validate checks the settings are usable
func (c *Config) Validate() error {
	if c.DataURL == "" {
		return fmt.Errorf("config: data_url is required")
	}
	if !strings.HasPrefix(c.DataURL, "http://") && !strings.HasPrefix(c.DataURL, "https://") {
		return fmt.Errorf("config: data_url must be http or https:%q", c.DataURL)
	}
	if c.FetchInterval < time.Minute {
		return fmt.Errorf("config: fetch_interval too short:%s", c.FetchInterval)
	}
	if c.Archive == "" {
		return fmt.Errorf("config: archive is required")
	}
	if c.Scale <= 0 {
		return fmt.Errorf("config: scale must be positive:%v", c.Scale)
	}
	if len(c.Preselected) > overview.MaxSelectedGeoIDs {
		return fmt.Errorf("config: too many preselected geoIds:%d max:%d", len(c.Preselected), overview.MaxSelectedGeoIDs)
	}
	if !c.Dev && len(c.Domains) == 0 {
		return fmt.Errorf("config: domains are required in production")
	}
	return nil
}
