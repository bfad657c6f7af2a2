package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port         string `yaml:"port"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Practice struct {
		Level        string `yaml:"level"`
		DefaultLimit int    `yaml:"default_limit"`
		CacheTTL     string `yaml:"cache_ttl"`
	} `yaml:"practice"`
	Ranking struct {
		Size     int    `yaml:"size"`
		Timezone string `yaml:"timezone"`
	} `yaml:"ranking"`
	Auth struct {
		Secret   string `yaml:"secret"`
		Issuer   string `yaml:"issuer"`
		TokenTTL string `yaml:"token_ttl"`
	} `yaml:"auth"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
	Log struct {
		Env string `yaml:"env"`
	} `yaml:"log"`
}

// Load reads YAML config from path. AUTH_SECRET and DATABASE_URL, when set,
// override the file so secrets can stay out of it.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.URL = v
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Location resolves the ranking timezone; empty means the server's local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Ranking.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Ranking.Timezone)
	if err != nil {
		return nil, fmt.Errorf("ranking timezone %q: %w", c.Ranking.Timezone, err)
	}
	return loc, nil
}
