package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

type Config struct {
	Server struct {
		Name      string `yaml:"name"`
		Version   string `yaml:"version"`
		Transport string `yaml:"transport"`
		HTTPAddr  string `yaml:"http_addr"`
		HTTPToken string `yaml:"-"`
	} `yaml:"server"`
	Kite struct {
		APIKey            string  `yaml:"-"`
		AccessToken       string  `yaml:"-"`
		BaseURI           string  `yaml:"base_uri"`
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Debug             bool    `yaml:"debug"`
	} `yaml:"kite"`
	Market struct {
		Timezone string `yaml:"timezone"`
	} `yaml:"market"`
}

// Timeout returns the per-request HTTP timeout for the Kite client
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Kite.TimeoutSeconds) * time.Second
}

// Location resolves market.timezone; an empty value means the local clock
func (c *Config) Location() (*time.Location, error) {
	if c.Market.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Market.Timezone)
}

func (c *Config) Validate() error {
	if c.Server.Transport != TransportStdio && c.Server.Transport != TransportHTTP {
		return fmt.Errorf("invalid server.transport '%s': must be 'stdio' or 'http'", c.Server.Transport)
	}
	if c.Server.Transport == TransportHTTP && c.Server.HTTPAddr == "" {
		return errors.New("server.http_addr cannot be empty for http transport")
	}
	if c.Kite.TimeoutSeconds <= 0 {
		return fmt.Errorf("kite.timeout_seconds must be positive, got %d", c.Kite.TimeoutSeconds)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid market.timezone '%s': %w", c.Market.Timezone, err)
	}
	return nil
}

// LoadConfig reads the yaml file at path, falling back to defaults when the
// file does not exist, then applies environment overrides and credentials.
func LoadConfig(path string) (*Config, error) {
	var c Config

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	applyDefaults(&c)
	applyEnv(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

func applyDefaults(c *Config) {
	if c.Server.Name == "" {
		c.Server.Name = "zerodha-kite-mcp"
	}
	if c.Server.Version == "" {
		c.Server.Version = "0.1.0"
	}
	if c.Server.Transport == "" {
		c.Server.Transport = TransportStdio
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8080"
	}
	// gokiteconnect's own default
	if c.Kite.TimeoutSeconds == 0 {
		c.Kite.TimeoutSeconds = 7
	}
	// Kite's documented per-key ceiling; a negative value disables throttling
	if c.Kite.RequestsPerSecond == 0 {
		c.Kite.RequestsPerSecond = 10
	}
}

func applyEnv(c *Config) {
	c.Kite.APIKey = firstEnv("KITE_API_KEY", "API_KEY")
	c.Kite.AccessToken = firstEnv("KITE_ACCESS_TOKEN", "ACCESS_TOKEN")
	c.Server.HTTPToken = os.Getenv("MCP_TOKEN")

	if v := os.Getenv("MCP_TRANSPORT"); v != "" {
		c.Server.Transport = strings.ToLower(v)
	}
	if v := os.Getenv("MCP_HTTP_ADDR"); v != "" {
		c.Server.HTTPAddr = v
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
