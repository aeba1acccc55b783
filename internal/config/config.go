package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	applog "financas/internal/log"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int
	TrustedProxies     []string // extra CIDRs whose forwarded headers are honoured

	// Logging
	LogLevel  string
	LogFormat string

	// Postal code lookup
	AddressAPIURL    string
	AddressTimeout   time.Duration
	AddressCacheSize int
	AddressCacheTTL  time.Duration
	AddressStore     string

	// Database
	SQLiteDBPath string

	// AMQP (optional, empty URL disables publishing)
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
	AMQPQueue      string // consumed by the events command
}

// fileConfig mirrors Config for YAML files; durations are strings like "5s".
type fileConfig struct {
	Port               string   `yaml:"port"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
	TrustedProxies     []string `yaml:"trusted_proxies"`
	Log                struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Address struct {
		APIURL    string `yaml:"api_url"`
		Timeout   string `yaml:"timeout"`
		CacheSize int    `yaml:"cache_size"`
		CacheTTL  string `yaml:"cache_ttl"`
		Store     string `yaml:"store"`
	} `yaml:"address"`
	SQLiteDBPath string `yaml:"sqlite_db_path"`
	AMQP         struct {
		URL        string `yaml:"url"`
		Exchange   string `yaml:"exchange"`
		RoutingKey string `yaml:"routing_key"`
		Queue      string `yaml:"queue"`
	} `yaml:"amqp"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:               "8081",
		RateLimitPerMinute: 60,
		LogLevel:           "info",
		LogFormat:          "text",
		AddressAPIURL:      "https://viacep.com.br",
		AddressTimeout:     5 * time.Second,
		AddressCacheSize:   500,
		AddressCacheTTL:    24 * time.Hour,
		AddressStore:       "memory",
		SQLiteDBPath:       "./data/financas.db",
		AMQPExchange:       "financas",
		AMQPRoutingKey:     "summary_computed",
		AMQPQueue:          "financas_summaries",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables, each layer overriding
// the previous one.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// MergeFile overlays non-empty values from a YAML file.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.Port, fc.Port)
	setInt(&c.RateLimitPerMinute, fc.RateLimitPerMinute)
	if len(fc.TrustedProxies) > 0 {
		c.TrustedProxies = fc.TrustedProxies
	}
	setString(&c.LogLevel, fc.Log.Level)
	setString(&c.LogFormat, fc.Log.Format)
	setString(&c.AddressAPIURL, fc.Address.APIURL)
	setInt(&c.AddressCacheSize, fc.Address.CacheSize)
	setString(&c.AddressStore, fc.Address.Store)
	setString(&c.SQLiteDBPath, fc.SQLiteDBPath)
	setString(&c.AMQPURL, fc.AMQP.URL)
	setString(&c.AMQPExchange, fc.AMQP.Exchange)
	setString(&c.AMQPRoutingKey, fc.AMQP.RoutingKey)
	setString(&c.AMQPQueue, fc.AMQP.Queue)

	if fc.Address.Timeout != "" {
		d, err := time.ParseDuration(fc.Address.Timeout)
		if err != nil {
			return fmt.Errorf("parse address.timeout: %w", err)
		}
		c.AddressTimeout = d
	}
	if fc.Address.CacheTTL != "" {
		d, err := time.ParseDuration(fc.Address.CacheTTL)
		if err != nil {
			return fmt.Errorf("parse address.cache_ttl: %w", err)
		}
		c.AddressCacheTTL = d
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)
	c.TrustedProxies = getEnvList("TRUSTED_PROXIES", c.TrustedProxies)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.AddressAPIURL = getEnv("ADDRESS_API_URL", c.AddressAPIURL)
	c.AddressTimeout = getEnvDuration("ADDRESS_TIMEOUT", c.AddressTimeout)
	c.AddressCacheSize = getEnvInt("ADDRESS_CACHE_SIZE", c.AddressCacheSize)
	c.AddressCacheTTL = getEnvDuration("ADDRESS_CACHE_TTL", c.AddressCacheTTL)
	c.AddressStore = getEnv("ADDRESS_STORE", c.AddressStore)
	c.SQLiteDBPath = getEnv("SQLITE_DB_PATH", c.SQLiteDBPath)
	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
	c.AMQPRoutingKey = getEnv("AMQP_ROUTING_KEY", c.AMQPRoutingKey)
	c.AMQPQueue = getEnv("AMQP_QUEUE", c.AMQPQueue)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid trusted proxy '%s': must be a CIDR", cidr))
		}
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of [text json]", c.LogFormat))
	}

	// Validate lookup service
	if parsedURL, err := url.Parse(c.AddressAPIURL); err != nil || c.AddressAPIURL == "" {
		errors = append(errors, fmt.Sprintf("invalid address API URL '%s'", c.AddressAPIURL))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid address API URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}
	if c.AddressTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid address timeout %v: must be at least 100ms", c.AddressTimeout))
	} else if c.AddressTimeout > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid address timeout %v: must be at most 1 minute", c.AddressTimeout))
	}
	if c.AddressCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid address cache size %d: must be at least 1", c.AddressCacheSize))
	}
	if c.AddressCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid address cache TTL %v: must be at least 1 second", c.AddressCacheTTL))
	}

	// Validate address store
	validStores := []string{"memory", "sqlite"}
	isValidStore := false
	for _, store := range validStores {
		if c.AddressStore == store {
			isValidStore = true
			break
		}
	}
	if !isValidStore {
		errors = append(errors, fmt.Sprintf("invalid address store '%s': must be one of %v", c.AddressStore, validStores))
	}
	if c.AddressStore == "sqlite" && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite address store")
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
