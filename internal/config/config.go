package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	commoncfg "civic-registry/internal/common/config"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the civic-registry HTTP API configuration.
type Config struct {
	HTTP struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		RequestTimeout  time.Duration `yaml:"request_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		MaxBodyBytes    int64         `yaml:"max_body_bytes"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"http"`
	DBEnabled   bool                     `yaml:"db_enabled"`
	AutoMigrate bool                     `yaml:"auto_migrate"`
	Database    commoncfg.DatabaseConfig `yaml:"database"`
	Redis       struct {
		Enabled               bool `yaml:"enabled"`
		commoncfg.RedisConfig `yaml:",inline"`
	} `yaml:"redis"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	JWT      JWTConfig      `yaml:"jwt"`
	Lockout  LockoutConfig  `yaml:"lockout"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
}

// JWTConfig controls bearer token issuing.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
	Issuer string        `yaml:"issuer"`
}

// LockoutConfig bounds failed logins per email within Window.
type LockoutConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Window      time.Duration `yaml:"window"`
}

// MQTTConfig enables the campaign event publisher.
type MQTTConfig struct {
	Enabled              bool   `yaml:"enabled"`
	Topic                string `yaml:"topic"`
	commoncfg.MQTTConfig `yaml:",inline"`
}

// WhatsAppConfig enables outbound dispatch of recorded campaigns.
type WhatsAppConfig struct {
	Enabled bool          `yaml:"enabled"`
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// Load reads .env (if present), then defaults, then the optional YAML file
// named by CONFIG_FILE, then environment overrides.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase resolves only the database section, for tools that never
// serve requests.
func LoadDatabase() (*commoncfg.DatabaseConfig, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	return &cfg.Database, nil
}

func load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = ":5000"
	cfg.HTTP.ReadTimeout = 15 * time.Second
	cfg.HTTP.WriteTimeout = 30 * time.Second
	cfg.HTTP.RequestTimeout = 30 * time.Second
	cfg.HTTP.ShutdownTimeout = 10 * time.Second
	cfg.HTTP.MaxBodyBytes = 10 << 20
	cfg.HTTP.CORSOrigins = []string{"http://localhost:5173", "http://localhost:3000"}

	cfg.DBEnabled = true
	cfg.AutoMigrate = true
	cfg.Database = commoncfg.DatabaseConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "postgres",
		Password:        "postgres",
		Database:        "civic_registry",
		SSLMode:         "disable",
		MaxConns:        20,
		MaxIdle:         5,
		ConnMaxLifetime: 30 * time.Minute,
		ConnectTimeout:  2 * time.Second,
		QueryTimeout:    10 * time.Second,
	}

	cfg.Redis.Enabled = false
	cfg.Redis.Addr = "localhost:6379"

	cfg.Log.Level = "info"
	cfg.Log.Format = "json"

	cfg.JWT.TTL = 7 * 24 * time.Hour
	cfg.JWT.Issuer = "civic-registry"

	cfg.Lockout.MaxAttempts = 5
	cfg.Lockout.Window = 15 * time.Minute

	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "civic-registry"
	cfg.MQTT.Topic = "civic-registry/campaigns"
	cfg.MQTT.QoS = 1

	cfg.WhatsApp.Timeout = 10 * time.Second
	return cfg
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.HTTP.Addr = getEnv("HTTP_ADDR", c.HTTP.Addr)
	if port := os.Getenv("PORT"); port != "" && os.Getenv("HTTP_ADDR") == "" {
		c.HTTP.Addr = ":" + port
	}
	c.HTTP.RequestTimeout = parseDuration(os.Getenv("HTTP_REQUEST_TIMEOUT"), c.HTTP.RequestTimeout)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.HTTP.CORSOrigins = splitList(origins)
	}

	c.DBEnabled = parseBool(os.Getenv("DB_ENABLED"), c.DBEnabled)
	c.AutoMigrate = parseBool(os.Getenv("DB_AUTO_MIGRATE"), c.AutoMigrate)
	c.Database.LoadFromEnv("DB")

	c.Redis.Enabled = parseBool(os.Getenv("REDIS_ENABLED"), c.Redis.Enabled)
	c.Redis.LoadFromEnv("REDIS")

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	c.JWT.Secret = getEnv("JWT_SECRET", c.JWT.Secret)
	c.JWT.TTL = parseDuration(os.Getenv("JWT_TTL"), c.JWT.TTL)

	c.Lockout.MaxAttempts = parseInt(os.Getenv("LOGIN_MAX_ATTEMPTS"), c.Lockout.MaxAttempts)
	c.Lockout.Window = parseDuration(os.Getenv("LOGIN_LOCKOUT_WINDOW"), c.Lockout.Window)

	c.MQTT.Enabled = parseBool(os.Getenv("MQTT_ENABLED"), c.MQTT.Enabled)
	c.MQTT.Topic = getEnv("MQTT_TOPIC", c.MQTT.Topic)
	c.MQTT.MQTTConfig.LoadFromEnv("MQTT")

	c.WhatsApp.Enabled = parseBool(os.Getenv("WHATSAPP_ENABLED"), c.WhatsApp.Enabled)
	c.WhatsApp.BaseURL = getEnv("WHATSAPP_BASE_URL", c.WhatsApp.BaseURL)
	c.WhatsApp.Token = getEnv("WHATSAPP_TOKEN", c.WhatsApp.Token)
	c.WhatsApp.Timeout = parseDuration(os.Getenv("WHATSAPP_TIMEOUT"), c.WhatsApp.Timeout)
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.WhatsApp.Enabled && c.WhatsApp.BaseURL == "" {
		return fmt.Errorf("WHATSAPP_BASE_URL is required when WhatsApp dispatch is enabled")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseBool(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
