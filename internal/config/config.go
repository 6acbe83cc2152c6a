package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Client ClientConfig `yaml:"client" mapstructure:"client"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" mapstructure:"port"`
	APIPrefix       string        `yaml:"api_prefix" mapstructure:"api_prefix"`
	RequestTimeout  time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type StoreConfig struct {
	Driver          string `yaml:"driver" mapstructure:"driver"`
	MongoURI        string `yaml:"mongo_uri" mapstructure:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database,omitempty" mapstructure:"mongo_database"`
	PostgresURL     string `yaml:"postgres_url,omitempty" mapstructure:"postgres_url"`
	SQLitePath      string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	ConnectAttempts int    `yaml:"connect_attempts" mapstructure:"connect_attempts"`
}

type LogConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // text | json
}

type ClientConfig struct {
	BaseURL        string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
	ReloadInterval time.Duration `yaml:"reload_interval" mapstructure:"reload_interval"`
}

// envBindings maps config keys to the environment variables that
// override them.
var envBindings = map[string]string{
	"server.port":        "PORT",
	"store.driver":       "TASKS_STORE",
	"store.mongo_uri":    "MONGODB_URI",
	"store.postgres_url": "DB_URL",
	"store.sqlite_path":  "SQLITE_PATH",
	"log.format":         "LOG_FORMAT",
	"client.base_url":    "TASKS_API_URL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3009)
	v.SetDefault("server.api_prefix", "/api")
	v.SetDefault("server.request_timeout", 3*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.mongo_uri", "mongodb://localhost:27017/taskmanager")
	v.SetDefault("store.mongo_database", "")
	v.SetDefault("store.postgres_url", "")
	v.SetDefault("store.sqlite_path", "tasks.db")
	v.SetDefault("store.connect_attempts", 5)

	v.SetDefault("log.format", "text")

	v.SetDefault("client.base_url", "http://localhost:3009/api")
	v.SetDefault("client.timeout", 10*time.Second)
	v.SetDefault("client.reload_interval", 30*time.Second)
}

// Load builds the configuration from defaults, the optional YAML file at
// path and environment overrides, in increasing priority.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Server.APIPrefix = normalizePrefix(cfg.Server.APIPrefix)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be positive")
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverMongo:
		if c.Store.MongoURI == "" {
			return errors.New("MONGODB_URI is required for the mongo store")
		}
	case DriverPostgres:
		if c.Store.PostgresURL == "" {
			return errors.New("DB_URL is required for the postgres store")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("store.sqlite_path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	if _, err := url.ParseRequestURI(c.Client.BaseURL); err != nil {
		return fmt.Errorf("client.base_url: %w", err)
	}
	if c.Client.ReloadInterval <= 0 {
		return errors.New("client.reload_interval must be positive")
	}
	return nil
}

func normalizePrefix(p string) string {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
