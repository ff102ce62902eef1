package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// EnvConfigPath overrides the config file location when set.
const EnvConfigPath = "SHELFTRACK_CONFIG"

// Load reads a TOML config file from an explicit path.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOrDefault resolves the config from the given path, the
// SHELFTRACK_CONFIG environment variable, or ./config.toml, in that
// order. When none exists it returns the built-in development
// configuration, which points at the local fallback database.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return Load(env)
	}
	if _, err := os.Stat("config.toml"); err == nil {
		return Load("config.toml")
	}
	return Default(), nil
}

// Default returns the built-in development configuration.
func Default() *Config {
	cfg := &Config{
		Log: LogConfig{Level: "info"},
		DB: DBConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "shelftrack",
			Password: "shelftrack",
			Database: "shelftrack",
			PoolSize: 10,
		},
		Web: WebConfig{Port: 8070},
	}
	cfg.applyDefaults()
	return cfg
}

type Config struct {
	Log       LogConfig       `toml:"log"`
	DB        DBConfig        `toml:"db"`
	Web       WebConfig       `toml:"web"`
	Spaces    SpacesConfig    `toml:"spaces"`
	Import    ImportConfig    `toml:"import"`
	Migration MigrationConfig `toml:"migration"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

// IsDefaultTarget reports whether this database config still points at
// the built-in development fallback. Importers refuse to write into it
// unless explicitly overridden.
func (c DBConfig) IsDefaultTarget() bool {
	d := Default().DB
	return c.Host == d.Host && c.Port == d.Port && c.Database == d.Database && c.User == d.User
}

type WebConfig struct {
	Port         int    `toml:"port"`
	Dev          bool   `toml:"dev"`
	AllowOrigins string `toml:"allow_origins"`
}

type SpacesConfig struct {
	Key       string `toml:"key"`
	Secret    string `toml:"secret"`
	Region    string `toml:"region"`
	Bucket    string `toml:"bucket"`
	PhotoRoot string `toml:"photoroot"`
}

// Enabled reports whether object storage is configured at all. Photo
// endpoints are mounted only when it is.
func (c SpacesConfig) Enabled() bool {
	return c.Key != "" && c.Secret != "" && c.Bucket != ""
}

type ImportConfig struct {
	DefaultCurrency string `toml:"default_currency"`
	BatchSize       int    `toml:"batch_size"`
}

type MigrationConfig struct {
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	BatchSize     int    `toml:"batch_size"`
	Workers       int    `toml:"workers"`
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.DB.PoolSize <= 0 {
		c.DB.PoolSize = 10
	}
	if c.Web.Port <= 0 {
		c.Web.Port = 8070
	}
	if c.Import.DefaultCurrency == "" {
		c.Import.DefaultCurrency = "USD"
	}
	if c.Import.BatchSize <= 0 {
		c.Import.BatchSize = 100
	}
	if c.Migration.BatchSize <= 0 {
		c.Migration.BatchSize = 500
	}
	if c.Migration.Workers <= 0 {
		c.Migration.Workers = 3
	}
}
