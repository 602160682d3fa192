// Package config reads the service configuration from environment variables. A `.env` file in
// the working directory is loaded first if present.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Storage backends selectable with the STORE variable.
const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// variables maps the recognized environment variables to their koanf keys. Everything else in
// the environment is ignored, and so is a recognized variable that is set but empty.
var variables = map[string]string{
	"PORT":          "port",
	"STORE":         "store",
	"DBHOST":        "dbhost",
	"DBUSER":        "dbuser",
	"DBPWD":         "dbpwd",
	"DBNAME":        "dbname",
	"LOG_LEVEL":     "log_level",
	"LOG_FORMAT":    "log_format",
	"GIN_LOGGING":   "gin_logging",
	"READ_TIMEOUT":  "read_timeout",
	"WRITE_TIMEOUT": "write_timeout",
	"IDLE_TIMEOUT":  "idle_timeout",
}

// Config holds all settings of the service process.
type Config struct {
	Port         int           `koanf:"port"          validate:"min=1,max=65535"`
	Store        string        `koanf:"store"         validate:"oneof=mysql memory"`
	DBHost       string        `koanf:"dbhost"        validate:"required_if=Store mysql"`
	DBUser       string        `koanf:"dbuser"        validate:"required_if=Store mysql"`
	DBPassword   string        `koanf:"dbpwd"`
	DBName       string        `koanf:"dbname"        validate:"required_if=Store mysql"`
	LogLevel     string        `koanf:"log_level"     validate:"oneof=trace debug info warn error"`
	LogFormat    string        `koanf:"log_format"    validate:"oneof=console json"`
	GinLogging   string        `koanf:"gin_logging"`
	ReadTimeout  time.Duration `koanf:"read_timeout"  validate:"gt=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"  validate:"gt=0"`
}

// Default returns the configuration used for every variable that is not set.
func Default() Config {
	return Config{
		Port:         3000,
		Store:        StoreMySQL,
		DBHost:       "localhost:3306",
		DBUser:       "root",
		DBName:       "clientes",
		LogLevel:     "info",
		LogFormat:    "console",
		GinLogging:   "on",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Load reads the environment on top of the defaults and validates the result. Since every
// variable has a default, only malformed values make it fail.
//
// Usage example on the command line:
// > PORT=8080 DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 LOG_FORMAT=json go run main.go
func Load() (*Config, error) {
	k := koanf.New(".")
	err := k.Load(env.ProviderWithValue("", ".", func(key string, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return variables[key], value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	cfg.Store = strings.ToLower(cfg.Store)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// RequestLogging reports whether every HTTP request shall be logged. It is switched off with
// GIN_LOGGING=off.
func (c *Config) RequestLogging() bool {
	return !strings.EqualFold(c.GinLogging, "off")
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
