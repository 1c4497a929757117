package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config interface {
	EnvConfig
	BackendConfig
	HostConfig
	LogConfig
	DevServerConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
}

type mainConfig struct {
	// file holds values read from the optional TOML file, keyed by env var name
	file map[string]string
}

var _ Config = mainConfig{}

// New returns a Config backed by the process environment and built-in defaults.
func New() Config {
	return mainConfig{file: map[string]string{}}
}

// Load builds a Config from, in increasing precedence: built-in defaults, the
// TOML file at path (skipped when path is empty), a .env file in the working
// directory and the process environment.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "[config.Load] failed to load .env")
	}

	c := mainConfig{file: map[string]string{}}
	if path == "" {
		return c, nil
	}

	raw := map[string]any{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, errors.Wrapf(err, "[config.Load] failed to parse %s", path)
	}
	for k, v := range raw {
		c.file[strings.ToUpper(k)] = stringify(v)
	}
	return c, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

func (c mainConfig) get(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value, ok := c.file[key]; ok && value != "" {
		return value
	}
	return defaultValue
}

func (c mainConfig) getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(c.get(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

func (c mainConfig) getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(c.get(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}

func (c mainConfig) getInt(key string, defaultValue int) int {
	i, err := strconv.Atoi(c.get(key, ""))
	if err != nil {
		return defaultValue
	}
	return i
}

func (c mainConfig) GetAppName() string {
	return c.get("APP_NAME", "TWA Auth")
}

func (c mainConfig) GetEnv() string {
	return strings.ToUpper(c.get("ENV", "DEV"))
}

// GetEnv returns the environment variable or defaultValue when it is unset or empty.
func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
