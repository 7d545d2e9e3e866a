// Package config loads the configuration of the finance server.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address     string   `mapstructure:"address"`
	Port        int      `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"` // gin mode: debug, release or test.
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"` // sqlite, postgres, dir or memory.
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	URL        string `mapstructure:"url"` // empty disables the redis cache.
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

type Config struct {
	Server   ServerConfig `mapstructure:"server"`
	Store    StoreConfig  `mapstructure:"store"`
	Redis    RedisConfig  `mapstructure:"redis"`
	Journal  string       `mapstructure:"journal"` // path of the command journal, empty to disable.
	Currency string       `mapstructure:"currency"`
}

// Addr returns the address the server listens on.
func (c *Config) Addr() string { return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port) }

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "")
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.ttl_seconds", 60)
	v.SetDefault("journal", "")
	v.SetDefault("currency", "THB")
}

// Load loads configuration from given file path (e.g. "config.yaml").
//
// If path is empty, config.yaml is looked up in the current directory and
// defaults are used when there is none. Every key can be overridden by an
// environment variable, e.g. FINANCE_SERVER_PORT=9000.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("FINANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
