package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Data    DataConfig    `mapstructure:"data"`
	Search  SearchConfig  `mapstructure:"search"`
	Storage StorageConfig `mapstructure:"storage"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
}

type DataConfig struct {
	// Source is a CSV directory, a .yaml file or a .db file.
	Source string `mapstructure:"source"`
}

type SearchConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Memgraph MemgraphConfig `mapstructure:"memgraph"`
}

type MemgraphConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ServerConfig struct {
	Listen     string `mapstructure:"listen"`
	APIToken   string `mapstructure:"api_token"`
	CORSOrigin string `mapstructure:"cors_origin"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads the configuration from file and DEGREES_* environment
// variables. A missing default config file is not an error; a missing
// explicit one is.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".degrees"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("degrees")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("DEGREES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Secrets may reference the environment, e.g. "${MEMGRAPH_PASSWORD}".
	cfg.Server.APIToken = os.ExpandEnv(cfg.Server.APIToken)
	cfg.Storage.Memgraph.Password = os.ExpandEnv(cfg.Storage.Memgraph.Password)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.source", "./data/large")
	v.SetDefault("search.timeout", 30*time.Second)
	v.SetDefault("storage.memgraph.enabled", false)
	v.SetDefault("storage.memgraph.uri", "bolt://localhost:7687")
	v.SetDefault("storage.memgraph.username", "")
	v.SetDefault("storage.memgraph.password", "")
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.api_token", "")
	v.SetDefault("server.cors_origin", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate rejects values the rest of the program cannot act on.
func (c *Config) Validate() error {
	if c.Search.Timeout < 0 {
		return fmt.Errorf("search.timeout must not be negative, got %s", c.Search.Timeout)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Storage.Memgraph.Enabled && c.Storage.Memgraph.URI == "" {
		return fmt.Errorf("storage.memgraph.uri is required when memgraph is enabled")
	}
	return nil
}
