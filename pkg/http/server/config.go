package server

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port int `mapstructure:"port"`

	Connection ConnectionConfig `mapstructure:"connection"`
}

// ConnectionConfig contains low-level HTTP server connection settings.
type ConnectionConfig struct {
	ReadHeaderTimeout time.Duration `mapstructure:"read-header-timeout"` // Slowloris protection
	ReadTimeout       time.Duration `mapstructure:"read-timeout"`
	WriteTimeout      time.Duration `mapstructure:"write-timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle-timeout"`
	MaxHeaderBytes    int           `mapstructure:"max-header-bytes"`
}

var defaults = map[string]any{
	"server.port":                           8080,
	"server.connection.read-header-timeout": 10 * time.Second,
	"server.connection.read-timeout":        30 * time.Second,
	"server.connection.write-timeout":       40 * time.Second,
	"server.connection.idle-timeout":        120 * time.Second,
	"server.connection.max-header-bytes":    1 << 20,
}

func newConfig(v *viper.Viper) (Config, error) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	var root struct {
		Server Config `mapstructure:"server"`
	}
	if err := v.Unmarshal(&root); err != nil {
		return Config{}, fmt.Errorf("failed to load server config: %w", err)
	}

	cfg := root.Server
	if cfg.Port < 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("server.port must be between 0 and 65535, got %d", cfg.Port)
	}
	return cfg, nil
}
