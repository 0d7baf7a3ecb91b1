package migrations

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AutoMigrate    bool `mapstructure:"auto-migrate"`
	LockingTimeout int  `mapstructure:"locking-timeout"`
}

func (c Config) GetLockingTimeoutDuration() time.Duration {
	return time.Duration(c.LockingTimeout) * time.Minute
}

func newConfig(v *viper.Viper) (Config, error) {
	v.SetDefault("mongo.migrations.auto-migrate", true)
	v.SetDefault("mongo.migrations.locking-timeout", 5)

	cfg := Config{
		AutoMigrate:    v.GetBool("mongo.migrations.auto-migrate"),
		LockingTimeout: v.GetInt("mongo.migrations.locking-timeout"),
	}
	if cfg.LockingTimeout <= 0 {
		return cfg, fmt.Errorf("invalid mongo migrations config: locking-timeout must be positive")
	}
	return cfg, nil
}
