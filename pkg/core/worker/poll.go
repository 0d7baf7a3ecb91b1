package worker

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultIntervalMs = 5000
	DefaultMaxRetries = 5
	DefaultBatchSize  = 50
)

// PollConfig is the schedule of a polling processor.
type PollConfig struct {
	Interval   time.Duration
	MaxRetries int
	BatchSize  int
	// HandlerTimeout bounds a single handler call. Zero means no timeout.
	HandlerTimeout time.Duration
}

// LoadPollConfig reads <section>.interval-ms, <section>.max-retries,
// <section>.batch-size and <section>.handler-timeout. With the env key
// replacer these resolve from SECTION_INTERVAL_MS and friends.
func LoadPollConfig(v *viper.Viper, section string) (PollConfig, error) {
	v.SetDefault(section+".interval-ms", DefaultIntervalMs)
	v.SetDefault(section+".max-retries", DefaultMaxRetries)
	v.SetDefault(section+".batch-size", DefaultBatchSize)
	v.SetDefault(section+".handler-timeout", time.Duration(0))

	cfg := PollConfig{
		Interval:       time.Duration(v.GetInt(section+".interval-ms")) * time.Millisecond,
		MaxRetries:     v.GetInt(section + ".max-retries"),
		BatchSize:      v.GetInt(section + ".batch-size"),
		HandlerTimeout: v.GetDuration(section + ".handler-timeout"),
	}
	if err := cfg.Validate(section); err != nil {
		return PollConfig{}, err
	}
	return cfg, nil
}

func (c PollConfig) Validate(name string) error {
	if err := Validate(name, c.Interval); err != nil {
		return err
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("invalid %s config: max-retries must not be negative", name)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("invalid %s config: batch-size must be positive", name)
	}
	if c.HandlerTimeout < 0 {
		return fmt.Errorf("invalid %s config: handler-timeout must not be negative", name)
	}
	return nil
}
