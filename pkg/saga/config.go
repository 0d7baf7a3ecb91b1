package saga

import (
	"github.com/Sokol111/streamflix-reliability/pkg/core/worker"
	"github.com/Sokol111/streamflix-reliability/pkg/lease"
	"github.com/spf13/viper"
)

type Config struct {
	worker.PollConfig
	Lease lease.Config
}

func newConfig(v *viper.Viper) (Config, error) {
	poll, err := worker.LoadPollConfig(v, "saga")
	if err != nil {
		return Config{}, err
	}
	claim, err := lease.LoadConfig(v, "saga")
	if err != nil {
		return Config{}, err
	}
	return Config{PollConfig: poll, Lease: claim}, nil
}
