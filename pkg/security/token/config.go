package token

import (
	"fmt"

	"github.com/spf13/viper"
)

const keyPublicKey = "security.token.public-key"

// Config holds the configuration for PASETO token validation.
type Config struct {
	// PublicKey is the hex-encoded Ed25519 public key for verifying tokens.
	PublicKey string `mapstructure:"public-key"`
}

func newConfig(v *viper.Viper) (Config, error) {
	v.SetDefault(keyPublicKey, "")

	cfg := Config{PublicKey: v.GetString(keyPublicKey)}
	if cfg.PublicKey == "" {
		return cfg, fmt.Errorf("%s is required", keyPublicKey)
	}
	return cfg, nil
}
