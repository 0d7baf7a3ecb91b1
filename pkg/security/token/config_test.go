package token

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("from env", func(t *testing.T) {
		t.Setenv("SECURITY_TOKEN_PUBLIC_KEY", "abcd")
		v := viper.New()
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		v.AutomaticEnv()

		cfg, err := newConfig(v)

		require.NoError(t, err)
		assert.Equal(t, "abcd", cfg.PublicKey)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := newConfig(viper.New())
		assert.ErrorContains(t, err, "security.token.public-key is required")
	})
}
