package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppConfig_Success(t *testing.T) {
	// Arrange
	t.Setenv(envAppEnv, "test")
	t.Setenv(envAppServiceName, "test-service")
	t.Setenv(envAppServiceVersion, "1.0.0")
	t.Setenv(envConfigFile, "/etc/streamflix/config.yaml")

	// Act
	cfg, err := newAppConfig()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "test-service", cfg.ServiceName)
	assert.Equal(t, "1.0.0", cfg.ServiceVersion)
	assert.Equal(t, "/etc/streamflix/config.yaml", cfg.ConfigFile)
}

func TestNewAppConfig_MissingAppEnv(t *testing.T) {
	// Arrange
	t.Setenv(envAppEnv, "")

	// Act
	_, err := newAppConfig()

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), envAppEnv)
}

func TestNewAppConfig_Defaults(t *testing.T) {
	// Arrange
	t.Setenv(envAppEnv, "local")
	t.Setenv(envAppServiceName, "")
	t.Setenv(envAppServiceVersion, "")
	t.Setenv(envConfigFile, "")

	// Act
	cfg, err := newAppConfig()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, defaultServiceName, cfg.ServiceName)
	assert.Equal(t, defaultServiceVersion, cfg.ServiceVersion)
	assert.Empty(t, cfg.ConfigFile)
}
