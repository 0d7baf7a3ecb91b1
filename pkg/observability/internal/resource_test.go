package internal

import (
	"context"
	"testing"

	appconfig "github.com/Sokol111/streamflix-reliability/pkg/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

func TestNewResource(t *testing.T) {
	res, err := NewResource(context.Background(), appconfig.AppConfig{
		ServiceName:    "streamflix-worker",
		ServiceVersion: "1.2.3",
		Environment:    "test",
	})
	require.NoError(t, err)

	set := res.Set()
	value := func(k attribute.Key) string {
		v, ok := set.Value(k)
		require.True(t, ok, "missing %s", k)
		return v.AsString()
	}

	assert.Equal(t, ServiceNamespace, value(semconv.ServiceNamespaceKey))
	assert.Equal(t, "streamflix-worker", value(semconv.ServiceNameKey))
	assert.Equal(t, "1.2.3", value(semconv.ServiceVersionKey))
	assert.Equal(t, "test", value(semconv.DeploymentEnvironmentNameKey))
	assert.Equal(t, InstanceID(), value(semconv.ServiceInstanceIDKey))
}

func TestInstanceID_Stable(t *testing.T) {
	assert.NotEmpty(t, InstanceID())
	assert.Equal(t, InstanceID(), InstanceID())
}
