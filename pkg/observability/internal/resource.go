// Package internal builds the OpenTelemetry resource shared by the trace and
// metric providers.
package internal

import (
	"context"
	"sync"

	appconfig "github.com/Sokol111/streamflix-reliability/pkg/core/config"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// ServiceNamespace groups the worker and the one-shot commands under one name.
const ServiceNamespace = "streamflix"

var (
	instanceOnce sync.Once
	instanceID   string
)

// InstanceID identifies this process. Traces and metrics of one worker share it.
func InstanceID() string {
	instanceOnce.Do(func() {
		instanceID = uuid.NewString()
	})
	return instanceID
}

// NewResource describes the running process: service identity from AppConfig,
// a per-process instance id and OTEL_RESOURCE_ATTRIBUTES from the environment.
func NewResource(ctx context.Context, appCfg appconfig.AppConfig) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNamespaceKey.String(ServiceNamespace),
			semconv.ServiceNameKey.String(appCfg.ServiceName),
			semconv.ServiceVersionKey.String(appCfg.ServiceVersion),
			semconv.ServiceInstanceIDKey.String(InstanceID()),
			semconv.DeploymentEnvironmentNameKey.String(appCfg.Environment),
		),
	)
}
