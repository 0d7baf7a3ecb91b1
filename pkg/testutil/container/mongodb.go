// Package container starts MongoDB for integration tests.
package container

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Sokol111/streamflix-reliability/pkg/persistence/mongo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	mongooptions "go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	defaultImage      = "mongo:7"
	defaultReplicaSet = "rs0"
)

// MongoDBContainer is a running MongoDB with a connected client.
type MongoDBContainer struct {
	Container        *mongodb.MongoDBContainer
	Client           *mongodriver.Client
	ConnectionString string
}

// MongoDBContainerOption configures the MongoDB container
type MongoDBContainerOption func(*mongoDBContainerOptions)

type mongoDBContainerOptions struct {
	image      string
	replicaSet string
}

// WithImage sets the MongoDB image to use
func WithImage(image string) MongoDBContainerOption {
	return func(o *mongoDBContainerOptions) {
		o.image = image
	}
}

// WithoutReplicaSet starts a standalone server. Transactions are unavailable.
func WithoutReplicaSet() MongoDBContainerOption {
	return func(o *mongoDBContainerOptions) {
		o.replicaSet = ""
	}
}

// StartMongoDBContainer starts a single-node replica set and connects to it.
func StartMongoDBContainer(ctx context.Context, opts ...MongoDBContainerOption) (*MongoDBContainer, error) {
	options := &mongoDBContainerOptions{
		image:      defaultImage,
		replicaSet: defaultReplicaSet,
	}
	for _, opt := range opts {
		opt(options)
	}

	var tcOpts []testcontainers.ContainerCustomizer
	if options.replicaSet != "" {
		tcOpts = append(tcOpts, mongodb.WithReplicaSet(options.replicaSet))
	}

	mongoContainer, err := mongodb.Run(ctx, options.image, tcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start mongodb container: %w", err)
	}

	connectionString, err := mongoContainer.ConnectionString(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(mongoContainer)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	client, err := mongodriver.Connect(mongooptions.Client().ApplyURI(connectionString))
	if err != nil {
		_ = testcontainers.TerminateContainer(mongoContainer)
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		_ = testcontainers.TerminateContainer(mongoContainer)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBContainer{
		Container:        mongoContainer,
		Client:           client,
		ConnectionString: connectionString,
	}, nil
}

// Terminate disconnects the client and terminates the container
func (m *MongoDBContainer) Terminate(ctx context.Context) error {
	var errs []error

	if m.Client != nil {
		if err := m.Client.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to disconnect from mongodb: %w", err))
		}
	}
	if m.Container != nil {
		if err := testcontainers.TerminateContainer(m.Container); err != nil {
			errs = append(errs, fmt.Errorf("failed to terminate mongodb container: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during termination: %v", errs)
	}
	return nil
}

var (
	sharedOnce sync.Once
	shared     *MongoDBContainer
	sharedErr  error
)

// SharedMongo returns one replica-set container per test binary.
// The testcontainers reaper removes it when the binary exits.
func SharedMongo(t testing.TB) *MongoDBContainer {
	t.Helper()
	sharedOnce.Do(func() {
		shared, sharedErr = StartMongoDBContainer(context.Background())
	})
	require.NoError(t, sharedErr)
	return shared
}

// NewDatabase returns a mongo.Admin over a fresh database that is dropped
// when the test ends.
func (m *MongoDBContainer) NewDatabase(t testing.TB) mongo.Admin {
	t.Helper()
	name := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	db := &database{client: m.Client, db: m.Client.Database(name)}
	t.Cleanup(func() {
		_ = db.db.Drop(context.Background())
	})
	return db
}

// database exposes a raw driver database through mongo.Admin.
type database struct {
	client *mongodriver.Client
	db     *mongodriver.Database
}

func (d *database) GetCollection(collection string) mongo.Collection {
	return d.db.Collection(collection)
}

func (d *database) GetDatabase() *mongodriver.Database {
	return d.db
}

func (d *database) StartSession() (*mongodriver.Session, error) {
	return d.client.StartSession()
}
