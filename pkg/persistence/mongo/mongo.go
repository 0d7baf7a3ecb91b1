package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/v2/mongo/otelmongo"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Mongo is the public interface for repository access
type Mongo interface {
	GetCollection(collection string) Collection
}

// Admin is the interface for infrastructure components (transactions, index checks).
type Admin interface {
	Mongo
	GetDatabase() *mongodriver.Database
	StartSession() (*mongodriver.Session, error)
}

type mongo struct {
	client   *mongodriver.Client
	database *mongodriver.Database
	bulkhead *Bulkhead
	conf     Config
	log      *zap.Logger
}

func newMongo(log *zap.Logger, conf Config, tp trace.TracerProvider) (*mongo, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	clientOptions := options.Client().
		ApplyURI(conf.BuildURI()).
		SetMaxPoolSize(conf.MaxPoolSize).
		SetMinPoolSize(conf.MinPoolSize).
		SetMaxConnIdleTime(conf.MaxConnIdleTime).
		SetServerSelectionTimeout(conf.ServerSelectTimeout).
		SetMonitor(otelmongo.NewMonitor(otelmongo.WithTracerProvider(tp)))

	// Connect does not dial; reachability is checked by the ping in connect.
	client, err := mongodriver.Connect(clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	m := &mongo{
		client:   client,
		database: client.Database(conf.Database),
		conf:     conf,
		log:      log,
	}
	if conf.Bulkhead.Enabled {
		m.bulkhead = NewBulkhead(conf.Bulkhead.MaxConcurrent, conf.Bulkhead.Timeout, log)
	}
	return m, nil
}

func (m *mongo) connect(ctx context.Context) error {
	ping := func() error {
		c, cancel := context.WithTimeout(ctx, m.conf.ConnectTimeout)
		defer cancel()
		return m.client.Ping(c, nil)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(m.conf.ConnectRetries)),
		ctx,
	)
	notify := func(err error, next time.Duration) {
		m.log.Warn("mongo ping failed, retrying", zap.Error(err), zap.Duration("backoff", next))
	}

	if err := backoff.RetryNotify(ping, policy, notify); err != nil {
		return fmt.Errorf("failed to ping mongo: %w", err)
	}

	m.log.Info("connected to mongo",
		zap.String("database", m.conf.Database),
		zap.Uint64("max-pool-size", m.conf.MaxPoolSize),
		zap.Uint64("min-pool-size", m.conf.MinPoolSize),
		zap.Duration("query-timeout", m.conf.QueryTimeout),
		zap.Bool("bulkhead", m.bulkhead != nil),
	)
	return nil
}

func (m *mongo) StartSession() (*mongodriver.Session, error) {
	return m.client.StartSession()
}

// GetCollection returns a Collection with automatic query timeout
func (m *mongo) GetCollection(collection string) Collection {
	opts := []WrapperOption{WithTimeout(m.conf.QueryTimeout)}
	if m.bulkhead != nil {
		opts = append(opts, WithBulkhead(m.bulkhead))
	}
	// Error is ignored because driver's Collection() never returns nil
	wrapper, _ := NewCollectionWrapper(m.database.Collection(collection), opts...)
	return wrapper
}

func (m *mongo) GetDatabase() *mongodriver.Database {
	return m.database
}

func (m *mongo) disconnect(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	c, cancel := context.WithTimeout(ctx, m.conf.ConnectTimeout)
	defer cancel()
	if err := m.client.Disconnect(c); err != nil {
		return fmt.Errorf("failed to disconnect from mongo: %w", err)
	}
	m.log.Info("disconnected from mongo")
	return nil
}
