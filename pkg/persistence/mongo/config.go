package mongo

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ConnectionString string `mapstructure:"connection-string"`
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	ReplicaSet       string `mapstructure:"replica-set"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Database         string `mapstructure:"database"`
	DirectConnection bool   `mapstructure:"direct-connection"`

	// Connection pool
	MaxPoolSize         uint64        `mapstructure:"max-pool-size"`
	MinPoolSize         uint64        `mapstructure:"min-pool-size"`
	MaxConnIdleTime     time.Duration `mapstructure:"max-conn-idle-time"`
	ConnectTimeout      time.Duration `mapstructure:"connect-timeout"`
	ServerSelectTimeout time.Duration `mapstructure:"server-select-timeout"`

	// QueryTimeout bounds every single-document and bulk operation.
	QueryTimeout time.Duration `mapstructure:"query-timeout"`

	// ConnectRetries is how many times the startup ping is retried with exponential backoff.
	ConnectRetries int `mapstructure:"connect-retries"`

	Bulkhead BulkheadConfig `mapstructure:"bulkhead"`
}

type BulkheadConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxConcurrent int           `mapstructure:"max-concurrent"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

var defaults = map[string]any{
	"mongo.connection-string":       "",
	"mongo.host":                    "",
	"mongo.port":                    0,
	"mongo.replica-set":             "",
	"mongo.username":                "",
	"mongo.password":                "",
	"mongo.database":                "",
	"mongo.direct-connection":       false,
	"mongo.max-pool-size":           100,
	"mongo.min-pool-size":           5,
	"mongo.max-conn-idle-time":      5 * time.Minute,
	"mongo.connect-timeout":         10 * time.Second,
	"mongo.server-select-timeout":   30 * time.Second,
	"mongo.query-timeout":           30 * time.Second,
	"mongo.connect-retries":         5,
	"mongo.bulkhead.enabled":        false,
	"mongo.bulkhead.max-concurrent": 50,
	"mongo.bulkhead.timeout":        time.Second,
}

// newConfig reads the "mongo" section. Every key also resolves from the
// environment (mongo.host -> MONGO_HOST) because each one has a default.
func newConfig(v *viper.Viper) (Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var root struct {
		Mongo Config `mapstructure:"mongo"`
	}
	if err := v.Unmarshal(&root); err != nil {
		return Config{}, fmt.Errorf("failed to load mongo config: %w", err)
	}

	if err := root.Mongo.Validate(); err != nil {
		return Config{}, err
	}
	return root.Mongo, nil
}

func (c Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("invalid mongo configuration: database is required")
	}
	if c.ConnectionString != "" {
		return nil
	}
	if c.Host == "" || c.Port == 0 {
		return fmt.Errorf("invalid mongo configuration: host and port are required without connection-string")
	}
	return nil
}

// BuildURI returns the connection URI. A configured connection string wins.
func (c Config) BuildURI() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}

	auth := ""
	if c.Username != "" {
		auth = url.UserPassword(c.Username, c.Password).String() + "@"
	}

	uri := fmt.Sprintf("mongodb://%s%s:%d/%s", auth, c.Host, c.Port, c.Database)

	var params []string
	if c.ReplicaSet != "" {
		params = append(params, "replicaSet="+c.ReplicaSet)
	}
	if c.DirectConnection {
		params = append(params, "directConnection=true")
	}
	if len(params) > 0 {
		uri += "?" + strings.Join(params, "&")
	}

	return uri
}
