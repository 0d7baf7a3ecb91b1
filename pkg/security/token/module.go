package token

import (
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

type tokenOptions struct {
	config    *Config
	principal *Principal
}

// TokenOption is a functional option for configuring the token module.
type TokenOption func(*tokenOptions)

// WithTokenConfig provides a static Config (useful for tests).
func WithTokenConfig(cfg Config) TokenOption {
	return func(opts *tokenOptions) {
		opts.config = &cfg
	}
}

// WithStaticPrincipal skips PASETO validation: every token yields p.
func WithStaticPrincipal(p Principal) TokenOption {
	return func(opts *tokenOptions) {
		opts.principal = &p
	}
}

// NewTokenModule provides a Validator and an Authenticator.
//
//	// Production - validates PASETO tokens with security.token.public-key
//	token.NewTokenModule()
//
//	// Testing - every token is this admin
//	token.NewTokenModule(token.WithStaticPrincipal(token.Principal{UserID: id, Role: "admin", Type: "access"}))
func NewTokenModule(opts ...TokenOption) fx.Option {
	cfg := &tokenOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.principal != nil {
		return fx.Provide(
			func() Validator { return newStaticValidator(*cfg.principal) },
			NewAuthenticator,
		)
	}

	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(
			provideConfig,
			newTokenValidator,
			NewAuthenticator,
		),
	)
}

func provideConfig(opts *tokenOptions, v *viper.Viper) (Config, error) {
	if opts.config != nil {
		return *opts.config, nil
	}
	return newConfig(v)
}
