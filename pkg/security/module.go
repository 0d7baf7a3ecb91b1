package security

import (
	"github.com/Sokol111/streamflix-reliability/pkg/security/token"
	"go.uber.org/fx"
)

type securityOptions struct {
	tokenConfig *token.Config
	principal   *token.Principal
}

// SecurityOption is a functional option for configuring the security module.
type SecurityOption func(*securityOptions)

// WithTokenConfig provides a static token Config instead of reading viper.
func WithTokenConfig(cfg token.Config) SecurityOption {
	return func(opts *securityOptions) {
		opts.tokenConfig = &cfg
	}
}

// WithStaticPrincipal authenticates every credential as p.
func WithStaticPrincipal(p token.Principal) SecurityOption {
	return func(opts *securityOptions) {
		opts.principal = &p
	}
}

// NewSecurityModule provides token validation and authentication.
func NewSecurityModule(opts ...SecurityOption) fx.Option {
	cfg := &securityOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	var tokenOpts []token.TokenOption
	if cfg.tokenConfig != nil {
		tokenOpts = append(tokenOpts, token.WithTokenConfig(*cfg.tokenConfig))
	}
	if cfg.principal != nil {
		tokenOpts = append(tokenOpts, token.WithStaticPrincipal(*cfg.principal))
	}

	return token.NewTokenModule(tokenOpts...)
}
