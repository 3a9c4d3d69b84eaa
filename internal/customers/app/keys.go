package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/customers/pkg/jwtx"
)

// clockSkew is tolerated on exp and nbf.
const clockSkew = 30 * time.Second

// InitVerifier builds the bearer token verifier from the identity provider's
// JWKS. It returns nil when authentication is disabled.
//
// A failed initial fetch is logged and left to the refresher: once
// JWKSMinRefreshInterval has passed, the first token with an unknown kid
// triggers another download, so the service can start
// before the identity provider does.
func InitVerifier(ctx context.Context, cfg Config, source jwtx.JWKSSource, issuer string, logger *slog.Logger) jwtx.Verifier {
	if !cfg.AuthEnabled {
		logger.Warn("authentication disabled, client endpoints are open")
		return nil
	}

	keys := jwtx.NewKeySet()
	refresher := &jwtx.Refresher{
		Keys:        keys,
		Source:      source,
		MinInterval: cfg.JWKSMinRefreshInterval,
	}

	if err := refresher.Refresh(ctx); err != nil {
		logger.Warn("initial jwks fetch failed, will retry on demand", "error", err)
	} else {
		logger.Info("jwks loaded", "keys", keys.Len())
	}

	if cfg.AuthIssuer != "" {
		issuer = cfg.AuthIssuer
	}

	logger.Info("token verification enabled", "issuer", issuer, "audience", cfg.AuthAudience)

	return jwtx.NewVerifierRS256(keys, jwtx.RS256Options{
		Issuer:    issuer,
		Audience:  cfg.AuthAudience,
		Leeway:    clockSkew,
		Refresher: refresher,
	})
}
