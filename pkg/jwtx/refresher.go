package jwtx

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrRefreshThrottled = errors.New("jwtx: jwks refresh throttled")

// JWKSSource fetches the current key set from the identity provider.
type JWKSSource interface {
	FetchJWKS(ctx context.Context) (JWKS, error)
}

// Refresher reloads a KeySet from a JWKSSource at most once per MinInterval.
type Refresher struct {
	Keys        *KeySet
	Source      JWKSSource
	MinInterval time.Duration

	mu   sync.Mutex
	last time.Time
}

// Refresh replaces the key set with the source's current keys. Attempts
// within MinInterval of the previous one return ErrRefreshThrottled, whether
// or not the previous attempt succeeded.
func (r *Refresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.last.IsZero() && time.Since(r.last) < r.MinInterval {
		return ErrRefreshThrottled
	}
	r.last = time.Now()

	jwks, err := r.Source.FetchJWKS(ctx)
	if err != nil {
		return err
	}
	return r.Keys.ResetFromJWKS(jwks)
}
