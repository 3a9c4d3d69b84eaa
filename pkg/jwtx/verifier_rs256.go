package jwtx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RS256Options configures an RS256Verifier.
type RS256Options struct {
	// Issuer the token must have. Empty means "don't care".
	Issuer string

	// Audience values, any of which must appear in aud or azp. Empty means "don't care".
	Audience []string

	// Leeway allows small clock skew when validating exp/nbf.
	Leeway time.Duration

	// Refresher, when set, reloads the key set once when a token names an
	// unknown kid.
	Refresher *Refresher
}

// RS256Verifier validates JWTs signed using RS256.
type RS256Verifier struct {
	keys *KeySet
	opts RS256Options
}

// NewVerifierRS256 creates a verifier backed by keys.
func NewVerifierRS256(keys *KeySet, opts RS256Options) *RS256Verifier {
	return &RS256Verifier{keys: keys, opts: opts}
}

// Verify validates the JWT string and returns its claims.
func (v *RS256Verifier) Verify(ctx context.Context, tokenStr string) (Claims, error) {
	claims, err := v.verify(tokenStr)
	if errors.Is(err, ErrNoKey) && v.opts.Refresher != nil {
		// Keys may have rotated at the provider.
		if rerr := v.opts.Refresher.Refresh(ctx); rerr == nil {
			claims, err = v.verify(tokenStr)
		}
	}
	if err != nil {
		return Claims{}, err
	}
	return *claims, nil
}

func (v *RS256Verifier) verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithLeeway(v.opts.Leeway),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrUnknownKID
		}

		pub, err := v.keys.Get(kid)
		if err != nil {
			return nil, fmt.Errorf("jwtx: unknown kid %q: %w", kid, err)
		}
		return pub, nil
	})
	if err != nil {
		return nil, mapParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaim
	}

	if err := claims.ValidateIssuer(v.opts.Issuer); err != nil {
		return nil, err
	}
	if err := claims.ValidateAudience(v.opts.Audience); err != nil {
		return nil, err
	}
	if err := claims.ValidateExpiryWithLeeway(v.opts.Leeway); err != nil {
		return nil, err
	}

	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, ErrNoKey), errors.Is(err, ErrUnknownKID):
		return err
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return fmt.Errorf("%w: %w", ErrNotYetValid, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrInvalidSig, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	default:
		return fmt.Errorf("jwtx: parse or verify: %w", err)
	}
}
