package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/aussiebroadwan/customers/internal/customers/domain"
	"github.com/aussiebroadwan/customers/pkg/errx"
	"github.com/aussiebroadwan/customers/pkg/slogx"
)

// DefaultClientID is the identity provider client used when none is configured.
const DefaultClientID = "customer-service-cli"

var errNoAccessToken = errors.New("token response has no access_token")

// TokenProvider posts a form to the identity provider's token endpoint and
// returns the raw body of a successful response.
type TokenProvider interface {
	Exchange(ctx context.Context, form url.Values) ([]byte, error)
}

// TokenService delegates credential and refresh-token exchanges to the
// identity provider. It holds no state between calls.
type TokenService struct {
	Provider TokenProvider
	ClientID string
	Observer Observer
}

func (s *TokenService) clientID() string {
	if s.ClientID != "" {
		return s.ClientID
	}
	return DefaultClientID
}

// IssueToken exchanges user credentials for tokens. Any failure is reported
// as an authentication failure carrying the cause.
func (s *TokenService) IssueToken(ctx context.Context, req domain.TokenRequest) (domain.TokenResponse, error) {
	l := slogx.FromContext(ctx)

	grant := req.GrantType
	if grant == "" {
		grant = domain.GrantPassword
	}
	clientID := req.ClientID
	if clientID == "" {
		clientID = s.clientID()
	}

	form := url.Values{
		"grant_type": {string(grant)},
		"client_id":  {clientID},
		"username":   {req.Username},
		"password":   {req.Password},
	}

	tok, err := s.exchange(ctx, form)
	if err != nil {
		l.Warn("token exchange failed", "username", req.Username, "client_id", clientID, "error", err)
		return domain.TokenResponse{}, errx.AuthenticationFailed(fmt.Errorf("error obtaining token from identity provider: %w", err))
	}

	observerOrNop(s.Observer).Observe(OpTokenIssue)
	l.Info("token issued", "username", req.Username, "client_id", clientID)
	return tok, nil
}

// RefreshToken exchanges a refresh token for new tokens using the service's
// own client id. Any failure is reported as a refresh failure.
func (s *TokenService) RefreshToken(ctx context.Context, refreshToken string) (domain.TokenResponse, error) {
	l := slogx.FromContext(ctx)

	form := url.Values{
		"grant_type":    {string(domain.GrantRefreshToken)},
		"client_id":     {s.clientID()},
		"refresh_token": {refreshToken},
	}

	tok, err := s.exchange(ctx, form)
	if err != nil {
		l.Warn("token refresh failed", "error", err)
		return domain.TokenResponse{}, errx.RefreshFailed(fmt.Errorf("error refreshing token: %w", err))
	}

	observerOrNop(s.Observer).Observe(OpTokenRefresh)
	l.Info("token refreshed")
	return tok, nil
}

func (s *TokenService) exchange(ctx context.Context, form url.Values) (domain.TokenResponse, error) {
	if s.Provider == nil {
		return domain.TokenResponse{}, errors.New("no identity provider configured")
	}

	body, err := s.Provider.Exchange(ctx, form)
	if err != nil {
		return domain.TokenResponse{}, err
	}

	var tok domain.TokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return domain.TokenResponse{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return domain.TokenResponse{}, errNoAccessToken
	}

	return tok, nil
}
