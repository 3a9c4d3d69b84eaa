// Package idp talks to the OpenID Connect identity provider (Keycloak) that
// owns user credentials. It only moves bytes: payload interpretation belongs
// to the caller.
package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/customers/pkg/jwtx"
)

// maxBody bounds how much of an identity provider response we read.
const maxBody = 1 << 20

// Client is a Keycloak realm endpoint client.
type Client struct {
	BaseURL    string
	Realm      string
	HTTPClient *http.Client
}

// NewClient returns a Client for realm at baseURL with the given request timeout.
func NewClient(baseURL, realm string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Realm:   realm,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) realmURL(path string) string {
	return c.BaseURL + "/realms/" + url.PathEscape(c.Realm) + path
}

// TokenURL is the realm's OAuth2 token endpoint.
func (c *Client) TokenURL() string { return c.realmURL("/protocol/openid-connect/token") }

// CertsURL is the realm's JWKS endpoint.
func (c *Client) CertsURL() string { return c.realmURL("/protocol/openid-connect/certs") }

// Issuer is the "iss" claim the realm stamps on its tokens.
func (c *Client) Issuer() string { return c.realmURL("") }

// Exchange posts form to the token endpoint and returns the body of a 2xx
// response. Other statuses become errors carrying the status and body.
func (c *Client) Exchange(ctx context.Context, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.TokenURL(),
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf(
			"token request failed with status %d: %s",
			resp.StatusCode,
			strings.TrimSpace(string(body)),
		)
	}

	return body, nil
}

// FetchJWKS downloads the realm's public signing keys.
func (c *Client) FetchJWKS(ctx context.Context) (jwtx.JWKS, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.CertsURL(), nil)
	if err != nil {
		return jwtx.JWKS{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return jwtx.JWKS{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		return jwtx.JWKS{}, fmt.Errorf(
			"certs request failed with status %d: %s",
			resp.StatusCode,
			strings.TrimSpace(string(body)),
		)
	}

	var jwks jwtx.JWKS
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&jwks); err != nil {
		return jwtx.JWKS{}, fmt.Errorf("failed to decode jwks: %w", err)
	}

	return jwks, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
