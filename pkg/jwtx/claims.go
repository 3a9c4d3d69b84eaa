package jwtx

import (
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Access is a Keycloak role container ("realm_access" and the entries of
// "resource_access").
type Access struct {
	Roles []string `json:"roles,omitempty"`
}

// Claims are the access-token claims issued by the identity provider.
type Claims struct {
	jwt.RegisteredClaims

	// Authorized party, the client the token was issued to.
	AuthorizedParty string `json:"azp,omitempty"`

	// Space-delimited OAuth2 scopes.
	Scope string `json:"scope,omitempty"`

	PreferredUsername string `json:"preferred_username,omitempty"`
	Email             string `json:"email,omitempty"`

	RealmAccess    Access            `json:"realm_access"`
	ResourceAccess map[string]Access `json:"resource_access,omitempty"`
}

// Scopes splits the scope claim.
func (c *Claims) Scopes() []string {
	return strings.Fields(c.Scope)
}

// Roles returns realm roles plus the roles granted on clientID, without
// duplicates. An empty clientID returns realm roles only.
func (c *Claims) Roles(clientID string) []string {
	roles := slices.Clone(c.RealmAccess.Roles)
	if clientID != "" {
		if a, ok := c.ResourceAccess[clientID]; ok {
			for _, r := range a.Roles {
				if !slices.Contains(roles, r) {
					roles = append(roles, r)
				}
			}
		}
	}
	return roles
}

// HasAnyRole reports whether the token carries at least one of want.
func (c *Claims) HasAnyRole(clientID string, want ...string) bool {
	have := c.Roles(clientID)
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateAudience checks that at least one expected value appears in "aud"
// or equals "azp". Keycloak access tokens often omit the client from "aud".
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}

	for _, want := range expected {
		if slices.Contains(c.Audience, want) || c.AuthorizedParty == want {
			return nil
		}
	}

	return ErrAudience
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryWithLeeway(0)
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}
