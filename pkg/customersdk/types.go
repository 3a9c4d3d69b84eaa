package customersdk

import "time"

// ============================================================================
// Client Types
// ============================================================================

// ClientRequest is the body for creating or updating a client. Status is
// optional: create defaults it to ACTIVE and update leaves it unchanged.
type ClientRequest struct {
	Name       string `json:"name" validate:"notblank,min=2,max=100"`
	DocumentID string `json:"documentId" validate:"notblank,min=5,max=20"`
	Email      string `json:"email" validate:"notblank,email"`
	Status     string `json:"status,omitempty"`
}

// ClientResponse is a stored client.
type ClientResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	DocumentID string    `json:"documentId"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ActiveCountResponse is returned by the active client count endpoint.
type ActiveCountResponse struct {
	Active int64 `json:"active"`
}

// ============================================================================
// Auth Types
// ============================================================================

// TokenRequest is the body of the token endpoint. GrantType defaults to
// "password" and ClientID to the service's client.
type TokenRequest struct {
	Username  string `json:"username" validate:"notblank"`
	Password  string `json:"password" validate:"notblank"`
	GrantType string `json:"grantType,omitempty"`
	ClientID  string `json:"clientId,omitempty"`
}

// TokenResponse is the identity provider's token payload, passed through.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token,omitempty"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in,omitempty"`
	TokenType        string `json:"token_type"`
	Scope            string `json:"scope,omitempty"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz (readyz adds Checks).
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of critical dependencies.
type HealthChecks struct {
	Database     string `json:"database"`
	ClientsCount *int64 `json:"clients_count,omitempty"`
}
