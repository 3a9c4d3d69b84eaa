package domain

// GrantType is the OAuth2 grant used against the identity provider.
type GrantType string

const (
	GrantPassword     GrantType = "password"
	GrantRefreshToken GrantType = "refresh_token"
)

// TokenRequest asks the identity provider to exchange user credentials. Empty
// GrantType and ClientID fall back to GrantPassword and the service client id.
type TokenRequest struct {
	Username  string
	Password  string
	GrantType GrantType
	ClientID  string
}

// TokenResponse mirrors the identity provider's token endpoint payload.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token,omitempty"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in,omitempty"`
	TokenType        string `json:"token_type"`
	Scope            string `json:"scope,omitempty"`
}
