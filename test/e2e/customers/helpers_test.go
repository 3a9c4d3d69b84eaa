package customers_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/customers/internal/customers/app"
	"github.com/aussiebroadwan/customers/pkg/customersdk"
	"github.com/aussiebroadwan/customers/pkg/jwtx"
)

/*
 * End-to-end tests run the whole service against a PostgreSQL container and
 * an in-process identity provider that signs real RS256 tokens.
 */

const (
	realm    = "customer-service"
	clientID = "customer-service-cli"
	keyID    = "e2e-key"

	adminUsername = "admin"
	adminPassword = "Admin123!"
	userUsername  = "user"
	userPassword  = "User123!"
)

type account struct {
	password string
	roles    []string
}

var accounts = map[string]account{
	adminUsername: {adminPassword, []string{"ADMIN", "USER"}},
	userUsername:  {userPassword, []string{"USER"}},
}

// identityProvider mimics the realm endpoints the service calls.
type identityProvider struct {
	*httptest.Server
	key *rsa.PrivateKey
}

func startIdentityProvider(t *testing.T) *identityProvider {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	p := &identityProvider{key: key}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /realms/"+realm+"/protocol/openid-connect/certs", p.handleCerts)
	mux.HandleFunc("POST /realms/"+realm+"/protocol/openid-connect/token", p.handleToken)
	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Close)

	return p
}

func (p *identityProvider) issuer() string { return p.URL + "/realms/" + realm }

func (p *identityProvider) handleCerts(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(jwtx.JWKS{Keys: []jwtx.JWK{jwtx.NewRSAJWK(keyID, &p.key.PublicKey)}})
}

func (p *identityProvider) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var username string
	switch r.PostForm.Get("grant_type") {
	case "password":
		acc, ok := accounts[r.PostForm.Get("username")]
		if !ok || acc.password != r.PostForm.Get("password") {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid user credentials"}`))
			return
		}
		username = r.PostForm.Get("username")
	case "refresh_token":
		name, ok := strings.CutPrefix(r.PostForm.Get("refresh_token"), "rt.")
		if _, known := accounts[name]; !ok || !known {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid refresh token"}`))
			return
		}
		username = name
	default:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unsupported_grant_type"}`))
		return
	}

	access, err := p.sign(username, accounts[username].roles)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token":       access,
		"refresh_token":      "rt." + username,
		"token_type":         "Bearer",
		"expires_in":         300,
		"refresh_expires_in": 1800,
		"scope":              "profile email",
	})
}

func (p *identityProvider) sign(username string, roles []string) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer(),
			Subject:   "sub-" + username,
			Audience:  jwt.ClaimStrings{"account"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
		},
		AuthorizedParty:   clientID,
		Scope:             "profile email",
		PreferredUsername: username,
		RealmAccess:       jwtx.Access{Roles: roles},
	})
	tok.Header["kid"] = keyID
	return tok.SignedString(p.key)
}

func startPostgres(t *testing.T) string {
	t.Helper()

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("customers"),
		tcpostgres.WithUsername("customers"),
		tcpostgres.WithPassword("customers"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return url
}

// setupService starts the service on postgres behind an httptest server and
// returns an SDK client for it.
func setupService(t *testing.T) *customersdk.SDKClient {
	t.Helper()

	if testing.Short() {
		t.Skip("end-to-end tests skipped in -short mode")
	}

	idp := startIdentityProvider(t)
	dbURL := startPostgres(t)

	application, err := app.New(app.Config{
		Env:                    "test",
		LogLevel:               "warn",
		LogFormat:              "json",
		Port:                   8080,
		ShutdownGracePeriod:    5 * time.Second,
		DatabaseDriver:         "postgres",
		DatabaseURL:            dbURL,
		IDPBaseURL:             idp.URL,
		IDPRealm:               realm,
		IDPClientID:            clientID,
		IDPTimeout:             5 * time.Second,
		AuthEnabled:            true,
		AuthAudience:           []string{clientID},
		JWKSMinRefreshInterval: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Shutdown() })

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	return customersdk.NewSDKClient(srv.URL)
}

func login(t *testing.T, client *customersdk.SDKClient, username, password string) *customersdk.Session {
	t.Helper()
	session, err := client.Login(t.Context(), username, password)
	require.NoError(t, err)
	return session
}
