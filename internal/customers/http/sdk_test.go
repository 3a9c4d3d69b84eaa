package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/customers/pkg/customersdk"
	"github.com/stretchr/testify/require"
)

func TestSDKAgainstRouter(t *testing.T) {
	t.Parallel()

	// The fake provider always issues access token "a".
	env := newTestEnv(t, tokenVerifier{"a": {"ADMIN"}})
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	c := customersdk.NewSDKClient(srv.URL + "/")

	sess, err := c.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	require.Equal(t, "a", sess.AccessToken())
	require.Equal(t, "r", sess.RefreshToken())

	created, err := sess.CreateClient(ctx, customersdk.ClientRequest{
		Name:       "Jane Doe",
		DocumentID: "12345678",
		Email:      "jane@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "ACTIVE", created.Status)

	_, err = sess.CreateClient(ctx, customersdk.ClientRequest{
		Name:       "Jane Doe",
		DocumentID: "12345678",
		Email:      "other@example.com",
	})
	var apiErr *customersdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusConflict, apiErr.Status)
	require.Equal(t, "Conflict", apiErr.Label)

	updated, err := sess.UpdateClient(ctx, created.ID, customersdk.ClientRequest{
		Name:       "Jane Smith",
		DocumentID: "12345678",
		Email:      "jane@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "Jane Smith", updated.Name)

	got, err := sess.GetClientByDocumentID(ctx, "12345678")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	n, err := sess.CountActiveClients(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.NoError(t, sess.DeactivateClient(ctx, created.ID))

	all, err := sess.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "INACTIVE", all[0].Status)

	err = sess.DeactivateClient(ctx, "missing")
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestSDKSessionRefreshesExpiredToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, tokenVerifier{"a": {"USER"}})
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	c := customersdk.NewSDKClient(srv.URL)

	// Already expired: the first call must refresh before sending.
	sess := c.NewSessionFromTokens("stale", "r", 0)

	_, err := sess.ListClients(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", sess.AccessToken())
}

func TestSDKForbiddenIsAPIError(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, tokenVerifier{"a": {"USER"}})
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	sess, err := customersdk.NewSDKClient(srv.URL).Login(ctx, "user", "secret")
	require.NoError(t, err)

	_, err = sess.CreateClient(ctx, customersdk.ClientRequest{Name: "Jane Doe", DocumentID: "12345678", Email: "jane@example.com"})
	var apiErr *customersdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusForbidden, apiErr.Status)
	require.Equal(t, "Forbidden", apiErr.Label)
	require.Equal(t, "/api/v1/clients", apiErr.Path)
}

func TestSDKHealth(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	c := customersdk.NewSDKClient(srv.URL)

	live, err := c.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := c.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks.Database)

	msg, err := c.AuthHealth(ctx)
	require.NoError(t, err)
	require.Equal(t, "Auth endpoint is running", msg)
}
