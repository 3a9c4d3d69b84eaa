package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/customers/internal/customers/domain"
	"github.com/aussiebroadwan/customers/internal/customers/service"
	"github.com/aussiebroadwan/customers/pkg/customersdk"
	"github.com/aussiebroadwan/customers/pkg/errx"
	"github.com/aussiebroadwan/customers/pkg/httpx"
	"github.com/aussiebroadwan/customers/pkg/slogx"
)

// AuthHandler exposes the identity provider token exchanges.
type AuthHandler struct {
	TokenService *service.TokenService
	Validator    *RequestValidator
}

// HandleToken handles POST /api/v1/auth/token
//
//	@Summary		Issue Token
//	@Description	Exchanges username and password for tokens at the identity provider.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		customersdk.TokenRequest	true	"Credentials"
//	@Success		200		{object}	customersdk.TokenResponse
//	@Failure		400		{object}	customersdk.APIError	"validation error"
//	@Failure		401		{object}	customersdk.APIError	"authentication_failed"
//	@Router			/api/v1/auth/token [post].
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var req customersdk.TokenRequest
	if err := h.Validator.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ctx := slogx.With(r.Context(), "username", req.Username)
	r = r.WithContext(ctx)

	tokens, err := h.TokenService.IssueToken(ctx, domain.TokenRequest{
		Username:  req.Username,
		Password:  req.Password,
		GrantType: domain.GrantType(req.GrantType),
		ClientID:  req.ClientID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, tokens)
}

// HandleRefresh handles POST /api/v1/auth/refresh
//
//	@Summary		Refresh Token
//	@Description	Exchanges a refresh token for new tokens at the identity provider.
//	@Tags			Auth
//	@Produce		json
//	@Param			refreshToken	query		string	true	"Refresh token"
//	@Success		200				{object}	customersdk.TokenResponse
//	@Failure		400				{object}	customersdk.APIError	"validation error"
//	@Failure		401				{object}	customersdk.APIError	"refresh_failed"
//	@Router			/api/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := r.URL.Query().Get("refreshToken")
	if strings.TrimSpace(refreshToken) == "" {
		writeError(w, r, errx.Validation(map[string]string{
			"refreshToken": "Refresh token is required",
		}))
		return
	}

	tokens, err := h.TokenService.RefreshToken(r.Context(), refreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, tokens)
}

// HandleHealth handles GET /api/v1/auth/health
//
//	@Summary	Auth Endpoint Check
//	@Tags		Auth
//	@Produce	plain
//	@Success	200	{string}	string	"Auth endpoint is running"
//	@Router		/api/v1/auth/health [get].
func (h *AuthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httpx.WriteText(w, http.StatusOK, "Auth endpoint is running")
}
