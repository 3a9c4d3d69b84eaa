package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/customers/internal/customers/service"
	"github.com/aussiebroadwan/customers/internal/customers/store"
	"github.com/aussiebroadwan/customers/pkg/httpx"
	"github.com/aussiebroadwan/customers/pkg/jwtx"
	"github.com/aussiebroadwan/customers/pkg/slogx"

	_ "github.com/aussiebroadwan/customers/api/customers" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	roleClientID string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	validator    *RequestValidator

	store         store.Store
	ClientService *service.ClientService
	TokenService  *service.TokenService

	// Metrics is served on /metrics when set.
	Metrics http.Handler
}

// NewRouter creates a router. A nil verifier disables authentication and
// role checks on the client endpoints. Roles are read from the realm and
// from roleClientID's resource access.
func NewRouter(
	verifier jwtx.Verifier,
	roleClientID, buildVersion string,
	st store.Store,
	logger *slog.Logger,
) (*Router, error) {
	v, err := NewRequestValidator()
	if err != nil {
		return nil, err
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		roleClientID: roleClientID,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		validator:    v,
		store:        st,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r, nil
}

func (r *Router) ApplyRoutes() {
	r.registerClients()
	r.registerAuth()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Customer Service API
//	@version		0.1.0
//	@description	Client registry with soft delete, and a token exchange front for the identity provider.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Identity provider access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps h with authentication and a role check, or returns h as is
// when authentication is disabled.
func (r *Router) secured(h http.HandlerFunc, roles ...string) http.Handler {
	if r.verifier == nil {
		return h
	}
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyRole(r.roleClientID, roles...),
	)
}

func (r *Router) registerClients() {
	h := &ClientsHandler{
		ClientService: r.ClientService,
		Validator:     r.validator,
	}

	r.Mux.Handle("GET /api/v1/clients", r.secured(h.HandleList, RoleUser, RoleAdmin))
	r.Mux.Handle("GET /api/v1/clients/document/{documentId}", r.secured(h.HandleGetByDocument, RoleUser, RoleAdmin))
	r.Mux.Handle("GET /api/v1/clients/active/count", r.secured(h.HandleActiveCount, RoleUser, RoleAdmin))

	r.Mux.Handle("POST /api/v1/clients", r.secured(h.HandleCreate, RoleAdmin))
	r.Mux.Handle("PUT /api/v1/clients/{id}", r.secured(h.HandleUpdate, RoleAdmin))
	r.Mux.Handle("DELETE /api/v1/clients/{id}", r.secured(h.HandleDelete, RoleAdmin))
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		TokenService: r.TokenService,
		Validator:    r.validator,
	}

	r.Mux.HandleFunc("POST /api/v1/auth/token", h.HandleToken)
	r.Mux.HandleFunc("POST /api/v1/auth/refresh", h.HandleRefresh)
	r.Mux.HandleFunc("GET /api/v1/auth/health", h.HandleHealth)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.ClientService))

	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.Metrics)
	}
}
