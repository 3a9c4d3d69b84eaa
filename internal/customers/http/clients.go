package http

import (
	"net/http"

	"github.com/aussiebroadwan/customers/internal/customers/domain"
	"github.com/aussiebroadwan/customers/internal/customers/service"
	"github.com/aussiebroadwan/customers/pkg/customersdk"
	"github.com/aussiebroadwan/customers/pkg/httpx"
)

// ClientsHandler handles the client management endpoints.
type ClientsHandler struct {
	ClientService *service.ClientService
	Validator     *RequestValidator
}

// HandleList handles GET /api/v1/clients
//
//	@Summary		List Clients
//	@Description	Returns every registered client.
//	@Tags			Clients
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		customersdk.ClientResponse
//	@Failure		401	{object}	customersdk.APIError	"missing or invalid bearer token"
//	@Failure		403	{object}	customersdk.APIError	"requires role USER or ADMIN"
//	@Failure		500	{object}	customersdk.APIError
//	@Router			/api/v1/clients [get].
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	clients, err := h.ClientService.ListClients(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]customersdk.ClientResponse, len(clients))
	for i, c := range clients {
		resp[i] = toClientResponse(c)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGetByDocument handles GET /api/v1/clients/document/{documentId}
//
//	@Summary		Get Client by Document
//	@Description	Returns the client registered under the identity document.
//	@Tags			Clients
//	@Produce		json
//	@Security		BearerAuth
//	@Param			documentId	path		string	true	"Identity document"
//	@Success		200			{object}	customersdk.ClientResponse
//	@Failure		404			{object}	customersdk.APIError
//	@Router			/api/v1/clients/document/{documentId} [get].
func (h *ClientsHandler) HandleGetByDocument(w http.ResponseWriter, r *http.Request) {
	c, err := h.ClientService.GetClientByDocumentID(r.Context(), r.PathValue("documentId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toClientResponse(c))
}

// HandleActiveCount handles GET /api/v1/clients/active/count
//
//	@Summary	Count Active Clients
//	@Tags		Clients
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	customersdk.ActiveCountResponse
//	@Router		/api/v1/clients/active/count [get].
func (h *ClientsHandler) HandleActiveCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.ClientService.CountActiveClients(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, customersdk.ActiveCountResponse{Active: n})
}

// HandleCreate handles POST /api/v1/clients
//
//	@Summary		Create Client
//	@Description	Registers a client. Status defaults to ACTIVE.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		customersdk.ClientRequest	true	"Client"
//	@Success		201		{object}	customersdk.ClientResponse
//	@Failure		400		{object}	customersdk.APIError	"validation error or invalid status"
//	@Failure		409		{object}	customersdk.APIError	"document id or email taken"
//	@Router			/api/v1/clients [post].
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req customersdk.ClientRequest
	if err := h.Validator.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.ClientService.CreateClient(r.Context(), toParams(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toClientResponse(c))
}

// HandleUpdate handles PUT /api/v1/clients/{id}
//
//	@Summary		Update Client
//	@Description	Replaces name, document and email. Status changes only when supplied.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"Client ID (ULID)"
//	@Param			request	body		customersdk.ClientRequest	true	"Client"
//	@Success		200		{object}	customersdk.ClientResponse
//	@Failure		400		{object}	customersdk.APIError
//	@Failure		404		{object}	customersdk.APIError
//	@Failure		409		{object}	customersdk.APIError
//	@Router			/api/v1/clients/{id} [put].
func (h *ClientsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req customersdk.ClientRequest
	if err := h.Validator.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.ClientService.UpdateClient(r.Context(), r.PathValue("id"), toParams(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toClientResponse(c))
}

// HandleDelete handles DELETE /api/v1/clients/{id}
//
//	@Summary		Deactivate Client
//	@Description	Soft delete: the client is kept with status INACTIVE.
//	@Tags			Clients
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Client ID (ULID)"
//	@Success		204	"Client deactivated"
//	@Failure		404	{object}	customersdk.APIError
//	@Router			/api/v1/clients/{id} [delete].
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.ClientService.DeactivateClient(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toParams(req customersdk.ClientRequest) domain.ClientParams {
	return domain.ClientParams{
		Name:       req.Name,
		DocumentID: req.DocumentID,
		Email:      req.Email,
		Status:     req.Status,
	}
}

func toClientResponse(c domain.Client) customersdk.ClientResponse {
	return customersdk.ClientResponse{
		ID:         c.ID,
		Name:       c.Name,
		DocumentID: c.DocumentID,
		Email:      c.Email,
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
