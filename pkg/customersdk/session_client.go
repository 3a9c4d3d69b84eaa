package customersdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// ListClients returns every client.
func (s *Session) ListClients(ctx context.Context) ([]ClientResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/v1/clients", nil)
	if err != nil {
		return nil, err
	}

	var clients []ClientResponse
	if err := decodeJSON(resp, &clients, http.StatusOK); err != nil {
		return nil, err
	}
	return clients, nil
}

// GetClientByDocumentID returns the client registered under documentID.
func (s *Session) GetClientByDocumentID(ctx context.Context, documentID string) (*ClientResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/v1/clients/document/"+url.PathEscape(documentID), nil)
	if err != nil {
		return nil, err
	}

	var client ClientResponse
	if err := decodeJSON(resp, &client, http.StatusOK); err != nil {
		return nil, err
	}
	return &client, nil
}

// CountActiveClients returns the number of ACTIVE clients.
func (s *Session) CountActiveClients(ctx context.Context) (int64, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/v1/clients/active/count", nil)
	if err != nil {
		return 0, err
	}

	var count ActiveCountResponse
	if err := decodeJSON(resp, &count, http.StatusOK); err != nil {
		return 0, err
	}
	return count.Active, nil
}

// CreateClient registers a new client. Requires the ADMIN role.
func (s *Session) CreateClient(ctx context.Context, req ClientRequest) (*ClientResponse, error) {
	return s.sendClient(ctx, http.MethodPost, "/api/v1/clients", req, http.StatusCreated)
}

// UpdateClient replaces the client's fields. Requires the ADMIN role.
func (s *Session) UpdateClient(ctx context.Context, id string, req ClientRequest) (*ClientResponse, error) {
	return s.sendClient(ctx, http.MethodPut, "/api/v1/clients/"+url.PathEscape(id), req, http.StatusOK)
}

// DeactivateClient marks the client INACTIVE. Requires the ADMIN role.
func (s *Session) DeactivateClient(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/api/v1/clients/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

func (s *Session) sendClient(ctx context.Context, method, path string, req ClientRequest, want int) (*ClientResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := s.doAuthRequest(ctx, method, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var client ClientResponse
	if err := decodeJSON(resp, &client, want); err != nil {
		return nil, err
	}
	return &client, nil
}
