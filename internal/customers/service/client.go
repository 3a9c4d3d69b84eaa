package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/customers/internal/customers/domain"
	"github.com/aussiebroadwan/customers/internal/customers/store"
	"github.com/aussiebroadwan/customers/pkg/errx"
	"github.com/aussiebroadwan/customers/pkg/idx"
	"github.com/aussiebroadwan/customers/pkg/slogx"
)

// ClientService owns the client lifecycle: uniqueness of document id and
// email, the status state machine and soft deletion.
type ClientService struct {
	Store    store.Store
	Observer Observer

	// Now defaults to the current UTC time at microsecond precision.
	Now func() time.Time
}

func (s *ClientService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC().Truncate(time.Microsecond)
}

// ListClients returns every client regardless of status.
func (s *ClientService) ListClients(ctx context.Context) ([]domain.Client, error) {
	return s.Store.Clients().ListClients(ctx)
}

// GetClientByDocumentID looks a client up by its document id.
func (s *ClientService) GetClientByDocumentID(ctx context.Context, documentID string) (domain.Client, error) {
	c, err := s.Store.Clients().GetClientByDocumentID(ctx, documentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, errx.NotFound("Client not found with document: %s", documentID)
		}
		return domain.Client{}, err
	}

	observerOrNop(s.Observer).Observe(OpClientGet)
	return c, nil
}

// CreateClient validates uniqueness, defaults the status to ACTIVE and
// persists a new client.
func (s *ClientService) CreateClient(ctx context.Context, p domain.ClientParams) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	now := s.now()
	c := domain.Client{
		ID:         idx.New().String(),
		Name:       p.Name,
		DocumentID: p.DocumentID,
		Email:      p.Email,
		Status:     domain.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := checkDocumentIDFree(ctx, tx, c.DocumentID); err != nil {
			return err
		}
		if err := checkEmailFree(ctx, tx, c.Email); err != nil {
			return err
		}
		if p.HasStatus() {
			st, err := parseStatus(p.Status)
			if err != nil {
				return err
			}
			c.Status = st
		}
		return tx.Clients().SaveClient(ctx, c)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			l.Warn("client create lost uniqueness race", "document_id", c.DocumentID)
			return domain.Client{}, errx.Conflict("Client already exists with document %s or email %s", c.DocumentID, c.Email)
		}
		if errx.KindOf(err) == errx.KindUnclassified {
			l.Error("failed to create client", "error", err)
			return domain.Client{}, fmt.Errorf("create client: %w", err)
		}
		return domain.Client{}, err
	}

	observerOrNop(s.Observer).Observe(OpClientCreate)
	l.Info("client created successfully", "client_id", c.ID, "status", c.Status)
	return c, nil
}

// UpdateClient applies p to the client with the given id. Name, document id
// and email are always replaced; status only when supplied.
func (s *ClientService) UpdateClient(ctx context.Context, id string, p domain.ClientParams) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	var updated domain.Client
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		c, err := loadClient(ctx, tx, id)
		if err != nil {
			return err
		}

		if p.DocumentID != c.DocumentID {
			if err := checkDocumentIDFree(ctx, tx, p.DocumentID); err != nil {
				return err
			}
		}
		if p.Email != c.Email {
			if err := checkEmailFree(ctx, tx, p.Email); err != nil {
				return err
			}
		}

		c.Name = p.Name
		c.DocumentID = p.DocumentID
		c.Email = p.Email
		if p.HasStatus() {
			st, err := parseStatus(p.Status)
			if err != nil {
				return err
			}
			c.Status = st
		}
		c.UpdatedAt = s.now()

		if err := tx.Clients().SaveClient(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			l.Warn("client update lost uniqueness race", "client_id", id)
			return domain.Client{}, errx.Conflict("Client already exists with document %s or email %s", p.DocumentID, p.Email)
		}
		if errx.KindOf(err) == errx.KindUnclassified {
			l.Error("failed to update client", "error", err, "client_id", id)
			return domain.Client{}, fmt.Errorf("update client: %w", err)
		}
		return domain.Client{}, err
	}

	observerOrNop(s.Observer).Observe(OpClientUpdate)
	l.Info("client updated successfully", "client_id", updated.ID, "status", updated.Status)
	return updated, nil
}

// DeactivateClient soft-deletes a client by moving it to INACTIVE. Repeating
// the call on an inactive client is allowed and rewrites updated_at.
func (s *ClientService) DeactivateClient(ctx context.Context, id string) error {
	l := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		c, err := loadClient(ctx, tx, id)
		if err != nil {
			return err
		}

		c.Deactivate()
		c.UpdatedAt = s.now()
		return tx.Clients().SaveClient(ctx, c)
	})
	if err != nil {
		if errx.KindOf(err) == errx.KindUnclassified {
			l.Error("failed to deactivate client", "error", err, "client_id", id)
			return fmt.Errorf("deactivate client: %w", err)
		}
		return err
	}

	observerOrNop(s.Observer).Observe(OpClientDeactivate)
	l.Info("client deactivated", "client_id", id)
	return nil
}

// CountActiveClients returns the number of ACTIVE clients.
func (s *ClientService) CountActiveClients(ctx context.Context) (int64, error) {
	return s.Store.Clients().CountClientsByStatus(ctx, domain.StatusActive)
}

// CountClients returns the number of clients in any status.
func (s *ClientService) CountClients(ctx context.Context) (int64, error) {
	return s.Store.Clients().CountClients(ctx)
}

func loadClient(ctx context.Context, st store.Store, id string) (domain.Client, error) {
	notFound := errx.NotFound("Client not found with id: %s", id)

	// Ids are ULIDs; anything else cannot exist.
	if !idx.Valid(id) {
		return domain.Client{}, notFound
	}

	c, err := st.Clients().GetClientByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, notFound
		}
		return domain.Client{}, err
	}
	return c, nil
}

func checkDocumentIDFree(ctx context.Context, st store.Store, documentID string) error {
	taken, err := st.Clients().ExistsByDocumentID(ctx, documentID)
	if err != nil {
		return err
	}
	if taken {
		return errx.Conflict("Client already exists with document: %s", documentID)
	}
	return nil
}

func checkEmailFree(ctx context.Context, st store.Store, email string) error {
	taken, err := st.Clients().ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return errx.Conflict("Client already exists with email: %s", email)
	}
	return nil
}

func parseStatus(s string) (domain.Status, error) {
	st, err := domain.ParseStatus(s)
	if err != nil {
		return "", errx.InvalidState("Invalid client status: %s (allowed: ACTIVE, INACTIVE, BLOCKED)", s)
	}
	return st, nil
}
