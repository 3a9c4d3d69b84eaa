package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/customers/internal/customers/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Repositories hang off it so a Tx-scoped Store hands out
// repositories bound to the same transaction.
type Store interface {
	Clients() Clients

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. A non-nil error from fn rolls
	// the transaction back; nil commits it.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Clients interface {
	// ListClients returns every client ordered by id (creation order).
	ListClients(ctx context.Context) ([]domain.Client, error)

	GetClientByID(ctx context.Context, id string) (domain.Client, error)
	GetClientByDocumentID(ctx context.Context, documentID string) (domain.Client, error)

	ExistsByDocumentID(ctx context.Context, documentID string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// SaveClient inserts or fully replaces the client keyed by id. A clash on
	// document_id or email returns ErrAlreadyExists.
	SaveClient(ctx context.Context, c domain.Client) error

	CountClients(ctx context.Context) (int64, error)
	CountClientsByStatus(ctx context.Context, status domain.Status) (int64, error)
}
