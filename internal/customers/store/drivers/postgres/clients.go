package postgres

import (
	"context"

	"github.com/aussiebroadwan/customers/internal/customers/domain"
	"github.com/jackc/pgx/v5"
)

const clientColumns = `id, name, document_id, email, status, created_at, updated_at`

type clientsRepo struct {
	db dbtx
}

func scanClient(row pgx.Row) (domain.Client, error) {
	var (
		c      domain.Client
		status string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.DocumentID, &c.Email, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Client{}, err
	}
	c.Status = domain.Status(status)
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.db.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []domain.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) GetClientByDocumentID(ctx context.Context, documentID string) (domain.Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE document_id = $1`, documentID))
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) ExistsByDocumentID(ctx context.Context, documentID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM clients WHERE document_id = $1)`, documentID)
}

func (r *clientsRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM clients WHERE email = $1)`, email)
}

func (r *clientsRepo) exists(ctx context.Context, query string, arg string) (bool, error) {
	var found bool
	if err := r.db.QueryRow(ctx, query, arg).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

func (r *clientsRepo) SaveClient(ctx context.Context, c domain.Client) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name        = EXCLUDED.name,
			document_id = EXCLUDED.document_id,
			email       = EXCLUDED.email,
			status      = EXCLUDED.status,
			updated_at  = EXCLUDED.updated_at`,
		c.ID, c.Name, c.DocumentID, c.Email, string(c.Status), c.CreatedAt, c.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *clientsRepo) CountClients(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clients`).Scan(&n)
	return n, err
}

func (r *clientsRepo) CountClientsByStatus(ctx context.Context, status domain.Status) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clients WHERE status = $1`, string(status)).Scan(&n)
	return n, err
}
