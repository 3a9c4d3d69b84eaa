package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/customers/internal/customers/domain"
	"github.com/aussiebroadwan/customers/internal/customers/store"
	"github.com/aussiebroadwan/customers/internal/customers/store/drivers/sqlite"
	"github.com/aussiebroadwan/customers/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newClient(documentID, email string) domain.Client {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.Client{
		ID:         idx.New().String(),
		Name:       "Jane Doe",
		DocumentID: documentID,
		Email:      email,
		Status:     domain.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	require.NoError(t, st.ApplyMigrations())
}

func TestSaveAndGetClient(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	c := newClient("12345678", "jane@example.com")
	require.NoError(t, st.Clients().SaveClient(ctx, c))

	byID, err := st.Clients().GetClientByID(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, c.Name, byID.Name)
	require.Equal(t, c.DocumentID, byID.DocumentID)
	require.Equal(t, c.Email, byID.Email)
	require.Equal(t, domain.StatusActive, byID.Status)
	require.True(t, c.CreatedAt.Equal(byID.CreatedAt))
	require.True(t, c.UpdatedAt.Equal(byID.UpdatedAt))

	byDoc, err := st.Clients().GetClientByDocumentID(ctx, "12345678")
	require.NoError(t, err)
	require.Equal(t, c.ID, byDoc.ID)
}

func TestGetClientNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.Clients().GetClientByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.Clients().GetClientByDocumentID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSaveClientUpserts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	c := newClient("12345678", "jane@example.com")
	require.NoError(t, st.Clients().SaveClient(ctx, c))

	c.Name = "Jane Smith"
	c.Status = domain.StatusBlocked
	c.UpdatedAt = c.UpdatedAt.Add(time.Minute)
	require.NoError(t, st.Clients().SaveClient(ctx, c))

	got, err := st.Clients().GetClientByID(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, "Jane Smith", got.Name)
	require.Equal(t, domain.StatusBlocked, got.Status)
	require.True(t, c.CreatedAt.Equal(got.CreatedAt))
	require.True(t, c.UpdatedAt.Equal(got.UpdatedAt))

	n, err := st.Clients().CountClients(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestSaveClientUniqueConstraints(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	require.NoError(t, st.Clients().SaveClient(ctx, newClient("12345678", "jane@example.com")))

	err := st.Clients().SaveClient(ctx, newClient("12345678", "other@example.com"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	err = st.Clients().SaveClient(ctx, newClient("87654321", "jane@example.com"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestExistsAndCounts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	a := newClient("11111111", "a@example.com")
	b := newClient("22222222", "b@example.com")
	b.Status = domain.StatusInactive
	require.NoError(t, st.Clients().SaveClient(ctx, a))
	require.NoError(t, st.Clients().SaveClient(ctx, b))

	ok, err := st.Clients().ExistsByDocumentID(ctx, "11111111")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = st.Clients().ExistsByDocumentID(ctx, "33333333")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = st.Clients().ExistsByEmail(ctx, "b@example.com")
	require.NoError(t, err)
	require.True(t, ok)

	active, err := st.Clients().CountClientsByStatus(ctx, domain.StatusActive)
	require.NoError(t, err)
	require.EqualValues(t, 1, active)

	total, err := st.Clients().CountClients(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
}

func TestListClientsOrderedByID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	list, err := st.Clients().ListClients(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	first := newClient("11111111", "a@example.com")
	second := newClient("22222222", "b@example.com")
	require.NoError(t, st.Clients().SaveClient(ctx, second))
	require.NoError(t, st.Clients().SaveClient(ctx, first))

	list, err = st.Clients().ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, first.ID, list[0].ID)
	require.Equal(t, second.ID, list[1].ID)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	boom := errors.New("boom")

	err := st.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Clients().SaveClient(ctx, newClient("12345678", "jane@example.com")))
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := st.Clients().CountClients(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	err = st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Clients().SaveClient(ctx, newClient("12345678", "jane@example.com"))
	})
	require.NoError(t, err)

	n, err = st.Clients().CountClients(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestNestedTxNotSupported(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	err := st.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Tx(ctx)
		return err
	})
	require.Error(t, err)
}
