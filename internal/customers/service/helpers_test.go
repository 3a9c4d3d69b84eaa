package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/customers/internal/customers/domain"
	"github.com/aussiebroadwan/customers/internal/customers/store"
	"github.com/aussiebroadwan/customers/internal/customers/store/drivers/sqlite"
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

// newFileStore opens a migrated store on a temp file with the DSN the service
// runs with, so concurrent requests use separate connections.
func newFileStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.FileDSN(filepath.Join(t.TempDir(), "customers.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// countingObserver records every observed operation.
type countingObserver struct {
	mu     sync.Mutex
	counts map[Operation]int
}

func (o *countingObserver) Observe(op Operation) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = make(map[Operation]int)
	}
	o.counts[op]++
}

func (o *countingObserver) count(op Operation) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counts[op]
}

// fakeClock hands out strictly increasing instants.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// wrappedStore lets tests intercept repository calls made both directly and
// inside WithTx.
type wrappedStore struct {
	store.Store
	wrap func(store.Clients) store.Clients
}

func (s wrappedStore) Clients() store.Clients { return s.wrap(s.Store.Clients()) }

func (s wrappedStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return fn(wrappedTx{innerTx: tx, wrap: s.wrap})
	})
}

// innerTx keeps the embedded field from shadowing the promoted Tx method.
type innerTx = store.Tx

type wrappedTx struct {
	innerTx
	wrap func(store.Clients) store.Clients
}

func (t wrappedTx) Clients() store.Clients { return t.wrap(t.innerTx.Clients()) }

// staleClients always claims a key is free, mimicking a concurrent writer
// that committed between the check and the write.
type staleClients struct{ store.Clients }

func (staleClients) ExistsByDocumentID(context.Context, string) (bool, error) { return false, nil }
func (staleClients) ExistsByEmail(context.Context, string) (bool, error)      { return false, nil }

// savingClients counts SaveClient calls.
type savingClients struct {
	store.Clients
	saves *int
}

func (c savingClients) SaveClient(ctx context.Context, cl domain.Client) error {
	*c.saves++
	return c.Clients.SaveClient(ctx, cl)
}
