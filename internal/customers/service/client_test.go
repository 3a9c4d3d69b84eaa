package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aussiebroadwan/customers/internal/customers/domain"
	"github.com/aussiebroadwan/customers/internal/customers/store"
	"github.com/aussiebroadwan/customers/pkg/errx"
	"github.com/aussiebroadwan/customers/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newClientService(t *testing.T) (*ClientService, *countingObserver) {
	t.Helper()

	obs := &countingObserver{}
	return &ClientService{
		Store:    newTestStore(t),
		Observer: obs,
		Now:      newFakeClock().Now,
	}, obs
}

func janeParams() domain.ClientParams {
	return domain.ClientParams{
		Name:       "Jane Doe",
		DocumentID: "12345678",
		Email:      "jane@example.com",
	}
}

func TestCreateClientDefaultsToActive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, obs := newClientService(t)

	c, err := svc.CreateClient(ctx, janeParams())
	require.NoError(t, err)
	require.True(t, idx.Valid(c.ID))
	require.Equal(t, domain.StatusActive, c.Status)
	require.Equal(t, "Jane Doe", c.Name)
	require.Equal(t, c.CreatedAt, c.UpdatedAt)
	require.Equal(t, 1, obs.count(OpClientCreate))

	stored, err := svc.GetClientByDocumentID(ctx, "12345678")
	require.NoError(t, err)
	require.Equal(t, c.ID, stored.ID)
}

func TestCreateClientWithSuppliedStatus(t *testing.T) {
	t.Parallel()

	svc, _ := newClientService(t)

	p := janeParams()
	p.Status = "BLOCKED"
	c, err := svc.CreateClient(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, domain.StatusBlocked, c.Status)
}

func TestCreateClientRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, obs := newClientService(t)

	p := janeParams()
	p.Status = "FROZEN"
	_, err := svc.CreateClient(ctx, p)
	require.True(t, errx.IsKind(err, errx.KindInvalidState))
	require.Zero(t, obs.count(OpClientCreate))

	n, err := svc.CountClients(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestCreateClientConflicts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newClientService(t)

	_, err := svc.CreateClient(ctx, janeParams())
	require.NoError(t, err)

	t.Run("duplicate document id", func(t *testing.T) {
		p := janeParams()
		p.Email = "other@example.com"
		_, err := svc.CreateClient(ctx, p)
		require.True(t, errx.IsKind(err, errx.KindConflict))
		require.Contains(t, err.Error(), "document")
	})

	t.Run("duplicate email", func(t *testing.T) {
		p := janeParams()
		p.DocumentID = "87654321"
		_, err := svc.CreateClient(ctx, p)
		require.True(t, errx.IsKind(err, errx.KindConflict))
		require.Contains(t, err.Error(), "email")
	})

	t.Run("document conflict wins over bad status", func(t *testing.T) {
		p := janeParams()
		p.Status = "FROZEN"
		_, err := svc.CreateClient(ctx, p)
		require.True(t, errx.IsKind(err, errx.KindConflict))
	})

	n, err := svc.CountClients(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestCreateClientStorageConstraintIsConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := newTestStore(t)
	svc := &ClientService{
		Store: wrappedStore{Store: base, wrap: func(c store.Clients) store.Clients { return staleClients{c} }},
	}

	_, err := svc.CreateClient(ctx, janeParams())
	require.NoError(t, err)

	// The stale check lets the write through; the unique index stops it.
	p := janeParams()
	p.Email = "other@example.com"
	_, err = svc.CreateClient(ctx, p)
	require.True(t, errx.IsKind(err, errx.KindConflict))

	n, err := base.Clients().CountClients(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestGetClientByDocumentIDNotFound(t *testing.T) {
	t.Parallel()

	svc, obs := newClientService(t)

	_, err := svc.GetClientByDocumentID(context.Background(), "99999999")
	require.True(t, errx.IsKind(err, errx.KindNotFound))
	require.Contains(t, err.Error(), "99999999")
	require.Zero(t, obs.count(OpClientGet))
}

func TestListClients(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newClientService(t)

	list, err := svc.ListClients(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	a, err := svc.CreateClient(ctx, janeParams())
	require.NoError(t, err)
	b, err := svc.CreateClient(ctx, domain.ClientParams{
		Name: "John Roe", DocumentID: "87654321", Email: "john@example.com", Status: "INACTIVE",
	})
	require.NoError(t, err)

	list, err = svc.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, a.ID, list[0].ID)
	require.Equal(t, b.ID, list[1].ID)
}

func TestUpdateClient(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, obs := newClientService(t)

	c, err := svc.CreateClient(ctx, janeParams())
	require.NoError(t, err)

	t.Run("name always applied, status kept when absent", func(t *testing.T) {
		p := janeParams()
		p.Name = "Jane Smith"
		got, err := svc.UpdateClient(ctx, c.ID, p)
		require.NoError(t, err)
		require.Equal(t, "Jane Smith", got.Name)
		require.Equal(t, domain.StatusActive, got.Status)
		require.True(t, got.UpdatedAt.After(c.UpdatedAt))
		require.Equal(t, c.CreatedAt, got.CreatedAt)
	})

	t.Run("status applied when supplied", func(t *testing.T) {
		p := janeParams()
		p.Status = "BLOCKED"
		got, err := svc.UpdateClient(ctx, c.ID, p)
		require.NoError(t, err)
		require.Equal(t, domain.StatusBlocked, got.Status)

		p.Status = ""
		got, err = svc.UpdateClient(ctx, c.ID, p)
		require.NoError(t, err)
		require.Equal(t, domain.StatusBlocked, got.Status)
	})

	t.Run("unknown status", func(t *testing.T) {
		p := janeParams()
		p.Status = "FROZEN"
		_, err := svc.UpdateClient(ctx, c.ID, p)
		require.True(t, errx.IsKind(err, errx.KindInvalidState))
	})

	require.Equal(t, 3, obs.count(OpClientUpdate))
}

func TestUpdateClientUniqueness(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newClientService(t)

	jane, err := svc.CreateClient(ctx, janeParams())
	require.NoError(t, err)
	_, err = svc.CreateClient(ctx, domain.ClientParams{
		Name: "John Roe", DocumentID: "87654321", Email: "john@example.com",
	})
	require.NoError(t, err)

	current := jane
	t.Run("keeping own keys is not a conflict", func(t *testing.T) {
		got, err := svc.UpdateClient(ctx, jane.ID, janeParams())
		require.NoError(t, err)
		current = got
	})

	t.Run("taking another document id", func(t *testing.T) {
		p := janeParams()
		p.DocumentID = "87654321"
		_, err := svc.UpdateClient(ctx, jane.ID, p)
		require.True(t, errx.IsKind(err, errx.KindConflict))
	})

	t.Run("taking another email", func(t *testing.T) {
		p := janeParams()
		p.Email = "john@example.com"
		_, err := svc.UpdateClient(ctx, jane.ID, p)
		require.True(t, errx.IsKind(err, errx.KindConflict))
	})

	t.Run("conflicting updates leave the record untouched", func(t *testing.T) {
		p := janeParams()
		p.Name = "Jane Taken"
		p.DocumentID = "87654321"
		_, err := svc.UpdateClient(ctx, jane.ID, p)
		require.True(t, errx.IsKind(err, errx.KindConflict))

		got, err := svc.GetClientByDocumentID(ctx, "12345678")
		require.NoError(t, err)
		require.Equal(t, current.ID, got.ID)
		require.Equal(t, "Jane Doe", got.Name)
		require.Equal(t, "12345678", got.DocumentID)
		require.Equal(t, "jane@example.com", got.Email)
		require.Equal(t, current.Status, got.Status)
		require.True(t, current.UpdatedAt.Equal(got.UpdatedAt))
	})

	t.Run("moving to free keys", func(t *testing.T) {
		p := domain.ClientParams{Name: "Jane Doe", DocumentID: "55555555", Email: "jane.doe@example.com"}
		got, err := svc.UpdateClient(ctx, jane.ID, p)
		require.NoError(t, err)
		require.Equal(t, "55555555", got.DocumentID)

		_, err = svc.GetClientByDocumentID(ctx, "12345678")
		require.True(t, errx.IsKind(err, errx.KindNotFound))
	})
}

func TestUpdateClientNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newClientService(t)

	_, err := svc.UpdateClient(context.Background(), idx.New().String(), janeParams())
	require.True(t, errx.IsKind(err, errx.KindNotFound))

	_, err = svc.UpdateClient(context.Background(), "999", janeParams())
	require.True(t, errx.IsKind(err, errx.KindNotFound))
}

func TestDeactivateClient(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, obs := newClientService(t)

	c, err := svc.CreateClient(ctx, janeParams())
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateClient(ctx, c.ID))

	got, err := svc.GetClientByDocumentID(ctx, c.DocumentID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusInactive, got.Status)
	require.True(t, got.UpdatedAt.After(c.UpdatedAt))

	// Still listed, still counted, no longer active.
	list, err := svc.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	active, err := svc.CountActiveClients(ctx)
	require.NoError(t, err)
	require.Zero(t, active)

	// Repeat is allowed.
	require.NoError(t, svc.DeactivateClient(ctx, c.ID))
	require.Equal(t, 2, obs.count(OpClientDeactivate))
}

func TestDeactivateClientNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newClientService(t)

	err := svc.DeactivateClient(context.Background(), idx.New().String())
	require.True(t, errx.IsKind(err, errx.KindNotFound))
}

func TestCountActiveClients(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newClientService(t)

	for i, status := range []string{"", "ACTIVE", "INACTIVE", "BLOCKED"} {
		_, err := svc.CreateClient(ctx, domain.ClientParams{
			Name:       "Client",
			DocumentID: "DOC-0000" + string(rune('0'+i)),
			Email:      "c" + string(rune('0'+i)) + "@example.com",
			Status:     status,
		})
		require.NoError(t, err)
	}

	active, err := svc.CountActiveClients(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, active)

	total, err := svc.CountClients(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 4, total)
}

func TestMutationsWriteOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	saves := 0
	svc := &ClientService{
		Store: wrappedStore{
			Store: newTestStore(t),
			wrap:  func(c store.Clients) store.Clients { return savingClients{Clients: c, saves: &saves} },
		},
	}

	c, err := svc.CreateClient(ctx, janeParams())
	require.NoError(t, err)
	require.Equal(t, 1, saves)

	_, err = svc.UpdateClient(ctx, c.ID, janeParams())
	require.NoError(t, err)
	require.Equal(t, 2, saves)

	require.NoError(t, svc.DeactivateClient(ctx, c.ID))
	require.Equal(t, 3, saves)

	// Failures never reach the write.
	_, err = svc.CreateClient(ctx, janeParams())
	require.Error(t, err)
	require.Equal(t, 3, saves)

	emailOnly := janeParams()
	emailOnly.DocumentID = "87654321"
	_, err = svc.CreateClient(ctx, emailOnly)
	require.True(t, errx.IsKind(err, errx.KindConflict))
	require.Equal(t, 3, saves)

	documentOnly := janeParams()
	documentOnly.Email = "other@example.com"
	_, err = svc.CreateClient(ctx, documentOnly)
	require.True(t, errx.IsKind(err, errx.KindConflict))
	require.Equal(t, 3, saves)

	_, err = svc.CreateClient(ctx, domain.ClientParams{Name: "John Roe", DocumentID: "87654321", Email: "john@example.com"})
	require.NoError(t, err)
	require.Equal(t, 4, saves)

	taken := janeParams()
	taken.Email = "john@example.com"
	_, err = svc.UpdateClient(ctx, c.ID, taken)
	require.True(t, errx.IsKind(err, errx.KindConflict))
	require.Equal(t, 4, saves)
}

func TestStoreFailureIsUnclassified(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := &ClientService{Store: st}
	require.NoError(t, st.Close())

	_, err := svc.CreateClient(ctx, janeParams())
	require.Error(t, err)
	require.Equal(t, errx.KindUnclassified, errx.KindOf(err))

	_, err = svc.GetClientByDocumentID(ctx, "12345678")
	require.Error(t, err)
	require.Equal(t, errx.KindUnclassified, errx.KindOf(err))
}

func TestCreateClientConcurrentOnFileStore(t *testing.T) {
	t.Parallel()

	const (
		workers = 40
		ok      = errx.Kind(-1)
	)
	ctx := context.Background()

	// outcomes runs create once per worker and tallies the error kinds.
	outcomes := func(svc *ClientService, params func(i int) domain.ClientParams) map[errx.Kind]int {
		var (
			mu     sync.Mutex
			wg     sync.WaitGroup
			counts = map[errx.Kind]int{}
		)
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.CreateClient(ctx, params(i))

				kind := ok
				if err != nil {
					kind = errx.KindOf(err)
					if kind == errx.KindUnclassified {
						t.Logf("unclassified create failure: %v", err)
					}
				}

				mu.Lock()
				counts[kind]++
				mu.Unlock()
			}()
		}
		wg.Wait()
		return counts
	}

	t.Run("distinct keys all succeed", func(t *testing.T) {
		svc := &ClientService{Store: newFileStore(t)}

		counts := outcomes(svc, func(i int) domain.ClientParams {
			return domain.ClientParams{
				Name:       "Client",
				DocumentID: fmt.Sprintf("DOC-%05d", i),
				Email:      fmt.Sprintf("client%d@example.com", i),
			}
		})
		require.Equal(t, map[errx.Kind]int{ok: workers}, counts)

		n, err := svc.CountClients(ctx)
		require.NoError(t, err)
		require.EqualValues(t, workers, n)
	})

	t.Run("same document id has one winner", func(t *testing.T) {
		svc := &ClientService{Store: newFileStore(t)}

		counts := outcomes(svc, func(i int) domain.ClientParams {
			return domain.ClientParams{
				Name:       "Client",
				DocumentID: "DOC-SHARED",
				Email:      fmt.Sprintf("client%d@example.com", i),
			}
		})
		require.Equal(t, map[errx.Kind]int{ok: 1, errx.KindConflict: workers - 1}, counts)
	})
}
