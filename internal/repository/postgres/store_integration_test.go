//go:build integration

package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jwalitptl/rota-api/internal/repository"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) (*Store, func()) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "rota",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := NewDB(ctx, Config{
		URL:         fmt.Sprintf("postgres://test:test@%s:%s/rota?sslmode=disable", host, port.Port()),
		AutoMigrate: true,
	})
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		_ = container.Terminate(ctx)
	}
	return NewStore(db), cleanup
}

func TestIntegration_DocumentLifecycle(t *testing.T) {
	ctx := context.Background()
	store, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	var teamLocID string

	t.Run("add and get", func(t *testing.T) {
		id, err := store.Add(ctx, repository.CollectionTeamLocations, map[string]any{
			"teamId": "t1", "locationId": "l1", "depId": "d1",
		})
		require.NoError(t, err)
		teamLocID = id

		rec, err := store.Get(ctx, repository.CollectionTeamLocations, id)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "t1", rec.String("teamId"))
		assert.NotNil(t, rec.CreatedAt)
	})

	t.Run("query by two fields", func(t *testing.T) {
		_, err := store.Add(ctx, repository.CollectionTeamLocations, map[string]any{
			"teamId": "t2", "locationId": "l1", "depId": "d1",
		})
		require.NoError(t, err)

		recs, err := store.Query(ctx, repository.CollectionTeamLocations,
			repository.Eq("depId", "d1"), repository.Eq("locationId", "l1"))
		require.NoError(t, err)
		assert.Len(t, recs, 2)
	})

	t.Run("numeric field filter", func(t *testing.T) {
		_, err := store.Add(ctx, repository.CollectionRotaAssignments, map[string]any{
			"teamId": "t1", "weekId": "2024-W3", "userId": "u1", "dayIndex": 2, "locationId": "l1",
		})
		require.NoError(t, err)

		recs, err := store.Query(ctx, repository.CollectionRotaAssignments, repository.Eq("dayIndex", "2"))
		require.NoError(t, err)
		assert.Len(t, recs, 1)
	})

	t.Run("update missing", func(t *testing.T) {
		err := store.Update(ctx, repository.CollectionTeamLocations, "missing", map[string]any{"x": 1})
		assert.ErrorIs(t, err, repository.ErrDocumentNotFound)
	})

	t.Run("batch delete", func(t *testing.T) {
		b := store.Batch()
		b.Delete(repository.CollectionTeamLocations, teamLocID)
		b.Delete(repository.CollectionTeamLocations, "missing")
		require.NoError(t, b.Commit(ctx))

		rec, err := store.Get(ctx, repository.CollectionTeamLocations, teamLocID)
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("add if absent under contention", func(t *testing.T) {
		match := []repository.Filter{repository.Eq("userId", "u9"), repository.Eq("teamId", "t9")}
		var wg sync.WaitGroup
		var mu sync.Mutex
		created := 0
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.AddIfAbsent(ctx, repository.CollectionUserTeams, match,
					map[string]any{"userId": "u9", "teamId": "t9"})
				if err == nil {
					mu.Lock()
					created++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, created)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, store.Ping(ctx))
	})
}
