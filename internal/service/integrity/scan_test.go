package integrity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/rota-api/internal/repository"
	"github.com/jwalitptl/rota-api/internal/repository/memory"
)

func TestScan(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := memory.NewStore(memory.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	add := func(collection string, fields map[string]any) string {
		id, err := store.Add(ctx, collection, fields)
		require.NoError(t, err)
		return id
	}

	add(repository.CollectionTeams, map[string]any{"depId": "d1", "name": "Nights"})
	bad := add(repository.CollectionTeams, map[string]any{"name": "No department"})
	orig := add(repository.CollectionUserTeams, map[string]any{"userId": "u1", "teamId": "t1"})
	dup := add(repository.CollectionUserTeams, map[string]any{"userId": "u1", "teamId": "t1"})
	add(repository.CollectionUserTeams, map[string]any{"userId": "u1", "teamId": "t2"})
	add(repository.CollectionRotaAssignments, map[string]any{
		"weekId": "2024-W3", "teamId": "t1", "userId": "u1", "dayIndex": 2, "locationId": "A",
	})
	day := add(repository.CollectionRotaAssignments, map[string]any{
		"weekId": "2024-W3", "teamId": "t1", "userId": "u1", "dayIndex": 9, "locationId": "A",
	})
	week := add(repository.CollectionRotaAssignments, map[string]any{
		"weekId": "2024-W60", "teamId": "t1", "userId": "u1", "dayIndex": 0, "locationId": "A",
	})

	report, err := NewScanner(store).Scan(ctx)
	require.NoError(t, err)
	assert.False(t, report.Clean())
	assert.Equal(t, 2, report.Scanned[repository.CollectionTeams])
	assert.Equal(t, 3, report.Scanned[repository.CollectionRotaAssignments])
	assert.Zero(t, report.Scanned[repository.CollectionModules])

	byID := map[string]Problem{}
	for _, p := range report.Problems {
		byID[p.ID] = p
	}
	require.Len(t, byID, 4)
	assert.Equal(t, ProblemMalformed, byID[bad].Kind)
	assert.Contains(t, byID[bad].Detail, "depId")
	assert.Equal(t, ProblemDuplicate, byID[dup].Kind)
	assert.Contains(t, byID[dup].Detail, orig)
	assert.Equal(t, ProblemOutOfRange, byID[day].Kind)
	assert.Equal(t, ProblemOutOfRange, byID[week].Kind)
}

func TestScan_EmptyStoreIsClean(t *testing.T) {
	report, err := NewScanner(memory.NewStore()).Scan(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Len(t, report.Scanned, len(collections))
}
