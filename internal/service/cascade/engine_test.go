package cascade

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/rota-api/internal/repository"
	"github.com/jwalitptl/rota-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/rota-api/pkg/errors"
	"github.com/jwalitptl/rota-api/pkg/metrics"
)

// faultyStore fails selected operations without touching the wrapped store.
type faultyStore struct {
	*memory.Store
	failCommit   bool
	failDeleteOf string
	failQueryOf  string
}

func (s *faultyStore) Batch() repository.Batch {
	if s.failCommit {
		return &failingBatch{}
	}
	return s.Store.Batch()
}

func (s *faultyStore) Delete(ctx context.Context, collection, id string) error {
	if collection == s.failDeleteOf {
		return assert.AnError
	}
	return s.Store.Delete(ctx, collection, id)
}

func (s *faultyStore) Query(ctx context.Context, collection string, filters ...repository.Filter) ([]repository.Record, error) {
	if collection == s.failQueryOf {
		return nil, assert.AnError
	}
	return s.Store.Query(ctx, collection, filters...)
}

type failingBatch struct{ n int }

func (b *failingBatch) Delete(string, string)       { b.n++ }
func (b *failingBatch) Len() int                     { return b.n }
func (b *failingBatch) Commit(context.Context) error { return assert.AnError }

func add(t *testing.T, s repository.DocumentStore, collection string, fields map[string]any) string {
	t.Helper()
	id, err := s.Add(context.Background(), collection, fields)
	require.NoError(t, err)
	return id
}

func set(t *testing.T, s repository.DocumentStore, collection, id string, fields map[string]any) {
	t.Helper()
	require.NoError(t, s.Set(context.Background(), collection, id, fields))
}

// seedTeam creates team t1 in department d1 with three location links and two
// members, plus an unrelated team t2.
func seedTeam(t *testing.T, s repository.DocumentStore) {
	set(t, s, repository.CollectionTeams, "t1", map[string]any{"depId": "d1", "name": "Nights"})
	set(t, s, repository.CollectionTeams, "t2", map[string]any{"depId": "d1", "name": "Days"})
	for _, loc := range []string{"l1", "l2", "l3"} {
		add(t, s, repository.CollectionTeamLocations, map[string]any{"teamId": "t1", "locationId": loc, "depId": "d1"})
	}
	add(t, s, repository.CollectionTeamLocations, map[string]any{"teamId": "t2", "locationId": "l1", "depId": "d1"})
	add(t, s, repository.CollectionUserTeams, map[string]any{"userId": "u1", "teamId": "t1", "depId": "d1"})
	add(t, s, repository.CollectionUserTeams, map[string]any{"userId": "u2", "teamId": "t1", "depId": "d1"})
	add(t, s, repository.CollectionUserTeams, map[string]any{"userId": "u1", "teamId": "t2", "depId": "d1"})
	add(t, s, repository.CollectionRotaAssignments, map[string]any{
		"teamId": "t1", "userId": "u1", "weekId": "2024-W3", "dayIndex": 0, "locationId": "l1",
	})
}

func count(t *testing.T, s repository.DocumentStore, collection string, filters ...repository.Filter) int {
	t.Helper()
	recs, err := s.Query(context.Background(), collection, filters...)
	require.NoError(t, err)
	return len(recs)
}

func TestDeleteTeam_RemovesAllDependents(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedTeam(t, store)
	m := metrics.NewNop()
	engine := NewEngine(store, m)

	res, err := engine.DeleteTeam(ctx, "t1")
	require.NoError(t, err)

	byTeam := repository.Eq(repository.FieldTeamID, "t1")
	assert.Zero(t, count(t, store, repository.CollectionTeamLocations, byTeam))
	assert.Zero(t, count(t, store, repository.CollectionUserTeams, byTeam))

	team, err := store.Get(ctx, repository.CollectionTeams, "t1")
	require.NoError(t, err)
	assert.Nil(t, team)

	assert.Equal(t, 1, count(t, store, repository.CollectionTeamLocations), "other team untouched")
	assert.Equal(t, 1, count(t, store, repository.CollectionUserTeams), "other team untouched")
	assert.Equal(t, 1, count(t, store, repository.CollectionRotaAssignments), "rota history kept")

	assert.Equal(t, map[string]int{
		repository.CollectionTeamLocations: 3,
		repository.CollectionUserTeams:     2,
		repository.CollectionTeams:         1,
	}, res.Deleted)
	assert.Equal(t, 6, res.Total())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CascadeOperations.WithLabelValues("team", "ok")))
}

func TestDeleteTeam_AbsentTeamRecord(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	add(t, store, repository.CollectionUserTeams, map[string]any{"userId": "u1", "teamId": "ghost"})

	res, err := NewEngine(store, nil).DeleteTeam(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted[repository.CollectionUserTeams])
	assert.Zero(t, count(t, store, repository.CollectionUserTeams))

	res, err = NewEngine(store, nil).DeleteTeam(ctx, "never-existed")
	require.NoError(t, err)
	assert.Zero(t, res.Total())
}

func TestDeleteTeam_BatchFailureIsAtomic(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	seedTeam(t, inner)
	store := &faultyStore{Store: inner, failCommit: true}

	_, err := NewEngine(store, nil).DeleteTeam(ctx, "t1")
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCascadeDelete, appErr.Code)
	assert.Equal(t, "t1", appErr.ID)
	assert.Equal(t, StepTeamLocations, appErr.Step)
	assert.False(t, appErr.Inconsistent)
	assert.ErrorIs(t, err, assert.AnError)

	assert.Equal(t, 4, count(t, inner, repository.CollectionTeamLocations), "nothing deleted")
	assert.Equal(t, 3, count(t, inner, repository.CollectionUserTeams), "later steps not run")
}

func TestDeleteTeam_RecordFailureIsInconsistent(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	seedTeam(t, inner)
	m := metrics.NewNop()
	store := &faultyStore{Store: inner, failDeleteOf: repository.CollectionTeams}

	res, err := NewEngine(store, m).DeleteTeam(ctx, "t1")
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, map[string]int{
		repository.CollectionTeamLocations: 3,
		repository.CollectionUserTeams:     2,
	}, res.Deleted, "committed steps are reported")

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, StepTeamRecord, appErr.Step)
	assert.True(t, appErr.Inconsistent)

	byTeam := repository.Eq(repository.FieldTeamID, "t1")
	assert.Zero(t, count(t, inner, repository.CollectionTeamLocations, byTeam))
	assert.Zero(t, count(t, inner, repository.CollectionUserTeams, byTeam))
	team, err := inner.Get(ctx, repository.CollectionTeams, "t1")
	require.NoError(t, err)
	assert.NotNil(t, team, "team row remains")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CascadeOperations.WithLabelValues("team", "inconsistent")))
}

func TestDeleteTeam_QueryFailure(t *testing.T) {
	inner := memory.NewStore()
	seedTeam(t, inner)
	store := &faultyStore{Store: inner, failQueryOf: repository.CollectionUserTeams}

	res, err := NewEngine(store, nil).DeleteTeam(context.Background(), "t1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.CascadeDeleteKind)
	assert.ErrorIs(t, err, apperrors.QueryKind)

	appErr, _ := apperrors.As(err)
	assert.Equal(t, StepUserTeams, appErr.Step)

	require.NotNil(t, res)
	assert.Equal(t, []string{repository.CollectionTeamLocations}, res.Collections())
	assert.Equal(t, 3, res.Total())
	assert.Equal(t, 1, count(t, inner, repository.CollectionTeamLocations), "only t2's link remains")
}

func TestDeleteDepartmentLocation(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, s repository.DocumentStore) string {
		id := add(t, s, repository.CollectionDepartmentLocations, map[string]any{"departmentId": "d1", "locationId": "l1"})
		add(t, s, repository.CollectionDepartmentLocations, map[string]any{"departmentId": "d1", "locationId": "l2"})
		add(t, s, repository.CollectionTeamLocations, map[string]any{"teamId": "t1", "locationId": "l1", "depId": "d1"})
		add(t, s, repository.CollectionTeamLocations, map[string]any{"teamId": "t2", "locationId": "l1", "depId": "d1"})
		add(t, s, repository.CollectionTeamLocations, map[string]any{"teamId": "t1", "locationId": "l2", "depId": "d1"})
		add(t, s, repository.CollectionTeamLocations, map[string]any{"teamId": "t9", "locationId": "l1", "depId": "d9"})
		return id
	}

	t.Run("removes matching team links with the parent", func(t *testing.T) {
		store := memory.NewStore()
		id := seed(t, store)

		res, err := NewEngine(store, nil).DeleteDepartmentLocation(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Deleted[repository.CollectionTeamLocations])
		assert.Equal(t, 1, res.Deleted[repository.CollectionDepartmentLocations])

		assert.Equal(t, 1, count(t, store, repository.CollectionDepartmentLocations))
		assert.Equal(t, 2, count(t, store, repository.CollectionTeamLocations))
		assert.Zero(t, count(t, store, repository.CollectionTeamLocations,
			repository.Eq("depId", "d1"), repository.Eq("locationId", "l1")))
	})

	t.Run("absent is success", func(t *testing.T) {
		res, err := NewEngine(memory.NewStore(), nil).DeleteDepartmentLocation(ctx, "missing")
		require.NoError(t, err)
		assert.Zero(t, res.Total())
	})

	t.Run("missing keys is an integrity error", func(t *testing.T) {
		store := memory.NewStore()
		id := add(t, store, repository.CollectionDepartmentLocations, map[string]any{"departmentId": "d1"})

		_, err := NewEngine(store, nil).DeleteDepartmentLocation(ctx, id)
		assert.ErrorIs(t, err, apperrors.IntegrityKind)
		assert.Equal(t, 1, count(t, store, repository.CollectionDepartmentLocations))
	})

	t.Run("commit failure leaves everything", func(t *testing.T) {
		inner := memory.NewStore()
		id := seed(t, inner)

		_, err := NewEngine(&faultyStore{Store: inner, failCommit: true}, nil).DeleteDepartmentLocation(ctx, id)
		require.Error(t, err)
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCascadeDelete, appErr.Code)
		assert.Equal(t, id, appErr.ID)
		assert.Equal(t, 2, count(t, inner, repository.CollectionDepartmentLocations))
		assert.Equal(t, 4, count(t, inner, repository.CollectionTeamLocations))
	})
}

func TestDeleteLocation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	set(t, store, repository.CollectionLocations, "l1", map[string]any{"hospId": "h1", "name": "Ward 1"})
	add(t, store, repository.CollectionDepartmentLocations, map[string]any{"departmentId": "d1", "locationId": "l1"})
	add(t, store, repository.CollectionTeamLocations, map[string]any{"teamId": "t1", "locationId": "l1"})
	add(t, store, repository.CollectionTeamLocations, map[string]any{"teamId": "t1", "locationId": "l2"})

	res, err := NewEngine(store, nil).DeleteLocation(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, []string{
		repository.CollectionDepartmentLocations,
		repository.CollectionTeamLocations,
		repository.CollectionLocations,
	}, res.Collections())
	assert.Zero(t, count(t, store, repository.CollectionDepartmentLocations))
	assert.Equal(t, 1, count(t, store, repository.CollectionTeamLocations))
}

func TestDeleteDepartment(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedTeam(t, store)
	set(t, store, repository.CollectionDepartments, "d1", map[string]any{"name": "ED"})
	set(t, store, repository.CollectionTeams, "t3", map[string]any{"depId": "d2", "name": "Other"})
	add(t, store, repository.CollectionDepartmentLocations, map[string]any{"departmentId": "d1", "locationId": "l1"})
	add(t, store, repository.CollectionDepartmentModules, map[string]any{"depId": "d1", "moduleId": "rota"})
	add(t, store, repository.CollectionTeamLocations, map[string]any{"teamId": "gone", "locationId": "l5", "depId": "d1"})

	res, err := NewEngine(store, nil).DeleteDepartment(ctx, "d1")
	require.NoError(t, err)

	assert.Equal(t, 2, res.Deleted[repository.CollectionTeams])
	assert.Equal(t, 5, res.Deleted[repository.CollectionTeamLocations])
	assert.Equal(t, 3, res.Deleted[repository.CollectionUserTeams])
	assert.Equal(t, 1, res.Deleted[repository.CollectionDepartmentModules])
	assert.Equal(t, 1, res.Deleted[repository.CollectionDepartments])

	assert.Equal(t, 1, count(t, store, repository.CollectionTeams), "other department's team kept")
	assert.Zero(t, count(t, store, repository.CollectionTeamLocations))
	assert.Zero(t, count(t, store, repository.CollectionDepartmentLocations))
}

func TestDeleteUserAndModule(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedTeam(t, store)
	set(t, store, repository.CollectionUsers, "u1", map[string]any{"orgId": "o1", "lastName": "Lee"})
	set(t, store, repository.CollectionModules, "rota", map[string]any{"name": "rota"})
	add(t, store, repository.CollectionDepartmentModules, map[string]any{"depId": "d1", "moduleId": "rota"})
	add(t, store, repository.CollectionDepartmentModules, map[string]any{"depId": "d2", "moduleId": "rota"})
	engine := NewEngine(store, nil)

	res, err := engine.DeleteUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Deleted[repository.CollectionUserTeams])
	assert.Equal(t, 1, res.Deleted[repository.CollectionUsers])
	assert.Equal(t, 1, count(t, store, repository.CollectionUserTeams))
	assert.Equal(t, 1, count(t, store, repository.CollectionRotaAssignments), "rota history kept")

	res, err = engine.DeleteModule(ctx, "rota")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total())
	assert.Zero(t, count(t, store, repository.CollectionDepartmentModules))
}
