package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/rota-api/internal/cache"
	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/internal/repository"
	"github.com/jwalitptl/rota-api/internal/repository/document"
	"github.com/jwalitptl/rota-api/internal/repository/memory"
	"github.com/jwalitptl/rota-api/internal/service/cascade"
	"github.com/jwalitptl/rota-api/internal/service/event"
	apperrors "github.com/jwalitptl/rota-api/pkg/errors"
)

func newService(t *testing.T) (*Service, *memory.Store, *cache.ListCache) {
	t.Helper()
	store := memory.NewStore()
	svc, listCache := newServiceOn(store, store)
	return svc, store, listCache
}

// newServiceOn runs the cascade engine against engineStore, which may wrap
// store to inject failures.
func newServiceOn(store *memory.Store, engineStore repository.DocumentStore) (*Service, *cache.ListCache) {
	listCache := cache.New(cache.Config{}, nil)
	svc := NewService(Repositories{
		Organizations: document.NewOrganizationRepository(store),
		Hospitals:     document.NewHospitalRepository(store),
		Locations:     document.NewLocationRepository(store),
		Departments:   document.NewDepartmentRepository(store),
		Teams:         document.NewTeamRepository(store),
		Users:         document.NewUserRepository(store),
		Modules:       document.NewModuleRepository(store),
	}, cascade.NewEngine(engineStore, nil), event.NewNotifier(listCache, nil))
	return svc, listCache
}

// queryFailingStore fails every Query against one collection.
type queryFailingStore struct {
	*memory.Store
	collection string
}

func (s *queryFailingStore) Query(ctx context.Context, collection string, filters ...repository.Filter) ([]repository.Record, error) {
	if collection == s.collection {
		return nil, assert.AnError
	}
	return s.Store.Query(ctx, collection, filters...)
}

func ptr[T any](v T) *T { return &v }

func TestDirectory_Hierarchy(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	org, err := svc.CreateOrganization(ctx, &model.CreateOrganizationRequest{Name: "NHS Trust"}, "admin")
	require.NoError(t, err)
	assert.True(t, org.Active)
	assert.Equal(t, "admin", org.CreatedByID)

	_, err = svc.CreateHospital(ctx, &model.CreateHospitalRequest{OrgID: "missing", Name: "St Mary"}, "")
	assert.ErrorIs(t, err, apperrors.NotFoundKind)

	hosp, err := svc.CreateHospital(ctx, &model.CreateHospitalRequest{OrgID: org.ID, Name: "St Mary"}, "")
	require.NoError(t, err)

	loc, err := svc.CreateLocation(ctx, &model.CreateLocationRequest{HospID: hosp.ID, Name: "Ward 1"}, "")
	require.NoError(t, err)
	assert.Equal(t, org.ID, loc.OrgID, "organization derived from hospital")

	_, err = svc.CreateLocation(ctx, &model.CreateLocationRequest{HospID: hosp.ID, OrgID: "other", Name: "Ward 2"}, "")
	assert.ErrorIs(t, err, apperrors.IntegrityKind)

	dep, err := svc.CreateDepartment(ctx, &model.CreateDepartmentRequest{OrgID: org.ID, Name: "ED"}, "")
	require.NoError(t, err)
	team, err := svc.CreateTeam(ctx, &model.CreateTeamRequest{DepID: dep.ID, Name: "Nights"}, "")
	require.NoError(t, err)
	assert.Equal(t, org.ID, team.OrgID)

	teams, err := svc.ListTeams(ctx, dep.ID, "")
	require.NoError(t, err)
	assert.Len(t, teams, 1)

	locs, err := svc.ListLocations(ctx, "", org.ID)
	require.NoError(t, err)
	assert.Len(t, locs, 1)

	err = svc.DeleteHospital(ctx, hosp.ID, "")
	assert.ErrorIs(t, err, apperrors.IntegrityKind)
	err = svc.DeleteOrganization(ctx, org.ID, "")
	assert.ErrorIs(t, err, apperrors.IntegrityKind)
}

func TestDirectory_Update(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	org, err := svc.CreateOrganization(ctx, &model.CreateOrganizationRequest{Name: "Trust"}, "")
	require.NoError(t, err)
	dep, err := svc.CreateDepartment(ctx, &model.CreateDepartmentRequest{OrgID: org.ID, Name: "ED"}, "")
	require.NoError(t, err)

	updated, err := svc.UpdateDepartment(ctx, dep.ID, &model.UpdateDepartmentRequest{Name: ptr("Emergency"), Active: ptr(false)}, "editor")
	require.NoError(t, err)
	assert.Equal(t, "Emergency", updated.Name)
	assert.False(t, updated.Active)
	assert.Equal(t, "editor", updated.UpdatedByID)

	_, err = svc.UpdateDepartment(ctx, dep.ID, &model.UpdateDepartmentRequest{}, "")
	assert.ErrorIs(t, err, apperrors.BadRequestKind)

	_, err = svc.UpdateTeam(ctx, "missing", &model.UpdateTeamRequest{Name: ptr("x")}, "")
	assert.ErrorIs(t, err, apperrors.NotFoundKind)
}

func TestDirectory_DeleteTeamCascades(t *testing.T) {
	ctx := context.Background()
	svc, store, listCache := newService(t)
	org, err := svc.CreateOrganization(ctx, &model.CreateOrganizationRequest{Name: "Trust"}, "")
	require.NoError(t, err)
	dep, err := svc.CreateDepartment(ctx, &model.CreateDepartmentRequest{OrgID: org.ID, Name: "ED"}, "")
	require.NoError(t, err)
	team, err := svc.CreateTeam(ctx, &model.CreateTeamRequest{DepID: dep.ID, Name: "Nights"}, "")
	require.NoError(t, err)

	_, err = store.Add(ctx, repository.CollectionUserTeams, map[string]any{"userId": "u1", "teamId": team.ID, "depId": dep.ID})
	require.NoError(t, err)
	_, err = store.Add(ctx, repository.CollectionTeamLocations, map[string]any{"teamId": team.ID, "locationId": "l1", "depId": dep.ID})
	require.NoError(t, err)
	cache.Store(listCache, repository.CollectionUserTeams, repository.FieldTeamID, team.ID, []model.UserTeam{{ID: "stale"}})

	res, err := svc.DeleteTeam(ctx, team.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total())
	assert.Zero(t, store.Len(repository.CollectionUserTeams))

	_, hit := cache.Lookup[model.UserTeam](listCache, repository.CollectionUserTeams, repository.FieldTeamID, team.ID)
	assert.False(t, hit, "cascade evicts list views")

	_, err = svc.GetTeam(ctx, team.ID)
	assert.ErrorIs(t, err, apperrors.NotFoundKind)

	res, err = svc.DeleteTeam(ctx, team.ID, "admin")
	require.NoError(t, err, "deleting twice is a no-op")
	assert.Zero(t, res.Total())
}

func TestDirectory_DeleteTeamFailurePartWayEvictsCommittedSteps(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc, listCache := newServiceOn(store, &queryFailingStore{Store: store, collection: repository.CollectionUserTeams})

	org, err := svc.CreateOrganization(ctx, &model.CreateOrganizationRequest{Name: "Trust"}, "")
	require.NoError(t, err)
	dep, err := svc.CreateDepartment(ctx, &model.CreateDepartmentRequest{OrgID: org.ID, Name: "ED"}, "")
	require.NoError(t, err)
	team, err := svc.CreateTeam(ctx, &model.CreateTeamRequest{DepID: dep.ID, Name: "Nights"}, "")
	require.NoError(t, err)
	_, err = store.Add(ctx, repository.CollectionTeamLocations, map[string]any{"teamId": team.ID, "locationId": "l1", "depId": dep.ID})
	require.NoError(t, err)
	cache.Store(listCache, repository.CollectionTeamLocations, repository.FieldTeamID, team.ID, []model.TeamLocation{{ID: "cached"}})

	res, err := svc.DeleteTeam(ctx, team.ID, "admin")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCascadeDelete))

	// The team-location step committed before the failure.
	assert.Zero(t, store.Len(repository.CollectionTeamLocations))
	_, hit := cache.Lookup[model.TeamLocation](listCache, repository.CollectionTeamLocations, repository.FieldTeamID, team.ID)
	assert.False(t, hit, "views of committed steps are evicted")

	_, err = svc.GetTeam(ctx, team.ID)
	require.NoError(t, err, "team record survives the failed cascade")
}

func TestDirectory_Users(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	org, err := svc.CreateOrganization(ctx, &model.CreateOrganizationRequest{Name: "Trust"}, "")
	require.NoError(t, err)
	other, err := svc.CreateOrganization(ctx, &model.CreateOrganizationRequest{Name: "Other"}, "")
	require.NoError(t, err)
	dep, err := svc.CreateDepartment(ctx, &model.CreateDepartmentRequest{OrgID: other.ID, Name: "ED"}, "")
	require.NoError(t, err)

	req := &model.CreateUserRequest{OrgID: org.ID, FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Role: model.UserRoleStaff}
	u, err := svc.CreateUser(ctx, req, "")
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", u.DisplayName())

	req.DepartmentID = dep.ID
	_, err = svc.CreateUser(ctx, req, "")
	assert.ErrorIs(t, err, apperrors.IntegrityKind)

	users, err := svc.ListUsers(ctx, org.ID, "")
	require.NoError(t, err)
	assert.Len(t, users, 1)

	res, err := svc.DeleteUser(ctx, u.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total())
}
