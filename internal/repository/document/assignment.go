package document

import (
	"context"

	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/internal/repository"
	"github.com/jwalitptl/rota-api/internal/repository/mapper"
	apperrors "github.com/jwalitptl/rota-api/pkg/errors"
)

type departmentLocationRepository struct {
	c collection[model.DepartmentLocation]
}

func NewDepartmentLocationRepository(store repository.DocumentStore) repository.DepartmentLocationRepository {
	return &departmentLocationRepository{
		c: newCollection[model.DepartmentLocation](store, repository.CollectionDepartmentLocations, model.KindDepartmentLocation),
	}
}

func (r *departmentLocationRepository) ListByDepartment(ctx context.Context, departmentID string) ([]model.DepartmentLocation, error) {
	return r.c.list(ctx, repository.Eq(repository.FieldDepartmentID, departmentID))
}

func (r *departmentLocationRepository) ListByLocation(ctx context.Context, locationID string) ([]model.DepartmentLocation, error) {
	return r.c.list(ctx, repository.Eq(repository.FieldLocationID, locationID))
}

func (r *departmentLocationRepository) Get(ctx context.Context, id string) (*model.DepartmentLocation, error) {
	return r.c.get(ctx, id)
}

func (r *departmentLocationRepository) CheckExists(ctx context.Context, departmentID, locationID string) (bool, error) {
	return r.c.exists(ctx, departmentLocationMatch(departmentID, locationID)...)
}

func (r *departmentLocationRepository) Create(ctx context.Context, in model.DepartmentLocation, actor string) (*model.DepartmentLocation, error) {
	if in.DepartmentID == "" || in.LocationID == "" {
		return nil, apperrors.NewBadRequest("department_id and location_id are required", nil)
	}
	fields := stamp(mapper.DepartmentLocationFields(in), actor)
	return r.c.createUnique(ctx, departmentLocationMatch(in.DepartmentID, in.LocationID), fields,
		"department-location", in.DepartmentID, in.LocationID)
}

func (r *departmentLocationRepository) Delete(ctx context.Context, id string) (*model.DepartmentLocation, error) {
	return r.c.remove(ctx, id)
}

func departmentLocationMatch(departmentID, locationID string) []repository.Filter {
	return []repository.Filter{
		repository.Eq(repository.FieldDepartmentID, departmentID),
		repository.Eq(repository.FieldLocationID, locationID),
	}
}

type teamLocationRepository struct {
	c collection[model.TeamLocation]
}

func NewTeamLocationRepository(store repository.DocumentStore) repository.TeamLocationRepository {
	return &teamLocationRepository{
		c: newCollection[model.TeamLocation](store, repository.CollectionTeamLocations, model.KindTeamLocation),
	}
}

func (r *teamLocationRepository) ListByTeam(ctx context.Context, teamID string) ([]model.TeamLocation, error) {
	return r.c.list(ctx, repository.Eq(repository.FieldTeamID, teamID))
}

func (r *teamLocationRepository) ListByLocation(ctx context.Context, locationID string) ([]model.TeamLocation, error) {
	return r.c.list(ctx, repository.Eq(repository.FieldLocationID, locationID))
}

func (r *teamLocationRepository) ListByDepartment(ctx context.Context, depID string) ([]model.TeamLocation, error) {
	return r.c.list(ctx, repository.Eq(repository.FieldDepID, depID))
}

func (r *teamLocationRepository) ListByDepartmentLocation(ctx context.Context, depID, locationID string) ([]model.TeamLocation, error) {
	return r.c.list(ctx,
		repository.Eq(repository.FieldDepID, depID),
		repository.Eq(repository.FieldLocationID, locationID),
	)
}

func (r *teamLocationRepository) Get(ctx context.Context, id string) (*model.TeamLocation, error) {
	return r.c.get(ctx, id)
}

func (r *teamLocationRepository) CheckExists(ctx context.Context, teamID, locationID string) (bool, error) {
	return r.c.exists(ctx, teamLocationMatch(teamID, locationID)...)
}

func (r *teamLocationRepository) Create(ctx context.Context, in model.TeamLocation, actor string) (*model.TeamLocation, error) {
	if in.TeamID == "" || in.LocationID == "" {
		return nil, apperrors.NewBadRequest("team_id and location_id are required", nil)
	}
	fields := stamp(mapper.TeamLocationFields(in), actor)
	return r.c.createUnique(ctx, teamLocationMatch(in.TeamID, in.LocationID), fields,
		"team-location", in.TeamID, in.LocationID)
}

func (r *teamLocationRepository) Delete(ctx context.Context, id string) (*model.TeamLocation, error) {
	return r.c.remove(ctx, id)
}

func teamLocationMatch(teamID, locationID string) []repository.Filter {
	return []repository.Filter{
		repository.Eq(repository.FieldTeamID, teamID),
		repository.Eq(repository.FieldLocationID, locationID),
	}
}

type userTeamRepository struct {
	c collection[model.UserTeam]
}

func NewUserTeamRepository(store repository.DocumentStore) repository.UserTeamRepository {
	return &userTeamRepository{
		c: newCollection[model.UserTeam](store, repository.CollectionUserTeams, model.KindUserTeam),
	}
}

func (r *userTeamRepository) ListByUser(ctx context.Context, userID string) ([]model.UserTeam, error) {
	return r.c.list(ctx, repository.Eq(repository.FieldUserID, userID))
}

func (r *userTeamRepository) ListByTeam(ctx context.Context, teamID string) ([]model.UserTeam, error) {
	return r.c.list(ctx, repository.Eq(repository.FieldTeamID, teamID))
}

func (r *userTeamRepository) ListByDepartment(ctx context.Context, depID string) ([]model.UserTeam, error) {
	return r.c.list(ctx, repository.Eq(repository.FieldDepID, depID))
}

func (r *userTeamRepository) Get(ctx context.Context, id string) (*model.UserTeam, error) {
	return r.c.get(ctx, id)
}

func (r *userTeamRepository) CheckExists(ctx context.Context, userID, teamID string) (bool, error) {
	return r.c.exists(ctx, userTeamMatch(userID, teamID)...)
}

func (r *userTeamRepository) Create(ctx context.Context, in model.UserTeam, actor string) (*model.UserTeam, error) {
	if in.UserID == "" || in.TeamID == "" {
		return nil, apperrors.NewBadRequest("user_id and team_id are required", nil)
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, apperrors.NewBadRequest("end_date must not be before start_date", nil)
	}
	fields := stamp(mapper.UserTeamFields(in), actor)
	return r.c.createUnique(ctx, userTeamMatch(in.UserID, in.TeamID), fields,
		"user-team", in.UserID, in.TeamID)
}

// Update changes the membership date range. Only the fields named by patch
// are written.
func (r *userTeamRepository) Update(ctx context.Context, id string, patch model.UpdateUserTeamRequest, actor string) (*model.UserTeam, error) {
	existing, err := r.c.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.NewNotFound(repository.CollectionUserTeams, id)
	}

	start, end := existing.StartDate, existing.EndDate
	changes := map[string]any{}
	switch {
	case patch.ClearStartDate:
		start = nil
		changes["startDate"] = nil
	case patch.StartDate != nil:
		start = patch.StartDate
		changes["startDate"] = mapper.TimeField(patch.StartDate)
	}
	switch {
	case patch.ClearEndDate:
		end = nil
		changes["endDate"] = nil
	case patch.EndDate != nil:
		end = patch.EndDate
		changes["endDate"] = mapper.TimeField(patch.EndDate)
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, apperrors.NewBadRequest("end_date must not be before start_date", nil)
	}

	return r.c.update(ctx, id, changes, actor)
}

func (r *userTeamRepository) Delete(ctx context.Context, id string) (*model.UserTeam, error) {
	return r.c.remove(ctx, id)
}

func userTeamMatch(userID, teamID string) []repository.Filter {
	return []repository.Filter{
		repository.Eq(repository.FieldUserID, userID),
		repository.Eq(repository.FieldTeamID, teamID),
	}
}

type departmentModuleRepository struct {
	c collection[model.DepartmentModule]
}

func NewDepartmentModuleRepository(store repository.DocumentStore) repository.DepartmentModuleRepository {
	return &departmentModuleRepository{
		c: newCollection[model.DepartmentModule](store, repository.CollectionDepartmentModules, model.KindDepartmentModule),
	}
}

func (r *departmentModuleRepository) ListByDepartment(ctx context.Context, depID string) ([]model.DepartmentModule, error) {
	return r.c.list(ctx, repository.Eq(repository.FieldDepID, depID))
}

func (r *departmentModuleRepository) ListByModule(ctx context.Context, moduleID string) ([]model.DepartmentModule, error) {
	return r.c.list(ctx, repository.Eq(repository.FieldModuleID, moduleID))
}

func (r *departmentModuleRepository) Get(ctx context.Context, id string) (*model.DepartmentModule, error) {
	return r.c.get(ctx, id)
}

func (r *departmentModuleRepository) CheckExists(ctx context.Context, depID, moduleID string) (bool, error) {
	return r.c.exists(ctx, departmentModuleMatch(depID, moduleID)...)
}

func (r *departmentModuleRepository) Create(ctx context.Context, in model.DepartmentModule, actor string) (*model.DepartmentModule, error) {
	if in.DepID == "" || in.ModuleID == "" {
		return nil, apperrors.NewBadRequest("dep_id and module_id are required", nil)
	}
	fields := stamp(mapper.DepartmentModuleFields(in), actor)
	return r.c.createUnique(ctx, departmentModuleMatch(in.DepID, in.ModuleID), fields,
		"department-module", in.DepID, in.ModuleID)
}

func (r *departmentModuleRepository) Delete(ctx context.Context, id string) (*model.DepartmentModule, error) {
	return r.c.remove(ctx, id)
}

func departmentModuleMatch(depID, moduleID string) []repository.Filter {
	return []repository.Filter{
		repository.Eq(repository.FieldDepID, depID),
		repository.Eq(repository.FieldModuleID, moduleID),
	}
}
