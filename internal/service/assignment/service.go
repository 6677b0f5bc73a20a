package assignment

import (
	"context"

	"github.com/jwalitptl/rota-api/internal/cache"
	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/internal/repository"
	"github.com/jwalitptl/rota-api/internal/service/cascade"
	"github.com/jwalitptl/rota-api/internal/service/event"
	apperrors "github.com/jwalitptl/rota-api/pkg/errors"
)

// Repositories groups the stores the service reads and writes.
type Repositories struct {
	DepartmentLocations repository.DepartmentLocationRepository
	TeamLocations       repository.TeamLocationRepository
	UserTeams           repository.UserTeamRepository
	DepartmentModules   repository.DepartmentModuleRepository
	Teams               repository.TeamRepository
	Departments         repository.DepartmentRepository
}

// Service manages the four assignment relations. List reads go through the
// list cache; every mutation invalidates the views of both foreign keys.
type Service struct {
	repos    Repositories
	engine   *cascade.Engine
	cache    *cache.ListCache
	notifier *event.Notifier
}

func NewService(repos Repositories, engine *cascade.Engine, listCache *cache.ListCache, notifier *event.Notifier) *Service {
	return &Service{
		repos:    repos,
		engine:   engine,
		cache:    listCache,
		notifier: notifier,
	}
}

func cachedList[T any](ctx context.Context, c *cache.ListCache, collection, field, id string, load func(context.Context, string) ([]T, error)) ([]T, error) {
	if list, ok := cache.Lookup[T](c, collection, field, id); ok {
		return list, nil
	}
	list, err := load(ctx, id)
	if err != nil {
		return nil, err
	}
	cache.Store(c, collection, field, id, list)
	return list, nil
}

func notFoundIfNil[T any](v *T, err error, resource, id string) (*T, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperrors.NewNotFound(resource, id)
	}
	return v, nil
}

// teamKeys loads the team and reconciles the denormalized department and
// organization ids against it. Caller supplied values must agree with the
// team record.
func (s *Service) teamKeys(ctx context.Context, teamID, depID, orgID string) (string, string, error) {
	team, err := s.repos.Teams.Get(ctx, teamID)
	if err != nil {
		return "", "", err
	}
	if team == nil {
		return "", "", apperrors.NewNotFound("team", teamID)
	}
	if depID != "" && depID != team.DepID {
		return "", "", apperrors.NewIntegrity("team", teamID,
			"dep_id "+depID+" does not match the team's department "+team.DepID)
	}
	if orgID != "" && team.OrgID != "" && orgID != team.OrgID {
		return "", "", apperrors.NewIntegrity("team", teamID,
			"org_id "+orgID+" does not match the team's organization "+team.OrgID)
	}
	if team.OrgID != "" {
		orgID = team.OrgID
	}
	return team.DepID, orgID, nil
}

// Department <-> Location

func (s *Service) ListDepartmentLocationsByDepartment(ctx context.Context, departmentID string) ([]model.DepartmentLocation, error) {
	return cachedList(ctx, s.cache, repository.CollectionDepartmentLocations, repository.FieldDepartmentID, departmentID,
		s.repos.DepartmentLocations.ListByDepartment)
}

func (s *Service) ListDepartmentLocationsByLocation(ctx context.Context, locationID string) ([]model.DepartmentLocation, error) {
	return cachedList(ctx, s.cache, repository.CollectionDepartmentLocations, repository.FieldLocationID, locationID,
		s.repos.DepartmentLocations.ListByLocation)
}

func (s *Service) GetDepartmentLocation(ctx context.Context, id string) (*model.DepartmentLocation, error) {
	dl, err := s.repos.DepartmentLocations.Get(ctx, id)
	return notFoundIfNil(dl, err, repository.CollectionDepartmentLocations, id)
}

func (s *Service) CreateDepartmentLocation(ctx context.Context, req *model.CreateDepartmentLocationRequest, actor string) (*model.DepartmentLocation, error) {
	dl, err := s.repos.DepartmentLocations.Create(ctx, model.DepartmentLocation{
		DepartmentID: req.DepartmentID,
		LocationID:   req.LocationID,
	}, actor)
	if err != nil {
		return nil, err
	}
	s.notifier.Changed(ctx, repository.CollectionDepartmentLocations, model.ChangeCreate, dl.ID, map[string]string{
		repository.FieldDepartmentID: dl.DepartmentID,
		repository.FieldLocationID:   dl.LocationID,
	}, actor)
	return dl, nil
}

// DeleteDepartmentLocation removes the link and the team-location links that
// depend on it.
func (s *Service) DeleteDepartmentLocation(ctx context.Context, id, actor string) (*cascade.Result, error) {
	res, err := s.engine.DeleteDepartmentLocation(ctx, id)
	if res.Total() > 0 {
		s.notifier.CollectionsChanged(ctx, res.Collections(), actor)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Team <-> Location

type TeamLocationFilter struct {
	TeamID     string
	LocationID string
	DepID      string
}

func (s *Service) ListTeamLocations(ctx context.Context, f TeamLocationFilter) ([]model.TeamLocation, error) {
	switch {
	case f.DepID != "" && f.LocationID != "":
		return s.repos.TeamLocations.ListByDepartmentLocation(ctx, f.DepID, f.LocationID)
	case f.TeamID != "":
		return cachedList(ctx, s.cache, repository.CollectionTeamLocations, repository.FieldTeamID, f.TeamID,
			s.repos.TeamLocations.ListByTeam)
	case f.LocationID != "":
		return cachedList(ctx, s.cache, repository.CollectionTeamLocations, repository.FieldLocationID, f.LocationID,
			s.repos.TeamLocations.ListByLocation)
	case f.DepID != "":
		return cachedList(ctx, s.cache, repository.CollectionTeamLocations, repository.FieldDepID, f.DepID,
			s.repos.TeamLocations.ListByDepartment)
	default:
		return nil, apperrors.NewBadRequest("one of team_id, location_id or dep_id is required", nil)
	}
}

func (s *Service) GetTeamLocation(ctx context.Context, id string) (*model.TeamLocation, error) {
	tl, err := s.repos.TeamLocations.Get(ctx, id)
	return notFoundIfNil(tl, err, repository.CollectionTeamLocations, id)
}

func (s *Service) CreateTeamLocation(ctx context.Context, req *model.CreateTeamLocationRequest, actor string) (*model.TeamLocation, error) {
	depID, orgID, err := s.teamKeys(ctx, req.TeamID, req.DepID, req.OrgID)
	if err != nil {
		return nil, err
	}
	tl, err := s.repos.TeamLocations.Create(ctx, model.TeamLocation{
		TeamID:     req.TeamID,
		LocationID: req.LocationID,
		DepID:      depID,
		OrgID:      orgID,
	}, actor)
	if err != nil {
		return nil, err
	}
	s.notifier.Changed(ctx, repository.CollectionTeamLocations, model.ChangeCreate, tl.ID, teamLocationKeys(tl), actor)
	return tl, nil
}

func (s *Service) DeleteTeamLocation(ctx context.Context, id, actor string) error {
	tl, err := s.repos.TeamLocations.Delete(ctx, id)
	if err != nil {
		return err
	}
	if tl != nil {
		s.notifier.Changed(ctx, repository.CollectionTeamLocations, model.ChangeDelete, id, teamLocationKeys(tl), actor)
	}
	return nil
}

func teamLocationKeys(tl *model.TeamLocation) map[string]string {
	return map[string]string{
		repository.FieldTeamID:     tl.TeamID,
		repository.FieldLocationID: tl.LocationID,
		repository.FieldDepID:      tl.DepID,
	}
}

// User <-> Team

type UserTeamFilter struct {
	UserID string
	TeamID string
	DepID  string
}

func (s *Service) ListUserTeams(ctx context.Context, f UserTeamFilter) ([]model.UserTeam, error) {
	switch {
	case f.UserID != "":
		return cachedList(ctx, s.cache, repository.CollectionUserTeams, repository.FieldUserID, f.UserID,
			s.repos.UserTeams.ListByUser)
	case f.TeamID != "":
		return cachedList(ctx, s.cache, repository.CollectionUserTeams, repository.FieldTeamID, f.TeamID,
			s.repos.UserTeams.ListByTeam)
	case f.DepID != "":
		return cachedList(ctx, s.cache, repository.CollectionUserTeams, repository.FieldDepID, f.DepID,
			s.repos.UserTeams.ListByDepartment)
	default:
		return nil, apperrors.NewBadRequest("one of user_id, team_id or dep_id is required", nil)
	}
}

func (s *Service) GetUserTeam(ctx context.Context, id string) (*model.UserTeam, error) {
	ut, err := s.repos.UserTeams.Get(ctx, id)
	return notFoundIfNil(ut, err, repository.CollectionUserTeams, id)
}

func (s *Service) CreateUserTeam(ctx context.Context, req *model.CreateUserTeamRequest, actor string) (*model.UserTeam, error) {
	depID, orgID, err := s.teamKeys(ctx, req.TeamID, req.DepID, req.OrgID)
	if err != nil {
		return nil, err
	}
	ut, err := s.repos.UserTeams.Create(ctx, model.UserTeam{
		UserID:    req.UserID,
		TeamID:    req.TeamID,
		DepID:     depID,
		OrgID:     orgID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}, actor)
	if err != nil {
		return nil, err
	}
	s.notifier.Changed(ctx, repository.CollectionUserTeams, model.ChangeCreate, ut.ID, userTeamKeys(ut), actor)
	return ut, nil
}

func (s *Service) UpdateUserTeam(ctx context.Context, id string, req *model.UpdateUserTeamRequest, actor string) (*model.UserTeam, error) {
	ut, err := s.repos.UserTeams.Update(ctx, id, *req, actor)
	if err != nil {
		return nil, err
	}
	s.notifier.Changed(ctx, repository.CollectionUserTeams, model.ChangeUpdate, ut.ID, userTeamKeys(ut), actor)
	return ut, nil
}

func (s *Service) DeleteUserTeam(ctx context.Context, id, actor string) error {
	ut, err := s.repos.UserTeams.Delete(ctx, id)
	if err != nil {
		return err
	}
	if ut != nil {
		s.notifier.Changed(ctx, repository.CollectionUserTeams, model.ChangeDelete, id, userTeamKeys(ut), actor)
	}
	return nil
}

func userTeamKeys(ut *model.UserTeam) map[string]string {
	return map[string]string{
		repository.FieldUserID: ut.UserID,
		repository.FieldTeamID: ut.TeamID,
		repository.FieldDepID:  ut.DepID,
	}
}

// Department <-> Module

type DepartmentModuleFilter struct {
	DepID    string
	ModuleID string
}

func (s *Service) ListDepartmentModules(ctx context.Context, f DepartmentModuleFilter) ([]model.DepartmentModule, error) {
	switch {
	case f.DepID != "":
		return cachedList(ctx, s.cache, repository.CollectionDepartmentModules, repository.FieldDepID, f.DepID,
			s.repos.DepartmentModules.ListByDepartment)
	case f.ModuleID != "":
		return cachedList(ctx, s.cache, repository.CollectionDepartmentModules, repository.FieldModuleID, f.ModuleID,
			s.repos.DepartmentModules.ListByModule)
	default:
		return nil, apperrors.NewBadRequest("one of dep_id or module_id is required", nil)
	}
}

func (s *Service) GetDepartmentModule(ctx context.Context, id string) (*model.DepartmentModule, error) {
	dm, err := s.repos.DepartmentModules.Get(ctx, id)
	return notFoundIfNil(dm, err, repository.CollectionDepartmentModules, id)
}

func (s *Service) CreateDepartmentModule(ctx context.Context, req *model.CreateDepartmentModuleRequest, actor string) (*model.DepartmentModule, error) {
	orgID := req.OrgID
	if dep, err := s.repos.Departments.Get(ctx, req.DepID); err != nil {
		return nil, err
	} else if dep != nil && dep.OrgID != "" {
		if orgID != "" && orgID != dep.OrgID {
			return nil, apperrors.NewIntegrity("department", req.DepID,
				"org_id "+orgID+" does not match the department's organization "+dep.OrgID)
		}
		orgID = dep.OrgID
	}

	dm, err := s.repos.DepartmentModules.Create(ctx, model.DepartmentModule{
		DepID:    req.DepID,
		ModuleID: req.ModuleID,
		OrgID:    orgID,
	}, actor)
	if err != nil {
		return nil, err
	}
	s.notifier.Changed(ctx, repository.CollectionDepartmentModules, model.ChangeCreate, dm.ID, departmentModuleKeys(dm), actor)
	return dm, nil
}

func (s *Service) DeleteDepartmentModule(ctx context.Context, id, actor string) error {
	dm, err := s.repos.DepartmentModules.Delete(ctx, id)
	if err != nil {
		return err
	}
	if dm != nil {
		s.notifier.Changed(ctx, repository.CollectionDepartmentModules, model.ChangeDelete, id, departmentModuleKeys(dm), actor)
	}
	return nil
}

func departmentModuleKeys(dm *model.DepartmentModule) map[string]string {
	return map[string]string{
		repository.FieldDepID:    dm.DepID,
		repository.FieldModuleID: dm.ModuleID,
	}
}
