// Package directory manages the master data: organizations, hospitals,
// locations, departments, teams, users and modules.
package directory

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/internal/repository"
	"github.com/jwalitptl/rota-api/internal/service/cascade"
	"github.com/jwalitptl/rota-api/internal/service/event"
	apperrors "github.com/jwalitptl/rota-api/pkg/errors"
)

type Repositories struct {
	Organizations repository.OrganizationRepository
	Hospitals     repository.HospitalRepository
	Locations     repository.LocationRepository
	Departments   repository.DepartmentRepository
	Teams         repository.TeamRepository
	Users         repository.UserRepository
	Modules       repository.ModuleRepository
}

type Service struct {
	repos    Repositories
	engine   *cascade.Engine
	notifier *event.Notifier
}

func NewService(repos Repositories, engine *cascade.Engine, notifier *event.Notifier) *Service {
	return &Service{repos: repos, engine: engine, notifier: notifier}
}

// patch collects the non-nil fields of an update request under their
// storage keys.
type patch map[string]any

func (p patch) str(key string, v *string) patch {
	if v != nil {
		p[key] = *v
	}
	return p
}

func (p patch) boolean(key string, v *bool) patch {
	if v != nil {
		p[key] = *v
	}
	return p
}

func activeOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func get[T any](ctx context.Context, repo repository.Directory[T], resource, id string) (*T, error) {
	v, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperrors.NewNotFound(resource, id)
	}
	return v, nil
}

func update[T any](ctx context.Context, repo repository.Directory[T], id string, changes patch, actor string) (*T, error) {
	if len(changes) == 0 {
		return nil, apperrors.NewBadRequest("no fields to update", nil)
	}
	return repo.Update(ctx, id, changes, actor)
}

// eqIfSet builds equality filters, skipping blank values.
func eqIfSet(pairs ...string) []repository.Filter {
	var filters []repository.Filter
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			filters = append(filters, repository.Eq(pairs[i], pairs[i+1]))
		}
	}
	return filters
}

// refuseIfReferenced fails with an Integrity error while repo still holds
// records pointing at id through field.
func refuseIfReferenced[T any](ctx context.Context, repo repository.Directory[T], resource, id, child, field string) error {
	children, err := repo.List(ctx, repository.Eq(field, id))
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return apperrors.NewIntegrity(resource, id, "still referenced by "+child)
	}
	return nil
}

func (s *Service) cascaded(ctx context.Context, res *cascade.Result, actor string, err error) (*cascade.Result, error) {
	if res.Total() > 0 {
		s.notifier.CollectionsChanged(ctx, res.Collections(), actor)
	}
	if err != nil {
		log.Warn().
			Err(err).
			Int("deleted", res.Total()).
			Strs("collections", res.Collections()).
			Str("actor", model.Actor(actor)).
			Msg("Cascade delete stopped part way")
		return nil, err
	}
	log.Info().
		Str("parent", res.Parent).
		Str("parent_id", res.ParentID).
		Int("deleted", res.Total()).
		Str("actor", model.Actor(actor)).
		Msg("Directory record deleted")
	return res, nil
}

// Organizations

func (s *Service) CreateOrganization(ctx context.Context, req *model.CreateOrganizationRequest, actor string) (*model.Organization, error) {
	return s.repos.Organizations.Create(ctx, model.Organization{
		Name:        req.Name,
		Type:        req.Type,
		Active:      activeOr(req.Active, true),
		ContactInfo: model.ContactInfo{Address: req.Address, Phone: req.Phone, Email: req.Email},
	}, actor)
}

func (s *Service) GetOrganization(ctx context.Context, id string) (*model.Organization, error) {
	return get(ctx, s.repos.Organizations, "organization", id)
}

func (s *Service) ListOrganizations(ctx context.Context) ([]model.Organization, error) {
	return s.repos.Organizations.List(ctx)
}

func (s *Service) UpdateOrganization(ctx context.Context, id string, req *model.UpdateSiteRequest, actor string) (*model.Organization, error) {
	return update(ctx, s.repos.Organizations, id, sitePatch(req), actor)
}

// DeleteOrganization refuses while hospitals or departments still belong to
// the organization.
func (s *Service) DeleteOrganization(ctx context.Context, id, actor string) error {
	if err := refuseIfReferenced(ctx, s.repos.Hospitals, "organization", id, repository.CollectionHospitals, repository.FieldOrgID); err != nil {
		return err
	}
	if err := refuseIfReferenced(ctx, s.repos.Departments, "organization", id, repository.CollectionDepartments, repository.FieldOrgID); err != nil {
		return err
	}
	return s.repos.Organizations.Delete(ctx, id)
}

func sitePatch(req *model.UpdateSiteRequest) patch {
	return patch{}.
		str("name", req.Name).
		str("type", req.Type).
		boolean("active", req.Active).
		str("address", req.Address).
		str("phone", req.Phone).
		str("email", req.Email)
}

// Hospitals

func (s *Service) CreateHospital(ctx context.Context, req *model.CreateHospitalRequest, actor string) (*model.Hospital, error) {
	if _, err := s.GetOrganization(ctx, req.OrgID); err != nil {
		return nil, err
	}
	return s.repos.Hospitals.Create(ctx, model.Hospital{
		OrgID:       req.OrgID,
		Name:        req.Name,
		Active:      activeOr(req.Active, true),
		ContactInfo: model.ContactInfo{Address: req.Address, Phone: req.Phone, Email: req.Email},
	}, actor)
}

func (s *Service) GetHospital(ctx context.Context, id string) (*model.Hospital, error) {
	return get(ctx, s.repos.Hospitals, "hospital", id)
}

func (s *Service) ListHospitals(ctx context.Context, orgID string) ([]model.Hospital, error) {
	return s.repos.Hospitals.List(ctx, eqIfSet(repository.FieldOrgID, orgID)...)
}

func (s *Service) UpdateHospital(ctx context.Context, id string, req *model.UpdateSiteRequest, actor string) (*model.Hospital, error) {
	changes := sitePatch(req)
	delete(changes, "type")
	return update(ctx, s.repos.Hospitals, id, changes, actor)
}

func (s *Service) DeleteHospital(ctx context.Context, id, actor string) error {
	if err := refuseIfReferenced(ctx, s.repos.Locations, "hospital", id, repository.CollectionLocations, repository.FieldHospID); err != nil {
		return err
	}
	return s.repos.Hospitals.Delete(ctx, id)
}

// Locations

func (s *Service) CreateLocation(ctx context.Context, req *model.CreateLocationRequest, actor string) (*model.Location, error) {
	hosp, err := s.GetHospital(ctx, req.HospID)
	if err != nil {
		return nil, err
	}
	if req.OrgID != "" && hosp.OrgID != "" && req.OrgID != hosp.OrgID {
		return nil, apperrors.NewIntegrity("hospital", hosp.ID,
			"org_id "+req.OrgID+" does not match the hospital's organization "+hosp.OrgID)
	}
	return s.repos.Locations.Create(ctx, model.Location{
		HospID:      req.HospID,
		OrgID:       hosp.OrgID,
		Name:        req.Name,
		Type:        req.Type,
		Active:      activeOr(req.Active, true),
		ContactInfo: model.ContactInfo{Address: req.Address, Phone: req.Phone, Email: req.Email},
	}, actor)
}

func (s *Service) GetLocation(ctx context.Context, id string) (*model.Location, error) {
	return get(ctx, s.repos.Locations, "location", id)
}

func (s *Service) ListLocations(ctx context.Context, hospID, orgID string) ([]model.Location, error) {
	return s.repos.Locations.List(ctx, eqIfSet(repository.FieldHospID, hospID, repository.FieldOrgID, orgID)...)
}

func (s *Service) UpdateLocation(ctx context.Context, id string, req *model.UpdateSiteRequest, actor string) (*model.Location, error) {
	return update(ctx, s.repos.Locations, id, sitePatch(req), actor)
}

// DeleteLocation removes the location and every department and team link to
// it.
func (s *Service) DeleteLocation(ctx context.Context, id, actor string) (*cascade.Result, error) {
	res, err := s.engine.DeleteLocation(ctx, id)
	return s.cascaded(ctx, res, actor, err)
}

// Departments

func (s *Service) CreateDepartment(ctx context.Context, req *model.CreateDepartmentRequest, actor string) (*model.Department, error) {
	if _, err := s.GetOrganization(ctx, req.OrgID); err != nil {
		return nil, err
	}
	return s.repos.Departments.Create(ctx, model.Department{
		OrgID:  req.OrgID,
		Name:   req.Name,
		Active: activeOr(req.Active, true),
	}, actor)
}

func (s *Service) GetDepartment(ctx context.Context, id string) (*model.Department, error) {
	return get(ctx, s.repos.Departments, "department", id)
}

func (s *Service) ListDepartments(ctx context.Context, orgID string) ([]model.Department, error) {
	return s.repos.Departments.List(ctx, eqIfSet(repository.FieldOrgID, orgID)...)
}

func (s *Service) UpdateDepartment(ctx context.Context, id string, req *model.UpdateDepartmentRequest, actor string) (*model.Department, error) {
	return update(ctx, s.repos.Departments, id, patch{}.str("name", req.Name).boolean("active", req.Active), actor)
}

// DeleteDepartment deletes the department's teams and every assignment that
// references the department.
func (s *Service) DeleteDepartment(ctx context.Context, id, actor string) (*cascade.Result, error) {
	res, err := s.engine.DeleteDepartment(ctx, id)
	return s.cascaded(ctx, res, actor, err)
}

// Teams

func (s *Service) CreateTeam(ctx context.Context, req *model.CreateTeamRequest, actor string) (*model.Team, error) {
	dep, err := s.GetDepartment(ctx, req.DepID)
	if err != nil {
		return nil, err
	}
	if req.OrgID != "" && dep.OrgID != "" && req.OrgID != dep.OrgID {
		return nil, apperrors.NewIntegrity("department", dep.ID,
			"org_id "+req.OrgID+" does not match the department's organization "+dep.OrgID)
	}
	return s.repos.Teams.Create(ctx, model.Team{
		OrgID:       dep.OrgID,
		DepID:       dep.ID,
		Name:        req.Name,
		Description: req.Description,
		Active:      activeOr(req.Active, true),
	}, actor)
}

func (s *Service) GetTeam(ctx context.Context, id string) (*model.Team, error) {
	return get(ctx, s.repos.Teams, "team", id)
}

func (s *Service) ListTeams(ctx context.Context, depID, orgID string) ([]model.Team, error) {
	return s.repos.Teams.List(ctx, eqIfSet(repository.FieldDepID, depID, repository.FieldOrgID, orgID)...)
}

func (s *Service) UpdateTeam(ctx context.Context, id string, req *model.UpdateTeamRequest, actor string) (*model.Team, error) {
	return update(ctx, s.repos.Teams, id, patch{}.
		str("name", req.Name).
		str("description", req.Description).
		boolean("active", req.Active), actor)
}

// DeleteTeam removes the team's location links and memberships before the
// team itself.
func (s *Service) DeleteTeam(ctx context.Context, id, actor string) (*cascade.Result, error) {
	res, err := s.engine.DeleteTeam(ctx, id)
	return s.cascaded(ctx, res, actor, err)
}

// Users

func (s *Service) CreateUser(ctx context.Context, req *model.CreateUserRequest, actor string) (*model.User, error) {
	if _, err := s.GetOrganization(ctx, req.OrgID); err != nil {
		return nil, err
	}
	if req.DepartmentID != "" {
		dep, err := s.GetDepartment(ctx, req.DepartmentID)
		if err != nil {
			return nil, err
		}
		if dep.OrgID != "" && dep.OrgID != req.OrgID {
			return nil, apperrors.NewIntegrity("department", dep.ID, "belongs to another organization")
		}
	}
	return s.repos.Users.Create(ctx, model.User{
		AuthUID:      req.AuthUID,
		OrgID:        req.OrgID,
		DepartmentID: req.DepartmentID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Role:         req.Role,
		JobTitle:     req.JobTitle,
		Specialty:    req.Specialty,
		Active:       activeOr(req.Active, true),
	}, actor)
}

func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	return get(ctx, s.repos.Users, "user", id)
}

func (s *Service) ListUsers(ctx context.Context, orgID, departmentID string) ([]model.User, error) {
	return s.repos.Users.List(ctx, eqIfSet(repository.FieldOrgID, orgID, repository.FieldDepartmentID, departmentID)...)
}

func (s *Service) UpdateUser(ctx context.Context, id string, req *model.UpdateUserRequest, actor string) (*model.User, error) {
	return update(ctx, s.repos.Users, id, patch{}.
		str(repository.FieldDepartmentID, req.DepartmentID).
		str("firstName", req.FirstName).
		str("lastName", req.LastName).
		str("email", req.Email).
		str("role", req.Role).
		str("jobTitle", req.JobTitle).
		str("specialty", req.Specialty).
		boolean("active", req.Active), actor)
}

// DeleteUser removes the user's team memberships and the user. Rota entries
// stay as history.
func (s *Service) DeleteUser(ctx context.Context, id, actor string) (*cascade.Result, error) {
	res, err := s.engine.DeleteUser(ctx, id)
	return s.cascaded(ctx, res, actor, err)
}

// Modules

func (s *Service) CreateModule(ctx context.Context, req *model.CreateModuleRequest, actor string) (*model.Module, error) {
	return s.repos.Modules.Create(ctx, model.Module{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		URLPath:     req.URLPath,
		Icon:        req.Icon,
		Active:      activeOr(req.Active, true),
	}, actor)
}

func (s *Service) GetModule(ctx context.Context, id string) (*model.Module, error) {
	return get(ctx, s.repos.Modules, "module", id)
}

func (s *Service) ListModules(ctx context.Context) ([]model.Module, error) {
	return s.repos.Modules.List(ctx)
}

func (s *Service) UpdateModule(ctx context.Context, id string, req *model.UpdateModuleRequest, actor string) (*model.Module, error) {
	return update(ctx, s.repos.Modules, id, patch{}.
		str("displayName", req.DisplayName).
		str("urlPath", req.URLPath).
		str("icon", req.Icon).
		boolean("active", req.Active), actor)
}

func (s *Service) DeleteModule(ctx context.Context, id, actor string) (*cascade.Result, error) {
	res, err := s.engine.DeleteModule(ctx, id)
	return s.cascaded(ctx, res, actor, err)
}
