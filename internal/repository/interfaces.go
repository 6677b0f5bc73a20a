package repository

import (
	"context"

	"github.com/jwalitptl/rota-api/internal/model"
)

// All repository interfaces in one file
type (
	// Directory covers the master data entities. List filters are equality
	// matches on stored field keys.
	Directory[T any] interface {
		Create(ctx context.Context, entity T, actor string) (*T, error)
		Get(ctx context.Context, id string) (*T, error)
		List(ctx context.Context, filters ...Filter) ([]T, error)
		Update(ctx context.Context, id string, changes map[string]any, actor string) (*T, error)
		Delete(ctx context.Context, id string) error
	}

	OrganizationRepository = Directory[model.Organization]
	HospitalRepository     = Directory[model.Hospital]
	LocationRepository     = Directory[model.Location]
	DepartmentRepository   = Directory[model.Department]
	TeamRepository         = Directory[model.Team]
	UserRepository         = Directory[model.User]
	ModuleRepository       = Directory[model.Module]

	// DepartmentLocationRepository manages department to location links.
	// Delete returns the removed record, or nil when it was already gone.
	DepartmentLocationRepository interface {
		ListByDepartment(ctx context.Context, departmentID string) ([]model.DepartmentLocation, error)
		ListByLocation(ctx context.Context, locationID string) ([]model.DepartmentLocation, error)
		Get(ctx context.Context, id string) (*model.DepartmentLocation, error)
		CheckExists(ctx context.Context, departmentID, locationID string) (bool, error)
		Create(ctx context.Context, in model.DepartmentLocation, actor string) (*model.DepartmentLocation, error)
		Delete(ctx context.Context, id string) (*model.DepartmentLocation, error)
	}

	TeamLocationRepository interface {
		ListByTeam(ctx context.Context, teamID string) ([]model.TeamLocation, error)
		ListByLocation(ctx context.Context, locationID string) ([]model.TeamLocation, error)
		ListByDepartment(ctx context.Context, depID string) ([]model.TeamLocation, error)
		ListByDepartmentLocation(ctx context.Context, depID, locationID string) ([]model.TeamLocation, error)
		Get(ctx context.Context, id string) (*model.TeamLocation, error)
		CheckExists(ctx context.Context, teamID, locationID string) (bool, error)
		Create(ctx context.Context, in model.TeamLocation, actor string) (*model.TeamLocation, error)
		Delete(ctx context.Context, id string) (*model.TeamLocation, error)
	}

	UserTeamRepository interface {
		ListByUser(ctx context.Context, userID string) ([]model.UserTeam, error)
		ListByTeam(ctx context.Context, teamID string) ([]model.UserTeam, error)
		ListByDepartment(ctx context.Context, depID string) ([]model.UserTeam, error)
		Get(ctx context.Context, id string) (*model.UserTeam, error)
		CheckExists(ctx context.Context, userID, teamID string) (bool, error)
		Create(ctx context.Context, in model.UserTeam, actor string) (*model.UserTeam, error)
		Update(ctx context.Context, id string, patch model.UpdateUserTeamRequest, actor string) (*model.UserTeam, error)
		Delete(ctx context.Context, id string) (*model.UserTeam, error)
	}

	DepartmentModuleRepository interface {
		ListByDepartment(ctx context.Context, depID string) ([]model.DepartmentModule, error)
		ListByModule(ctx context.Context, moduleID string) ([]model.DepartmentModule, error)
		Get(ctx context.Context, id string) (*model.DepartmentModule, error)
		CheckExists(ctx context.Context, depID, moduleID string) (bool, error)
		Create(ctx context.Context, in model.DepartmentModule, actor string) (*model.DepartmentModule, error)
		Delete(ctx context.Context, id string) (*model.DepartmentModule, error)
	}

	RotaAssignmentRepository interface {
		ListByWeekTeam(ctx context.Context, weekID, teamID string) ([]model.RotaAssignment, error)
		ListByTeam(ctx context.Context, teamID string) ([]model.RotaAssignment, error)
		ListByUser(ctx context.Context, userID string) ([]model.RotaAssignment, error)
		Get(ctx context.Context, id string) (*model.RotaAssignment, error)
		Create(ctx context.Context, in model.RotaAssignment, actor string) (*model.RotaAssignment, error)
		Delete(ctx context.Context, id string) (*model.RotaAssignment, error)
	}

	// WeekStatusRepository stores one status per (week, team).
	WeekStatusRepository interface {
		Get(ctx context.Context, weekID, teamID string) (*model.WeekStatus, error)
		Set(ctx context.Context, status model.WeekStatus, actor string) (*model.WeekStatus, error)
	}
)
