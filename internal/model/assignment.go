package model

import (
	"time"
)

// DepartmentLocation links a department to a location. The pair
// (DepartmentID, LocationID) is unique.
type DepartmentLocation struct {
	ID           string `json:"id"`
	DepartmentID string `json:"department_id"`
	LocationID   string `json:"location_id"`
	Audit
}

// TeamLocation links a team to a location. OrgID and DepID are
// denormalized from the team.
type TeamLocation struct {
	ID         string `json:"id"`
	TeamID     string `json:"team_id"`
	LocationID string `json:"location_id"`
	OrgID      string `json:"org_id"`
	DepID      string `json:"dep_id"`
	Audit
}

// UserTeam links a user to a team, optionally bounded by dates.
type UserTeam struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	TeamID    string     `json:"team_id"`
	OrgID     string     `json:"org_id"`
	DepID     string     `json:"dep_id"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Audit
}

// DepartmentModule grants a module to a department.
type DepartmentModule struct {
	ID       string `json:"id"`
	DepID    string `json:"dep_id"`
	ModuleID string `json:"module_id"`
	OrgID    string `json:"org_id"`
	Audit
}

type CreateDepartmentLocationRequest struct {
	DepartmentID string `json:"department_id" binding:"required"`
	LocationID   string `json:"location_id" binding:"required"`
}

type CreateTeamLocationRequest struct {
	TeamID     string `json:"team_id" binding:"required"`
	LocationID string `json:"location_id" binding:"required"`
	OrgID      string `json:"org_id"`
	DepID      string `json:"dep_id"`
}

type CreateUserTeamRequest struct {
	UserID    string     `json:"user_id" binding:"required"`
	TeamID    string     `json:"team_id" binding:"required"`
	OrgID     string     `json:"org_id"`
	DepID     string     `json:"dep_id"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// UpdateUserTeamRequest changes the date range of a membership.
// ClearStartDate/ClearEndDate reset the bound to open-ended.
type UpdateUserTeamRequest struct {
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	ClearStartDate bool       `json:"clear_start_date"`
	ClearEndDate   bool       `json:"clear_end_date"`
}

type CreateDepartmentModuleRequest struct {
	DepID    string `json:"dep_id" binding:"required"`
	ModuleID string `json:"module_id" binding:"required"`
	OrgID    string `json:"org_id"`
}
