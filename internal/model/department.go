package model

// Department belongs to one organization.
type Department struct {
	ID     string `json:"id"`
	OrgID  string `json:"org_id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
	Audit
}

// Team ("DepTeam") belongs to one department.
type Team struct {
	ID          string `json:"id"`
	OrgID       string `json:"org_id"`
	DepID       string `json:"dep_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
	Audit
}

type CreateDepartmentRequest struct {
	OrgID  string `json:"org_id" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Active *bool  `json:"active"`
}

type UpdateDepartmentRequest struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

type CreateTeamRequest struct {
	OrgID       string `json:"org_id"`
	DepID       string `json:"dep_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

type UpdateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}
