package model

import (
	"time"
)

// User role constants
const (
	UserRoleAdmin   = "admin"
	UserRoleManager = "manager"
	UserRoleStaff   = "staff"
)

// User belongs to one department and, transitively, one organization.
type User struct {
	ID           string     `json:"id"`
	AuthUID      string     `json:"auth_uid"`
	OrgID        string     `json:"org_id"`
	DepartmentID string     `json:"department_id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	JobTitle     string     `json:"job_title"`
	Specialty    string     `json:"specialty"`
	Active       bool       `json:"active"`
	LastLogin    *time.Time `json:"last_login"`
	Audit
}

// DisplayName is "First Last", falling back to the email.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "" || u.LastName != "":
		return u.FirstName + u.LastName
	default:
		return u.Email
	}
}

type CreateUserRequest struct {
	AuthUID      string `json:"auth_uid"`
	OrgID        string `json:"org_id" binding:"required"`
	DepartmentID string `json:"department_id"`
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Role         string `json:"role" binding:"required,oneof=admin manager staff"`
	JobTitle     string `json:"job_title"`
	Specialty    string `json:"specialty"`
	Active       *bool  `json:"active"`
}

type UpdateUserRequest struct {
	DepartmentID *string `json:"department_id"`
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Role         *string `json:"role" binding:"omitempty,oneof=admin manager staff"`
	JobTitle     *string `json:"job_title"`
	Specialty    *string `json:"specialty"`
	Active       *bool   `json:"active"`
}
