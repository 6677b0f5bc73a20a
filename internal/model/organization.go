package model

// Organization is the root of tenancy.
type Organization struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active bool   `json:"active"`
	ContactInfo
	Audit
}

// Hospital belongs to exactly one organization.
type Hospital struct {
	ID     string `json:"id"`
	OrgID  string `json:"org_id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
	ContactInfo
	Audit
}

// Location ("HospLoc") belongs to one hospital. OrgID is denormalized.
type Location struct {
	ID     string `json:"id"`
	HospID string `json:"hosp_id"`
	OrgID  string `json:"org_id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active bool   `json:"active"`
	ContactInfo
	Audit
}

type CreateOrganizationRequest struct {
	Name    string `json:"name" binding:"required"`
	Type    string `json:"type"`
	Active  *bool  `json:"active"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email" binding:"omitempty,email"`
}

type CreateHospitalRequest struct {
	OrgID   string `json:"org_id" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Active  *bool  `json:"active"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email" binding:"omitempty,email"`
}

type CreateLocationRequest struct {
	HospID  string `json:"hosp_id" binding:"required"`
	OrgID   string `json:"org_id"`
	Name    string `json:"name" binding:"required"`
	Type    string `json:"type"`
	Active  *bool  `json:"active"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email" binding:"omitempty,email"`
}

// UpdateSiteRequest is the partial update shared by organizations,
// hospitals and locations. Nil fields are left untouched.
type UpdateSiteRequest struct {
	Name    *string `json:"name"`
	Type    *string `json:"type"`
	Active  *bool   `json:"active"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" binding:"omitempty,email"`
}
