package model

import (
	"time"
)

// SystemActor is recorded when a mutation carries no actor id.
const SystemActor = "system"

// Kind identifies an entity type. Mappers and collections are keyed by it.
type Kind string

const (
	KindOrganization       Kind = "organization"
	KindHospital           Kind = "hospital"
	KindLocation           Kind = "location"
	KindDepartment         Kind = "department"
	KindTeam               Kind = "team"
	KindUser               Kind = "user"
	KindModule             Kind = "module"
	KindDepartmentLocation Kind = "department_location"
	KindTeamLocation       Kind = "team_location"
	KindUserTeam           Kind = "user_team"
	KindDepartmentModule   Kind = "department_module"
	KindRotaAssignment     Kind = "rota_assignment"
	KindWeekStatus         Kind = "week_status"
)

// Audit contains the attribution fields carried by every entity.
// Timestamps are nil until the store has stamped them.
type Audit struct {
	CreatedByID string     `json:"created_by_id"`
	UpdatedByID string     `json:"updated_by_id"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// Actor returns id, or SystemActor when id is blank.
func Actor(id string) string {
	if id == "" {
		return SystemActor
	}
	return id
}

// ContactInfo is shared by organizations, hospitals and locations.
type ContactInfo struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}
