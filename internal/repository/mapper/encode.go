package mapper

import (
	"time"

	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/internal/repository"
)

// The encoders below produce the stored representation of each entity.
// Server managed timestamps are left to the store.

func auditFields(a model.Audit, fields map[string]any) map[string]any {
	fields[repository.FieldCreatedByID] = model.Actor(a.CreatedByID)
	fields[repository.FieldUpdatedByID] = model.Actor(a.UpdatedByID)
	return fields
}

func contactFields(c model.ContactInfo, fields map[string]any) map[string]any {
	fields["address"] = c.Address
	fields["phone"] = c.Phone
	fields["email"] = c.Email
	return fields
}

func timeField(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func OrganizationFields(o model.Organization) map[string]any {
	return auditFields(o.Audit, contactFields(o.ContactInfo, map[string]any{
		"name":   o.Name,
		"type":   o.Type,
		"active": o.Active,
	}))
}

func HospitalFields(h model.Hospital) map[string]any {
	return auditFields(h.Audit, contactFields(h.ContactInfo, map[string]any{
		repository.FieldOrgID: h.OrgID,
		"name":                h.Name,
		"active":              h.Active,
	}))
}

func LocationFields(l model.Location) map[string]any {
	return auditFields(l.Audit, contactFields(l.ContactInfo, map[string]any{
		repository.FieldHospID: l.HospID,
		repository.FieldOrgID:  l.OrgID,
		"name":                 l.Name,
		"type":                 l.Type,
		"active":               l.Active,
	}))
}

func DepartmentFields(d model.Department) map[string]any {
	return auditFields(d.Audit, map[string]any{
		repository.FieldOrgID: d.OrgID,
		"name":                d.Name,
		"active":              d.Active,
	})
}

func TeamFields(t model.Team) map[string]any {
	return auditFields(t.Audit, map[string]any{
		repository.FieldOrgID: t.OrgID,
		repository.FieldDepID: t.DepID,
		"name":                t.Name,
		"description":         t.Description,
		"active":              t.Active,
	})
}

func UserFields(u model.User) map[string]any {
	return auditFields(u.Audit, map[string]any{
		"authUid":                    u.AuthUID,
		repository.FieldOrgID:        u.OrgID,
		repository.FieldDepartmentID: u.DepartmentID,
		"firstName":                  u.FirstName,
		"lastName":                   u.LastName,
		"email":                      u.Email,
		"role":                       u.Role,
		"jobTitle":                   u.JobTitle,
		"specialty":                  u.Specialty,
		"active":                     u.Active,
		"lastLogin":                  timeField(u.LastLogin),
	})
}

func ModuleFields(m model.Module) map[string]any {
	return auditFields(m.Audit, map[string]any{
		"name":        m.Name,
		"displayName": m.DisplayName,
		"urlPath":     m.URLPath,
		"icon":        m.Icon,
		"active":      m.Active,
	})
}

func DepartmentLocationFields(a model.DepartmentLocation) map[string]any {
	return auditFields(a.Audit, map[string]any{
		repository.FieldDepartmentID: a.DepartmentID,
		repository.FieldLocationID:   a.LocationID,
	})
}

func TeamLocationFields(a model.TeamLocation) map[string]any {
	return auditFields(a.Audit, map[string]any{
		repository.FieldTeamID:     a.TeamID,
		repository.FieldLocationID: a.LocationID,
		repository.FieldOrgID:      a.OrgID,
		repository.FieldDepID:      a.DepID,
	})
}

func UserTeamFields(a model.UserTeam) map[string]any {
	return auditFields(a.Audit, map[string]any{
		repository.FieldUserID: a.UserID,
		repository.FieldTeamID: a.TeamID,
		repository.FieldOrgID:  a.OrgID,
		repository.FieldDepID:  a.DepID,
		"startDate":            timeField(a.StartDate),
		"endDate":              timeField(a.EndDate),
	})
}

func DepartmentModuleFields(a model.DepartmentModule) map[string]any {
	return auditFields(a.Audit, map[string]any{
		repository.FieldDepID:    a.DepID,
		repository.FieldModuleID: a.ModuleID,
		repository.FieldOrgID:    a.OrgID,
	})
}

func RotaAssignmentFields(a model.RotaAssignment) map[string]any {
	return auditFields(a.Audit, map[string]any{
		repository.FieldWeekID:     a.WeekID,
		repository.FieldTeamID:     a.TeamID,
		repository.FieldUserID:     a.UserID,
		repository.FieldDayIndex:   a.DayIndex,
		repository.FieldLocationID: a.LocationID,
	})
}

func WeekStatusFields(s model.WeekStatus) map[string]any {
	return auditFields(s.Audit, map[string]any{
		repository.FieldWeekID: s.WeekID,
		repository.FieldTeamID: s.TeamID,
		"status":               string(s.Status),
		"lastModified":         timeField(s.LastModified),
	})
}

// TimeField exposes the timestamp encoding for partial updates.
func TimeField(t *time.Time) any {
	return timeField(t)
}
