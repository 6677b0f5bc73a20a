// Package mapper converts raw store records into typed entities. A record
// missing a required field maps to nil and is logged rather than failing the
// surrounding read.
package mapper

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/internal/repository"
)

// MappingError describes why a record could not be mapped.
type MappingError struct {
	Kind    model.Kind
	ID      string
	Missing []string
	Invalid []string
}

func (e *MappingError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return fmt.Sprintf("cannot map %s %s: %s", e.Kind, e.ID, strings.Join(parts, "; "))
}

type entry struct {
	// required lists field keys that must be non-empty. "a|b" means at
	// least one of a or b.
	required []string
	// integers must hold whole numbers when present.
	integers []string
	build    func(reader) any
}

var registry = map[model.Kind]entry{
	model.KindOrganization: {
		required: []string{"name"},
		build: func(r reader) any {
			return &model.Organization{
				ID:          r.rec.ID,
				Name:        r.str("name"),
				Type:        r.str("type"),
				Active:      r.boolean("active"),
				ContactInfo: r.contact(),
				Audit:       r.audit(),
			}
		},
	},
	model.KindHospital: {
		required: []string{repository.FieldOrgID, "name"},
		build: func(r reader) any {
			return &model.Hospital{
				ID:          r.rec.ID,
				OrgID:       r.str(repository.FieldOrgID),
				Name:        r.str("name"),
				Active:      r.boolean("active"),
				ContactInfo: r.contact(),
				Audit:       r.audit(),
			}
		},
	},
	model.KindLocation: {
		required: []string{repository.FieldHospID, "name"},
		build: func(r reader) any {
			return &model.Location{
				ID:          r.rec.ID,
				HospID:      r.str(repository.FieldHospID),
				OrgID:       r.str(repository.FieldOrgID),
				Name:        r.str("name"),
				Type:        r.str("type"),
				Active:      r.boolean("active"),
				ContactInfo: r.contact(),
				Audit:       r.audit(),
			}
		},
	},
	model.KindDepartment: {
		required: []string{"name"},
		build: func(r reader) any {
			return &model.Department{
				ID:     r.rec.ID,
				OrgID:  r.str(repository.FieldOrgID),
				Name:   r.str("name"),
				Active: r.boolean("active"),
				Audit:  r.audit(),
			}
		},
	},
	model.KindTeam: {
		required: []string{repository.FieldDepID, "name"},
		build: func(r reader) any {
			return &model.Team{
				ID:          r.rec.ID,
				OrgID:       r.str(repository.FieldOrgID),
				DepID:       r.str(repository.FieldDepID),
				Name:        r.str("name"),
				Description: r.str("description"),
				Active:      r.boolean("active"),
				Audit:       r.audit(),
			}
		},
	},
	model.KindUser: {
		required: []string{repository.FieldOrgID, "firstName|lastName|email"},
		build: func(r reader) any {
			return &model.User{
				ID:           r.rec.ID,
				AuthUID:      r.str("authUid"),
				OrgID:        r.str(repository.FieldOrgID),
				DepartmentID: r.str(repository.FieldDepartmentID),
				FirstName:    r.str("firstName"),
				LastName:     r.str("lastName"),
				Email:        r.str("email"),
				Role:         r.str("role"),
				JobTitle:     r.str("jobTitle"),
				Specialty:    r.str("specialty"),
				Active:       r.boolean("active"),
				LastLogin:    r.timestamp("lastLogin"),
				Audit:        r.audit(),
			}
		},
	},
	model.KindModule: {
		required: []string{"name"},
		build: func(r reader) any {
			return &model.Module{
				ID:          r.rec.ID,
				Name:        r.str("name"),
				DisplayName: r.str("displayName"),
				URLPath:     r.str("urlPath"),
				Icon:        r.str("icon"),
				Active:      r.boolean("active"),
				Audit:       r.audit(),
			}
		},
	},
	model.KindDepartmentLocation: {
		required: []string{repository.FieldDepartmentID, repository.FieldLocationID},
		build: func(r reader) any {
			return &model.DepartmentLocation{
				ID:           r.rec.ID,
				DepartmentID: r.str(repository.FieldDepartmentID),
				LocationID:   r.str(repository.FieldLocationID),
				Audit:        r.audit(),
			}
		},
	},
	model.KindTeamLocation: {
		required: []string{repository.FieldTeamID, repository.FieldLocationID},
		build: func(r reader) any {
			return &model.TeamLocation{
				ID:         r.rec.ID,
				TeamID:     r.str(repository.FieldTeamID),
				LocationID: r.str(repository.FieldLocationID),
				OrgID:      r.str(repository.FieldOrgID),
				DepID:      r.str(repository.FieldDepID),
				Audit:      r.audit(),
			}
		},
	},
	model.KindUserTeam: {
		required: []string{repository.FieldUserID, repository.FieldTeamID},
		build: func(r reader) any {
			return &model.UserTeam{
				ID:        r.rec.ID,
				UserID:    r.str(repository.FieldUserID),
				TeamID:    r.str(repository.FieldTeamID),
				OrgID:     r.str(repository.FieldOrgID),
				DepID:     r.str(repository.FieldDepID),
				StartDate: r.timestamp("startDate"),
				EndDate:   r.timestamp("endDate"),
				Audit:     r.audit(),
			}
		},
	},
	model.KindDepartmentModule: {
		required: []string{repository.FieldDepID, repository.FieldModuleID},
		build: func(r reader) any {
			return &model.DepartmentModule{
				ID:       r.rec.ID,
				DepID:    r.str(repository.FieldDepID),
				ModuleID: r.str(repository.FieldModuleID),
				OrgID:    r.str(repository.FieldOrgID),
				Audit:    r.audit(),
			}
		},
	},
	model.KindRotaAssignment: {
		required: []string{
			repository.FieldWeekID, repository.FieldTeamID, repository.FieldUserID,
			repository.FieldLocationID, repository.FieldDayIndex,
		},
		integers: []string{repository.FieldDayIndex},
		build: func(r reader) any {
			day, _ := r.integer(repository.FieldDayIndex)
			return &model.RotaAssignment{
				ID:         r.rec.ID,
				WeekID:     r.str(repository.FieldWeekID),
				TeamID:     r.str(repository.FieldTeamID),
				UserID:     r.str(repository.FieldUserID),
				DayIndex:   day,
				LocationID: r.str(repository.FieldLocationID),
				Audit:      r.audit(),
			}
		},
	},
	model.KindWeekStatus: {
		required: []string{repository.FieldWeekID, repository.FieldTeamID},
		build: func(r reader) any {
			status := model.WeekStatusValue(r.str("status"))
			if !status.Valid() {
				status = model.WeekStatusDraft
			}
			return &model.WeekStatus{
				WeekID:       r.str(repository.FieldWeekID),
				TeamID:       r.str(repository.FieldTeamID),
				Status:       status,
				LastModified: r.timestamp("lastModified"),
				Audit:        r.audit(),
			}
		},
	},
}

// Validate reports whether rec can be mapped as kind. The returned error is
// a *MappingError for malformed records.
func Validate(kind model.Kind, rec repository.Record) error {
	e, ok := registry[kind]
	if !ok {
		return fmt.Errorf("no mapper registered for %q", kind)
	}

	merr := &MappingError{Kind: kind, ID: rec.ID}
	for _, req := range e.required {
		if !anyPresent(rec.Fields, strings.Split(req, "|")) {
			merr.Missing = append(merr.Missing, req)
		}
	}
	for _, key := range e.integers {
		if v, ok := rec.Fields[key]; ok && v != nil {
			if _, ok := toInt(v); !ok {
				merr.Invalid = append(merr.Invalid, key)
			}
		}
	}
	if len(merr.Missing) > 0 || len(merr.Invalid) > 0 {
		return merr
	}
	return nil
}

// Map converts rec into *T, returning nil when the record is malformed.
func Map[T any](kind model.Kind, rec repository.Record) *T {
	if err := Validate(kind, rec); err != nil {
		log.Warn().
			Err(err).
			Str("kind", string(kind)).
			Str("id", rec.ID).
			Msg("Skipping malformed record")
		return nil
	}

	out, ok := registry[kind].build(reader{rec: rec}).(*T)
	if !ok {
		log.Error().
			Str("kind", string(kind)).
			Str("target", fmt.Sprintf("%T", new(T))).
			Msg("Mapper target type mismatch")
		return nil
	}
	return out
}

// MapAll maps every record and drops the ones that fail. The result is never
// nil.
func MapAll[T any](kind model.Kind, recs []repository.Record) []T {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		if v := Map[T](kind, rec); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func anyPresent(fields map[string]any, keys []string) bool {
	for _, k := range keys {
		switch v := fields[k].(type) {
		case nil:
			continue
		case string:
			if v != "" {
				return true
			}
		default:
			return true
		}
	}
	return false
}
