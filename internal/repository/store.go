package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Collection names. They are shared by every backend so data written by one
// deployment can be read by another.
const (
	CollectionOrganizations       = "organizations"
	CollectionHospitals           = "hospitals"
	CollectionLocations           = "hospital_locations"
	CollectionDepartments         = "departments"
	CollectionTeams               = "department_teams"
	CollectionUsers               = "users"
	CollectionModules             = "modules"
	CollectionDepartmentLocations = "department_location_assignments"
	CollectionTeamLocations       = "department_team_location_assignments"
	CollectionUserTeams           = "user_team_assignments"
	CollectionDepartmentModules   = "department_module_assignments"
	CollectionRotaAssignments     = "rota_assignments"
	CollectionWeekStatus          = "rota_week_status"
)

// Field keys used in filters and stored documents.
const (
	FieldDepartmentID = "departmentId"
	FieldLocationID   = "locationId"
	FieldDepID        = "depId"
	FieldTeamID       = "teamId"
	FieldUserID       = "userId"
	FieldOrgID        = "orgId"
	FieldHospID       = "hospId"
	FieldModuleID     = "moduleId"
	FieldWeekID       = "weekId"
	FieldDayIndex     = "dayIndex"
	FieldCreatedByID  = "createdById"
	FieldUpdatedByID  = "updatedById"
	FieldCreatedAt    = "createdAt"
	FieldUpdatedAt    = "updatedAt"
)

var (
	// ErrDocumentNotFound is returned by Update when the target id is absent.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDuplicateDocument is returned by AddIfAbsent when a matching
	// document already exists.
	ErrDuplicateDocument = errors.New("matching document already exists")
)

// Record is a stored document. CreatedAt and UpdatedAt are assigned by the
// store and are never taken from Fields.
type Record struct {
	ID        string
	Fields    map[string]any
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

// String returns the named field if it holds a string.
func (r Record) String(key string) string {
	s, _ := r.Fields[key].(string)
	return s
}

// Filter is an equality condition on a top level field.
type Filter struct {
	Field string
	Value string
}

// Eq builds a Filter.
func Eq(field, value string) Filter {
	return Filter{Field: field, Value: value}
}

// DescribeFilters renders filters for error messages, e.g. "teamId=t1 AND locationId=l1".
func DescribeFilters(filters []Filter) string {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		parts = append(parts, fmt.Sprintf("%s=%s", f.Field, f.Value))
	}
	return strings.Join(parts, " AND ")
}

// Matches reports whether fields satisfy every filter. Non string values are
// compared through their fmt representation so a filter on dayIndex "3"
// matches a stored number 3.
func Matches(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		v, ok := fields[f.Field]
		if !ok || v == nil {
			return false
		}
		switch tv := v.(type) {
		case string:
			if tv != f.Value {
				return false
			}
		default:
			if fmt.Sprint(tv) != f.Value {
				return false
			}
		}
	}
	return true
}

// SortRecords orders records by creation time, then id, so listings are
// stable across backends.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].CreatedAt, records[j].CreatedAt
		if a != nil && b != nil && !a.Equal(*b) {
			return a.Before(*b)
		}
		return records[i].ID < records[j].ID
	})
}

type (
	// DocumentStore is the persistence contract every repository is built on.
	DocumentStore interface {
		// Get returns nil, nil when the id is absent.
		Get(ctx context.Context, collection, id string) (*Record, error)
		// Query returns every record matching all filters. An empty result is
		// not an error.
		Query(ctx context.Context, collection string, filters ...Filter) ([]Record, error)
		// Add inserts a new record under a generated id.
		Add(ctx context.Context, collection string, fields map[string]any) (string, error)
		// AddIfAbsent inserts unless a record matching all of match exists, in
		// which case it returns ErrDuplicateDocument. The check and insert are
		// atomic.
		AddIfAbsent(ctx context.Context, collection string, match []Filter, fields map[string]any) (string, error)
		// Set creates or replaces the record with the given id.
		Set(ctx context.Context, collection, id string, fields map[string]any) error
		// Update merges partial into an existing record.
		Update(ctx context.Context, collection, id string, partial map[string]any) error
		// Delete removes a record. Deleting an absent id succeeds.
		Delete(ctx context.Context, collection, id string) error
		// Batch starts an all-or-nothing group of deletes.
		Batch() Batch
		Ping(ctx context.Context) error
	}

	// Batch collects deletes that commit together or not at all.
	Batch interface {
		Delete(collection, id string)
		Len() int
		Commit(ctx context.Context) error
	}
)

// BatchOp is a queued batch delete. Backends share it.
type BatchOp struct {
	Collection string
	ID         string
}

// CloneFields copies a field map one level deep.
func CloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// StripTimestamps removes server managed keys from caller supplied fields.
func StripTimestamps(fields map[string]any) map[string]any {
	out := CloneFields(fields)
	delete(out, FieldCreatedAt)
	delete(out, FieldUpdatedAt)
	return out
}
