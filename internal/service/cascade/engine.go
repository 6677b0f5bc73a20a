// Package cascade removes dependent assignment records when a parent entity
// is deleted, so no assignment is left pointing at a missing parent.
package cascade

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/rota-api/internal/repository"
	apperrors "github.com/jwalitptl/rota-api/pkg/errors"
	"github.com/jwalitptl/rota-api/pkg/metrics"
)

// Step names reported in CascadeDelete errors.
const (
	StepTeamLocations       = "team_locations"
	StepUserTeams           = "user_teams"
	StepDepartmentLocations = "department_locations"
	StepDepartmentModules   = "department_modules"
	StepDepartmentLocation  = "department_location"
	StepDepartmentTeams     = "department_teams"
	StepTeamRecord          = "team_record"
	StepLocationRecord      = "location_record"
	StepDepartmentRecord    = "department_record"
	StepUserRecord          = "user_record"
	StepModuleRecord        = "module_record"
)

const (
	parentTeam               = "team"
	parentLocation           = "location"
	parentDepartment         = "department"
	parentDepartmentLocation = "department_location"
	parentUser               = "user"
	parentModule             = "module"
)

// Result lists how many records each collection lost. Cascades return it
// together with any error, holding the batches committed before the failure.
type Result struct {
	Parent   string         `json:"parent"`
	ParentID string         `json:"parent_id"`
	Deleted  map[string]int `json:"deleted"`
}

func newResult(parent, parentID string) *Result {
	return &Result{Parent: parent, ParentID: parentID, Deleted: map[string]int{}}
}

func (r *Result) add(collection string, n int) {
	if n > 0 {
		r.Deleted[collection] += n
	}
}

func (r *Result) merge(other *Result) {
	if r == nil || other == nil {
		return
	}
	for c, n := range other.Deleted {
		r.add(c, n)
	}
}

// Collections returns the collections that lost records, sorted.
func (r *Result) Collections() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.Deleted))
	for c := range r.Deleted {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Total is the number of records removed.
func (r *Result) Total() int {
	if r == nil {
		return 0
	}
	total := 0
	for _, n := range r.Deleted {
		total += n
	}
	return total
}

// Engine runs cascades against a DocumentStore. It works on raw records so
// malformed assignments are removed too.
type Engine struct {
	store   repository.DocumentStore
	metrics *metrics.Metrics
}

func NewEngine(store repository.DocumentStore, m *metrics.Metrics) *Engine {
	if m == nil {
		m = metrics.NewNop()
	}
	return &Engine{store: store, metrics: m}
}

// deleteAll removes every record of collection matching filters in one
// batch. No match is a success.
func (e *Engine) deleteAll(ctx context.Context, collection string, filters []repository.Filter, parent, parentID, step string) (int, error) {
	recs, err := e.store.Query(ctx, collection, filters...)
	if err != nil {
		return 0, apperrors.NewCascadeDelete(parent, parentID, step,
			apperrors.NewQuery(collection, repository.DescribeFilters(filters), err))
	}
	if len(recs) == 0 {
		return 0, nil
	}

	batch := e.store.Batch()
	for _, rec := range recs {
		batch.Delete(collection, rec.ID)
	}
	if err := batch.Commit(ctx); err != nil {
		return 0, apperrors.NewCascadeDelete(parent, parentID, step, err)
	}

	e.metrics.CascadeDeleted.WithLabelValues(collection).Add(float64(len(recs)))
	log.Debug().
		Str("collection", collection).
		Str("parent", parent).
		Str("parent_id", parentID).
		Int("count", len(recs)).
		Msg("Cascade removed dependent records")
	return len(recs), nil
}

// deleteRecord removes the parent row once its dependents are gone. A failure
// here leaves the store inconsistent: dependents deleted, parent present.
func (e *Engine) deleteRecord(ctx context.Context, collection, parent, parentID, step string) (int, error) {
	rec, err := e.store.Get(ctx, collection, parentID)
	if err != nil {
		return 0, inconsistent(apperrors.NewCascadeDelete(parent, parentID, step,
			apperrors.NewQuery(collection, "id="+parentID, err)))
	}
	if rec == nil {
		log.Warn().
			Str("parent", parent).
			Str("parent_id", parentID).
			Msg("Parent record already absent, dependents cleaned up")
		return 0, nil
	}
	if err := e.store.Delete(ctx, collection, parentID); err != nil {
		return 0, inconsistent(apperrors.NewCascadeDelete(parent, parentID, step, err))
	}
	return 1, nil
}

func inconsistent(err *apperrors.AppError) *apperrors.AppError {
	err.Inconsistent = true
	return err
}

func (e *Engine) observe(cascade string, err error) {
	outcome := "ok"
	var appErr *apperrors.AppError
	switch {
	case err == nil:
	case errors.As(err, &appErr) && appErr.Inconsistent:
		outcome = "inconsistent"
	default:
		outcome = "error"
	}
	e.metrics.CascadeOperations.WithLabelValues(cascade, outcome).Inc()
}

// DeleteTeamLocationsForTeam removes every team-location link of teamID.
func (e *Engine) DeleteTeamLocationsForTeam(ctx context.Context, teamID string) (int, error) {
	return e.deleteAll(ctx, repository.CollectionTeamLocations,
		[]repository.Filter{repository.Eq(repository.FieldTeamID, teamID)},
		parentTeam, teamID, StepTeamLocations)
}

// DeleteUserTeamsForTeam removes every membership of teamID.
func (e *Engine) DeleteUserTeamsForTeam(ctx context.Context, teamID string) (int, error) {
	return e.deleteAll(ctx, repository.CollectionUserTeams,
		[]repository.Filter{repository.Eq(repository.FieldTeamID, teamID)},
		parentTeam, teamID, StepUserTeams)
}

// DeleteDepartmentLocation removes a department-location link together with
// every team-location link for the same department and location, in one
// batch. An absent link is a success.
func (e *Engine) DeleteDepartmentLocation(ctx context.Context, id string) (res *Result, err error) {
	defer func() { e.observe(parentDepartmentLocation, err) }()

	res = newResult(parentDepartmentLocation, id)
	rec, err := e.store.Get(ctx, repository.CollectionDepartmentLocations, id)
	if err != nil {
		return res, apperrors.NewQuery(repository.CollectionDepartmentLocations, "id="+id, err)
	}
	if rec == nil {
		log.Debug().Str("id", id).Msg("Department-location already absent")
		return res, nil
	}

	depID, locID := rec.String(repository.FieldDepartmentID), rec.String(repository.FieldLocationID)
	if depID == "" || locID == "" {
		return res, apperrors.NewIntegrity(repository.CollectionDepartmentLocations, id,
			"record is missing departmentId or locationId")
	}

	filters := []repository.Filter{
		repository.Eq(repository.FieldDepID, depID),
		repository.Eq(repository.FieldLocationID, locID),
	}
	dependents, err := e.store.Query(ctx, repository.CollectionTeamLocations, filters...)
	if err != nil {
		return res, apperrors.NewCascadeDelete(parentDepartmentLocation, id, StepTeamLocations,
			apperrors.NewQuery(repository.CollectionTeamLocations, repository.DescribeFilters(filters), err))
	}

	batch := e.store.Batch()
	for _, d := range dependents {
		batch.Delete(repository.CollectionTeamLocations, d.ID)
	}
	batch.Delete(repository.CollectionDepartmentLocations, id)
	if err := batch.Commit(ctx); err != nil {
		return res, apperrors.NewCascadeDelete(parentDepartmentLocation, id, StepDepartmentLocation, err)
	}

	res.add(repository.CollectionTeamLocations, len(dependents))
	res.add(repository.CollectionDepartmentLocations, 1)
	e.metrics.CascadeDeleted.WithLabelValues(repository.CollectionTeamLocations).Add(float64(len(dependents)))
	e.metrics.CascadeDeleted.WithLabelValues(repository.CollectionDepartmentLocations).Inc()
	return res, nil
}

// DeleteTeam removes the team's location links, then its memberships, then
// the team record. Steps run in order and stop at the first failure. Rota
// assignments are kept as history.
func (e *Engine) DeleteTeam(ctx context.Context, teamID string) (res *Result, err error) {
	defer func() { e.observe(parentTeam, err) }()
	return e.deleteTeam(ctx, teamID)
}

func (e *Engine) deleteTeam(ctx context.Context, teamID string) (*Result, error) {
	res := newResult(parentTeam, teamID)

	n, err := e.DeleteTeamLocationsForTeam(ctx, teamID)
	if err != nil {
		return res, err
	}
	res.add(repository.CollectionTeamLocations, n)

	n, err = e.DeleteUserTeamsForTeam(ctx, teamID)
	if err != nil {
		return res, err
	}
	res.add(repository.CollectionUserTeams, n)

	n, err = e.deleteRecord(ctx, repository.CollectionTeams, parentTeam, teamID, StepTeamRecord)
	if err != nil {
		return res, err
	}
	res.add(repository.CollectionTeams, n)

	log.Info().Str("team_id", teamID).Int("deleted", res.Total()).Msg("Team deleted")
	return res, nil
}

// DeleteLocation removes department and team links to the location, then the
// location record.
func (e *Engine) DeleteLocation(ctx context.Context, locationID string) (res *Result, err error) {
	defer func() { e.observe(parentLocation, err) }()

	res = newResult(parentLocation, locationID)
	byLocation := []repository.Filter{repository.Eq(repository.FieldLocationID, locationID)}

	n, err := e.deleteAll(ctx, repository.CollectionDepartmentLocations, byLocation,
		parentLocation, locationID, StepDepartmentLocations)
	if err != nil {
		return res, err
	}
	res.add(repository.CollectionDepartmentLocations, n)

	n, err = e.deleteAll(ctx, repository.CollectionTeamLocations, byLocation,
		parentLocation, locationID, StepTeamLocations)
	if err != nil {
		return res, err
	}
	res.add(repository.CollectionTeamLocations, n)

	n, err = e.deleteRecord(ctx, repository.CollectionLocations, parentLocation, locationID, StepLocationRecord)
	if err != nil {
		return res, err
	}
	res.add(repository.CollectionLocations, n)
	return res, nil
}

// DeleteDepartment deletes every team of the department through DeleteTeam,
// then the department's remaining links, then the department record.
func (e *Engine) DeleteDepartment(ctx context.Context, depID string) (res *Result, err error) {
	defer func() { e.observe(parentDepartment, err) }()

	res = newResult(parentDepartment, depID)

	teams, err := e.store.Query(ctx, repository.CollectionTeams, repository.Eq(repository.FieldDepID, depID))
	if err != nil {
		return res, apperrors.NewCascadeDelete(parentDepartment, depID, StepDepartmentTeams,
			apperrors.NewQuery(repository.CollectionTeams, repository.FieldDepID+"="+depID, err))
	}
	for _, team := range teams {
		teamRes, err := e.deleteTeam(ctx, team.ID)
		res.merge(teamRes)
		if err != nil {
			return res, err
		}
	}

	steps := []struct {
		collection string
		field      string
		step       string
	}{
		{repository.CollectionDepartmentLocations, repository.FieldDepartmentID, StepDepartmentLocations},
		{repository.CollectionTeamLocations, repository.FieldDepID, StepTeamLocations},
		{repository.CollectionUserTeams, repository.FieldDepID, StepUserTeams},
		{repository.CollectionDepartmentModules, repository.FieldDepID, StepDepartmentModules},
	}
	for _, s := range steps {
		n, err := e.deleteAll(ctx, s.collection, []repository.Filter{repository.Eq(s.field, depID)},
			parentDepartment, depID, s.step)
		if err != nil {
			return res, err
		}
		res.add(s.collection, n)
	}

	n, err := e.deleteRecord(ctx, repository.CollectionDepartments, parentDepartment, depID, StepDepartmentRecord)
	if err != nil {
		return res, err
	}
	res.add(repository.CollectionDepartments, n)
	return res, nil
}

// DeleteUser removes the user's team memberships, then the user record. Rota
// assignments are kept as history.
func (e *Engine) DeleteUser(ctx context.Context, userID string) (res *Result, err error) {
	defer func() { e.observe(parentUser, err) }()
	return e.deleteWithDependents(ctx, parentUser, userID,
		repository.CollectionUserTeams, repository.FieldUserID, StepUserTeams,
		repository.CollectionUsers, StepUserRecord)
}

// DeleteModule withdraws the module from every department, then deletes it.
func (e *Engine) DeleteModule(ctx context.Context, moduleID string) (res *Result, err error) {
	defer func() { e.observe(parentModule, err) }()
	return e.deleteWithDependents(ctx, parentModule, moduleID,
		repository.CollectionDepartmentModules, repository.FieldModuleID, StepDepartmentModules,
		repository.CollectionModules, StepModuleRecord)
}

func (e *Engine) deleteWithDependents(ctx context.Context, parent, parentID, dependents, field, step, collection, recordStep string) (*Result, error) {
	res := newResult(parent, parentID)
	n, err := e.deleteAll(ctx, dependents, []repository.Filter{repository.Eq(field, parentID)}, parent, parentID, step)
	if err != nil {
		return res, err
	}
	res.add(dependents, n)

	n, err = e.deleteRecord(ctx, collection, parent, parentID, recordStep)
	if err != nil {
		return res, err
	}
	res.add(collection, n)
	return res, nil
}
