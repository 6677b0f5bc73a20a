package cascade

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/rota-api/internal/repository"
	apperrors "github.com/jwalitptl/rota-api/pkg/errors"
)

// ReconcileTeam finishes a team cascade whose team record is already gone,
// e.g. after an earlier DeleteTeam failed part way. It refuses to run while
// the team still exists.
func (e *Engine) ReconcileTeam(ctx context.Context, teamID string) (res *Result, err error) {
	defer func() { e.observe("reconcile_team", err) }()

	rec, err := e.store.Get(ctx, repository.CollectionTeams, teamID)
	if err != nil {
		return nil, apperrors.NewQuery(repository.CollectionTeams, "id="+teamID, err)
	}
	if rec != nil {
		return nil, apperrors.NewBadRequest("team "+teamID+" still exists; delete it instead of reconciling", nil)
	}

	res = newResult(parentTeam, teamID)
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
	return res, nil
}

// Orphan is an assignment whose parent record no longer exists.
type Orphan struct {
	Collection  string `json:"collection"`
	ID          string `json:"id"`
	ParentField string `json:"parent_field"`
	ParentID    string `json:"parent_id"`
}

// OrphanReport summarizes a reconcile pass.
type OrphanReport struct {
	Orphans []Orphan       `json:"orphans"`
	Removed map[string]int `json:"removed"`
	DryRun  bool           `json:"dry_run"`
}

// Collections returns the collections that lost records, sorted.
func (r *OrphanReport) Collections() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.Removed))
	for c, n := range r.Removed {
		if n > 0 {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

type parentRef struct {
	field      string
	collection string
}

// orphanRules lists, per assignment collection, the parents it references.
var orphanRules = []struct {
	collection string
	parents    []parentRef
}{
	{repository.CollectionDepartmentLocations, []parentRef{
		{repository.FieldDepartmentID, repository.CollectionDepartments},
		{repository.FieldLocationID, repository.CollectionLocations},
	}},
	{repository.CollectionTeamLocations, []parentRef{
		{repository.FieldTeamID, repository.CollectionTeams},
		{repository.FieldLocationID, repository.CollectionLocations},
	}},
	{repository.CollectionUserTeams, []parentRef{
		{repository.FieldTeamID, repository.CollectionTeams},
		{repository.FieldUserID, repository.CollectionUsers},
	}},
	{repository.CollectionDepartmentModules, []parentRef{
		{repository.FieldDepID, repository.CollectionDepartments},
		{repository.FieldModuleID, repository.CollectionModules},
	}},
}

// ReconcileOrphans scans every assignment collection and removes records
// whose parent is missing, one batch per collection. With dryRun the orphans
// are only reported. On error the report still lists the batches already
// committed.
func (e *Engine) ReconcileOrphans(ctx context.Context, dryRun bool) (report *OrphanReport, err error) {
	defer func() { e.observe("reconcile_orphans", err) }()

	report = &OrphanReport{Orphans: []Orphan{}, Removed: map[string]int{}, DryRun: dryRun}
	exists := newExistenceCache(e.store)

	for _, rule := range orphanRules {
		recs, err := e.store.Query(ctx, rule.collection)
		if err != nil {
			return report, apperrors.NewQuery(rule.collection, "", err)
		}

		batch := e.store.Batch()
		for _, rec := range recs {
			orphan, err := findOrphan(ctx, exists, rule.collection, rule.parents, rec)
			if err != nil {
				return report, err
			}
			if orphan == nil {
				continue
			}
			report.Orphans = append(report.Orphans, *orphan)
			batch.Delete(rule.collection, rec.ID)
		}

		if dryRun || batch.Len() == 0 {
			continue
		}
		if err := batch.Commit(ctx); err != nil {
			return report, apperrors.NewCascadeDelete("orphans", rule.collection, rule.collection, err)
		}
		report.Removed[rule.collection] = batch.Len()
		e.metrics.CascadeDeleted.WithLabelValues(rule.collection).Add(float64(batch.Len()))
		log.Info().
			Str("collection", rule.collection).
			Int("count", batch.Len()).
			Msg("Removed orphaned assignments")
	}
	return report, nil
}

// findOrphan returns the first missing parent reference of rec. A record
// with an empty parent key counts as orphaned.
func findOrphan(ctx context.Context, exists *existenceCache, collection string, parents []parentRef, rec repository.Record) (*Orphan, error) {
	for _, p := range parents {
		id := rec.String(p.field)
		if id == "" {
			return &Orphan{Collection: collection, ID: rec.ID, ParentField: p.field}, nil
		}
		ok, err := exists.has(ctx, p.collection, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &Orphan{Collection: collection, ID: rec.ID, ParentField: p.field, ParentID: id}, nil
		}
	}
	return nil, nil
}

type existenceCache struct {
	store repository.DocumentStore
	seen  map[string]bool
}

func newExistenceCache(store repository.DocumentStore) *existenceCache {
	return &existenceCache{store: store, seen: map[string]bool{}}
}

func (c *existenceCache) has(ctx context.Context, collection, id string) (bool, error) {
	key := collection + "/" + id
	if v, ok := c.seen[key]; ok {
		return v, nil
	}
	rec, err := c.store.Get(ctx, collection, id)
	if err != nil {
		return false, apperrors.NewQuery(collection, "id="+id, err)
	}
	c.seen[key] = rec != nil
	return rec != nil, nil
}
