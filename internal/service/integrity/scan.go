// Package integrity scans the document store for records the application
// cannot use: malformed documents, repeated assignment pairs and rota entries
// outside their week.
package integrity

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/internal/repository"
	"github.com/jwalitptl/rota-api/internal/repository/mapper"
	apperrors "github.com/jwalitptl/rota-api/pkg/errors"
)

// Problem kinds.
const (
	ProblemMalformed  = "malformed"
	ProblemDuplicate  = "duplicate"
	ProblemOutOfRange = "out_of_range"
)

var collections = []struct {
	name string
	kind model.Kind
	// pair names the foreign keys that must be unique together.
	pair [2]string
}{
	{name: repository.CollectionOrganizations, kind: model.KindOrganization},
	{name: repository.CollectionHospitals, kind: model.KindHospital},
	{name: repository.CollectionLocations, kind: model.KindLocation},
	{name: repository.CollectionDepartments, kind: model.KindDepartment},
	{name: repository.CollectionTeams, kind: model.KindTeam},
	{name: repository.CollectionUsers, kind: model.KindUser},
	{name: repository.CollectionModules, kind: model.KindModule},
	{name: repository.CollectionDepartmentLocations, kind: model.KindDepartmentLocation,
		pair: [2]string{repository.FieldDepartmentID, repository.FieldLocationID}},
	{name: repository.CollectionTeamLocations, kind: model.KindTeamLocation,
		pair: [2]string{repository.FieldTeamID, repository.FieldLocationID}},
	{name: repository.CollectionUserTeams, kind: model.KindUserTeam,
		pair: [2]string{repository.FieldUserID, repository.FieldTeamID}},
	{name: repository.CollectionDepartmentModules, kind: model.KindDepartmentModule,
		pair: [2]string{repository.FieldDepID, repository.FieldModuleID}},
	{name: repository.CollectionRotaAssignments, kind: model.KindRotaAssignment},
	{name: repository.CollectionWeekStatus, kind: model.KindWeekStatus},
}

type Problem struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Detail     string `json:"detail"`
}

type Report struct {
	Scanned  map[string]int `json:"scanned"`
	Problems []Problem      `json:"problems"`
}

// Clean reports whether the scan found nothing.
func (r *Report) Clean() bool {
	return len(r.Problems) == 0
}

type Scanner struct {
	store repository.DocumentStore
}

func NewScanner(store repository.DocumentStore) *Scanner {
	return &Scanner{store: store}
}

// Scan reads every collection once. It never modifies the store.
func (s *Scanner) Scan(ctx context.Context) (*Report, error) {
	report := &Report{Scanned: map[string]int{}, Problems: []Problem{}}
	for _, c := range collections {
		recs, err := s.store.Query(ctx, c.name)
		if err != nil {
			return nil, apperrors.NewQuery(c.name, "", err)
		}
		report.Scanned[c.name] = len(recs)

		for _, rec := range recs {
			if err := mapper.Validate(c.kind, rec); err != nil {
				var merr *mapper.MappingError
				if !errors.As(err, &merr) {
					return nil, err
				}
				report.Problems = append(report.Problems, Problem{
					Collection: c.name, ID: rec.ID, Kind: ProblemMalformed, Detail: merr.Error(),
				})
				continue
			}
			if c.kind == model.KindRotaAssignment {
				if p := checkRota(rec); p != nil {
					report.Problems = append(report.Problems, *p)
				}
			}
		}
		if c.pair[0] != "" {
			report.Problems = append(report.Problems, duplicates(c.name, c.pair, recs)...)
		}
	}

	log.Info().
		Int("collections", len(report.Scanned)).
		Int("problems", len(report.Problems)).
		Msg("Integrity scan finished")
	return report, nil
}

func checkRota(rec repository.Record) *Problem {
	ra := mapper.Map[model.RotaAssignment](model.KindRotaAssignment, rec)
	if ra == nil {
		return nil
	}
	if ra.DayIndex < 0 || ra.DayIndex >= model.DaysPerWeek {
		return &Problem{
			Collection: repository.CollectionRotaAssignments, ID: rec.ID, Kind: ProblemOutOfRange,
			Detail: fmt.Sprintf("dayIndex %d outside 0..%d", ra.DayIndex, model.DaysPerWeek-1),
		}
	}
	if !model.IsValidWeekID(ra.WeekID) {
		return &Problem{
			Collection: repository.CollectionRotaAssignments, ID: rec.ID, Kind: ProblemOutOfRange,
			Detail: fmt.Sprintf("weekId %q is not an ISO week", ra.WeekID),
		}
	}
	return nil
}

// duplicates reports every record after the first that repeats a pair.
// recs arrive ordered by creation, so the oldest record is kept.
func duplicates(collection string, pair [2]string, recs []repository.Record) []Problem {
	first := map[[2]string]string{}
	var out []Problem
	for _, rec := range recs {
		key := [2]string{rec.String(pair[0]), rec.String(pair[1])}
		if key[0] == "" || key[1] == "" {
			continue
		}
		if orig, ok := first[key]; ok {
			out = append(out, Problem{
				Collection: collection, ID: rec.ID, Kind: ProblemDuplicate,
				Detail: fmt.Sprintf("repeats %s (%s=%s, %s=%s)", orig, pair[0], key[0], pair[1], key[1]),
			})
			continue
		}
		first[key] = rec.ID
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
