// Package rota resolves and edits the weekly schedules of teams.
package rota

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/internal/repository"
	apperrors "github.com/jwalitptl/rota-api/pkg/errors"
	"github.com/jwalitptl/rota-api/pkg/metrics"
)

type Repositories struct {
	Assignments repository.RotaAssignmentRepository
	Statuses    repository.WeekStatusRepository
	Teams       repository.TeamRepository
	Users       repository.UserRepository
	Locations   repository.LocationRepository
}

type Service struct {
	repos   Repositories
	metrics *metrics.Metrics
}

func NewService(repos Repositories, m *metrics.Metrics) *Service {
	if m == nil {
		m = metrics.NewNop()
	}
	return &Service{repos: repos, metrics: m}
}

// WeekView is a resolved schedule together with its rendered rows and the
// neighbouring week ids.
type WeekView struct {
	*WeekSchedule
	Rows           []Row  `json:"rows"`
	PreviousWeekID string `json:"previous_week_id"`
	NextWeekID     string `json:"next_week_id"`
}

func parseWeek(weekID string) (model.WeekID, error) {
	week, err := model.ParseWeekID(weekID)
	if err != nil {
		return model.WeekID{}, apperrors.NewBadRequest("invalid week id", err)
	}
	return week, nil
}

// ResolveWeek loads the assignments and status of (teamID, weekID). A week
// without assignments or status record resolves to an empty draft.
func (s *Service) ResolveWeek(ctx context.Context, teamID, weekID string) (*WeekSchedule, error) {
	schedule, _, err := s.resolve(ctx, teamID, weekID)
	return schedule, err
}

// View resolves the week and renders it against the user and location
// directories.
func (s *Service) View(ctx context.Context, teamID, weekID string) (*WeekView, error) {
	week, err := parseWeek(weekID)
	if err != nil {
		return nil, err
	}
	schedule, users, err := s.resolve(ctx, teamID, week.String())
	if err != nil {
		return nil, err
	}
	locations, err := s.locationsOf(ctx, schedule.Assignments)
	if err != nil {
		return nil, err
	}
	return &WeekView{
		WeekSchedule:   schedule,
		Rows:           Render(schedule, users, locations),
		PreviousWeekID: week.Previous().String(),
		NextWeekID:     week.Next().String(),
	}, nil
}

type AssignmentFilter struct {
	TeamID string
	UserID string
}

// ListAssignments returns rota entries across weeks for a team, a user or
// both, oldest week first.
func (s *Service) ListAssignments(ctx context.Context, f AssignmentFilter) ([]model.RotaAssignment, error) {
	var (
		list []model.RotaAssignment
		err  error
	)
	switch {
	case f.UserID != "":
		list, err = s.repos.Assignments.ListByUser(ctx, f.UserID)
	case f.TeamID != "":
		list, err = s.repos.Assignments.ListByTeam(ctx, f.TeamID)
	default:
		return nil, apperrors.NewBadRequest("one of team_id or user_id is required", nil)
	}
	if err != nil {
		return nil, err
	}

	if f.UserID != "" && f.TeamID != "" {
		filtered := list[:0]
		for _, a := range list {
			if a.TeamID == f.TeamID {
				filtered = append(filtered, a)
			}
		}
		list = filtered
	}
	sortChronologically(list)
	return list, nil
}

// sortChronologically orders by week then day. Unparseable week ids sort
// first.
func sortChronologically(list []model.RotaAssignment) {
	weeks := make(map[string]model.WeekID, len(list))
	for _, a := range list {
		if _, ok := weeks[a.WeekID]; !ok {
			w, _ := model.ParseWeekID(a.WeekID)
			weeks[a.WeekID] = w
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		wi, wj := weeks[list[i].WeekID], weeks[list[j].WeekID]
		if wi != wj {
			return wi.Before(wj)
		}
		return list[i].DayIndex < list[j].DayIndex
	})
}

func (s *Service) resolve(ctx context.Context, teamID, weekID string) (*WeekSchedule, Users, error) {
	week, err := parseWeek(weekID)
	if err != nil {
		return nil, nil, err
	}
	assignments, err := s.repos.Assignments.ListByWeekTeam(ctx, week.String(), teamID)
	if err != nil {
		return nil, nil, err
	}
	status, err := s.repos.Statuses.Get(ctx, week.String(), teamID)
	if err != nil {
		return nil, nil, err
	}
	users, err := s.usersOf(ctx, assignments)
	if err != nil {
		return nil, nil, err
	}

	schedule := Resolve(week, teamID, assignments, status, users)
	s.metrics.WeeksResolved.Inc()
	log.Debug().
		Str("team_id", teamID).
		Str("week_id", schedule.WeekID).
		Int("assignments", len(assignments)).
		Str("status", string(schedule.Status)).
		Msg("Resolved rota week")
	return schedule, users, nil
}

func (s *Service) usersOf(ctx context.Context, assignments []model.RotaAssignment) (Users, error) {
	users := make(Users)
	looked := make(map[string]bool)
	for _, a := range assignments {
		if looked[a.UserID] {
			continue
		}
		looked[a.UserID] = true
		u, err := s.repos.Users.Get(ctx, a.UserID)
		if err != nil {
			return nil, err
		}
		if u != nil {
			users[a.UserID] = *u
		}
	}
	return users, nil
}

func (s *Service) locationsOf(ctx context.Context, assignments []model.RotaAssignment) (Locations, error) {
	locations := make(Locations)
	looked := make(map[string]bool)
	for _, a := range assignments {
		if looked[a.LocationID] {
			continue
		}
		looked[a.LocationID] = true
		loc, err := s.repos.Locations.Get(ctx, a.LocationID)
		if err != nil {
			return nil, err
		}
		if loc != nil {
			locations[a.LocationID] = *loc
		}
	}
	return locations, nil
}

// AddAssignment puts a user at a location on one day of the week and touches
// the week's lastModified.
func (s *Service) AddAssignment(ctx context.Context, teamID, weekID string, req *model.CreateRotaAssignmentRequest, actor string) (*model.RotaAssignment, error) {
	week, err := parseWeek(weekID)
	if err != nil {
		return nil, err
	}
	if req.DayIndex == nil || *req.DayIndex < 0 || *req.DayIndex >= model.DaysPerWeek {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("day_index must be between 0 and %d", model.DaysPerWeek-1), nil)
	}
	if req.UserID == "" || req.LocationID == "" {
		return nil, apperrors.NewBadRequest("user_id and location_id are required", nil)
	}
	team, err := s.repos.Teams.Get(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, apperrors.NewNotFound("team", teamID)
	}

	a, err := s.repos.Assignments.Create(ctx, model.RotaAssignment{
		WeekID:     week.String(),
		TeamID:     teamID,
		UserID:     req.UserID,
		DayIndex:   *req.DayIndex,
		LocationID: req.LocationID,
	}, actor)
	if err != nil {
		return nil, err
	}
	if err := s.touch(ctx, week.String(), teamID, actor); err != nil {
		return nil, err
	}
	return a, nil
}

// RemoveAssignment deletes a rota entry. Removing an unknown id is a no-op.
func (s *Service) RemoveAssignment(ctx context.Context, id, actor string) error {
	a, err := s.repos.Assignments.Delete(ctx, id)
	if err != nil {
		return err
	}
	if a == nil {
		return nil
	}
	return s.touch(ctx, a.WeekID, a.TeamID, actor)
}

// SetStatus publishes or reverts the week to draft.
func (s *Service) SetStatus(ctx context.Context, teamID, weekID string, status model.WeekStatusValue, actor string) (*model.WeekStatus, error) {
	week, err := parseWeek(weekID)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown week status %q", status), nil)
	}
	ws, err := s.repos.Statuses.Set(ctx, model.WeekStatus{
		WeekID: week.String(),
		TeamID: teamID,
		Status: status,
	}, actor)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("team_id", teamID).
		Str("week_id", ws.WeekID).
		Str("status", string(ws.Status)).
		Str("actor", model.Actor(actor)).
		Msg("Rota week status changed")
	return ws, nil
}

// touch bumps lastModified and keeps the current status.
func (s *Service) touch(ctx context.Context, weekID, teamID, actor string) error {
	current, err := s.repos.Statuses.Get(ctx, weekID, teamID)
	if err != nil {
		return err
	}
	status := model.WeekStatus{WeekID: weekID, TeamID: teamID, Status: model.WeekStatusDraft}
	if current != nil {
		status.Status = current.Status
	}
	_, err = s.repos.Statuses.Set(ctx, status, actor)
	return err
}
