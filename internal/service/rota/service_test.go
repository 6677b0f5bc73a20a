package rota

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/internal/repository/document"
	"github.com/jwalitptl/rota-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/rota-api/pkg/errors"
)

type fixture struct {
	svc    *Service
	teamID string
	users  map[string]string
	locID  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := Repositories{
		Assignments: document.NewRotaAssignmentRepository(store),
		Statuses:    document.NewWeekStatusRepository(store),
		Teams:       document.NewTeamRepository(store),
		Users:       document.NewUserRepository(store),
		Locations:   document.NewLocationRepository(store),
	}
	team, err := repos.Teams.Create(ctx, model.Team{DepID: "d1", Name: "Nights"}, "")
	require.NoError(t, err)
	f := &fixture{svc: NewService(repos, nil), teamID: team.ID, users: map[string]string{}}
	for _, last := range []string{"Young", "Baker"} {
		u, err := repos.Users.Create(ctx, model.User{OrgID: "o1", FirstName: "Sam", LastName: last}, "")
		require.NoError(t, err)
		f.users[last] = u.ID
	}
	loc, err := repos.Locations.Create(ctx, model.Location{HospID: "h1", Name: "Ward 7"}, "")
	require.NoError(t, err)
	f.locID = loc.ID
	return f
}

func day(i int) *int { return &i }

func TestService_AddResolveAndPublish(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	view, err := f.svc.View(ctx, f.teamID, "2024-W10")
	require.NoError(t, err)
	assert.Equal(t, model.WeekStatusDraft, view.Status)
	assert.Empty(t, view.Rows)

	for _, last := range []string{"Young", "Baker"} {
		_, err := f.svc.AddAssignment(ctx, f.teamID, "2024-W10", &model.CreateRotaAssignmentRequest{
			UserID: f.users[last], DayIndex: day(1), LocationID: f.locID,
		}, "manager")
		require.NoError(t, err)
	}

	view, err = f.svc.View(ctx, f.teamID, "2024-W10")
	require.NoError(t, err)
	assert.Equal(t, model.WeekStatusDraft, view.Status)
	assert.NotNil(t, view.LastModified, "adding touches the week")
	assert.Equal(t, []string{f.users["Baker"], f.users["Young"]}, view.UserIDs)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, "Sam Baker", view.Rows[0].Name)
	assert.Equal(t, "Ward 7", view.Rows[0].Days[1][0].LocationName)

	ws, err := f.svc.SetStatus(ctx, f.teamID, "2024-W10", model.WeekStatusPublished, "manager")
	require.NoError(t, err)
	assert.Equal(t, model.WeekStatusPublished, ws.Status)

	// Further edits keep the published status.
	a, err := f.svc.AddAssignment(ctx, f.teamID, "2024-W10", &model.CreateRotaAssignmentRequest{
		UserID: f.users["Baker"], DayIndex: day(1), LocationID: "elsewhere",
	}, "manager")
	require.NoError(t, err)

	s, err := f.svc.ResolveWeek(ctx, f.teamID, "2024-W10")
	require.NoError(t, err)
	assert.Equal(t, model.WeekStatusPublished, s.Status)
	assert.Len(t, s.Slot(f.users["Baker"], 1), 2)

	require.NoError(t, f.svc.RemoveAssignment(ctx, a.ID, "manager"))
	require.NoError(t, f.svc.RemoveAssignment(ctx, a.ID, "manager"))
	s, err = f.svc.ResolveWeek(ctx, f.teamID, "2024-W10")
	require.NoError(t, err)
	assert.Len(t, s.Slot(f.users["Baker"], 1), 1)
}

func TestService_NormalizesWeekID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.svc.AddAssignment(ctx, f.teamID, "2024-W03", &model.CreateRotaAssignmentRequest{
		UserID: "u1", DayIndex: day(0), LocationID: f.locID,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-W3", a.WeekID)

	s, err := f.svc.ResolveWeek(ctx, f.teamID, "2024-W3")
	require.NoError(t, err)
	assert.Len(t, s.Assignments, 1)
}

func TestService_AddAssignmentValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name    string
		team    string
		week    string
		req     model.CreateRotaAssignmentRequest
		wantErr error
	}{
		{"bad week", f.teamID, "2024-3", model.CreateRotaAssignmentRequest{UserID: "u", DayIndex: day(0), LocationID: "l"}, apperrors.BadRequestKind},
		{"week 53 in short year", f.teamID, "2023-W53", model.CreateRotaAssignmentRequest{UserID: "u", DayIndex: day(0), LocationID: "l"}, apperrors.BadRequestKind},
		{"day too large", f.teamID, "2024-W3", model.CreateRotaAssignmentRequest{UserID: "u", DayIndex: day(7), LocationID: "l"}, apperrors.BadRequestKind},
		{"negative day", f.teamID, "2024-W3", model.CreateRotaAssignmentRequest{UserID: "u", DayIndex: day(-1), LocationID: "l"}, apperrors.BadRequestKind},
		{"missing day", f.teamID, "2024-W3", model.CreateRotaAssignmentRequest{UserID: "u", LocationID: "l"}, apperrors.BadRequestKind},
		{"unknown team", "nope", "2024-W3", model.CreateRotaAssignmentRequest{UserID: "u", DayIndex: day(0), LocationID: "l"}, apperrors.NotFoundKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.svc.AddAssignment(ctx, tt.team, tt.week, &req, "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_SetStatusRejectsUnknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SetStatus(context.Background(), f.teamID, "2024-W3", "archived", "")
	assert.ErrorIs(t, err, apperrors.BadRequestKind)
}
