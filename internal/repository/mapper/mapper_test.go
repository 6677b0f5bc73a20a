package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/internal/repository"
)

func rec(id string, fields map[string]any) repository.Record {
	return repository.Record{ID: id, Fields: fields}
}

func TestMap_Team(t *testing.T) {
	created := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	t.Run("optional fields default", func(t *testing.T) {
		r := rec("t1", map[string]any{"depId": "d1", "name": "Nights"})
		r.CreatedAt = &created

		team := Map[model.Team](model.KindTeam, r)
		require.NotNil(t, team)
		assert.Equal(t, "t1", team.ID)
		assert.Equal(t, "d1", team.DepID)
		assert.False(t, team.Active)
		assert.Equal(t, "", team.Description)
		assert.Equal(t, model.SystemActor, team.CreatedByID)
		assert.Equal(t, model.SystemActor, team.UpdatedByID)
		require.NotNil(t, team.CreatedAt)
		assert.True(t, team.CreatedAt.Equal(created))
		assert.Nil(t, team.UpdatedAt)
	})

	t.Run("missing required field", func(t *testing.T) {
		assert.Nil(t, Map[model.Team](model.KindTeam, rec("t2", map[string]any{"name": "No dep"})))
		assert.Nil(t, Map[model.Team](model.KindTeam, rec("t3", map[string]any{"depId": "d1", "name": ""})))
	})

	t.Run("wrong target type", func(t *testing.T) {
		assert.Nil(t, Map[model.User](model.KindTeam, rec("t4", map[string]any{"depId": "d1", "name": "x"})))
	})
}

func TestMap_User(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]any
		ok     bool
	}{
		{"first name only", map[string]any{"orgId": "o1", "firstName": "Ada"}, true},
		{"email only", map[string]any{"orgId": "o1", "email": "a@x.org"}, true},
		{"no name or email", map[string]any{"orgId": "o1"}, false},
		{"no org", map[string]any{"lastName": "Lovelace"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := Map[model.User](model.KindUser, rec("u1", tc.fields))
			assert.Equal(t, tc.ok, u != nil)
		})
	}
}

func TestMap_RotaAssignmentDayIndex(t *testing.T) {
	base := func(day any) map[string]any {
		return map[string]any{
			"weekId": "2024-W3", "teamId": "t1", "userId": "u1", "locationId": "l1", "dayIndex": day,
		}
	}

	for _, day := range []any{2, int64(2), float64(2), json.Number("2")} {
		a := Map[model.RotaAssignment](model.KindRotaAssignment, rec("a1", base(day)))
		require.NotNil(t, a)
		assert.Equal(t, 2, a.DayIndex)
	}

	assert.Nil(t, Map[model.RotaAssignment](model.KindRotaAssignment, rec("a2", base(2.5))))
	assert.Nil(t, Map[model.RotaAssignment](model.KindRotaAssignment, rec("a3", base("two"))))
	assert.Nil(t, Map[model.RotaAssignment](model.KindRotaAssignment, rec("a4", base(nil))))
}

func TestMap_WeekStatusDefaultsToDraft(t *testing.T) {
	ws := Map[model.WeekStatus](model.KindWeekStatus, rec("2024-W3_t1", map[string]any{
		"weekId": "2024-W3", "teamId": "t1", "status": "bogus",
	}))
	require.NotNil(t, ws)
	assert.Equal(t, model.WeekStatusDraft, ws.Status)
}

func TestMap_Timestamps(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fields := UserTeamFields(model.UserTeam{UserID: "u1", TeamID: "t1", StartDate: &start})

	ut := Map[model.UserTeam](model.KindUserTeam, rec("ut1", fields))
	require.NotNil(t, ut)
	require.NotNil(t, ut.StartDate)
	assert.True(t, ut.StartDate.Equal(start))
	assert.Nil(t, ut.EndDate)
	assert.Equal(t, model.SystemActor, ut.CreatedByID)

	fields["startDate"] = start
	ut = Map[model.UserTeam](model.KindUserTeam, rec("ut1", fields))
	require.NotNil(t, ut)
	assert.True(t, ut.StartDate.Equal(start))
}

func TestMapAll_DropsInvalid(t *testing.T) {
	recs := []repository.Record{
		rec("1", map[string]any{"teamId": "t1", "locationId": "l1"}),
		rec("2", map[string]any{"teamId": "t1", "locationId": "l2"}),
		rec("3", map[string]any{"teamId": "t1"}),
		rec("4", map[string]any{"teamId": "t1", "locationId": "l3"}),
	}

	out := MapAll[model.TeamLocation](model.KindTeamLocation, recs)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"1", "2", "4"}, []string{out[0].ID, out[1].ID, out[2].ID})

	empty := MapAll[model.TeamLocation](model.KindTeamLocation, nil)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestValidate(t *testing.T) {
	err := Validate(model.KindRotaAssignment, rec("a1", map[string]any{"weekId": "2024-W3", "dayIndex": "x"}))
	var merr *MappingError
	require.ErrorAs(t, err, &merr)
	assert.ElementsMatch(t, []string{"teamId", "userId", "locationId"}, merr.Missing)
	assert.Equal(t, []string{"dayIndex"}, merr.Invalid)
	assert.Contains(t, err.Error(), "rota_assignment a1")

	assert.NoError(t, Validate(model.KindDepartment, rec("d1", map[string]any{"name": "ED"})))
	assert.Error(t, Validate(model.Kind("nope"), rec("x", nil)))
}
