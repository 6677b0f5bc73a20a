package document

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/internal/repository"
	"github.com/jwalitptl/rota-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/rota-api/pkg/errors"
)

func TestDirectory_TeamCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewTeamRepository(memory.NewStore())

	team, err := repo.Create(ctx, model.Team{DepID: "d1", OrgID: "o1", Name: "Nights", Active: true}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "Nights", team.Name)
	assert.True(t, team.Active)

	got, err := repo.Get(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, team.ID, got.ID)

	updated, err := repo.Update(ctx, team.ID, map[string]any{"name": "Days", "createdById": "hijack"}, "editor")
	require.NoError(t, err)
	assert.Equal(t, "Days", updated.Name)
	assert.Equal(t, "admin", updated.CreatedByID)
	assert.Equal(t, "editor", updated.UpdatedByID)

	list, err := repo.List(ctx, repository.Eq(repository.FieldDepID, "d1"))
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.Update(ctx, "missing", map[string]any{"name": "x"}, "")
	assert.ErrorIs(t, err, apperrors.NotFoundKind)

	require.NoError(t, repo.Delete(ctx, team.ID))
	require.NoError(t, repo.Delete(ctx, team.ID))
	got, err = repo.Get(ctx, team.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDirectory_UserRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(memory.NewStore())

	u, err := repo.Create(ctx, model.User{
		OrgID: "o1", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.org", Role: model.UserRoleStaff,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", u.DisplayName())
	assert.Nil(t, u.LastLogin)
}
