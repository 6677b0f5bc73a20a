package document

import (
	"context"
	"time"

	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/internal/repository"
	"github.com/jwalitptl/rota-api/internal/repository/mapper"
	apperrors "github.com/jwalitptl/rota-api/pkg/errors"
)

type rotaAssignmentRepository struct {
	c collection[model.RotaAssignment]
}

func NewRotaAssignmentRepository(store repository.DocumentStore) repository.RotaAssignmentRepository {
	return &rotaAssignmentRepository{
		c: newCollection[model.RotaAssignment](store, repository.CollectionRotaAssignments, model.KindRotaAssignment),
	}
}

func (r *rotaAssignmentRepository) ListByWeekTeam(ctx context.Context, weekID, teamID string) ([]model.RotaAssignment, error) {
	return r.c.list(ctx,
		repository.Eq(repository.FieldWeekID, weekID),
		repository.Eq(repository.FieldTeamID, teamID),
	)
}

func (r *rotaAssignmentRepository) ListByTeam(ctx context.Context, teamID string) ([]model.RotaAssignment, error) {
	return r.c.list(ctx, repository.Eq(repository.FieldTeamID, teamID))
}

func (r *rotaAssignmentRepository) ListByUser(ctx context.Context, userID string) ([]model.RotaAssignment, error) {
	return r.c.list(ctx, repository.Eq(repository.FieldUserID, userID))
}

func (r *rotaAssignmentRepository) Get(ctx context.Context, id string) (*model.RotaAssignment, error) {
	return r.c.get(ctx, id)
}

// Create stores a rota entry. Duplicates for the same (team, week, user, day)
// are allowed.
func (r *rotaAssignmentRepository) Create(ctx context.Context, in model.RotaAssignment, actor string) (*model.RotaAssignment, error) {
	return r.c.create(ctx, stamp(mapper.RotaAssignmentFields(in), actor))
}

func (r *rotaAssignmentRepository) Delete(ctx context.Context, id string) (*model.RotaAssignment, error) {
	return r.c.remove(ctx, id)
}

type weekStatusRepository struct {
	c   collection[model.WeekStatus]
	now func() time.Time
}

func NewWeekStatusRepository(store repository.DocumentStore) repository.WeekStatusRepository {
	return &weekStatusRepository{
		c:   newCollection[model.WeekStatus](store, repository.CollectionWeekStatus, model.KindWeekStatus),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *weekStatusRepository) Get(ctx context.Context, weekID, teamID string) (*model.WeekStatus, error) {
	return r.c.get(ctx, model.WeekStatusID(weekID, teamID))
}

// Set writes the status under "<weekId>_<teamId>" and stamps lastModified.
// The original creator is preserved across rewrites.
func (r *weekStatusRepository) Set(ctx context.Context, status model.WeekStatus, actor string) (*model.WeekStatus, error) {
	id := model.WeekStatusID(status.WeekID, status.TeamID)
	if !status.Status.Valid() {
		status.Status = model.WeekStatusDraft
	}
	now := r.now()
	status.LastModified = &now
	status.UpdatedByID = model.Actor(actor)

	existing, err := r.c.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		status.CreatedByID = existing.CreatedByID
	} else {
		status.CreatedByID = model.Actor(actor)
	}

	if err := r.c.store.Set(ctx, r.c.name, id, mapper.WeekStatusFields(status)); err != nil {
		return nil, apperrors.NewUpdate(r.c.name, id, err)
	}
	out, err := r.c.get(ctx, id)
	if err != nil {
		return nil, apperrors.NewUpdate(r.c.name, id, err)
	}
	return out, nil
}
