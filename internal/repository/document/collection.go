// Package document implements the repositories on top of a DocumentStore.
package document

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/internal/repository"
	"github.com/jwalitptl/rota-api/internal/repository/mapper"
	apperrors "github.com/jwalitptl/rota-api/pkg/errors"
)

// collection is the typed access path shared by every repository in this
// package. T is the entity the records of name map to.
type collection[T any] struct {
	store repository.DocumentStore
	name  string
	kind  model.Kind
}

func newCollection[T any](store repository.DocumentStore, name string, kind model.Kind) collection[T] {
	return collection[T]{store: store, name: name, kind: kind}
}

func (c collection[T]) get(ctx context.Context, id string) (*T, error) {
	rec, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return nil, apperrors.NewQuery(c.name, "id="+id, err)
	}
	if rec == nil {
		return nil, nil
	}
	return mapper.Map[T](c.kind, *rec), nil
}

func (c collection[T]) list(ctx context.Context, filters ...repository.Filter) ([]T, error) {
	recs, err := c.store.Query(ctx, c.name, filters...)
	if err != nil {
		return nil, apperrors.NewQuery(c.name, repository.DescribeFilters(filters), err)
	}
	return mapper.MapAll[T](c.kind, recs), nil
}

func (c collection[T]) exists(ctx context.Context, filters ...repository.Filter) (bool, error) {
	recs, err := c.store.Query(ctx, c.name, filters...)
	if err != nil {
		return false, apperrors.NewQuery(c.name, repository.DescribeFilters(filters), err)
	}
	return len(recs) > 0, nil
}

// create inserts fields and returns the stored entity as read back from the
// store.
func (c collection[T]) create(ctx context.Context, fields map[string]any) (*T, error) {
	id, err := c.store.Add(ctx, c.name, fields)
	if err != nil {
		return nil, apperrors.NewCreate(c.name, err)
	}
	return c.reread(ctx, id)
}

// createUnique rejects the insert when a record matching match exists. The
// explicit check gives the common case a cheap answer and AddIfAbsent closes
// the window between check and insert.
func (c collection[T]) createUnique(ctx context.Context, match []repository.Filter, fields map[string]any, relation string, keys ...string) (*T, error) {
	exists, err := c.exists(ctx, match...)
	if err != nil {
		return nil, apperrors.NewCreate(c.name, err)
	}
	if exists {
		return nil, apperrors.NewDuplicateAssignment(relation, keys...)
	}

	id, err := c.store.AddIfAbsent(ctx, c.name, match, fields)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateDocument) {
			return nil, apperrors.NewDuplicateAssignment(relation, keys...)
		}
		return nil, apperrors.NewCreate(c.name, err)
	}
	return c.reread(ctx, id)
}

func (c collection[T]) reread(ctx context.Context, id string) (*T, error) {
	out, err := c.get(ctx, id)
	if err != nil {
		return nil, apperrors.NewCreate(c.name, err)
	}
	if out == nil {
		return nil, apperrors.NewCreate(c.name, errors.New("created record "+id+" could not be read back"))
	}
	return out, nil
}

// update merges changes and stamps the actor. Missing ids yield NotFound.
func (c collection[T]) update(ctx context.Context, id string, changes map[string]any, actor string) (*T, error) {
	partial := repository.StripTimestamps(changes)
	delete(partial, repository.FieldCreatedByID)
	partial[repository.FieldUpdatedByID] = model.Actor(actor)

	if err := c.store.Update(ctx, c.name, id, partial); err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, apperrors.NewNotFound(c.name, id)
		}
		return nil, apperrors.NewUpdate(c.name, id, err)
	}

	out, err := c.get(ctx, id)
	if err != nil {
		return nil, apperrors.NewUpdate(c.name, id, err)
	}
	if out == nil {
		return nil, apperrors.NewUpdate(c.name, id, errors.New("updated record is malformed or gone"))
	}
	return out, nil
}

// remove deletes id and returns what was deleted. An absent id is not an
// error. A malformed record is still deleted but maps to nil.
func (c collection[T]) remove(ctx context.Context, id string) (*T, error) {
	rec, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return nil, apperrors.NewQuery(c.name, "id="+id, err)
	}
	if rec == nil {
		log.Debug().Str("collection", c.name).Str("id", id).Msg("Delete of absent record ignored")
		return nil, nil
	}
	if err := c.store.Delete(ctx, c.name, id); err != nil {
		return nil, apperrors.NewDelete(c.name, id, err)
	}
	return mapper.Map[T](c.kind, *rec), nil
}

func stamp(fields map[string]any, actor string) map[string]any {
	fields[repository.FieldCreatedByID] = model.Actor(actor)
	fields[repository.FieldUpdatedByID] = model.Actor(actor)
	return fields
}
