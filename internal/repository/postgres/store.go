package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/rota-api/internal/repository"
)

// Store is a DocumentStore backed by the documents table. Each collection is
// a partition of that table and fields live in a JSONB column.
type Store struct {
	BaseRepository
	now func() time.Time
}

type documentRow struct {
	ID        string    `db:"id"`
	Fields    []byte    `db:"fields"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		BaseRepository: NewBaseRepository(db),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

var _ repository.DocumentStore = (*Store)(nil)

func (s *Store) Get(ctx context.Context, collection, id string) (*repository.Record, error) {
	query := `
		SELECT id, fields, created_at, updated_at
		FROM documents
		WHERE collection = $1 AND id = $2
	`
	var row documentRow
	if err := s.GetDB().GetContext(ctx, &row, query, collection, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapPostgresError(err)
	}

	rec, err := row.record()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) Query(ctx context.Context, collection string, filters ...repository.Filter) ([]repository.Record, error) {
	where, args := whereClause(collection, filters)
	query := `SELECT id, fields, created_at, updated_at FROM documents WHERE ` + where +
		` ORDER BY created_at, id`

	var rows []documentRow
	if err := s.GetDB().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, mapPostgresError(err)
	}

	records := make([]repository.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.insert(ctx, s.GetDB(), collection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

// AddIfAbsent serializes competing inserts for the same match key with a
// transaction scoped advisory lock before checking for an existing document.
func (s *Store) AddIfAbsent(ctx context.Context, collection string, match []repository.Filter, fields map[string]any) (string, error) {
	id := uuid.NewString()
	lockKey := collection + "|" + repository.DescribeFilters(match)

	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
			return err
		}

		where, args := whereClause(collection, match)
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM documents WHERE `+where+`)`, args...); err != nil {
			return err
		}
		if exists {
			return repository.ErrDuplicateDocument
		}
		return s.insert(ctx, tx, collection, id, fields)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	data, err := encodeFields(fields)
	if err != nil {
		return err
	}
	now := s.now()
	query := `
		INSERT INTO documents (collection, id, fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (collection, id)
		DO UPDATE SET fields = EXCLUDED.fields, updated_at = EXCLUDED.updated_at
	`
	_, err = s.GetDB().ExecContext(ctx, query, collection, id, data, now)
	return mapPostgresError(err)
}

func (s *Store) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	data, err := encodeFields(partial)
	if err != nil {
		return err
	}
	query := `
		UPDATE documents
		SET fields = fields || $3::jsonb, updated_at = $4
		WHERE collection = $1 AND id = $2
	`
	res, err := s.GetDB().ExecContext(ctx, query, collection, id, data, s.now())
	if err != nil {
		return mapPostgresError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrDocumentNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.GetDB().ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	return mapPostgresError(err)
}

func (s *Store) Batch() repository.Batch {
	return &batch{store: s}
}

func (s *Store) Ping(ctx context.Context) error {
	return mapPostgresError(s.GetDB().PingContext(ctx))
}

func (s *Store) insert(ctx context.Context, exec sqlx.ExecerContext, collection, id string, fields map[string]any) error {
	data, err := encodeFields(fields)
	if err != nil {
		return err
	}
	now := s.now()
	query := `
		INSERT INTO documents (collection, id, fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
	`
	_, err = exec.ExecContext(ctx, query, collection, id, data, now)
	return mapPostgresError(err)
}

// whereClause compiles equality filters to fields->>key = value with both
// key and value bound as parameters.
func whereClause(collection string, filters []repository.Filter) (string, []any) {
	conds := []string{"collection = $1"}
	args := []any{collection}
	for _, f := range filters {
		conds = append(conds, fmt.Sprintf("fields->>$%d = $%d", len(args)+1, len(args)+2))
		args = append(args, f.Field, f.Value)
	}
	return strings.Join(conds, " AND "), args
}

func encodeFields(fields map[string]any) ([]byte, error) {
	data, err := json.Marshal(repository.StripTimestamps(fields))
	if err != nil {
		return nil, fmt.Errorf("failed to encode document fields: %w", err)
	}
	return data, nil
}

func (r documentRow) record() (repository.Record, error) {
	fields := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(r.Fields))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return repository.Record{}, fmt.Errorf("failed to decode document %s: %w", r.ID, err)
	}
	created, updated := r.CreatedAt.UTC(), r.UpdatedAt.UTC()
	return repository.Record{
		ID:        r.ID,
		Fields:    fields,
		CreatedAt: &created,
		UpdatedAt: &updated,
	}, nil
}

type batch struct {
	store *Store
	ops   []repository.BatchOp
}

func (b *batch) Delete(collection, id string) {
	b.ops = append(b.ops, repository.BatchOp{Collection: collection, ID: id})
}

func (b *batch) Len() int { return len(b.ops) }

func (b *batch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	return b.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, op := range b.ops {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM documents WHERE collection = $1 AND id = $2`, op.Collection, op.ID); err != nil {
				return fmt.Errorf("failed to delete %s/%s: %w", op.Collection, op.ID, err)
			}
		}
		return nil
	})
}
