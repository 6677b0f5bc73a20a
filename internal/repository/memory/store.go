package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/rota-api/internal/repository"
)

type document struct {
	fields    map[string]any
	createdAt time.Time
	updatedAt time.Time
}

// Store is an in-memory DocumentStore for development and testing. Every
// call is serialized by a single lock.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]*document
	now         func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		collections: make(map[string]map[string]*document),
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ repository.DocumentStore = (*Store)(nil)

func (s *Store) Get(ctx context.Context, collection, id string) (*repository.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, nil
	}
	rec := doc.record(id)
	return &rec, nil
}

func (s *Store) Query(ctx context.Context, collection string, filters ...repository.Filter) ([]repository.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.queryLocked(collection, filters)
	repository.SortRecords(records)
	return records, nil
}

func (s *Store) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertLocked(collection, fields), nil
}

func (s *Store) AddIfAbsent(ctx context.Context, collection string, match []repository.Filter, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queryLocked(collection, match)) > 0 {
		return "", repository.ErrDuplicateDocument
	}
	return s.insertLocked(collection, fields), nil
}

func (s *Store) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	docs := s.collectionLocked(collection)
	created := now
	if existing, ok := docs[id]; ok {
		created = existing.createdAt
	}
	docs[id] = &document{
		fields:    repository.StripTimestamps(fields),
		createdAt: created,
		updatedAt: now,
	}
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return repository.ErrDocumentNotFound
	}
	merged := repository.CloneFields(doc.fields)
	for k, v := range repository.StripTimestamps(partial) {
		merged[k] = v
	}
	doc.fields = merged
	doc.updatedAt = s.now()
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections[collection], id)
	return nil
}

func (s *Store) Batch() repository.Batch {
	return &batch{store: s}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len returns the number of records in collection.
func (s *Store) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

func (s *Store) collectionLocked(collection string) map[string]*document {
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]*document)
		s.collections[collection] = docs
	}
	return docs
}

func (s *Store) queryLocked(collection string, filters []repository.Filter) []repository.Record {
	records := make([]repository.Record, 0)
	for id, doc := range s.collections[collection] {
		if repository.Matches(doc.fields, filters) {
			records = append(records, doc.record(id))
		}
	}
	return records
}

func (s *Store) insertLocked(collection string, fields map[string]any) string {
	id := uuid.NewString()
	now := s.now()
	s.collectionLocked(collection)[id] = &document{
		fields:    repository.StripTimestamps(fields),
		createdAt: now,
		updatedAt: now,
	}
	return id
}

// record returns a copy so callers cannot mutate stored state.
func (d *document) record(id string) repository.Record {
	created, updated := d.createdAt, d.updatedAt
	return repository.Record{
		ID:        id,
		Fields:    repository.CloneFields(d.fields),
		CreatedAt: &created,
		UpdatedAt: &updated,
	}
}

type batch struct {
	store *Store
	ops   []repository.BatchOp
}

func (b *batch) Delete(collection, id string) {
	b.ops = append(b.ops, repository.BatchOp{Collection: collection, ID: id})
}

func (b *batch) Len() int { return len(b.ops) }

// Commit applies every queued delete under one lock acquisition, so readers
// never observe a partial batch.
func (b *batch) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	for _, op := range b.ops {
		delete(b.store.collections[op.Collection], op.ID)
	}
	return nil
}
