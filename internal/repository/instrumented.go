package repository

import (
	"context"
	"time"

	"github.com/jwalitptl/rota-api/pkg/metrics"
)

// InstrumentedStore records operation counts and latency for a DocumentStore.
type InstrumentedStore struct {
	next    DocumentStore
	metrics *metrics.Metrics
}

func NewInstrumentedStore(next DocumentStore, m *metrics.Metrics) *InstrumentedStore {
	return &InstrumentedStore{next: next, metrics: m}
}

func (s *InstrumentedStore) observe(op, collection string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.StoreOperations.WithLabelValues(op, collection, status).Inc()
	s.metrics.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *InstrumentedStore) Get(ctx context.Context, collection, id string) (*Record, error) {
	start := time.Now()
	rec, err := s.next.Get(ctx, collection, id)
	s.observe("get", collection, start, err)
	return rec, err
}

func (s *InstrumentedStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Record, error) {
	start := time.Now()
	recs, err := s.next.Query(ctx, collection, filters...)
	s.observe("query", collection, start, err)
	return recs, err
}

func (s *InstrumentedStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	start := time.Now()
	id, err := s.next.Add(ctx, collection, fields)
	s.observe("add", collection, start, err)
	return id, err
}

func (s *InstrumentedStore) AddIfAbsent(ctx context.Context, collection string, match []Filter, fields map[string]any) (string, error) {
	start := time.Now()
	id, err := s.next.AddIfAbsent(ctx, collection, match, fields)
	s.observe("add_if_absent", collection, start, err)
	return id, err
}

func (s *InstrumentedStore) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	start := time.Now()
	err := s.next.Set(ctx, collection, id, fields)
	s.observe("set", collection, start, err)
	return err
}

func (s *InstrumentedStore) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	start := time.Now()
	err := s.next.Update(ctx, collection, id, partial)
	s.observe("update", collection, start, err)
	return err
}

func (s *InstrumentedStore) Delete(ctx context.Context, collection, id string) error {
	start := time.Now()
	err := s.next.Delete(ctx, collection, id)
	s.observe("delete", collection, start, err)
	return err
}

func (s *InstrumentedStore) Batch() Batch {
	return &instrumentedBatch{Batch: s.next.Batch(), store: s}
}

func (s *InstrumentedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

type instrumentedBatch struct {
	Batch
	store *InstrumentedStore
}

func (b *instrumentedBatch) Commit(ctx context.Context) error {
	start := time.Now()
	err := b.Batch.Commit(ctx)
	b.store.observe("batch_commit", "batch", start, err)
	return err
}
