package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/rota-api/internal/cache"
	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/pkg/messaging"
	"github.com/jwalitptl/rota-api/pkg/metrics"
)

// InvalidationWorker applies change events published by other replicas to
// the local list cache.
type InvalidationWorker struct {
	broker  messaging.MessageBroker
	cache   *cache.ListCache
	channel string
	source  string
	metrics *metrics.Metrics
}

// NewInvalidationWorker subscribes to channel. Events carrying source were
// published by this process and are already applied.
func NewInvalidationWorker(broker messaging.MessageBroker, c *cache.ListCache, channel, source string, m *metrics.Metrics) *InvalidationWorker {
	if m == nil {
		m = metrics.NewNop()
	}
	return &InvalidationWorker{
		broker:  broker,
		cache:   c,
		channel: channel,
		source:  source,
		metrics: m,
	}
}

// Start subscribes and returns. Messages are handled until ctx is done.
func (w *InvalidationWorker) Start(ctx context.Context) error {
	if err := w.broker.Subscribe(ctx, w.channel, w.handle); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", w.channel, err)
	}
	log.Info().Str("channel", w.channel).Msg("Cache invalidation worker started")
	return nil
}

func (w *InvalidationWorker) handle(payload []byte) error {
	var ev model.ChangeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("failed to decode change event: %w", err)
	}
	w.metrics.EventsReceived.Inc()
	if ev.Source == w.source {
		return nil
	}
	if ev.Collection == "" {
		return fmt.Errorf("change event %s has no collection", ev.ID)
	}

	w.cache.Invalidate(ev.Collection, ev.Keys)
	log.Debug().
		Str("collection", ev.Collection).
		Str("source", ev.Source).
		Interface("keys", ev.Keys).
		Msg("Applied remote change event")
	return nil
}
