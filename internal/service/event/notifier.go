package event

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/rota-api/internal/cache"
	"github.com/jwalitptl/rota-api/internal/model"
)

// Notifier evicts local list views and tells other replicas to do the same.
// A nil publisher keeps invalidation local.
type Notifier struct {
	cache     *cache.ListCache
	publisher *Publisher
}

func NewNotifier(c *cache.ListCache, p *Publisher) *Notifier {
	return &Notifier{cache: c, publisher: p}
}

// Changed reports a mutation of one record. keys maps foreign key fields to
// the ids whose list views are now stale.
func (n *Notifier) Changed(ctx context.Context, collection string, action model.ChangeAction, recordID string, keys map[string]string, actor string) {
	n.cache.Invalidate(collection, keys)
	n.publish(ctx, model.ChangeEvent{
		Collection: collection,
		Action:     action,
		RecordID:   recordID,
		Keys:       keys,
		ActorID:    actor,
	})
}

// CollectionsChanged drops every view of the given collections, used after
// cascades that touch many parents at once.
func (n *Notifier) CollectionsChanged(ctx context.Context, collections []string, actor string) {
	for _, c := range collections {
		n.cache.InvalidateCollection(c)
		n.publish(ctx, model.ChangeEvent{Collection: c, Action: model.ChangeDelete, ActorID: actor})
	}
}

// publish failures are logged only; the local cache is already correct and
// remote views expire with the cache TTL.
func (n *Notifier) publish(ctx context.Context, ev model.ChangeEvent) {
	if n.publisher == nil {
		return
	}
	if err := n.publisher.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("collection", ev.Collection).Msg("Change event not delivered")
	}
}
