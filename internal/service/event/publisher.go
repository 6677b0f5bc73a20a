package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/pkg/messaging"
	"github.com/jwalitptl/rota-api/pkg/messaging/redis"
	"github.com/jwalitptl/rota-api/pkg/metrics"
)

// ChangesChannel carries ChangeEvents between replicas.
const ChangesChannel = "rota.changes"

type Config struct {
	Channel         string
	Source          string
	MaxTries        uint
	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
}

// Publisher announces mutations so other replicas can drop stale list views.
type Publisher struct {
	broker  messaging.Broker
	cfg     Config
	metrics *metrics.Metrics
}

func NewPublisher(broker messaging.Broker, cfg Config, m *metrics.Metrics) *Publisher {
	if cfg.Channel == "" {
		cfg.Channel = ChangesChannel
	}
	if cfg.Source == "" {
		cfg.Source = uuid.NewString()
	}
	if cfg.MaxTries == 0 {
		cfg.MaxTries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxElapsedTime == 0 {
		cfg.MaxElapsedTime = 2 * time.Second
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Publisher{broker: broker, cfg: cfg, metrics: m}
}

// Source identifies this process in published events.
func (p *Publisher) Source() string {
	return p.cfg.Source
}

func (p *Publisher) Channel() string {
	return p.cfg.Channel
}

// Publish sends ev, retrying transient broker failures with exponential
// backoff. An open circuit breaker is not retried.
func (p *Publisher) Publish(ctx context.Context, ev model.ChangeEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	ev.Source = p.cfg.Source
	ev.ActorID = model.Actor(ev.ActorID)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.InitialInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := p.broker.Publish(ctx, p.cfg.Channel, ev)
		if errors.Is(err, redis.ErrBreakerOpen) || errors.Is(err, messaging.ErrBrokerClosed) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.cfg.MaxTries),
		backoff.WithMaxElapsedTime(p.cfg.MaxElapsedTime),
	)
	if err != nil {
		p.metrics.EventsPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to publish %s change event: %w", ev.Collection, err)
	}

	p.metrics.EventsPublished.WithLabelValues("ok").Inc()
	log.Debug().
		Str("collection", ev.Collection).
		Str("action", string(ev.Action)).
		Interface("keys", ev.Keys).
		Msg("Published change event")
	return nil
}
