package event

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/pkg/messaging"
	"github.com/jwalitptl/rota-api/pkg/metrics"
)

type flakyBroker struct {
	messaging.Broker
	failures int32
	calls    atomic.Int32
}

func (b *flakyBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	if b.calls.Add(1) <= b.failures {
		return errors.New("transient")
	}
	return b.Broker.Publish(ctx, channel, message)
}

func TestPublisher_RetriesTransientFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	local := messaging.NewLocalBroker(10)
	sub, err := local.Subscribe(ctx, ChangesChannel)
	require.NoError(t, err)

	broker := &flakyBroker{Broker: local, failures: 2}
	m := metrics.NewNop()
	p := NewPublisher(broker, Config{Source: "node-a", InitialInterval: time.Millisecond}, m)

	require.NoError(t, p.Publish(ctx, model.ChangeEvent{
		Collection: "user_team_assignments",
		Action:     model.ChangeCreate,
		Keys:       map[string]string{"teamId": "t1", "userId": "u1"},
	}))
	assert.Equal(t, int32(3), broker.calls.Load())

	select {
	case raw := <-sub:
		var ev model.ChangeEvent
		require.NoError(t, json.Unmarshal(raw, &ev))
		assert.Equal(t, "node-a", ev.Source)
		assert.Equal(t, model.SystemActor, ev.ActorID)
		assert.NotEmpty(t, ev.ID)
		assert.Equal(t, "t1", ev.Keys["teamId"])
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("ok")))
}

func TestPublisher_GivesUp(t *testing.T) {
	broker := &flakyBroker{Broker: messaging.NewLocalBroker(1), failures: 100}
	m := metrics.NewNop()
	p := NewPublisher(broker, Config{MaxTries: 2, InitialInterval: time.Millisecond}, m)

	err := p.Publish(context.Background(), model.ChangeEvent{Collection: "x"})
	require.Error(t, err)
	assert.Equal(t, int32(2), broker.calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("error")))
}

func TestPublisher_ClosedBrokerIsPermanent(t *testing.T) {
	local := messaging.NewLocalBroker(1)
	require.NoError(t, local.Close())
	broker := &flakyBroker{Broker: local}

	p := NewPublisher(broker, Config{MaxTries: 5, InitialInterval: time.Millisecond}, nil)
	err := p.Publish(context.Background(), model.ChangeEvent{Collection: "x"})
	assert.ErrorIs(t, err, messaging.ErrBrokerClosed)
	assert.Equal(t, int32(1), broker.calls.Load())
}
