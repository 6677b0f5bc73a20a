package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBroker_PublishSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewLocalBroker(10)
	ch, err := b.Subscribe(ctx, "rota.changes")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "rota.changes", map[string]string{"collection": "teams"}))
	require.NoError(t, b.Publish(ctx, "other", map[string]string{"ignored": "yes"}))

	select {
	case msg := <-ch:
		var got map[string]string
		require.NoError(t, json.Unmarshal(msg, &got))
		assert.Equal(t, "teams", got["collection"])
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-ch
		return !open
	}, time.Second, 10*time.Millisecond)
}

func TestLocalBroker_Close(t *testing.T) {
	b := NewLocalBroker(1)
	ch, err := b.Subscribe(context.Background(), "c")
	require.NoError(t, err)

	require.NoError(t, b.Close())
	_, open := <-ch
	assert.False(t, open)

	assert.ErrorIs(t, b.Publish(context.Background(), "c", "x"), ErrBrokerClosed)
	_, err = b.Subscribe(context.Background(), "c")
	assert.ErrorIs(t, err, ErrBrokerClosed)
	require.NoError(t, b.Close())
}

func TestBrokerAdapter_HandlerErrorsDoNotStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	adapter := NewBrokerAdapter(NewLocalBroker(10))

	var mu sync.Mutex
	var seen []string
	require.NoError(t, adapter.Subscribe(ctx, "topic", func(msg []byte) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, string(msg))
		return errors.New("handler failed")
	}))

	require.NoError(t, adapter.Publish(ctx, "topic", "one"))
	require.NoError(t, adapter.Publish(ctx, "topic", "two"))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{`"one"`, `"two"`}, seen)
	require.NoError(t, adapter.Close())
}
