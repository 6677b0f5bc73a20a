package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	// Publish JSON encodes message and sends it on channel.
	Publish(ctx context.Context, channel string, message interface{}) error
	// Subscribe delivers raw payloads until ctx is done. The returned channel
	// is closed when the subscription ends.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// MessageBroker is the handler based view of a Broker used by workers.
type MessageBroker interface {
	Publish(ctx context.Context, topic string, message interface{}) error
	Subscribe(ctx context.Context, topic string, handler func([]byte) error) error
	Close() error
}
