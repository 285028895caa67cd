package ports

import "context"

// EventPublisher publishes an already-encoded envelope to a topic, keyed for
// partition affinity. Router outputs go through this port; the pipeline
// pump retries a failed Publish until it succeeds or its context ends.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, payload []byte) error
}
