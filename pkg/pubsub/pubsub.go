// Package pubsub carries change notifications between writers and live
// snapshot streams. A notification says only that a topic changed; readers
// reload the state themselves, so a dropped or coalesced notification never
// leaves a stream with stale data once the next one arrives.
package pubsub

import "context"

// Topics published by the services.
const (
	TopicSlots  = "slots"
	TopicConfig = "config"
)

// Broker delivers change notifications per topic.
type Broker interface {
	// Publish notifies every current subscriber of topic.
	Publish(ctx context.Context, topic string) error
	// Subscribe returns a channel that receives a value after each Publish on
	// topic. Notifications are coalesced when the reader is slow. The channel
	// is closed once ctx is done.
	Subscribe(ctx context.Context, topic string) (<-chan struct{}, error)
	Close() error
}

// notify performs a non-blocking send on a buffer of one, coalescing
// notifications the reader has not consumed yet.
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
