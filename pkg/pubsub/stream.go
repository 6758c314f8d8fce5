package pubsub

import "context"

// Loader reads the current state behind a topic.
type Loader[T any] func(ctx context.Context) (T, error)

// Fallback decides what a stream does when a load fails: deliver the returned
// value and keep going when ok is true, otherwise end the stream.
type Fallback[T any] func(err error) (value T, ok bool)

// Stream turns change notifications into a stream of full snapshots. The
// current state is delivered first, then a fresh snapshot after every
// notification. The output holds at most one pending snapshot and a newer
// one replaces it, so slow readers always see the latest state.
// The returned channel is closed when ctx is done, when notifications
// stop, or when a load fails and fallback declines to continue.
func Stream[T any](ctx context.Context, changes <-chan struct{}, load Loader[T], fallback Fallback[T]) <-chan T {
	out := make(chan T, 1)

	go func() {
		defer close(out)
		for {
			value, err := load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				var ok bool
				if value, ok = fallback(err); !ok {
					return
				}
			}
			replace(out, value)

			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
			}
		}
	}()
	return out
}

// replace swaps any unread snapshot for value. Only the Stream goroutine
// sends on out, so after draining there is room for the send.
func replace[T any](out chan T, value T) {
	select {
	case <-out:
	default:
	}
	out <- value
}
