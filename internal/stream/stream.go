package stream

import "sync"

// Listener is a live sequence: the producer publishes a snapshot on subscribe
// and on every subsequent change, until the consumer calls Stop or the
// producer terminates the stream. Consumers range over Updates; the channel
// closes when the stream ends and Err reports the terminal error, if any.
//
// Updates are conflated: if the consumer is slow, a newer snapshot replaces
// the undelivered one. Every snapshot is complete, so the latest value is
// always sufficient.
type Listener[T any] struct {
	updates chan T

	mu     sync.Mutex
	closed bool
	err    error

	done     chan struct{}
	stopOnce sync.Once
}

func NewListener[T any]() *Listener[T] {
	return &Listener[T]{
		updates: make(chan T, 1),
		done:    make(chan struct{}),
	}
}

// Updates returns the channel of snapshots. It is closed when the stream
// terminates, after which Err reports why.
func (l *Listener[T]) Updates() <-chan T {
	return l.updates
}

// Stop cancels the subscription. It is safe to call more than once and safe
// to call concurrently with the producer. The producer observes Done and is
// responsible for closing the stream.
func (l *Listener[T]) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
}

// Done is closed once Stop has been called. Producers select on it to tear
// down their underlying queries.
func (l *Listener[T]) Done() <-chan struct{} {
	return l.done
}

// Err returns the terminal error of the stream, or nil for a clean close.
// Only meaningful after Updates has been closed.
func (l *Listener[T]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Publish delivers a snapshot to the consumer, replacing any undelivered
// previous snapshot. It reports false once the stream has been closed.
func (l *Listener[T]) Publish(v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	for {
		select {
		case l.updates <- v:
			return true
		default:
		}
		// Channel full: drop the stale snapshot and retry.
		select {
		case <-l.updates:
		default:
		}
	}
}

// Close ends the stream cleanly. Idempotent.
func (l *Listener[T]) Close() {
	l.terminate(nil)
}

// Fail ends the stream with an observable error so the consumer can react.
// Errors terminate the stream; they are never delivered inline.
func (l *Listener[T]) Fail(err error) {
	l.terminate(err)
}

func (l *Listener[T]) terminate(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.err = err
	close(l.updates)
}
