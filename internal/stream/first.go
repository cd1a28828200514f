package stream

import "context"

// First waits for the first snapshot of a live sequence and then stops it.
// Used by one-shot HTTP reads over live queries.
func First[T any](ctx context.Context, l *Listener[T]) (T, error) {
	defer l.Stop()

	var zero T
	select {
	case v, ok := <-l.Updates():
		if !ok {
			if err := l.Err(); err != nil {
				return zero, err
			}
			return zero, context.Canceled
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
