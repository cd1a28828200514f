package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"flatnest/internal/stream"
	"flatnest/pkg/errors"
	"flatnest/pkg/logger"
)

// listenQuery pumps Firestore query snapshots into a live sequence. The
// watcher goroutine cancels the snapshot iterator when the consumer stops
// the listener, so the underlying watch is always released.
func listenQuery[T any](ctx context.Context, q firestore.Query, decode func(*firestore.DocumentSnapshot) (T, error)) *stream.Listener[[]T] {
	l := stream.NewListener[[]T]()
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		select {
		case <-l.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	go func() {
		defer cancel()
		it := q.Snapshots(ctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				failOrClose(l.Fail, l.Close, ctx, err)
				return
			}

			var out []T
			docs := snap.Documents
			for {
				doc, derr := docs.Next()
				if derr == iterator.Done {
					break
				}
				if derr != nil {
					failOrClose(l.Fail, l.Close, ctx, derr)
					return
				}
				v, decErr := decode(doc)
				if decErr != nil {
					logger.Warn("skipping malformed document %s: %v", doc.Ref.Path, decErr)
					continue
				}
				out = append(out, v)
			}

			if out == nil {
				out = []T{}
			}
			if !l.Publish(out) {
				return
			}
		}
	}()

	return l
}

// listenDoc pumps snapshots of a single document. Missing documents are
// delivered to decode as a nil snapshot rather than terminating the stream.
func listenDoc[T any](ctx context.Context, ref *firestore.DocumentRef, decode func(*firestore.DocumentSnapshot) (T, error)) *stream.Listener[T] {
	l := stream.NewListener[T]()
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		select {
		case <-l.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	go func() {
		defer cancel()
		it := ref.Snapshots(ctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				failOrClose(l.Fail, l.Close, ctx, err)
				return
			}
			if !snap.Exists() {
				snap = nil
			}
			v, decErr := decode(snap)
			if decErr != nil {
				logger.Warn("skipping malformed document %s: %v", ref.Path, decErr)
				continue
			}
			if !l.Publish(v) {
				return
			}
		}
	}()

	return l
}

// failOrClose distinguishes consumer-driven cancellation, which ends the
// stream cleanly, from a genuine store failure, which must terminate the
// stream observably so the consumer can react.
func failOrClose(fail func(error), closeFn func(), ctx context.Context, err error) {
	if ctx.Err() != nil || status.Code(err) == codes.Canceled {
		closeFn()
		return
	}
	fail(errors.Internal("live query failed", err))
}
