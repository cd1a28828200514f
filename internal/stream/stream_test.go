package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func recvWithTimeout[T any](t *testing.T, l *Listener[T]) (T, bool) {
	t.Helper()
	select {
	case v, ok := <-l.Updates():
		return v, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
		var zero T
		return zero, false
	}
}

func TestListenerDeliversSnapshots(t *testing.T) {
	l := NewListener[int]()

	assert.True(t, l.Publish(1))
	v, ok := recvWithTimeout(t, l)
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	assert.True(t, l.Publish(2))
	v, ok = recvWithTimeout(t, l)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestListenerConflatesWhenConsumerIsSlow(t *testing.T) {
	l := NewListener[int]()

	// Nobody is reading; later snapshots replace earlier ones.
	l.Publish(1)
	l.Publish(2)
	l.Publish(3)

	v, ok := recvWithTimeout(t, l)
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestListenerCloseEndsStreamCleanly(t *testing.T) {
	l := NewListener[string]()

	l.Publish("last")
	l.Close()

	v, ok := recvWithTimeout(t, l)
	assert.True(t, ok)
	assert.Equal(t, "last", v)

	_, ok = recvWithTimeout(t, l)
	assert.False(t, ok)
	assert.NoError(t, l.Err())
}

func TestListenerFailSurfacesTerminalError(t *testing.T) {
	l := NewListener[int]()
	wantErr := errors.New("backend gone")

	l.Fail(wantErr)

	_, ok := recvWithTimeout(t, l)
	assert.False(t, ok)
	assert.Equal(t, wantErr, l.Err())
}

func TestListenerPublishAfterCloseReportsFalse(t *testing.T) {
	l := NewListener[int]()
	l.Close()

	assert.False(t, l.Publish(42))
}

func TestListenerStopSignalsProducer(t *testing.T) {
	l := NewListener[int]()

	select {
	case <-l.Done():
		t.Fatal("done before Stop")
	default:
	}

	l.Stop()
	l.Stop() // idempotent

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after Stop")
	}
}

func TestFirstReturnsFirstSnapshotAndStops(t *testing.T) {
	l := NewListener[[]string]()
	l.Publish([]string{"a", "b"})

	v, err := First(context.Background(), l)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("First did not stop the listener")
	}
}

func TestFirstPropagatesStreamError(t *testing.T) {
	l := NewListener[int]()
	wantErr := errors.New("query failed")
	l.Fail(wantErr)

	_, err := First(context.Background(), l)
	assert.Equal(t, wantErr, err)
}

func TestFirstHonorsContextCancel(t *testing.T) {
	l := NewListener[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := First(ctx, l)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGroupSyncStartsAndStopsChildren(t *testing.T) {
	g := NewGroup()

	started := map[string]int{}
	stopped := map[string]int{}
	start := func(id string) func() {
		started[id]++
		return func() { stopped[id]++ }
	}

	g.Sync([]string{"a", "b"}, start)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 1, started["a"])
	assert.Equal(t, 1, started["b"])

	// a survives, b goes, c is new.
	g.Sync([]string{"a", "c"}, start)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 1, started["a"])
	assert.Equal(t, 1, stopped["b"])
	assert.Equal(t, 1, started["c"])

	g.StopAll()
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, 1, stopped["a"])
	assert.Equal(t, 1, stopped["c"])
}

func TestGroupSyncAfterStopAllIsNoop(t *testing.T) {
	g := NewGroup()
	g.StopAll()

	g.Sync([]string{"a"}, func(id string) func() {
		t.Fatal("child started after StopAll")
		return func() {}
	})
	assert.Equal(t, 0, g.Len())
}
