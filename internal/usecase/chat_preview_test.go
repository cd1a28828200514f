package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"flatnest/internal/stream"
)

// waitForPreviews reads snapshots until one satisfies the predicate. Updates
// are conflated, so intermediate states may be skipped; only the predicate
// state is asserted on.
func waitForPreviews(t *testing.T, l *stream.Listener[[]*ChatPreview], ok func([]*ChatPreview) bool) []*ChatPreview {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case previews, open := <-l.Updates():
			if !open {
				t.Fatalf("preview stream ended: %v", l.Err())
			}
			if ok(previews) {
				return previews
			}
		case <-deadline:
			t.Fatal("timed out waiting for preview snapshot")
		}
	}
}

func TestListenChatsForUserEmitsEmptyListForNoThreads(t *testing.T) {
	uc, _ := newTestChatUseCase()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := uc.ListenChatsForUser(ctx, "bob")
	defer l.Stop()

	previews := waitForPreviews(t, l, func(p []*ChatPreview) bool { return p != nil })
	assert.Empty(t, previews)
}

func TestListenChatsForUserCountsUnreadAndResetsOnRead(t *testing.T) {
	uc, _ := newTestChatUseCase()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chat, err := uc.GetOrCreateChat(ctx, "alice", "flat-1", "bob")
	assert.NoError(t, err)

	l := uc.ListenChatsForUser(ctx, "bob")
	defer l.Stop()

	for _, content := range []string{"hi", "anyone?", "hello??"} {
		_, err := uc.SendMessage(ctx, "alice", chat.ID, content)
		assert.NoError(t, err)
	}

	previews := waitForPreviews(t, l, func(p []*ChatPreview) bool {
		return len(p) == 1 && p[0].UnreadMessagesCount == 3
	})
	assert.Equal(t, chat.ID, previews[0].ChatID)
	assert.Equal(t, "flat-1", previews[0].FlatID)
	assert.Equal(t, "alice", previews[0].OtherUID)
	// Bob never opened the thread.
	assert.Nil(t, previews[0].LastReadAt)

	uc.MarkAsRead(ctx, "bob", chat.ID)

	previews = waitForPreviews(t, l, func(p []*ChatPreview) bool {
		return len(p) == 1 && p[0].UnreadMessagesCount == 0
	})
	assert.NotNil(t, previews[0].LastReadAt)
}

func TestListenChatsForUserNeverCountsOwnMessages(t *testing.T) {
	uc, _ := newTestChatUseCase()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chat, err := uc.GetOrCreateChat(ctx, "alice", "flat-1", "bob")
	assert.NoError(t, err)

	l := uc.ListenChatsForUser(ctx, "bob")
	defer l.Stop()

	_, err = uc.SendMessage(ctx, "bob", chat.ID, "I am interested")
	assert.NoError(t, err)
	_, err = uc.SendMessage(ctx, "alice", chat.ID, "Great, when can you visit?")
	assert.NoError(t, err)

	// Only the counterpart's message counts.
	waitForPreviews(t, l, func(p []*ChatPreview) bool {
		return len(p) == 1 && p[0].UnreadMessagesCount == 1
	})
}

func TestListenChatsForUserOrdersByLastActivity(t *testing.T) {
	uc, _ := newTestChatUseCase()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := uc.GetOrCreateChat(ctx, "alice", "flat-1", "bob")
	assert.NoError(t, err)
	second, err := uc.GetOrCreateChat(ctx, "alice", "flat-2", "bob")
	assert.NoError(t, err)

	l := uc.ListenChatsForUser(ctx, "bob")
	defer l.Stop()

	waitForPreviews(t, l, func(p []*ChatPreview) bool { return len(p) == 2 })

	// Activity in the older thread moves it to the front.
	_, err = uc.SendMessage(ctx, "alice", first.ID, "still there?")
	assert.NoError(t, err)

	previews := waitForPreviews(t, l, func(p []*ChatPreview) bool {
		return len(p) == 2 && p[0].ChatID == first.ID && p[0].UnreadMessagesCount == 1
	})
	assert.Equal(t, second.ID, previews[1].ChatID)
	assert.True(t, previews[0].LastMessageAt.After(previews[1].LastMessageAt))
}

func TestListenChatsForUserPicksUpNewThreads(t *testing.T) {
	uc, _ := newTestChatUseCase()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := uc.ListenChatsForUser(ctx, "bob")
	defer l.Stop()

	waitForPreviews(t, l, func(p []*ChatPreview) bool { return p != nil && len(p) == 0 })

	chat, err := uc.GetOrCreateChat(ctx, "alice", "flat-1", "bob")
	assert.NoError(t, err)

	previews := waitForPreviews(t, l, func(p []*ChatPreview) bool { return len(p) == 1 })
	assert.Equal(t, chat.ID, previews[0].ChatID)
	assert.Equal(t, 0, previews[0].UnreadMessagesCount)
}

func TestListenChatsForUserStopTearsDownChildren(t *testing.T) {
	uc, repo := newTestChatUseCase()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := uc.GetOrCreateChat(ctx, "alice", "flat-1", "bob")
	assert.NoError(t, err)

	l := uc.ListenChatsForUser(ctx, "bob")
	waitForPreviews(t, l, func(p []*ChatPreview) bool { return len(p) == 1 })

	l.Stop()

	// All child streams observe the teardown and close.
	assert.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		for _, sub := range repo.cursorSubs {
			select {
			case <-sub.l.Done():
			default:
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)
}
