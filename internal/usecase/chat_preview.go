package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"flatnest/internal/domain/entity"
	"flatnest/internal/domain/repository"
	"flatnest/internal/stream"
)

// ChatPreview is a derived, never-persisted summary of one thread from the
// viewer's perspective. It is recomputed whenever the thread, the viewer's
// cursor, or the message set changes.
type ChatPreview struct {
	ChatID              string     `json:"chat_id"`
	FlatID              string     `json:"flat_id"`
	OtherUID            string     `json:"other_uid"`
	LastMessageAt       time.Time  `json:"last_message_at"`
	LastReadAt          *time.Time `json:"last_read_at"`
	UnreadMessagesCount int        `json:"unread_messages_count"`
}

// ListenChatsForUser streams the user's chat previews ordered by last
// activity, newest first. For every thread it joins the viewer's read cursor
// and a live count of messages created after it; the whole list is re-emitted
// on every change of any part. A user with zero threads gets an immediate
// empty list. Stopping the returned listener cancels every per-thread
// sub-subscription.
func (uc *ChatUseCase) ListenChatsForUser(ctx context.Context, uid string) *stream.Listener[[]*ChatPreview] {
	out := stream.NewListener[[]*ChatPreview]()
	agg := &previewAggregator{
		uid:     uid,
		repo:    uc.chatRepo,
		out:     out,
		threads: make(map[string]*threadState),
		group:   stream.NewGroup(),
	}
	go agg.run(ctx)
	return out
}

// threadState is the join state for one thread. counted flips once the first
// unread count arrives; the combined list is withheld until every thread has
// reported, so consumers never see a preview with a placeholder count.
type threadState struct {
	chat     *entity.Chat
	lastRead *time.Time
	unread   int
	counted  bool
}

type previewAggregator struct {
	uid  string
	repo repository.ChatRepository
	out  *stream.Listener[[]*ChatPreview]

	mu      sync.Mutex
	threads map[string]*threadState

	// group indexes the per-thread child subscriptions so the changing
	// thread set can be diffed: additions start a child, removals cancel it.
	group *stream.Group
}

func (a *previewAggregator) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.group.StopAll()

	go func() {
		select {
		case <-a.out.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	parent := a.repo.ListenByParticipant(ctx, a.uid)
	defer parent.Stop()

	for {
		select {
		case chats, ok := <-parent.Updates():
			if !ok {
				if err := parent.Err(); err != nil {
					a.out.Fail(err)
				} else {
					a.out.Close()
				}
				return
			}
			a.applyThreadSet(ctx, chats)
		case <-ctx.Done():
			a.out.Close()
			return
		}
	}
}

func (a *previewAggregator) applyThreadSet(ctx context.Context, chats []*entity.Chat) {
	ids := make([]string, 0, len(chats))

	a.mu.Lock()
	keep := make(map[string]bool, len(chats))
	for _, chat := range chats {
		ids = append(ids, chat.ID)
		keep[chat.ID] = true
		if st, ok := a.threads[chat.ID]; ok {
			st.chat = chat
		} else {
			a.threads[chat.ID] = &threadState{chat: chat}
		}
	}
	for id := range a.threads {
		if !keep[id] {
			delete(a.threads, id)
		}
	}
	a.mu.Unlock()

	a.group.Sync(ids, func(id string) func() {
		return a.watchThread(ctx, id)
	})

	a.publish()
}

// watchThread joins one thread's cursor and unread count. Every cursor value
// restarts the messages-after-cursor query (the count is relative to the
// cursor, so the previous query is obsolete the moment the cursor moves).
func (a *previewAggregator) watchThread(ctx context.Context, chatID string) (cancel func()) {
	cctx, cancel := context.WithCancel(ctx)

	go func() {
		cursor := a.repo.ListenCursor(cctx, chatID, a.uid)
		defer cursor.Stop()

		var cancelCount context.CancelFunc
		defer func() {
			if cancelCount != nil {
				cancelCount()
			}
		}()

		for {
			select {
			case lastRead, ok := <-cursor.Updates():
				if !ok {
					return
				}
				a.setLastRead(chatID, lastRead)

				if cancelCount != nil {
					cancelCount()
				}
				var mctx context.Context
				mctx, cancelCount = context.WithCancel(cctx)
				msgs := a.repo.ListenMessagesAfter(mctx, chatID, lastRead)
				go a.countUnread(chatID, msgs)
			case <-cctx.Done():
				return
			}
		}
	}()

	return cancel
}

func (a *previewAggregator) countUnread(chatID string, msgs *stream.Listener[[]*entity.Message]) {
	defer msgs.Stop()

	for list := range msgs.Updates() {
		unread := 0
		for _, m := range list {
			// A viewer's own messages are never unread for them.
			if m.SenderUID != a.uid {
				unread++
			}
		}
		a.setUnread(chatID, unread)
	}
}

func (a *previewAggregator) setLastRead(chatID string, lastRead *time.Time) {
	a.mu.Lock()
	if st, ok := a.threads[chatID]; ok {
		st.lastRead = lastRead
	}
	a.mu.Unlock()
	a.publish()
}

func (a *previewAggregator) setUnread(chatID string, unread int) {
	a.mu.Lock()
	if st, ok := a.threads[chatID]; ok {
		st.unread = unread
		st.counted = true
	}
	a.mu.Unlock()
	a.publish()
}

// publish re-emits the full combined snapshot. An empty thread set is
// emitted immediately; a non-empty set waits until every thread's unread
// count has arrived at least once.
func (a *previewAggregator) publish() {
	a.mu.Lock()
	previews := make([]*ChatPreview, 0, len(a.threads))
	for _, st := range a.threads {
		if !st.counted {
			a.mu.Unlock()
			return
		}
		previews = append(previews, &ChatPreview{
			ChatID:              st.chat.ID,
			FlatID:              st.chat.FlatID,
			OtherUID:            st.chat.OtherParticipant(a.uid),
			LastMessageAt:       st.chat.LastMessageAt,
			LastReadAt:          st.lastRead,
			UnreadMessagesCount: st.unread,
		})
	}
	a.mu.Unlock()

	sort.Slice(previews, func(i, j int) bool {
		return previews[i].LastMessageAt.After(previews[j].LastMessageAt)
	})

	a.out.Publish(previews)
}
