package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"flatnest/internal/domain/entity"
	"flatnest/internal/domain/repository"
	"flatnest/internal/stream"
	"flatnest/pkg/errors"
)

// fakeChatRepo is an in-memory ChatRepository with working live streams.
// Every mutation republishes fresh snapshots to the affected listeners, the
// same way the backing store's snapshot listeners behave. A fake monotonic
// clock stands in for server timestamps so ordering is deterministic.
type fakeChatRepo struct {
	mu    sync.Mutex
	clock time.Time
	seq   int

	chats    map[string]*entity.Chat
	cursors  map[string]map[string]*time.Time
	messages map[string][]*entity.Message

	chatSubs   []*chatSub
	cursorSubs []*cursorSub
	msgSubs    []*msgSub
}

type chatSub struct {
	uid string
	l   *stream.Listener[[]*entity.Chat]
}

type cursorSub struct {
	chatID string
	uid    string
	l      *stream.Listener[*time.Time]
}

type msgSub struct {
	chatID string
	after  *time.Time
	l      *stream.Listener[[]*entity.Message]
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		chats:    make(map[string]*entity.Chat),
		cursors:  make(map[string]map[string]*time.Time),
		messages: make(map[string][]*entity.Message),
	}
}

// now advances the fake clock so every write lands on a distinct instant.
func (r *fakeChatRepo) now() time.Time {
	r.clock = r.clock.Add(time.Millisecond)
	return r.clock
}

func (r *fakeChatRepo) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func samePair(a []string, x, y string) bool {
	if len(a) != 2 {
		return false
	}
	return (a[0] == x && a[1] == y) || (a[0] == y && a[1] == x)
}

func (r *fakeChatRepo) FindByFlatAndParticipants(ctx context.Context, flatID, uidA, uidB string) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, chat := range r.chats {
		if chat.FlatID == flatID && samePair(chat.Participants, uidA, uidB) {
			cp := *chat
			return &cp, nil
		}
	}
	return nil, errors.NotFound("Chat", nil)
}

func (r *fakeChatRepo) Create(ctx context.Context, chat *entity.Chat) error {
	r.mu.Lock()
	if chat.ID == "" {
		chat.ID = r.nextID("chat")
	}
	chat.CreatedAt = r.now()
	chat.LastMessageAt = chat.CreatedAt
	cp := *chat
	r.chats[chat.ID] = &cp
	r.mu.Unlock()

	r.notifyChats()
	return nil
}

func (r *fakeChatRepo) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chat, ok := r.chats[id]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	cp := *chat
	return &cp, nil
}

func (r *fakeChatRepo) ListenByParticipant(ctx context.Context, uid string) *stream.Listener[[]*entity.Chat] {
	l := stream.NewListener[[]*entity.Chat]()
	closeOnDone(ctx, l)

	r.mu.Lock()
	r.chatSubs = append(r.chatSubs, &chatSub{uid: uid, l: l})
	l.Publish(r.chatsForLocked(uid))
	r.mu.Unlock()

	return l
}

func (r *fakeChatRepo) chatsForLocked(uid string) []*entity.Chat {
	out := make([]*entity.Chat, 0)
	for _, chat := range r.chats {
		if chat.HasParticipant(uid) {
			cp := *chat
			out = append(out, &cp)
		}
	}
	return out
}

func (r *fakeChatRepo) notifyChats() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.chatSubs {
		sub.l.Publish(r.chatsForLocked(sub.uid))
	}
}

func (r *fakeChatRepo) SeedCursor(ctx context.Context, chatID, uid string, read bool) error {
	r.mu.Lock()
	if r.cursors[chatID] == nil {
		r.cursors[chatID] = make(map[string]*time.Time)
	}
	if read {
		t := r.now()
		r.cursors[chatID][uid] = &t
	} else {
		r.cursors[chatID][uid] = nil
	}
	r.mu.Unlock()

	r.notifyCursor(chatID, uid)
	return nil
}

func (r *fakeChatRepo) TouchCursor(ctx context.Context, chatID, uid string) error {
	r.mu.Lock()
	if _, ok := r.cursors[chatID][uid]; !ok {
		r.mu.Unlock()
		return errors.NotFound("Read state", nil)
	}
	t := r.now()
	r.cursors[chatID][uid] = &t
	r.mu.Unlock()

	r.notifyCursor(chatID, uid)
	return nil
}

func (r *fakeChatRepo) ListenCursor(ctx context.Context, chatID, uid string) *stream.Listener[*time.Time] {
	l := stream.NewListener[*time.Time]()
	closeOnDone(ctx, l)

	r.mu.Lock()
	r.cursorSubs = append(r.cursorSubs, &cursorSub{chatID: chatID, uid: uid, l: l})
	l.Publish(r.cursors[chatID][uid])
	r.mu.Unlock()

	return l
}

func (r *fakeChatRepo) notifyCursor(chatID, uid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.cursorSubs {
		if sub.chatID == chatID && sub.uid == uid {
			sub.l.Publish(r.cursors[chatID][uid])
		}
	}
}

func (r *fakeChatRepo) CreateMessage(ctx context.Context, msg *entity.Message) error {
	r.mu.Lock()
	if msg.ID == "" {
		msg.ID = r.nextID("msg")
	}
	msg.CreatedAt = r.now()
	cp := *msg
	r.messages[msg.ChatID] = append(r.messages[msg.ChatID], &cp)
	r.mu.Unlock()

	r.notifyMessages(msg.ChatID)
	return nil
}

func (r *fakeChatRepo) TouchLastMessage(ctx context.Context, chatID string) error {
	r.mu.Lock()
	chat, ok := r.chats[chatID]
	if !ok {
		r.mu.Unlock()
		return errors.NotFound("Chat", nil)
	}
	chat.LastMessageAt = r.now()
	r.mu.Unlock()

	r.notifyChats()
	return nil
}

func (r *fakeChatRepo) ListenMessages(ctx context.Context, chatID string) *stream.Listener[[]*entity.Message] {
	return r.listenMessages(ctx, chatID, nil)
}

func (r *fakeChatRepo) ListenMessagesAfter(ctx context.Context, chatID string, after *time.Time) *stream.Listener[[]*entity.Message] {
	return r.listenMessages(ctx, chatID, after)
}

func (r *fakeChatRepo) listenMessages(ctx context.Context, chatID string, after *time.Time) *stream.Listener[[]*entity.Message] {
	l := stream.NewListener[[]*entity.Message]()
	closeOnDone(ctx, l)

	r.mu.Lock()
	r.msgSubs = append(r.msgSubs, &msgSub{chatID: chatID, after: after, l: l})
	l.Publish(r.messagesForLocked(chatID, after))
	r.mu.Unlock()

	return l
}

func (r *fakeChatRepo) messagesForLocked(chatID string, after *time.Time) []*entity.Message {
	out := make([]*entity.Message, 0)
	for _, msg := range r.messages[chatID] {
		if after != nil && !msg.CreatedAt.After(*after) {
			continue
		}
		cp := *msg
		out = append(out, &cp)
	}
	return out
}

func (r *fakeChatRepo) notifyMessages(chatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.msgSubs {
		if sub.chatID == chatID {
			sub.l.Publish(r.messagesForLocked(chatID, sub.after))
		}
	}
}

func closeOnDone[T any](ctx context.Context, l *stream.Listener[T]) {
	go func() {
		select {
		case <-ctx.Done():
		case <-l.Done():
		}
		l.Close()
	}()
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

var _ repository.ChatRepository = (*fakeChatRepo)(nil)
var _ repository.UserRepository = (*fakeUserRepo)(nil)
