package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"flatnest/internal/domain/entity"
	"flatnest/pkg/errors"
)

func testUsers() (*entity.User, *entity.User) {
	alice := &entity.User{
		ID:        "alice",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Archer",
	}
	bob := &entity.User{
		ID:        "bob",
		Email:     "bob@example.com",
		FirstName: "Bob",
		LastName:  "Baker",
	}
	return alice, bob
}

func newTestChatUseCase() (*ChatUseCase, *fakeChatRepo) {
	alice, bob := testUsers()
	chatRepo := newFakeChatRepo()
	return NewChatUseCase(chatRepo, newFakeUserRepo(alice, bob)), chatRepo
}

func TestGetOrCreateChatIsSymmetricallyIdempotent(t *testing.T) {
	uc, _ := newTestChatUseCase()
	ctx := context.Background()

	first, err := uc.GetOrCreateChat(ctx, "alice", "flat-1", "bob")
	assert.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	// Same thread from the other side, participants swapped.
	second, err := uc.GetOrCreateChat(ctx, "bob", "flat-1", "alice")
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// A different flat between the same pair is a different thread.
	other, err := uc.GetOrCreateChat(ctx, "alice", "flat-2", "bob")
	assert.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestGetOrCreateChatSeedsCursors(t *testing.T) {
	uc, repo := newTestChatUseCase()
	ctx := context.Background()

	chat, err := uc.GetOrCreateChat(ctx, "alice", "flat-1", "bob")
	assert.NoError(t, err)

	// The creator has read their own empty thread; the counterpart has not.
	assert.NotNil(t, repo.cursors[chat.ID]["alice"])
	assert.Nil(t, repo.cursors[chat.ID]["bob"])
}

func TestGetOrCreateChatRejectsBadInput(t *testing.T) {
	uc, _ := newTestChatUseCase()
	ctx := context.Background()

	_, err := uc.GetOrCreateChat(ctx, "", "flat-1", "bob")
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))

	_, err = uc.GetOrCreateChat(ctx, "alice", "", "bob")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = uc.GetOrCreateChat(ctx, "alice", "flat-1", "")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = uc.GetOrCreateChat(ctx, "alice", "flat-1", "alice")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestSendMessageDenormalizesSenderAndTouchesThread(t *testing.T) {
	uc, repo := newTestChatUseCase()
	ctx := context.Background()

	chat, err := uc.GetOrCreateChat(ctx, "alice", "flat-1", "bob")
	assert.NoError(t, err)
	before := repo.chats[chat.ID].LastMessageAt

	msg, err := uc.SendMessage(ctx, "alice", chat.ID, "Is the flat still available?")
	assert.NoError(t, err)
	assert.Equal(t, "alice", msg.SenderUID)
	assert.Equal(t, "Alice Archer", msg.SenderName)
	assert.Equal(t, "alice@example.com", msg.SenderEmail)
	assert.False(t, msg.CreatedAt.IsZero())

	assert.True(t, repo.chats[chat.ID].LastMessageAt.After(before))
}

func TestSendMessageRejectsBlankContent(t *testing.T) {
	uc, repo := newTestChatUseCase()
	ctx := context.Background()

	chat, err := uc.GetOrCreateChat(ctx, "alice", "flat-1", "bob")
	assert.NoError(t, err)
	before := repo.chats[chat.ID].LastMessageAt

	_, err = uc.SendMessage(ctx, "alice", chat.ID, "   \t\n ")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	// Nothing was written.
	assert.Empty(t, repo.messages[chat.ID])
	assert.Equal(t, before, repo.chats[chat.ID].LastMessageAt)
}

func TestSendMessageRequiresParticipant(t *testing.T) {
	uc, _ := newTestChatUseCase()
	ctx := context.Background()

	chat, err := uc.GetOrCreateChat(ctx, "alice", "flat-1", "bob")
	assert.NoError(t, err)

	_, err = uc.SendMessage(ctx, "mallory", chat.ID, "hello")
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestListenMessagesOrderingIsNonDecreasing(t *testing.T) {
	uc, _ := newTestChatUseCase()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chat, err := uc.GetOrCreateChat(ctx, "alice", "flat-1", "bob")
	assert.NoError(t, err)

	for _, content := range []string{"one", "two", "three"} {
		_, err := uc.SendMessage(ctx, "alice", chat.ID, content)
		assert.NoError(t, err)
	}

	listener, err := uc.ListenMessages(ctx, "bob", chat.ID)
	assert.NoError(t, err)
	defer listener.Stop()

	select {
	case messages := <-listener.Updates():
		assert.Len(t, messages, 3)
		for i := 1; i < len(messages); i++ {
			assert.False(t, messages[i].CreatedAt.Before(messages[i-1].CreatedAt))
		}
		assert.Equal(t, "one", messages[0].Content)
		assert.Equal(t, "three", messages[2].Content)
	case <-time.After(2 * time.Second):
		t.Fatal("no message snapshot")
	}
}

func TestListenMessagesRequiresParticipant(t *testing.T) {
	uc, _ := newTestChatUseCase()
	ctx := context.Background()

	chat, err := uc.GetOrCreateChat(ctx, "alice", "flat-1", "bob")
	assert.NoError(t, err)

	_, err = uc.ListenMessages(ctx, "mallory", chat.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestMarkAsReadAdvancesCursor(t *testing.T) {
	uc, repo := newTestChatUseCase()
	ctx := context.Background()

	chat, err := uc.GetOrCreateChat(ctx, "alice", "flat-1", "bob")
	assert.NoError(t, err)
	assert.Nil(t, repo.cursors[chat.ID]["bob"])

	uc.MarkAsRead(ctx, "bob", chat.ID)
	assert.NotNil(t, repo.cursors[chat.ID]["bob"])
}

func TestMarkAsReadSwallowsFailures(t *testing.T) {
	uc, _ := newTestChatUseCase()

	// Unknown thread: must not panic and must not surface an error.
	uc.MarkAsRead(context.Background(), "bob", "no-such-chat")
	uc.MarkAsRead(context.Background(), "", "whatever")
}
