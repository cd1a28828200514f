package repository

import (
	"context"
	"time"

	"flatnest/internal/domain/entity"
	"flatnest/internal/stream"
)

// ChatRepository is the document-store surface of the chat subsystem: point
// reads and writes plus live queries. Listen methods return a live sequence
// that emits the current snapshot immediately and again on every change; the
// caller must Stop it (or cancel ctx) when done.
type ChatRepository interface {
	// FindByFlatAndParticipants looks up the chat for a flat and an unordered
	// participant pair. Both orderings are checked, since array equality is
	// not symmetric. Returns NOT_FOUND when no such chat exists.
	FindByFlatAndParticipants(ctx context.Context, flatID, uidA, uidB string) (*entity.Chat, error)
	Create(ctx context.Context, chat *entity.Chat) error
	GetByID(ctx context.Context, id string) (*entity.Chat, error)
	ListenByParticipant(ctx context.Context, uid string) *stream.Listener[[]*entity.Chat]

	// SeedCursor initializes a participant's read cursor: read means "caught
	// up as of now" (server time), otherwise the cursor is set to never-read.
	SeedCursor(ctx context.Context, chatID, uid string, read bool) error
	// TouchCursor advances a cursor to server-now. Fails if the cursor
	// document does not exist.
	TouchCursor(ctx context.Context, chatID, uid string) error
	// ListenCursor emits the participant's last-read instant; nil means
	// never read. A missing cursor document also emits nil.
	ListenCursor(ctx context.Context, chatID, uid string) *stream.Listener[*time.Time]

	CreateMessage(ctx context.Context, msg *entity.Message) error
	// TouchLastMessage bumps the chat's lastMessageAt to server-now.
	TouchLastMessage(ctx context.Context, chatID string) error
	// ListenMessages emits the full message log ordered by creation time
	// ascending.
	ListenMessages(ctx context.Context, chatID string) *stream.Listener[[]*entity.Message]
	// ListenMessagesAfter emits the messages created strictly after the
	// given instant; a nil instant means the entire log.
	ListenMessagesAfter(ctx context.Context, chatID string, after *time.Time) *stream.Listener[[]*entity.Message]
}
