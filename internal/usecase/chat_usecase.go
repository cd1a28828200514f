package usecase

import (
	"context"
	"strings"

	"flatnest/internal/domain/entity"
	"flatnest/internal/domain/repository"
	"flatnest/internal/observability"
	"flatnest/internal/stream"
	"flatnest/pkg/errors"
	"flatnest/pkg/logger"
)

type ChatUseCase struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
}

func NewChatUseCase(chatRepo repository.ChatRepository, userRepo repository.UserRepository) *ChatUseCase {
	return &ChatUseCase{
		chatRepo: chatRepo,
		userRepo: userRepo,
	}
}

// GetOrCreateChat resolves the single chat for a flat and a participant pair,
// creating it when it does not exist yet. On create the caller's read cursor
// starts at the creation instant (they have read their own empty thread) and
// the other participant's cursor starts at never-read.
//
// The lookup-then-create sequence is not transactional: two near-simultaneous
// calls from each side can still create two threads. See DESIGN.md for why
// this is kept as-is.
func (uc *ChatUseCase) GetOrCreateChat(ctx context.Context, callerUID, flatID, otherUID string) (*entity.Chat, error) {
	if callerUID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}
	if flatID == "" || otherUID == "" {
		return nil, errors.BadRequest("Flat and recipient are required", nil)
	}
	if callerUID == otherUID {
		return nil, errors.BadRequest("You cannot start a chat with yourself", nil)
	}

	existing, err := uc.chatRepo.FindByFlatAndParticipants(ctx, flatID, callerUID, otherUID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	chat := &entity.Chat{
		FlatID:       flatID,
		Participants: []string{callerUID, otherUID},
	}
	if err := uc.chatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}

	if err := uc.chatRepo.SeedCursor(ctx, chat.ID, callerUID, true); err != nil {
		return nil, err
	}
	if err := uc.chatRepo.SeedCursor(ctx, chat.ID, otherUID, false); err != nil {
		return nil, err
	}

	observability.IncChatCreated()
	logger.Info("Created chat %s for flat %s between %s and %s", chat.ID, flatID, callerUID, otherUID)

	return chat, nil
}

// SendMessage appends a message to a chat. Sender name and email are copied
// from the current profile at send time; past messages keep the name the
// sender had when they wrote them.
func (uc *ChatUseCase) SendMessage(ctx context.Context, callerUID, chatID, content string) (*entity.Message, error) {
	if callerUID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.BadRequest("Message content cannot be empty", nil)
	}

	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(callerUID) {
		return nil, errors.Forbidden("You are not a participant in this chat", nil)
	}

	sender, err := uc.userRepo.GetByID(ctx, callerUID)
	if err != nil {
		return nil, errors.NotFound("Sender", err)
	}

	msg := &entity.Message{
		ChatID:      chatID,
		SenderUID:   callerUID,
		SenderName:  sender.DisplayName(),
		SenderEmail: sender.Email,
		Content:     content,
	}
	if err := uc.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	if err := uc.chatRepo.TouchLastMessage(ctx, chatID); err != nil {
		return nil, err
	}

	observability.IncMessageSent()

	return msg, nil
}

// ListenMessages streams the chat's full message log, ascending by creation
// time, re-emitting on every append. Participant-only.
func (uc *ChatUseCase) ListenMessages(ctx context.Context, callerUID, chatID string) (*stream.Listener[[]*entity.Message], error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(callerUID) {
		return nil, errors.Forbidden("You are not a participant in this chat", nil)
	}

	return uc.chatRepo.ListenMessages(ctx, chatID), nil
}

// MarkAsRead advances the caller's read cursor to now. Best-effort: marking
// a thread read must never block the user from seeing or sending messages,
// so failures are logged and swallowed.
func (uc *ChatUseCase) MarkAsRead(ctx context.Context, callerUID, chatID string) {
	if callerUID == "" {
		return
	}
	if err := uc.chatRepo.TouchCursor(ctx, chatID, callerUID); err != nil {
		logger.Warn("Failed to mark chat %s as read for %s: %v", chatID, callerUID, err)
	}
}
