package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"flatnest/internal/domain/entity"
	"flatnest/internal/domain/repository"
	"flatnest/internal/stream"
	"flatnest/pkg/errors"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) chats() *firestore.CollectionRef {
	return r.client.Collection("chats")
}

func (r *firestoreChatRepository) messages(chatID string) *firestore.CollectionRef {
	return r.chats().Doc(chatID).Collection("messages")
}

func (r *firestoreChatRepository) cursor(chatID, uid string) *firestore.DocumentRef {
	return r.chats().Doc(chatID).Collection("participants").Doc(uid)
}

func (r *firestoreChatRepository) FindByFlatAndParticipants(ctx context.Context, flatID, uidA, uidB string) (*entity.Chat, error) {
	// The participant array is stored in insertion order, so equality must be
	// checked for both orderings.
	query := r.chats().
		Where("flatId", "==", flatID).
		Where("participantsUIDs", "in", [][]string{{uidA, uidB}, {uidB, uidA}}).
		Limit(1)

	iter := query.Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("Chat", nil)
	}
	if err != nil {
		return nil, errors.Internal("Failed to query chats", err)
	}

	var chat entity.Chat
	if err := doc.DataTo(&chat); err != nil {
		return nil, errors.Internal("Failed to parse chat data", err)
	}
	chat.ID = doc.Ref.ID

	return &chat, nil
}

func (r *firestoreChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}

	// CreatedAt and LastMessageAt are zero here; the serverTimestamp tag lets
	// the store assign both at commit time.
	if _, err := r.chats().Doc(chat.ID).Set(ctx, chat); err != nil {
		return errors.Internal("Failed to create chat", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	doc, err := r.chats().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat", nil)
		}
		return nil, errors.Internal("Failed to get chat", err)
	}

	var chat entity.Chat
	if err := doc.DataTo(&chat); err != nil {
		return nil, errors.Internal("Failed to parse chat data", err)
	}
	chat.ID = doc.Ref.ID

	return &chat, nil
}

func (r *firestoreChatRepository) ListenByParticipant(ctx context.Context, uid string) *stream.Listener[[]*entity.Chat] {
	query := r.chats().
		Where("participantsUIDs", "array-contains", uid).
		OrderBy("lastMessageAt", firestore.Desc)

	return listenQuery(ctx, query, func(doc *firestore.DocumentSnapshot) (*entity.Chat, error) {
		var chat entity.Chat
		if err := doc.DataTo(&chat); err != nil {
			return nil, err
		}
		chat.ID = doc.Ref.ID
		return &chat, nil
	})
}

func (r *firestoreChatRepository) SeedCursor(ctx context.Context, chatID, uid string, read bool) error {
	var lastReadAt interface{}
	if read {
		lastReadAt = firestore.ServerTimestamp
	}

	_, err := r.cursor(chatID, uid).Set(ctx, map[string]interface{}{
		"lastReadAt": lastReadAt,
	})
	if err != nil {
		return errors.Internal("Failed to initialize read cursor", err)
	}

	return nil
}

func (r *firestoreChatRepository) TouchCursor(ctx context.Context, chatID, uid string) error {
	_, err := r.cursor(chatID, uid).Update(ctx, []firestore.Update{
		{Path: "lastReadAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Read cursor", err)
		}
		return errors.Internal("Failed to update read cursor", err)
	}

	return nil
}

func (r *firestoreChatRepository) ListenCursor(ctx context.Context, chatID, uid string) *stream.Listener[*time.Time] {
	return listenDoc(ctx, r.cursor(chatID, uid), func(doc *firestore.DocumentSnapshot) (*time.Time, error) {
		if doc == nil {
			return nil, nil
		}
		var cur entity.ReadCursor
		if err := doc.DataTo(&cur); err != nil {
			return nil, err
		}
		return cur.LastReadAt, nil
	})
}

func (r *firestoreChatRepository) CreateMessage(ctx context.Context, msg *entity.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}

	if _, err := r.messages(msg.ChatID).Doc(msg.ID).Set(ctx, msg); err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreChatRepository) TouchLastMessage(ctx context.Context, chatID string) error {
	_, err := r.chats().Doc(chatID).Update(ctx, []firestore.Update{
		{Path: "lastMessageAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return errors.Internal("Failed to update chat activity", err)
	}

	return nil
}

func (r *firestoreChatRepository) ListenMessages(ctx context.Context, chatID string) *stream.Listener[[]*entity.Message] {
	query := r.messages(chatID).OrderBy("createdAt", firestore.Asc)
	return listenQuery(ctx, query, decodeMessage)
}

func (r *firestoreChatRepository) ListenMessagesAfter(ctx context.Context, chatID string, after *time.Time) *stream.Listener[[]*entity.Message] {
	query := r.messages(chatID).Query
	if after != nil {
		query = query.Where("createdAt", ">", *after)
	}
	return listenQuery(ctx, query, decodeMessage)
}

func decodeMessage(doc *firestore.DocumentSnapshot) (*entity.Message, error) {
	var msg entity.Message
	if err := doc.DataTo(&msg); err != nil {
		return nil, err
	}
	msg.ID = doc.Ref.ID
	return &msg, nil
}
