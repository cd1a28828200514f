package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"flatnest/internal/adapter/api/middleware"
	"flatnest/internal/infrastructure/ratelimit"
	ws "flatnest/internal/infrastructure/websocket"
	"flatnest/internal/observability"
	"flatnest/internal/usecase"
	"flatnest/pkg/errors"
	"flatnest/pkg/logger"
)

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Restrict this in production.
	},
}

const (
	eventChatList = "chat_list"
	eventMessages = "messages"
	eventMessage  = "message_sent"
	eventError    = "error"
	eventPong     = "pong"

	commandPing        = "ping"
	commandSubscribe   = "subscribe_messages"
	commandUnsubscribe = "unsubscribe_messages"
	commandSendMessage = "send_message"
	commandMarkRead    = "mark_read"
)

type wsCommand struct {
	Type    string `json:"type"`
	ChatID  string `json:"chat_id,omitempty"`
	Content string `json:"content,omitempty"`
}

type wsEvent struct {
	Type      string      `json:"type"`
	ChatID    string      `json:"chat_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type WebSocketHandler struct {
	wsManager      *ws.Manager
	authMiddleware *middleware.AuthMiddleware
	chatUseCase    *usecase.ChatUseCase
	limiter        *ratelimit.Limiter
}

func NewWebSocketHandler(wsManager *ws.Manager, authMiddleware *middleware.AuthMiddleware, chatUseCase *usecase.ChatUseCase, limiter *ratelimit.Limiter) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:      wsManager,
		authMiddleware: authMiddleware,
		chatUseCase:    chatUseCase,
		limiter:        limiter,
	}
}

// HandleWebSocket upgrades the connection, authenticates it by the token
// query parameter and pushes the caller's chat previews for the lifetime of
// the connection. Message streams for individual threads are subscribed on
// demand through commands.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return errors.Unauthorized("Token query parameter is required", nil)
	}

	uid, err := h.authMiddleware.GetUIDFromToken(c.Request().Context(), token)
	if err != nil {
		return errors.Unauthorized("Invalid or expired token", err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := ws.NewClient(uid, conn)
	h.wsManager.Register <- client

	ctx, cancel := context.WithCancel(context.Background())

	session := &wsSession{
		handler: h,
		client:  client,
		ctx:     ctx,
		subs:    make(map[string]context.CancelFunc),
	}

	go session.streamChatList()
	go client.WritePump()

	// ReadPump blocks until the peer disconnects; everything the connection
	// started is torn down behind it.
	go func() {
		defer cancel()
		defer session.stopAll()
		client.ReadPump(h.wsManager, session.handleCommand)
	}()

	return nil
}

// wsSession is the per-connection state: the chat list stream plus any
// per-thread message streams the client has subscribed to.
type wsSession struct {
	handler *WebSocketHandler
	client  *ws.Client
	ctx     context.Context

	mu   sync.Mutex
	subs map[string]context.CancelFunc
}

func (s *wsSession) streamChatList() {
	observability.IncLiveSubscription("chat_list")
	defer observability.DecLiveSubscription("chat_list")

	listener := s.handler.chatUseCase.ListenChatsForUser(s.ctx, s.client.UID)
	defer listener.Stop()

	for {
		select {
		case previews, ok := <-listener.Updates():
			if !ok {
				if err := listener.Err(); err != nil {
					s.sendError("", "Chat list stream failed")
				}
				return
			}
			s.send(wsEvent{Type: eventChatList, Data: previews})
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *wsSession) handleCommand(message []byte) {
	var cmd wsCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.sendError("", "Invalid message format")
		return
	}

	switch cmd.Type {
	case commandPing:
		s.send(wsEvent{Type: eventPong})

	case commandSubscribe:
		s.subscribeMessages(cmd.ChatID)

	case commandUnsubscribe:
		s.unsubscribeMessages(cmd.ChatID)

	case commandSendMessage:
		s.sendMessage(cmd.ChatID, cmd.Content)

	case commandMarkRead:
		s.markRead(cmd.ChatID)

	default:
		s.sendError("", "Unknown message type")
	}
}

func (s *wsSession) subscribeMessages(chatID string) {
	if chatID == "" {
		s.sendError("", "Missing chat_id")
		return
	}

	s.mu.Lock()
	if _, ok := s.subs[chatID]; ok {
		s.mu.Unlock()
		return
	}
	subCtx, cancel := context.WithCancel(s.ctx)
	s.subs[chatID] = cancel
	s.mu.Unlock()

	listener, err := s.handler.chatUseCase.ListenMessages(subCtx, s.client.UID, chatID)
	if err != nil {
		s.dropSub(chatID)
		s.sendError(chatID, "Cannot subscribe to this chat")
		return
	}

	observability.IncLiveSubscription("messages")

	go func() {
		defer observability.DecLiveSubscription("messages")
		defer listener.Stop()
		defer s.dropSub(chatID)

		for {
			select {
			case messages, ok := <-listener.Updates():
				if !ok {
					if err := listener.Err(); err != nil {
						s.sendError(chatID, "Message stream failed")
					}
					return
				}
				s.send(wsEvent{Type: eventMessages, ChatID: chatID, Data: messages})
			case <-subCtx.Done():
				return
			}
		}
	}()
}

func (s *wsSession) unsubscribeMessages(chatID string) {
	s.mu.Lock()
	cancel, ok := s.subs[chatID]
	delete(s.subs, chatID)
	s.mu.Unlock()

	if ok {
		cancel()
	}
}

func (s *wsSession) sendMessage(chatID, content string) {
	if allowed, wait := s.handler.limiter.Allow(s.client.UID, ratelimit.ActionSendMessage); !allowed {
		logger.Debug("Rate limited send_message from %s, retry in %s", s.client.UID, wait)
		s.sendError(chatID, "Sending too fast, slow down")
		return
	}

	msg, err := s.handler.chatUseCase.SendMessage(s.ctx, s.client.UID, chatID, content)
	if err != nil {
		s.sendError(chatID, errorMessage(err))
		return
	}

	s.send(wsEvent{Type: eventMessage, ChatID: chatID, Data: msg})
}

func (s *wsSession) markRead(chatID string) {
	if allowed, _ := s.handler.limiter.Allow(s.client.UID, ratelimit.ActionMarkRead); !allowed {
		return
	}

	s.handler.chatUseCase.MarkAsRead(s.ctx, s.client.UID, chatID)
}

func (s *wsSession) dropSub(chatID string) {
	s.mu.Lock()
	if cancel, ok := s.subs[chatID]; ok {
		delete(s.subs, chatID)
		s.mu.Unlock()
		cancel()
		return
	}
	s.mu.Unlock()
}

func (s *wsSession) stopAll() {
	s.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(s.subs))
	for _, cancel := range s.subs {
		cancels = append(cancels, cancel)
	}
	s.subs = make(map[string]context.CancelFunc)
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

func (s *wsSession) send(event wsEvent) {
	event.Timestamp = time.Now().UTC().Format(time.RFC3339)

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal websocket event for %s: %v", s.client.UID, err)
		return
	}

	select {
	case s.client.Send <- payload:
	default:
		logger.Warn("WebSocket send buffer full for %s, dropping event", s.client.UID)
	}
}

func (s *wsSession) sendError(chatID, message string) {
	s.send(wsEvent{
		Type:   eventError,
		ChatID: chatID,
		Data:   map[string]string{"message": message},
	})
}

func errorMessage(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return "Something went wrong"
}
