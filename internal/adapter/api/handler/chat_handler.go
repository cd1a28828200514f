package handler

import (
	"github.com/labstack/echo/v4"

	"flatnest/internal/infrastructure/ratelimit"
	"flatnest/internal/stream"
	"flatnest/internal/usecase"
	"flatnest/pkg/errors"
	"flatnest/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
	limiter     *ratelimit.Limiter
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase, limiter *ratelimit.Limiter) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
		limiter:     limiter,
	}
}

type createChatRequest struct {
	FlatID   string `json:"flat_id" validate:"required"`
	OtherUID string `json:"other_uid" validate:"required"`
}

// GetOrCreate resolves the thread for a flat and counterpart, creating it on
// first contact. Calling it twice, from either side, lands on the same thread.
func (h *ChatHandler) GetOrCreate(c echo.Context) error {
	uid, _ := c.Get("uid").(string)

	var req createChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if allowed, _ := h.limiter.Allow(uid, ratelimit.ActionCreateChat); !allowed {
		return response.Error(c, errors.New("RATE_LIMITED", "Too many new chats, try again later", 429, nil))
	}

	chat, err := h.chatUseCase.GetOrCreateChat(c.Request().Context(), uid, req.FlatID, req.OtherUID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}

// ListPreviews is the one-shot REST view of the live preview stream: it waits
// for the first complete snapshot and returns it.
func (h *ChatHandler) ListPreviews(c echo.Context) error {
	uid, _ := c.Get("uid").(string)

	ctx := c.Request().Context()
	previews, err := stream.First(ctx, h.chatUseCase.ListenChatsForUser(ctx, uid))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, previews)
}

func (h *ChatHandler) ListMessages(c echo.Context) error {
	uid, _ := c.Get("uid").(string)

	ctx := c.Request().Context()
	listener, err := h.chatUseCase.ListenMessages(ctx, uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	messages, err := stream.First(ctx, listener)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	uid, _ := c.Get("uid").(string)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if allowed, _ := h.limiter.Allow(uid, ratelimit.ActionSendMessage); !allowed {
		return response.Error(c, errors.New("RATE_LIMITED", "Sending too fast, slow down", 429, nil))
	}

	msg, err := h.chatUseCase.SendMessage(c.Request().Context(), uid, c.Param("id"), req.Content)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, msg)
}

func (h *ChatHandler) MarkAsRead(c echo.Context) error {
	uid, _ := c.Get("uid").(string)

	h.chatUseCase.MarkAsRead(c.Request().Context(), uid, c.Param("id"))

	return response.Success(c, map[string]string{
		"message": "Chat marked as read",
	})
}
