package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/confeet-agent/internal/application/constant"
	"github.com/qrave1/confeet-agent/internal/domain/models"
	"github.com/qrave1/confeet-agent/internal/infra/ports/http/dto"
	"github.com/qrave1/confeet-agent/internal/usecase"
)

type ChatHandler struct {
	delivery usecase.DeliveryUsecase
}

func NewChatHandler(delivery usecase.DeliveryUsecase) *ChatHandler {
	return &ChatHandler{delivery: delivery}
}

func (h *ChatHandler) State(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.ChatStateResponse{
		ActiveConversation: h.delivery.ActiveConversation(),
		ChatOpen:           h.delivery.ChatOpen(),
		Unread:             h.delivery.UnreadCounts(),
		TotalUnread:        h.delivery.TotalUnread(),
		Typing:             h.delivery.TypingUsers(),
		LastMessages:       h.delivery.LastMessages(),
	})
}

func (h *ChatHandler) SetActive(c echo.Context) error {
	var req dto.ActiveConversationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	h.delivery.SetActiveConversation(req.ConversationID)

	if req.ChatOpen != nil {
		h.delivery.SetChatOpen(*req.ChatOpen)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *ChatHandler) Messages(c echo.Context) error {
	msgs := h.delivery.Messages()
	if msgs == nil {
		msgs = []models.Message{}
	}

	return c.JSON(http.StatusOK, dto.MessagesResponse{Messages: msgs})
}

// LoadHistory подгружает страницу истории активной беседы через REST API
func (h *ChatHandler) LoadHistory(c echo.Context) error {
	conversationID := h.delivery.ActiveConversation()
	if conversationID == "" {
		return c.JSON(http.StatusConflict, map[string]string{"error": "no active conversation"})
	}

	page, err := intParam(c, "page", 1)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid page"})
	}

	limit, err := intParam(c, "limit", 0)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid limit"})
	}

	if err := h.delivery.LoadHistory(c.Request().Context(), conversationID, page, limit); err != nil {
		slog.Error(
			"load history",
			slog.Any(constant.Error, err),
			slog.String(constant.ConversationID, conversationID),
		)

		return c.JSON(http.StatusBadGateway, map[string]string{"error": "failed to load history"})
	}

	return h.Messages(c)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req dto.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if req.Body == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "body is required"})
	}

	if req.ConversationID == "" {
		req.ConversationID = h.delivery.ActiveConversation()
	}

	if req.ConversationID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "conversation_id is required"})
	}

	msg, sent := h.delivery.SendMessage(req.ConversationID, req.Body, req.ReplyTo)
	if !sent {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "signaling socket is not open, message dropped"})
	}

	return c.JSON(http.StatusAccepted, dto.SendMessageResponse{Sent: true, Message: msg})
}

func (h *ChatHandler) MarkSeen(c echo.Context) error {
	var req dto.MarkSeenRequest
	if err := c.Bind(&req); err != nil || req.MessageID == "" || req.ConversationID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "conversation_id and message_id are required"})
	}

	return sendResult(c, h.delivery.MarkSeen(req.MessageID, req.ConversationID))
}

func (h *ChatHandler) Typing(c echo.Context) error {
	var req dto.TypingRequest
	if err := c.Bind(&req); err != nil || req.ConversationID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "conversation_id is required"})
	}

	return sendResult(c, h.delivery.SendTyping(req.ConversationID, req.IsTyping))
}

func (h *ChatHandler) Notifications(c echo.Context) error {
	list := h.delivery.Notifications()
	if list == nil {
		list = []models.Notification{}
	}

	return c.JSON(http.StatusOK, dto.NotificationsResponse{Notifications: list})
}

func (h *ChatHandler) ClearNotification(c echo.Context) error {
	h.delivery.ClearNotification(c.Param("id"))

	return c.NoContent(http.StatusNoContent)
}

func (h *ChatHandler) ClearAllNotifications(c echo.Context) error {
	h.delivery.ClearAllNotifications()

	return c.NoContent(http.StatusNoContent)
}

func intParam(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}

	return strconv.Atoi(raw)
}
