package dto

import "github.com/qrave1/confeet-agent/internal/domain/models"

type ActiveConversationRequest struct {
	ConversationID string `json:"conversation_id"`
	ChatOpen       *bool  `json:"chat_open"`
}

type LoadHistoryRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type SendMessageRequest struct {
	ConversationID string `json:"conversation_id"`
	Body           string `json:"body"`
	ReplyTo        string `json:"reply_to"`
}

type MarkSeenRequest struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
}

type TypingRequest struct {
	ConversationID string `json:"conversation_id"`
	IsTyping       bool   `json:"is_typing"`
}

type SendMessageResponse struct {
	Sent    bool           `json:"sent"`
	Message models.Message `json:"message"`
}

type ChatStateResponse struct {
	ActiveConversation string                        `json:"active_conversation"`
	ChatOpen           bool                          `json:"chat_open"`
	Unread             map[string]int                `json:"unread"`
	TotalUnread        int                           `json:"total_unread"`
	Typing             map[string]bool               `json:"typing"`
	LastMessages       map[string]models.LastMessage `json:"last_messages"`
}

type MessagesResponse struct {
	Messages []models.Message `json:"messages"`
}

type NotificationsResponse struct {
	Notifications []models.Notification `json:"notifications"`
}

type ConnectionResponse struct {
	Connected bool               `json:"connected"`
	LoggedIn  bool               `json:"logged_in"`
	User      *models.User       `json:"user,omitempty"`
	MediaRoom *MediaRoomResponse `json:"media_room,omitempty"`
}

// MediaRoomResponse - комната медиа-сервера без токена и ICE учеток
type MediaRoomResponse struct {
	ConversationID string `json:"conversation_id"`
	CallID         string `json:"call_id"`
	RoomName       string `json:"room_name"`
	Identity       string `json:"identity"`
}
