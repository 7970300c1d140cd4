package models

import "time"

type MessageStatus int

const (
	MessageStatusSent MessageStatus = iota + 1
	MessageStatusDelivered
	MessageStatusSeen
)

type Message struct {
	ID             string        `json:"id"`
	MessageID      string        `json:"messageId"`
	ConversationID string        `json:"conversationId"`
	SenderID       string        `json:"senderId"`
	Type           string        `json:"type"`
	Body           string        `json:"body"`
	FileURL        string        `json:"fileUrl,omitempty"`
	ReplyTo        string        `json:"replyTo,omitempty"`
	CreatedAt      *time.Time    `json:"createdAt,omitempty"`
	Status         MessageStatus `json:"status"`
}

// LastMessage - превью последнего сообщения беседы
type LastMessage struct {
	MessageID string     `json:"messageId"`
	Content   string     `json:"content"`
	SenderID  string     `json:"senderId"`
	SentAt    *time.Time `json:"sentAt,omitempty"`
}

type NotificationType string

const (
	NotificationTypeMessage NotificationType = "message"
	NotificationTypeCall    NotificationType = "call"
	NotificationTypeError   NotificationType = "error"
)

type Notification struct {
	ID             string           `json:"id"`
	Type           NotificationType `json:"type"`
	Title          string           `json:"title"`
	Body           string           `json:"body"`
	ConversationID string           `json:"conversationId,omitempty"`
	SenderID       string           `json:"senderId,omitempty"`
	Timestamp      time.Time        `json:"timestamp"`
	Read           bool             `json:"read"`
}
