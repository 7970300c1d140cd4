package events

// Клиент -> сервер
const (
	EventSendMessage   = "send_message"
	EventMarkDelivered = "mark_delivered"
	EventMarkSeen      = "mark_seen"
	EventTyping        = "typing"
)

// Сервер -> клиент
const (
	EventNewMessage  = "new_message"
	EventMessageSent = "message_sent"
	EventDelivered   = "delivered"
	EventSeen        = "seen"
	EventUserTyping  = "user_typing"
	EventError       = "error"
)

type MarkDeliveredPayload struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	DeliveredAt    string `json:"deliveredAt"`
}

type MarkSeenPayload struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	SeenAt         string `json:"seenAt"`
}

type TypingPayload struct {
	ConversationID string `json:"conversationId"`
	IsTyping       bool   `json:"isTyping"`
}

type MessageDeliveredEvent struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	DeliveredTo    string `json:"deliveredTo"`
	DeliveredAt    string `json:"deliveredAt"`
}

type MessageSeenEvent struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	SeenBy         string `json:"seenBy"`
	SeenAt         string `json:"seenAt"`
}

type UserTypingEvent struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	IsTyping       bool   `json:"isTyping"`
}

type ErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
